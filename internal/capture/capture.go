// Package capture reads and writes .mitch capture files: a magic header
// followed by length-framed message buffers, one frame per encoded
// batch.
package capture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var magic = [8]byte{'M', 'I', 'T', 'C', 'H', 'C', 'A', '1'}

// MaxFrameSize bounds a single frame: one header plus 255 maximum-size
// classic book entries. Anything larger is a corrupt file.
const MaxFrameSize = 8 + 255*(32+4*65535)

// ErrBadMagic reports a capture file that does not start with the
// capture magic.
var ErrBadMagic = errors.New("capture: bad magic")

// Writer appends frames to a capture stream.
type Writer struct {
	w      *bufio.Writer
	frames uint64
}

// NewWriter writes the magic and returns a framing writer. Call Flush
// before closing the underlying file.
func NewWriter(w io.Writer) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return nil, err
	}
	return &Writer{w: bw}, nil
}

// WriteFrame appends one encoded message buffer.
func (w *Writer) WriteFrame(frame []byte) error {
	if len(frame) == 0 || len(frame) > MaxFrameSize {
		return fmt.Errorf("capture: frame size %d out of range", len(frame))
	}
	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], uint32(len(frame)))
	if _, err := w.w.Write(sz[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(frame); err != nil {
		return err
	}
	w.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() uint64 { return w.frames }

// Flush drains the buffered writer.
func (w *Writer) Flush() error { return w.w.Flush() }

// Reader iterates the frames of a capture stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader validates the magic and returns a framing reader.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	var got [8]byte
	if _, err := io.ReadFull(br, got[:]); err != nil {
		return nil, fmt.Errorf("capture: reading magic: %w", err)
	}
	if got != magic {
		return nil, ErrBadMagic
	}
	return &Reader{r: br}, nil
}

// ReadFrame returns the next frame, or io.EOF at a clean end of stream.
// A frame cut short mid-body fails with io.ErrUnexpectedEOF.
func (r *Reader) ReadFrame() ([]byte, error) {
	var sz [4]byte
	if _, err := io.ReadFull(r.r, sz[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	n := binary.LittleEndian.Uint32(sz[:])
	if n == 0 || n > MaxFrameSize {
		return nil, fmt.Errorf("capture: frame size %d out of range", n)
	}
	frame := make([]byte, n)
	if _, err := io.ReadFull(r.r, frame); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return frame, nil
}
