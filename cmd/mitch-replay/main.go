// mitch-replay publishes the frames of a capture file back to Kafka at
// a configurable rate, preserving per-frame route keys derived from the
// decoded headers.
package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/btr-supply/mitch"
	"github.com/btr-supply/mitch/internal/capture"

	"github.com/schollz/progressbar/v3"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	kafkaBrokers = flag.String("brokers", "localhost:9092", "Kafka brokers")
	topicFlag    = flag.String("topic", "mitch", "Kafka topic")
	fileFlag     = flag.String("file", "", "capture file to replay")
	providerFlag = flag.Uint("provider", 0, "provider number for route keys (0 keys by kind only)")
	rateFlag     = flag.Int("rate", 1000, "frames per second (0 for full speed)")
)

func main() {
	flag.Parse()
	if *fileFlag == "" {
		log.Fatal("file is required")
	}
	if *providerFlag > 65535 {
		log.Fatalf("provider %d out of range (max 65535)", *providerFlag)
	}

	f, err := os.Open(*fileFlag)
	if err != nil {
		log.Fatalf("open capture: %v", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		log.Fatalf("stat capture: %v", err)
	}
	reader, err := capture.NewReader(f)
	if err != nil {
		log.Fatalf("capture reader: %v", err)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(*kafkaBrokers, ",")...),
		kgo.DefaultProduceTopic(*topicFlag),
	)
	if err != nil {
		log.Fatalf("kafka client: %v", err)
	}
	defer client.Close()

	bar := progressbar.DefaultBytes(info.Size(), "replaying")
	var interval time.Duration
	if *rateFlag > 0 {
		interval = time.Second / time.Duration(*rateFlag)
	}

	ctx := context.Background()
	frames := 0
	start := time.Now()
	for {
		frame, err := reader.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatalf("frame %d: %v", frames, err)
		}

		rec := &kgo.Record{Key: routeKey(frame, uint16(*providerFlag)), Value: frame}
		if err := client.ProduceSync(ctx, rec).FirstErr(); err != nil {
			log.Fatalf("produce: %v", err)
		}
		frames++
		_ = bar.Add(4 + len(frame))
		if interval > 0 {
			time.Sleep(interval)
		}
	}
	_ = bar.Finish()
	log.Printf("Replayed %d frames in %v", frames, time.Since(start).Round(time.Millisecond))
}

// routeKey rebuilds the producer-side Kafka key from the frame's kind
// byte. Capture files do not record provider numbers, so the provider
// is supplied by flag.
func routeKey(frame []byte, provider uint16) []byte {
	h, err := mitch.DecodeHeader(frame)
	if err != nil {
		return nil
	}
	key := make([]byte, 4)
	binary.LittleEndian.PutUint32(key, uint32(mitch.PackRoute(provider, h.Kind)))
	return key
}
