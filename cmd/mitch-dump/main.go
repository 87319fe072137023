// mitch-dump subscribes to feed subjects, decodes every frame and
// prints one line per batch. With -capture it also appends the raw
// frames to a capture file for later replay.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/btr-supply/mitch"
	"github.com/btr-supply/mitch/internal/capture"
	"github.com/btr-supply/mitch/internal/metrics"
	"github.com/btr-supply/mitch/internal/nats"
)

var (
	natsServers = flag.String("servers", "nats://localhost:4222", "NATS URLs")
	subjectFlag = flag.String("subject", nats.SubjectAll, "NATS subject filter")
	captureFlag = flag.String("capture", "", "append frames to this capture file")
	metricsAddr = flag.String("metrics", "", "metrics listen address (empty disables)")
)

func main() {
	flag.Parse()
	servers := strings.Split(*natsServers, ",")

	var cw *capture.Writer
	if *captureFlag != "" {
		f, err := os.OpenFile(*captureFlag, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			log.Fatalf("capture file: %v", err)
		}
		defer f.Close()
		cw, err = capture.NewWriter(f)
		if err != nil {
			log.Fatalf("capture writer: %v", err)
		}
		defer cw.Flush()
	}

	metrics.StartServer(*metricsAddr, log.Printf)
	decoded := metrics.NewCounter("mitch_dump_decoded_total", "Batches decoded", nil)
	failed := metrics.NewCounter("mitch_dump_failed_total", "Frames that failed to decode", nil)

	conn := nats.Connect(servers, "mitch-dump")
	defer conn.Close()

	sub, err := conn.Subscribe(*subjectFlag, func(subject string, frame []byte) {
		msg, err := mitch.Decode(frame)
		if err != nil {
			failed.Inc()
			log.Printf("%s: decode error: %v", subject, err)
			return
		}
		decoded.Inc()
		printBatch(subject, msg)
		if cw != nil {
			if err := cw.WriteFrame(frame); err != nil {
				log.Printf("capture write error: %v", err)
			}
		}
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	log.Printf("Listening on %s (servers %v)", *subjectFlag, servers)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	log.Println("Interrupt received, shutting down...")
	if cw != nil {
		log.Printf("Captured %d frames to %s", cw.Frames(), *captureFlag)
	}
}

func printBatch(subject string, msg *mitch.Message) {
	h := msg.Header
	switch {
	case len(msg.Trades) > 0:
		t := msg.Trades[len(msg.Trades)-1]
		log.Printf("%s %v trades=%d last: %s %v x%d", subject, h, len(msg.Trades), t.Side, t.Price, t.Quantity)
	case len(msg.Orders) > 0:
		log.Printf("%s %v orders=%d", subject, h, len(msg.Orders))
	case len(msg.Ticks) > 0:
		t := msg.Ticks[len(msg.Ticks)-1]
		log.Printf("%s %v ticks=%d last: %v/%v", subject, h, len(msg.Ticks), t.BidPrice, t.AskPrice)
	case len(msg.Indices) > 0:
		x := msg.Indices[len(msg.Indices)-1]
		log.Printf("%s %v indices=%d last: mid=%v conf=%d", subject, h, len(msg.Indices), x.Mid, x.Confidence)
	case len(msg.Books) > 0:
		b := msg.Books[len(msg.Books)-1]
		log.Printf("%s %v books=%d last: mid=%v bidVol=%d askVol=%d", subject, h, len(msg.Books), b.MidPrice, b.TotalBidVolume(), b.TotalAskVolume())
	}
}
