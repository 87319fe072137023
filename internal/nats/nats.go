// Package nats publishes and consumes encoded message batches over
// NATS, one subject per route.
package nats

import (
	"fmt"
	"log"
	"strings"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/btr-supply/mitch"
)

// SubjectFor derives the NATS subject of a route:
// mitch.<provider>.<kind>, e.g. mitch.101.t for Binance trades.
func SubjectFor(route mitch.RouteID) string {
	return fmt.Sprintf("mitch.%d.%c", route.Provider(), route.Kind())
}

// SubjectAll matches every feed subject.
const SubjectAll = "mitch.>"

type Conn struct {
	conn *nats.Conn
}

// Connect dials the server list, retrying until the first connection
// succeeds. Reconnects after that are handled by the client.
func Connect(servers []string, name string) *Conn {
	list := strings.Join(servers, ",")
	for {
		conn, err := nats.Connect(
			list,
			nats.Name(name),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(500*time.Millisecond),
		)
		if err == nil {
			return &Conn{conn: conn}
		}
		log.Printf("nats connect error: %v (retrying)", err)
		time.Sleep(time.Second)
	}
}

// Publish sends one encoded batch on the route's subject.
func (c *Conn) Publish(route mitch.RouteID, frame []byte) error {
	if c.conn == nil {
		return nats.ErrConnectionClosed
	}
	return c.conn.Publish(SubjectFor(route), frame)
}

// Subscribe delivers raw frames from a subject to the handler.
func (c *Conn) Subscribe(subject string, handler func(subject string, frame []byte)) (*nats.Subscription, error) {
	if c.conn == nil {
		return nil, nats.ErrConnectionClosed
	}
	return c.conn.Subscribe(subject, func(m *nats.Msg) {
		handler(m.Subject, m.Data)
	})
}

func (c *Conn) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
		return err
	}
	return nil
}
