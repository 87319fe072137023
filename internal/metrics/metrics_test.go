package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounterAndGauge(t *testing.T) {
	c := NewCounter("test_frames_total", "Frames seen", ProviderLabels("Binance"))
	c.Inc()
	c.Add(4)
	c.Add(-10) // counters never go down
	if got := c.Value(); got != 5 {
		t.Fatalf("counter: got %d want 5", got)
	}

	g := NewGauge("test_book_depth", "Levels in the book", nil)
	g.Set(42)
	g.Add(-2)
	if got := g.Value(); got != 40 {
		t.Fatalf("gauge: got %d want 40", got)
	}
}

func TestHandlerExposition(t *testing.T) {
	c := NewCounter("test_published_total", "Batches published", ProviderLabels("Coinbase"))
	c.Add(7)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		"# TYPE test_published_total counter",
		`test_published_total{provider="Coinbase"} 7`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q:\n%s", want, body)
		}
	}
}

func TestNilReceiversAreNoOps(t *testing.T) {
	var c *Counter
	var g *Gauge
	c.Inc()
	g.Set(1)
	if c.Value() != 0 || g.Value() != 0 {
		t.Fatal("nil metrics reported values")
	}
}
