package nats

import (
	"testing"

	"github.com/btr-supply/mitch"
)

func TestSubjectFor(t *testing.T) {
	r := mitch.PackRoute(101, mitch.KindTick)
	if got := SubjectFor(r); got != "mitch.101.s" {
		t.Fatalf("got %q want mitch.101.s", got)
	}
	r = mitch.PackRoute(853, mitch.KindOrderBook)
	if got := SubjectFor(r); got != "mitch.853.b" {
		t.Fatalf("got %q want mitch.853.b", got)
	}
}
