package stream

import (
	"reflect"
	"testing"
)

func TestRegistry_SetSemantics(t *testing.T) {
	r := newSubscriptionRegistry()

	r.add("btc-usdt@ticker", "eth-usdt@trades")
	r.add("btc-usdt@ticker") // duplicate add is a no-op
	r.remove("never-added") // removing an absent id is a no-op
	r.remove("eth-usdt@trades")
	r.add("eth-usdt@kline_1h")

	want := []string{"btc-usdt@ticker", "eth-usdt@kline_1h"}
	if got := r.snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("snapshot = %v, want %v", got, want)
	}
	if got := r.len(); got != 2 {
		t.Errorf("len = %d, want 2", got)
	}
}

func TestRegistry_ReplayEqualsCallHistory(t *testing.T) {
	// The resulting set must equal the mathematical set produced by
	// replaying the same call sequence.
	type call struct {
		add   bool
		feeds []string
	}
	calls := []call{
		{true, []string{"a@ticker", "b@ticker"}},
		{true, []string{"b@ticker", "c@trades"}},
		{false, []string{"a@ticker"}},
		{true, []string{"a@ticker"}},
		{false, []string{"c@trades", "d@trades"}},
	}

	r := newSubscriptionRegistry()
	model := make(map[string]bool)
	for _, c := range calls {
		if c.add {
			r.add(c.feeds...)
			for _, f := range c.feeds {
				model[f] = true
			}
		} else {
			r.remove(c.feeds...)
			for _, f := range c.feeds {
				delete(model, f)
			}
		}
	}

	got := r.snapshot()
	if len(got) != len(model) {
		t.Fatalf("snapshot has %d feeds, want %d", len(got), len(model))
	}
	for _, f := range got {
		if !model[f] {
			t.Errorf("snapshot contains %q, not in model set", f)
		}
	}
}

func TestRegistry_AuthFlag(t *testing.T) {
	r := newSubscriptionRegistry()

	if r.wantAuth() {
		t.Error("new registry wants auth")
	}
	r.markAuthenticated()
	if !r.wantAuth() {
		t.Error("wantAuth = false after markAuthenticated")
	}
	r.markUnauthenticated()
	if r.wantAuth() {
		t.Error("wantAuth = true after markUnauthenticated")
	}
}
