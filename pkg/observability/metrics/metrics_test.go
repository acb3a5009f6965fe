package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/observability"
)

func TestEngineMutations(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		outcome string
	}{
		{name: "applied move", op: "move", outcome: "applied"},
		{name: "rejected resize", op: "resize", outcome: "rejected"},
		{name: "failed add", op: "add", outcome: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Mutations.WithLabelValues(tt.op, tt.outcome)
			before := testutil.ToFloat64(c)
			Engine{}.OnMutation(tt.op, tt.outcome)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("mutation counter moved by %v, want 1", got)
			}
		})
	}
}

func TestEnginePlacementFailure(t *testing.T) {
	before := testutil.ToFloat64(PlacementFailures)
	Engine{}.OnPlacement("", 0, time.Microsecond, errors.New("no columns"))
	if got := testutil.ToFloat64(PlacementFailures) - before; got != 1 {
		t.Errorf("failure counter moved by %v, want 1", got)
	}
}

func TestStorageHooks(t *testing.T) {
	ctx := context.Background()
	s := Storage{}

	s.OnWrite(ctx, "memory", 512, time.Millisecond, nil)
	if got := testutil.ToFloat64(DocumentBytes.WithLabelValues("memory")); got != 512 {
		t.Errorf("document bytes = %v, want 512", got)
	}

	errs := StorageErrors.WithLabelValues("redis", "read")
	before := testutil.ToFloat64(errs)
	s.OnRead(ctx, "redis", 0, true, time.Millisecond, errors.New("connection refused"))
	if got := testutil.ToFloat64(errs) - before; got != 1 {
		t.Errorf("read error counter moved by %v, want 1", got)
	}

	warn := LoadWarnings.WithLabelValues("overlap")
	before = testutil.ToFloat64(warn)
	s.OnLoadWarning(ctx, "overlap")
	if got := testutil.ToFloat64(warn) - before; got != 1 {
		t.Errorf("warning counter moved by %v, want 1", got)
	}
}

func TestHTTPHook(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/api/layouts", "200")
	before := testutil.ToFloat64(c)
	HTTP{}.OnRequest(context.Background(), "GET", "/api/layouts", 200, time.Millisecond)
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("request counter moved by %v, want 1", got)
	}
}

func TestRegister(t *testing.T) {
	defer observability.Reset()
	Register()
	if _, ok := observability.Engine().(Engine); !ok {
		t.Errorf("Engine() = %T, want metrics.Engine", observability.Engine())
	}
	if _, ok := observability.HTTP().(HTTP); !ok {
		t.Errorf("HTTP() = %T, want metrics.HTTP", observability.HTTP())
	}
}
