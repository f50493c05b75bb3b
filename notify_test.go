package include

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// TestCollector - In-memory notifier
// ---------------------------------------------------------------------------

func TestCollector(t *testing.T) {
	t.Parallel()

	var c Collector
	c.Notify(KindError, "first")
	c.Notify(KindWarn, "second")
	c.Notify(KindError, "third")

	got := c.Notifications()
	if len(got) != 3 {
		t.Fatalf("Notifications() len = %d, want 3", len(got))
	}
	if got[0].Message != "first" || got[2].Message != "third" {
		t.Errorf("Notifications() = %+v, want arrival order", got)
	}
	if c.Count(KindError) != 2 || c.Count(KindWarn) != 1 {
		t.Errorf("Count(error) = %d, Count(warn) = %d, want 2 and 1", c.Count(KindError), c.Count(KindWarn))
	}

	// The returned slice is a copy.
	got[0].Message = "changed"
	if c.Notifications()[0].Message != "first" {
		t.Error("Notifications() exposed internal state")
	}
}

func TestCollector_Concurrent(t *testing.T) {
	t.Parallel()

	var c Collector
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Notify(KindError, "x")
		}()
	}
	wg.Wait()

	if got := c.Count(KindError); got != 50 {
		t.Errorf("Count() = %d, want 50", got)
	}
}

// ---------------------------------------------------------------------------
// TestLogNotifier - Logger-backed notifier
// ---------------------------------------------------------------------------

func TestLogNotifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind      Kind
		wantLevel string
	}{
		{KindError, "level=ERROR"},
		{KindWarn, "level=WARN"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			n := LogNotifier{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
			n.Notify(tt.kind, "include failed")

			out := buf.String()
			if !strings.Contains(out, tt.wantLevel) {
				t.Errorf("log = %q, want %s", out, tt.wantLevel)
			}
			if !strings.Contains(out, "include failed") || !strings.Contains(out, "kind="+string(tt.kind)) {
				t.Errorf("log = %q, want message and kind", out)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMultiNotifier - Fan-out through repeated WithNotifier
// ---------------------------------------------------------------------------

func TestWithNotifier_FanOut(t *testing.T) {
	t.Parallel()

	var a, b Collector
	var calls int
	p := newTestPipeline(t,
		WithNotifier(&a),
		WithNotifier(nil),
		WithNotifier(&b),
		WithNotifier(NotifierFunc(func(Kind, string) { calls++ })),
	)

	p.notifier.Notify(KindWarn, "hello")

	if a.Count(KindWarn) != 1 || b.Count(KindWarn) != 1 || calls != 1 {
		t.Errorf("fan-out reached a=%d b=%d func=%d, want 1 each", a.Count(KindWarn), b.Count(KindWarn), calls)
	}
}
