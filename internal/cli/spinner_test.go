package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/occupancy/pkg/pipeline"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func animated(message string) (*Spinner, *syncBuffer) {
	var out syncBuffer
	s := newSpinner(message)
	s.out = &out
	s.animate = true
	return s, &out
}

func TestSpinnerAnimates(t *testing.T) {
	s, out := animated("Loading bookings...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.SetMessage("Packing rows...")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Loading bookings...") {
		t.Errorf("output %q lacks first message", got)
	}
	if !strings.Contains(got, "Packing rows...") {
		t.Errorf("output %q lacks updated message", got)
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(50 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s, _ := animated("Testing with timeout...")
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := animated("Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopBeforeStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		newSpinner("never started").Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop before Start blocked")
	}
}

func TestSpinnerNotATerminal(t *testing.T) {
	var out syncBuffer
	s := newSpinner("quiet")
	s.out = &out
	s.animate = false
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if out.String() != "" {
		t.Errorf("non-terminal spinner wrote %q", out.String())
	}
}

func TestSpinnerFollowStages(t *testing.T) {
	s := newSpinner("Starting...")
	defer s.Stop()

	s.followStages(pipeline.StageLayout)
	if s.message != "Packing rows..." {
		t.Errorf("message = %q after layout stage", s.message)
	}
	s.followStages(pipeline.Stage("unknown"))
	if s.message != "Packing rows..." {
		t.Errorf("unknown stage changed message to %q", s.message)
	}
}
