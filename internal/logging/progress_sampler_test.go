package logging

import "testing"

func TestProgressSamplerEmitsOnPercentChange(t *testing.T) {
	s := NewProgressSampler(1)
	total := 1000

	emitted := 0
	for i := 1; i <= total; i++ {
		if s.ShouldEmit(i, total) {
			emitted++
		}
	}
	// One emission per integer percent bucket.
	if emitted != 100 {
		t.Fatalf("expected 100 emissions for 1000 frames, got %d", emitted)
	}
}

func TestProgressSamplerAlwaysEmitsFinalFrame(t *testing.T) {
	s := NewProgressSampler(1)
	if !s.ShouldEmit(3, 3) {
		t.Fatal("final frame must emit")
	}
	// A second report at 100% is still the final frame.
	if !s.ShouldEmit(3, 3) {
		t.Fatal("final frame must emit even when repeated")
	}
}

func TestProgressSamplerSmallTotals(t *testing.T) {
	s := NewProgressSampler(1)
	for i := 1; i <= 3; i++ {
		if !s.ShouldEmit(i, 3) {
			t.Fatalf("frame %d of 3 crosses a percent boundary and must emit", i)
		}
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(1)
	if !s.ShouldEmit(50, 100) {
		t.Fatal("expected first report to emit")
	}
	if s.ShouldEmit(50, 100) {
		t.Fatal("repeat report in same bucket must not emit")
	}
	s.Reset()
	if !s.ShouldEmit(50, 100) {
		t.Fatal("expected report after reset to emit")
	}
}

func TestProgressSamplerUnknownTotal(t *testing.T) {
	s := NewProgressSampler(1)
	if !s.ShouldEmit(1, 0) {
		t.Fatal("unknown totals bypass sampling")
	}
}
