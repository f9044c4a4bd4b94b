package gemini

import (
	"testing"
	"time"
)

func TestStats_SnapshotPerOperation(t *testing.T) {
	s := NewStats(time.Hour)
	for _, ms := range []int64{100, 200, 300} {
		s.Record(OpGenerate, ms)
	}
	s.Record(OpEmbed, 50)

	snap := s.Snapshot()

	gen, ok := snap[OpGenerate]
	if !ok {
		t.Fatal("expected generate stats")
	}
	if gen.Count != 3 {
		t.Errorf("expected 3 generate samples, got %d", gen.Count)
	}
	if gen.MinMs != 100 || gen.MaxMs != 300 {
		t.Errorf("expected min 100 max 300, got %d/%d", gen.MinMs, gen.MaxMs)
	}
	if gen.AvgMs != 200 {
		t.Errorf("expected avg 200, got %f", gen.AvgMs)
	}
	if gen.P50Ms != 200 {
		t.Errorf("expected p50 200, got %f", gen.P50Ms)
	}

	emb, ok := snap[OpEmbed]
	if !ok {
		t.Fatal("expected embed stats")
	}
	if emb.Count != 1 || emb.MinMs != 50 {
		t.Errorf("unexpected embed stats: %+v", emb)
	}
}

func TestStats_NegativeClampedToZero(t *testing.T) {
	s := NewStats(time.Hour)
	s.Record(OpGenerate, -10)
	snap := s.Snapshot()
	if snap[OpGenerate].MinMs != 0 {
		t.Errorf("expected negative duration clamped to 0, got %d", snap[OpGenerate].MinMs)
	}
}

func TestStats_EmptySnapshot(t *testing.T) {
	s := NewStats(time.Hour)
	if len(s.Snapshot()) != 0 {
		t.Error("expected empty snapshot with no samples")
	}
}

func TestGenerationError_Retryable(t *testing.T) {
	cases := []struct {
		status    int
		retryable bool
	}{
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{404, false},
		{0, false},
	}
	for _, tc := range cases {
		err := &GenerationError{StatusCode: tc.status, Message: "x"}
		if err.Retryable() != tc.retryable {
			t.Errorf("status %d: expected retryable=%v", tc.status, tc.retryable)
		}
	}
}
