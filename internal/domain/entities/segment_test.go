package entities

import (
	"testing"
)

func mustSegment(t *testing.T, start, end float64, text string) *Segment {
	t.Helper()
	s, err := NewSegment(TimeCodeFromSeconds(start), TimeCodeFromSeconds(end), text)
	if err != nil {
		t.Fatalf("segment construction failed: %v", err)
	}
	return s
}

func TestNewSegment_RejectsReversedRange(t *testing.T) {
	_, err := NewSegment(TimeCodeFromSeconds(5), TimeCodeFromSeconds(2), "x")
	if err == nil {
		t.Fatal("expected error for end before start")
	}
}

func TestNewSegment_Defaults(t *testing.T) {
	s := mustSegment(t, 0, 2, "hello")
	if !s.Compressible {
		t.Fatal("segments default to compressible")
	}
	if s.Duration() != 2 {
		t.Fatalf("expected duration 2 got %v", s.Duration())
	}
}

func TestSegment_WithEmotionRange(t *testing.T) {
	s := mustSegment(t, 0, 2, "x")
	if _, err := s.WithEmotion(1.5); err == nil {
		t.Fatal("expected error for out-of-range emotion")
	}
	if _, err := s.WithEmotion(-0.9); err != nil {
		t.Fatalf("valid emotion rejected: %v", err)
	}
	if s.EmotionIntensity == nil || *s.EmotionIntensity != -0.9 {
		t.Fatal("emotion not stored")
	}
}

func TestSegment_Identity(t *testing.T) {
	a := mustSegment(t, 0, 2, "same")
	b := mustSegment(t, 0, 2, "same")
	if a.Identity() != b.Identity() {
		t.Fatal("identical segments must share identity")
	}

	c := mustSegment(t, 0, 2, "different")
	if a.Identity() == c.Identity() {
		t.Fatal("different text must change identity")
	}

	a.ID = "explicit"
	if a.Identity() != "explicit" {
		t.Fatal("explicit id must win")
	}
}

func TestSegment_CloneIsDeep(t *testing.T) {
	s := mustSegment(t, 0, 2, "x")
	s.Tags = []string{"climax"}
	s.SetProtection(&ProtectionInfo{
		Level:      ProtectionLevelHigh,
		Strategies: []ProtectionStrategy{StrategyNoDeletion},
		Protected:  true,
	})

	clone := s.Clone()
	clone.Tags[0] = "mutated"
	info, ok := clone.Protection()
	if !ok {
		t.Fatal("clone lost protection annotation")
	}
	info.Level = ProtectionLevelNone

	if s.Tags[0] != "climax" {
		t.Fatal("clone shares tag storage with original")
	}
	orig, _ := s.Protection()
	if orig.Level != ProtectionLevelHigh {
		t.Fatal("clone shares protection annotation with original")
	}
}

func TestTotalDuration_SkipsDegenerate(t *testing.T) {
	segments := []*Segment{
		mustSegment(t, 0, 2, "a"),
		mustSegment(t, 2, 2, "zero width"),
		mustSegment(t, 2, 5, "b"),
	}
	if got := TotalDuration(segments); got != 5 {
		t.Fatalf("expected 5 got %v", got)
	}
}
