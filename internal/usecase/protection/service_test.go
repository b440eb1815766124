package protection

import (
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/clipsmith-dev/clip-analyzer/errors"
	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
	"github.com/clipsmith-dev/clip-analyzer/pkg/config"
)

func newTestService() Service {
	cfg := &config.ProtectionConfig{EmotionThreshold: 0.8}
	keywords := config.KeywordTables{
		CriticalTags: []string{"climax", "turning_point", "finale", "key_scene"},
		BoundaryTags: []string{"introduction", "climax", "resolution"},
	}
	return NewService(cfg, keywords, zap.NewNop())
}

func testSegment(t *testing.T, start, end float64, text string) *entities.Segment {
	t.Helper()
	s, err := entities.NewSegment(entities.TimeCodeFromSeconds(start), entities.TimeCodeFromSeconds(end), text)
	if err != nil {
		t.Fatalf("segment construction failed: %v", err)
	}
	return s
}

func TestMarkProtected_CriticalTag(t *testing.T) {
	svc := newTestService()
	seg := testSegment(t, 0, 5, "the big reveal")
	seg.Tags = []string{"climax"}

	svc.MarkProtected([]*entities.Segment{seg})

	info, ok := seg.Protection()
	if !ok || !info.Protected {
		t.Fatal("critical-tagged segment must be protected")
	}
	if info.Level != entities.ProtectionLevelCritical {
		t.Fatalf("expected CRITICAL level, got %s", info.Level)
	}
	for _, strategy := range []entities.ProtectionStrategy{
		entities.StrategyLock, entities.StrategyNoCompression, entities.StrategyChecksum,
	} {
		if !info.HasStrategy(strategy) {
			t.Fatalf("missing strategy %s", strategy)
		}
	}
	if seg.Compressible {
		t.Fatal("NO_COMPRESSION must clear the compressible flag")
	}
	if info.Checksum == "" {
		t.Fatal("CHECKSUM strategy must record a digest")
	}
}

func TestMarkProtected_HighEmotion(t *testing.T) {
	svc := newTestService()
	seg := testSegment(t, 0, 5, "emotional peak")
	if _, err := seg.WithEmotion(-0.85); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.MarkProtected([]*entities.Segment{seg})

	info, ok := seg.Protection()
	if !ok || info.Level != entities.ProtectionLevelHigh {
		t.Fatal("high-magnitude emotion must yield HIGH protection")
	}
	if !info.HasStrategy(entities.StrategyNoDeletion) {
		t.Fatal("expected NO_DELETION strategy")
	}
}

func TestMarkProtected_MultipleRulesUnion(t *testing.T) {
	svc := newTestService()
	seg := testSegment(t, 0, 5, "climactic scene")
	seg.Tags = []string{"climax"} // critical and boundary rule both match
	if _, err := seg.WithEmotion(0.95); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.MarkProtected([]*entities.Segment{seg})

	info, _ := seg.Protection()
	if info.Level != entities.ProtectionLevelCritical {
		t.Fatalf("multiple rules must take the maximum level, got %s", info.Level)
	}
	if len(info.Rules) != 3 {
		t.Fatalf("expected all three rules recorded, got %v", info.Rules)
	}
	if !info.HasStrategy(entities.StrategyNoTrim) || !info.HasStrategy(entities.StrategyNoDeletion) {
		t.Fatal("strategies must be the union across matching rules")
	}
}

func TestMarkProtected_UnmatchedSegmentLeftAlone(t *testing.T) {
	svc := newTestService()
	seg := testSegment(t, 0, 5, "filler")

	svc.MarkProtected([]*entities.Segment{seg})

	if _, ok := seg.Protection(); ok {
		t.Fatal("unmatched segment must carry no protection annotation")
	}
	if !seg.Compressible {
		t.Fatal("unmatched segment must stay compressible")
	}
}

func TestVerify_CleanSegments(t *testing.T) {
	svc := newTestService()
	seg := testSegment(t, 0, 5, "the big reveal")
	seg.Tags = []string{"finale"}
	svc.MarkProtected([]*entities.Segment{seg})

	_, mismatches := svc.Verify([]*entities.Segment{seg})
	if len(mismatches) != 0 {
		t.Fatalf("unmodified segment must verify clean, got %v", mismatches)
	}
}

func TestVerify_TamperDetected(t *testing.T) {
	svc := newTestService()
	seg := testSegment(t, 0, 5, "the big reveal")
	seg.Tags = []string{"finale"}
	svc.MarkProtected([]*entities.Segment{seg})

	seg.Text = "tampered"
	seg.Compressible = true

	_, mismatches := svc.Verify([]*entities.Segment{seg})
	if len(mismatches) != 1 {
		t.Fatalf("expected one mismatch, got %d", len(mismatches))
	}
	if mismatches[0].Code != apperrors.ErrorCode_CHECKSUM_MISMATCH {
		t.Fatalf("unexpected code %s", mismatches[0].Code)
	}
	if mismatches[0].Details["stored_checksum"] == mismatches[0].Details["computed_checksum"] {
		t.Fatal("mismatch must carry both digests")
	}

	// LOCK restores the flags, not the content.
	if seg.Compressible {
		t.Fatal("locked segment must have compressible restored to false")
	}
	if seg.Text != "tampered" {
		t.Fatal("content must be left as found")
	}
}

func TestRegisterRule_CustomRuleApplies(t *testing.T) {
	svc := newTestService()
	svc.RegisterRule(Rule{
		Name:       "named_character",
		Predicate:  func(s *entities.Segment) bool { return len(s.Characters) > 0 },
		Level:      entities.ProtectionLevelLow,
		Strategies: []entities.ProtectionStrategy{entities.StrategyWatermark},
	})

	seg := testSegment(t, 0, 5, "hero speaks")
	seg.Characters = []string{"hero"}
	svc.MarkProtected([]*entities.Segment{seg})

	info, ok := seg.Protection()
	if !ok || !info.HasStrategy(entities.StrategyWatermark) {
		t.Fatal("custom rule must apply after the defaults")
	}
}

func TestMarkProtected_PanickingRuleContained(t *testing.T) {
	svc := newTestService()
	svc.RegisterRule(Rule{
		Name: "broken",
		Predicate: func(s *entities.Segment) bool {
			if s.Text == "first" {
				panic("boom")
			}
			return false
		},
		Level: entities.ProtectionLevelLow,
	})

	bad := testSegment(t, 0, 5, "first")
	bad.Tags = []string{"climax"}
	good := testSegment(t, 5, 10, "second")
	good.Tags = []string{"climax"}

	svc.MarkProtected([]*entities.Segment{bad, good})

	if _, ok := bad.Protection(); ok {
		t.Fatal("segment hit by a panicking rule must be left unprotected")
	}
	if info, ok := good.Protection(); !ok || info.Level != entities.ProtectionLevelCritical {
		t.Fatal("remaining segments must still be analyzed")
	}
}

func TestStats_Counts(t *testing.T) {
	svc := newTestService()
	critical := testSegment(t, 0, 5, "peak")
	critical.Tags = []string{"climax"}
	plain := testSegment(t, 5, 10, "filler")

	segments := svc.MarkProtected([]*entities.Segment{critical, plain})
	stats := svc.Stats(segments)

	if stats.TotalSegments != 2 || stats.ProtectedSegments != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.ByLevel[entities.ProtectionLevelCritical.String()] != 1 {
		t.Fatalf("unexpected level counts %v", stats.ByLevel)
	}
	if stats.ByStrategy[string(entities.StrategyChecksum)] != 1 {
		t.Fatalf("unexpected strategy counts %v", stats.ByStrategy)
	}
}

func TestComputeChecksum_CanonicalAndContentSensitive(t *testing.T) {
	a := testSegment(t, 0, 5, "same")
	b := testSegment(t, 0, 5, "same")
	if computeChecksum(a) != computeChecksum(b) {
		t.Fatal("identical content must digest identically")
	}

	b.Text = "changed"
	if computeChecksum(a) == computeChecksum(b) {
		t.Fatal("text change must change the digest")
	}

	c := testSegment(t, 0, 6, "same")
	if computeChecksum(a) == computeChecksum(c) {
		t.Fatal("time change must change the digest")
	}
}
