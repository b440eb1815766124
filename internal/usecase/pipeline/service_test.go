package pipeline

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/alignment"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/balance"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/protection"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/syncheck"
	"github.com/clipsmith-dev/clip-analyzer/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Language: "en",
		Alignment: config.AlignmentConfig{
			EmotionRatio:   1.5,
			DurationRatio:  1.35,
			ConflictRatio:  2.0,
			FrequencyRatio: 1.5,
			SupportRatio:   1.8,
			MaxPatterns:    50,
		},
		Protection: config.ProtectionConfig{EmotionThreshold: 0.8},
		Sync: config.SyncConfig{
			Precision:           0.1,
			MaxGap:              10.0,
			MinSegmentDuration:  0.5,
			MaxSegmentDuration:  10.0,
			WindowSeconds:       0.5,
			QuietEnergy:         0.01,
			ActiveEnergy:        0.03,
			EnergyRatio:         3.0,
			TinyGap:             0.1,
			ConfidenceEnergy:    0.8,
			ConfidenceTinyGap:   0.9,
			ConfidencePrecision: 0.7,
		},
		Balance: config.BalanceConfig{
			MinCoherence:     0.6,
			TargetRatioLow:   0.3,
			TargetRatioHigh:  0.7,
			SemanticWeight:   0.7,
			TimeWeight:       0.3,
			ConnectorBonus:   0.3,
			CoherenceWeight:  0.35,
			LengthWeight:     0.25,
			ShareWeight:      0.25,
			RhythmWeight:     0.15,
			ShareDurationW:   0.4,
			ShareKeywordW:    0.4,
			ShareRhythmW:     0.2,
			RhythmIdealRatio: 0.3,
			ExtendRatio:      0.2,
			ExtendCapSec:     2.0,
			CompressKeep:     0.7,
		},
		Pipeline: config.PipelineConfig{Workers: 4},
		Keywords: config.KeywordTables{
			HookKeywords:       map[string][]string{"en": {"shocking"}},
			Connectives:        map[string][]string{"en": {"then", "next", "so"}},
			ImportanceKeywords: map[string][]string{"en": {"key"}},
			CriticalTags:       []string{"climax"},
			BoundaryTags:       []string{"introduction", "resolution"},
		},
	}
}

func newTestService() Service {
	cfg := testConfig()
	logger := zap.NewNop()
	return NewService(
		cfg,
		alignment.NewService(&cfg.Alignment, logger),
		protection.NewService(&cfg.Protection, cfg.Keywords, logger),
		syncheck.NewService(&cfg.Sync, logger),
		balance.NewService(&cfg.Balance, cfg.Keywords, logger),
		logger,
	)
}

func seg(t *testing.T, id string, start, end float64, text string) *entities.Segment {
	t.Helper()
	s, err := entities.NewSegment(entities.TimeCodeFromSeconds(start), entities.TimeCodeFromSeconds(end), text)
	if err != nil {
		t.Fatalf("segment construction failed: %v", err)
	}
	s.ID = id
	return s
}

func TestRun_FullPipeline(t *testing.T) {
	svc := newTestService()

	input := Input{
		OriginalSegments: []*entities.Segment{
			seg(t, "o1", 0, 60, "the full original story"),
			seg(t, "o2", 60, 120, "continues at length"),
		},
		RewrittenSegments: []*entities.Segment{
			seg(t, "r1", 0, 20, "shocking opening"),
			seg(t, "r2", 20, 40, "then the middle"),
			seg(t, "r3", 40, 60, "so it ends"),
		},
		OriginalPatterns: []entities.Pattern{
			{Kind: entities.PatternKindSequence, Elements: []string{"old"}, Support: 0.5},
		},
		RewrittenPatterns: []entities.Pattern{
			{Kind: entities.PatternKindSequence, Elements: []string{"new"}, Support: 0.7},
		},
		Language: "en",
	}
	input.RewrittenSegments[0].Tags = []string{"climax"}

	result, err := svc.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.RunID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("run must be assigned an id")
	}
	if result.Alignment == nil || len(result.Alignment.Added) != 1 || len(result.Alignment.Removed) != 1 {
		t.Fatalf("alignment stage did not run: %+v", result.Alignment)
	}
	if result.Protection.ProtectedSegments != 1 {
		t.Fatalf("protection stage did not mark the tagged segment: %+v", result.Protection)
	}
	if len(result.ChecksumMismatches) != 0 {
		t.Fatalf("untampered run must verify clean: %v", result.ChecksumMismatches)
	}
	if result.Consistency.TotalSegments != 3 || len(result.Consistency.Violations) != 0 {
		t.Fatalf("unexpected consistency report %+v", result.Consistency)
	}
	if result.Sync != nil {
		t.Fatal("sync report must be nil without audio")
	}
	if result.Balance.Metrics.LengthRatio != 0.5 {
		t.Fatalf("balance stage did not run: %+v", result.Balance.Metrics)
	}
}

func TestRun_CallerSegmentsUntouched(t *testing.T) {
	svc := newTestService()

	rewritten := []*entities.Segment{
		seg(t, "r1", 0, 20, "shocking opening"),
		seg(t, "r2", 20, 40, "middle part"),
	}
	rewritten[0].Tags = []string{"climax"}

	_, err := svc.Run(context.Background(), Input{RewrittenSegments: rewritten})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := rewritten[0].Protection(); ok {
		t.Fatal("protection marks must land on the working copy, not the input")
	}
	if !rewritten[0].Compressible {
		t.Fatal("input compressible flag must be untouched")
	}
}

func TestRun_WithAudio(t *testing.T) {
	svc := newTestService()

	samples := make([]float64, 400)
	input := Input{
		RewrittenSegments: []*entities.Segment{seg(t, "r1", 0.5, 2.5, "line")},
		AudioSamples:      samples,
		SampleRate:        100,
	}

	result, err := svc.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Sync == nil || result.Sync.SampleRate != 100 {
		t.Fatal("sync stage must run when audio is supplied")
	}
}

func TestRun_RejectsEmptyInput(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Run(context.Background(), Input{}); err == nil {
		t.Fatal("empty rewritten sequence must be rejected")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	svc := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, Input{
		RewrittenSegments: []*entities.Segment{seg(t, "r1", 0, 20, "line")},
	})
	if err == nil {
		t.Fatal("cancelled context must fail the run")
	}
}
