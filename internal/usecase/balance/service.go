package balance

import (
	"go.uber.org/zap"

	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
	"github.com/clipsmith-dev/clip-analyzer/pkg/config"
)

// Service scores a rewritten segment sequence against its original and,
// when quality falls short, applies one bounded optimization pass before
// re-scoring. It is the only component allowed to mutate the working
// sequence, and it works on its own deep copy.
type Service interface {
	AnalyzeAndOptimize(original, rewritten []*entities.Segment, language string) entities.BalanceReport
}

type balanceService struct {
	cfg      *config.BalanceConfig
	keywords config.KeywordTables
	logger   *zap.Logger
}

// NewService constructs a narrative balance controller
func NewService(cfg *config.BalanceConfig, keywords config.KeywordTables, logger *zap.Logger) Service {
	return &balanceService{cfg: cfg, keywords: keywords, logger: logger}
}

// AnalyzeAndOptimize runs the Scoring → (Optimizing → Scoring) → Final state
// machine. Optimization happens at most once per call; the re-scored
// sequence is never re-optimized.
func (s *balanceService) AnalyzeAndOptimize(original, rewritten []*entities.Segment, language string) entities.BalanceReport {
	working := entities.CloneSegments(rewritten)

	originalDuration := entities.TotalDuration(original)
	rewrittenDuration := entities.TotalDuration(working)

	// Scoring.
	metrics, category := s.score(working, originalDuration, rewrittenDuration, language)

	// The pre-optimization metrics decide whether to optimize and what to
	// suggest; the reported metrics reflect the final sequence.
	suggestions := s.optimizationSuggestions(category, metrics)

	optimized, changed := s.autoOptimize(working, category, metrics.Coherence, language)
	finalMetrics := metrics
	if changed {
		finalMetrics, _ = s.score(optimized, originalDuration, entities.TotalDuration(optimized), language)
	}

	report := entities.BalanceReport{
		OriginalDuration:  originalDuration,
		RewrittenDuration: rewrittenDuration,
		OptimizedDuration: entities.TotalDuration(optimized),
		LengthCategory:    category,
		Metrics:           finalMetrics,
		Assessment:        s.qualityAssessment(finalMetrics),
		Suggestions:       suggestions,
		Recommendations:   s.recommendations(finalMetrics, category),
		OptimizedSegments: optimized,
		Optimized:         changed,
	}

	s.logger.Info("balance analysis complete",
		zap.Float64("original_duration", originalDuration),
		zap.Float64("rewritten_duration", rewrittenDuration),
		zap.String("length_category", string(category)),
		zap.Float64("quality", finalMetrics.Quality),
		zap.Bool("optimized", changed))

	return report
}

func (s *balanceService) score(segments []*entities.Segment, originalDuration, duration float64, language string) (entities.BalanceMetrics, entities.LengthCategory) {
	coherence := s.coherenceScore(segments, language)
	category := entities.ClassifyLength(duration)

	lengthRatio := 1.0
	if originalDuration > 0 {
		lengthRatio = duration / originalDuration
	}

	shareability := s.shareabilityScore(segments, duration, language)
	rhythm := s.rhythmScore(segments)

	metrics := entities.BalanceMetrics{
		Coherence:    coherence,
		LengthRatio:  lengthRatio,
		Shareability: shareability,
		Rhythm:       rhythm,
		Quality:      s.combinedQuality(coherence, lengthRatio, shareability, rhythm),
	}
	return metrics, category
}
