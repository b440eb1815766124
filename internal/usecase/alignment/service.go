package alignment

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
	"github.com/clipsmith-dev/clip-analyzer/pkg/config"
)

// Service diffs two ordered pattern collections and classifies each pattern
// as added, removed or intensified.
type Service interface {
	Align(original, rewritten []entities.Pattern) entities.AlignmentResult
}

type alignmentService struct {
	cfg    *config.AlignmentConfig
	logger *zap.Logger
}

// NewService constructs a pattern alignment service
func NewService(cfg *config.AlignmentConfig, logger *zap.Logger) Service {
	return &alignmentService{cfg: cfg, logger: logger}
}

// Align is read-only and side-effect-free. Malformed patterns never abort
// the diff; fields missing on either side are simply absent from the
// intensification comparison.
func (s *alignmentService) Align(original, rewritten []entities.Pattern) entities.AlignmentResult {
	origByKey := indexByKey(original)
	rewByKey := indexByKey(rewritten)

	result := entities.AlignmentResult{
		Added:    make([]entities.PatternChange, 0),
		Removed:  make([]entities.PatternChange, 0),
		Enhanced: make([]entities.EnhancedPattern, 0),
	}

	for key, p := range rewByKey {
		orig, both := origByKey[key]
		if !both {
			result.Added = append(result.Added, entities.PatternChange{
				Pattern: p,
				Impact:  p.Support * p.ConfidenceOrDefault(),
			})
			continue
		}
		if enhanced, ok := s.checkEnhancement(orig, p); ok {
			result.Enhanced = append(result.Enhanced, enhanced)
		}
	}

	for key, p := range origByKey {
		if _, both := rewByKey[key]; !both {
			result.Removed = append(result.Removed, entities.PatternChange{
				Pattern: p,
				Impact:  p.Support * p.ConfidenceOrDefault(),
			})
		}
	}

	sortChanges(result.Added)
	sortChanges(result.Removed)
	sort.SliceStable(result.Enhanced, func(i, j int) bool {
		return result.Enhanced[i].Impact > result.Enhanced[j].Impact
	})

	result.Added = truncateChanges(result.Added, s.cfg.MaxPatterns)
	result.Removed = truncateChanges(result.Removed, s.cfg.MaxPatterns)
	if len(result.Enhanced) > s.cfg.MaxPatterns {
		result.Enhanced = result.Enhanced[:s.cfg.MaxPatterns]
	}

	s.logger.Debug("pattern alignment complete",
		zap.Int("added", len(result.Added)),
		zap.Int("removed", len(result.Removed)),
		zap.Int("enhanced", len(result.Enhanced)))

	return result
}

// ratioCheck compares one field across versions. The field participates
// only when present on both sides with a positive baseline.
type ratioCheck struct {
	name      string
	original  *float64
	rewritten *float64
	threshold float64
}

func (s *alignmentService) checkEnhancement(orig, rew entities.Pattern) (entities.EnhancedPattern, bool) {
	origDur, rewDur := orig.Duration, rew.Duration
	origFreq, rewFreq := orig.Frequency, rew.Frequency
	origSup, rewSup := orig.Support, rew.Support

	checks := []ratioCheck{
		{"emotion_intensity", absPtr(orig.EmotionIntensity), absPtr(rew.EmotionIntensity), s.cfg.EmotionRatio},
		{"duration", positive(origDur), positive(rewDur), s.cfg.DurationRatio},
		{"conflict_level", orig.ConflictLevel, rew.ConflictLevel, s.cfg.ConflictRatio},
		{"frequency", positive(origFreq), positive(rewFreq), s.cfg.FrequencyRatio},
		{"support", positive(origSup), positive(rewSup), s.cfg.SupportRatio},
	}

	var enhancements []entities.Enhancement
	maxRatio := 0.0
	for _, c := range checks {
		if c.original == nil || c.rewritten == nil || *c.original <= 0 {
			continue
		}
		ratio := *c.rewritten / *c.original
		if ratio > c.threshold {
			enhancements = append(enhancements, entities.Enhancement{
				Type:        c.name,
				Description: fmt.Sprintf("%s intensified %.2fx (threshold %.2fx)", c.name, ratio, c.threshold),
				Factor:      ratio,
			})
			if ratio > maxRatio {
				maxRatio = ratio
			}
		}
	}

	if len(enhancements) == 0 {
		return entities.EnhancedPattern{}, false
	}
	return entities.EnhancedPattern{
		Pattern:      rew,
		Original:     orig,
		Impact:       maxRatio,
		Enhancements: enhancements,
	}, true
}

// indexByKey keeps the first occurrence of each identity key, preserving
// disjointness of the added/removed sets.
func indexByKey(patterns []entities.Pattern) map[string]entities.Pattern {
	index := make(map[string]entities.Pattern, len(patterns))
	for _, p := range patterns {
		key := p.IdentityKey()
		if _, exists := index[key]; !exists {
			index[key] = p
		}
	}
	return index
}

func sortChanges(changes []entities.PatternChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Impact > changes[j].Impact
	})
}

func truncateChanges(changes []entities.PatternChange, max int) []entities.PatternChange {
	if len(changes) > max {
		return changes[:max]
	}
	return changes
}

func absPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	a := math.Abs(*v)
	return &a
}

func positive(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}
