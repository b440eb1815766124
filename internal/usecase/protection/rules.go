package protection

import (
	"math"

	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
	"github.com/clipsmith-dev/clip-analyzer/pkg/config"
)

// Rule decides whether one segment deserves protection. Predicates are
// ordinary closures; all matching rules apply.
type Rule struct {
	Name       string
	Predicate  func(*entities.Segment) bool
	Level      entities.ProtectionLevel
	Strategies []entities.ProtectionStrategy
}

// defaultRules returns the built-in rule set in registration order.
func defaultRules(cfg *config.ProtectionConfig, keywords config.KeywordTables) []Rule {
	emotionThreshold := cfg.EmotionThreshold
	criticalTags := keywords.CriticalTags
	boundaryTags := keywords.BoundaryTags

	return []Rule{
		{
			Name: "high_emotion",
			Predicate: func(s *entities.Segment) bool {
				return s.EmotionIntensity != nil && math.Abs(*s.EmotionIntensity) >= emotionThreshold
			},
			Level: entities.ProtectionLevelHigh,
			Strategies: []entities.ProtectionStrategy{
				entities.StrategyNoCompression,
				entities.StrategyNoDeletion,
			},
		},
		{
			Name: "critical_tag",
			Predicate: func(s *entities.Segment) bool {
				return hasAnyTag(s, criticalTags)
			},
			Level: entities.ProtectionLevelCritical,
			Strategies: []entities.ProtectionStrategy{
				entities.StrategyLock,
				entities.StrategyNoCompression,
				entities.StrategyChecksum,
			},
		},
		{
			Name: "narrative_boundary",
			Predicate: func(s *entities.Segment) bool {
				return hasAnyTag(s, boundaryTags)
			},
			Level: entities.ProtectionLevelMedium,
			Strategies: []entities.ProtectionStrategy{
				entities.StrategyNoTrim,
			},
		},
	}
}

func hasAnyTag(s *entities.Segment, tags []string) bool {
	for _, tag := range tags {
		if s.HasTag(tag) {
			return true
		}
	}
	return false
}
