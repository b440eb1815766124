package balance

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
)

// autoOptimize applies at most one bounded optimization pass: extend when
// too short, compress when too long, patch connectives when incoherent.
// Returns the transformed sequence and whether anything changed.
func (s *balanceService) autoOptimize(segments []*entities.Segment, category entities.LengthCategory, coherence float64, language string) ([]*entities.Segment, bool) {
	acceptable := (category == entities.LengthOptimalShort || category == entities.LengthMedium) &&
		coherence >= s.cfg.MinCoherence
	if acceptable {
		return segments, false
	}

	optimized := segments
	changed := false

	switch category {
	case entities.LengthTooShort:
		optimized = s.extendSegments(optimized)
		changed = true
	case entities.LengthTooLong:
		optimized = s.compressSegments(optimized, language)
		changed = true
	}

	if coherence < s.cfg.MinCoherence {
		optimized = s.improveCoherence(optimized, language)
		changed = true
	}

	return optimized, changed
}

// extendSegments lengthens each segment's end by up to ExtendRatio of its
// duration, capped at ExtendCapSec.
func (s *balanceService) extendSegments(segments []*entities.Segment) []*entities.Segment {
	for _, segment := range segments {
		duration := segment.Duration()
		if duration <= 0 {
			continue
		}
		extension := math.Min(duration*s.cfg.ExtendRatio, s.cfg.ExtendCapSec)
		segment.End = segment.End.Add(extension)
	}
	s.logger.Debug("segments extended", zap.Int("count", len(segments)))
	return segments
}

// compressSegments drops the least important segments, keeping the top
// CompressKeep share re-sorted by start time. Segments protected against
// deletion are always kept, on top of the quota.
func (s *balanceService) compressSegments(segments []*entities.Segment, language string) []*entities.Segment {
	type scored struct {
		segment    *entities.Segment
		importance float64
	}

	var undeletable []*entities.Segment
	var candidates []scored
	for i, segment := range segments {
		if isDeletionProtected(segment) {
			undeletable = append(undeletable, segment)
			continue
		}
		candidates = append(candidates, scored{
			segment:    segment,
			importance: s.segmentImportance(segment, i, len(segments), language),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].importance > candidates[j].importance
	})

	keep := int(float64(len(segments)) * s.cfg.CompressKeep)
	if keep < 1 {
		keep = 1
	}
	keep -= len(undeletable)
	if keep < 0 {
		keep = 0
	}
	if keep > len(candidates) {
		keep = len(candidates)
	}

	kept := make([]*entities.Segment, 0, keep+len(undeletable))
	kept = append(kept, undeletable...)
	for _, c := range candidates[:keep] {
		kept = append(kept, c.segment)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start.Before(kept[j].Start)
	})

	s.logger.Debug("segments compressed",
		zap.Int("before", len(segments)),
		zap.Int("after", len(kept)),
		zap.Int("protected", len(undeletable)))

	return kept
}

// improveCoherence prepends a language-appropriate connective phrase to
// segments that do not open with one. The first segment is left alone.
func (s *balanceService) improveCoherence(segments []*entities.Segment, language string) []*entities.Segment {
	connectors := s.keywords.Connectors(language)
	if len(connectors) == 0 {
		return segments
	}

	for i, segment := range segments {
		if i == 0 || segment.Text == "" || s.hasConnector(segment.Text, language) {
			continue
		}
		connector := connectors[i%len(connectors)]
		if language == "zh" {
			segment.Text = fmt.Sprintf("%s，%s", connector, segment.Text)
		} else {
			segment.Text = fmt.Sprintf("%s, %s", connector, segment.Text)
		}
	}
	return segments
}

func isDeletionProtected(segment *entities.Segment) bool {
	info, ok := segment.Protection()
	if !ok || !info.Protected {
		return false
	}
	return info.HasStrategy(entities.StrategyNoDeletion) ||
		info.HasStrategy(entities.StrategyLock)
}
