package balance

import (
	"math"
	"strings"

	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
)

// coherenceScore averages the pairwise connection of adjacent segments and
// penalizes very short edits. A single segment is coherent by definition.
func (s *balanceService) coherenceScore(segments []*entities.Segment, language string) float64 {
	if len(segments) < 2 {
		return 1.0
	}

	sum := 0.0
	for i := 0; i < len(segments)-1; i++ {
		semantic := s.semanticConnection(segments[i].Text, segments[i+1].Text, language)
		continuity := timeContinuity(segments[i], segments[i+1])
		sum += semantic*s.cfg.SemanticWeight + continuity*s.cfg.TimeWeight
	}
	avg := sum / float64(len(segments)-1)

	// Edits under a minute are inherently less coherent.
	penalty := math.Min(entities.TotalDuration(segments)/60.0, 1.0)
	return avg * penalty
}

// semanticConnection is lexical-overlap ratio plus a bonus when the later
// segment opens with a known connective term.
func (s *balanceService) semanticConnection(text1, text2, language string) float64 {
	words1 := wordSet(text1)
	words2 := wordSet(text2)
	if len(words1) == 0 || len(words2) == 0 {
		return 0.0
	}

	overlap := 0
	unique := len(words2)
	for w := range words1 {
		if _, ok := words2[w]; ok {
			overlap++
		} else {
			unique++
		}
	}

	score := float64(overlap) / float64(unique)
	if s.hasConnector(text2, language) {
		score += s.cfg.ConnectorBonus
	}
	return math.Min(1.0, score)
}

// timeContinuity decays stepwise with the gap between adjacent segments.
func timeContinuity(prev, next *entities.Segment) float64 {
	gap := math.Abs(next.Start.Seconds() - prev.End.Seconds())
	switch {
	case gap <= 1.0:
		return 1.0
	case gap <= 5.0:
		return 0.8
	case gap <= 10.0:
		return 0.6
	default:
		return 0.3
	}
}

// shareabilityScore combines a duration factor, a hook-keyword factor and a
// rhythm factor.
func (s *balanceService) shareabilityScore(segments []*entities.Segment, duration float64, language string) float64 {
	var durationFactor float64
	switch {
	case duration >= 60 && duration <= 120:
		durationFactor = 1.0
	case (duration >= 30 && duration < 60) || (duration > 120 && duration <= 180):
		durationFactor = 0.8
	case duration < 30:
		durationFactor = 0.4
	default:
		durationFactor = 0.6
	}

	var all strings.Builder
	for _, segment := range segments {
		all.WriteString(segment.Text)
		all.WriteString(" ")
	}
	joined := strings.ToLower(all.String())

	keywordFactor := 0.0
	for _, keyword := range s.keywords.Hooks(language) {
		if strings.Contains(joined, keyword) {
			keywordFactor += 0.15
		}
	}
	keywordFactor = math.Min(keywordFactor, 1.0)

	rhythmFactor := rhythmChangeFactor(segments)

	return durationFactor*s.cfg.ShareDurationW +
		keywordFactor*s.cfg.ShareKeywordW +
		rhythmFactor*s.cfg.ShareRhythmW
}

// rhythmChangeFactor rates the pattern of duration changes between
// consecutive segments. Too few segments cannot carry rhythm.
func rhythmChangeFactor(segments []*entities.Segment) float64 {
	durations := usableDurations(segments)
	if len(durations) < 3 {
		return 0.5
	}

	totalChange := 0.0
	for i := 0; i < len(durations)-1; i++ {
		totalChange += math.Abs(durations[i+1] - durations[i])
	}
	avgChange := totalChange / float64(len(durations)-1)
	avgDuration := mean(durations)

	switch {
	case avgChange >= avgDuration*0.2 && avgChange <= avgDuration*0.5:
		return 1.0
	case avgChange < avgDuration*0.2:
		return 0.7
	default:
		return 0.6
	}
}

// rhythmScore compares the standard deviation of segment durations against
// an ideal of RhythmIdealRatio times the mean, decaying linearly with the
// deviation from that target.
func (s *balanceService) rhythmScore(segments []*entities.Segment) float64 {
	durations := usableDurations(segments)
	if len(durations) == 0 {
		return 0.0
	}

	avg := mean(durations)
	variance := 0.0
	for _, d := range durations {
		variance += (d - avg) * (d - avg)
	}
	std := math.Sqrt(variance / float64(len(durations)))

	ideal := avg * s.cfg.RhythmIdealRatio
	score := 1.0 - math.Abs(std-ideal)/math.Max(ideal, 0.1)
	return clamp01(score)
}

// lengthScore rates the rewritten/original duration ratio: full credit in
// the target band, partial at the margins, penalties outside.
func (s *balanceService) lengthScore(ratio float64) float64 {
	low, high := s.cfg.TargetRatioLow, s.cfg.TargetRatioHigh
	switch {
	case ratio >= low && ratio <= high:
		return 1.0
	case (ratio >= low-0.1 && ratio < low) || (ratio > high && ratio <= high+0.1):
		return 0.8
	case ratio < low-0.1:
		return 0.4
	default:
		return 0.6
	}
}

// combinedQuality folds the four axes into one score.
func (s *balanceService) combinedQuality(coherence, lengthRatio, shareability, rhythm float64) float64 {
	quality := coherence*s.cfg.CoherenceWeight +
		s.lengthScore(lengthRatio)*s.cfg.LengthWeight +
		shareability*s.cfg.ShareWeight +
		rhythm*s.cfg.RhythmWeight
	return clamp01(quality)
}

// segmentImportance ranks a segment for the compression pass: position in
// the sequence, keyword density, and whether its duration sits in the ideal
// band.
func (s *balanceService) segmentImportance(segment *entities.Segment, index, total int, language string) float64 {
	var positionScore float64
	switch {
	case index == 0 || index == total-1:
		positionScore = 1.0
	case float64(index) < float64(total)*0.3 || float64(index) > float64(total)*0.7:
		positionScore = 0.8
	default:
		positionScore = 0.6
	}

	text := strings.ToLower(segment.Text)
	keywordScore := 0.0
	for _, keyword := range s.keywords.Importance(language) {
		if strings.Contains(text, keyword) {
			keywordScore += 0.1
		}
	}
	keywordScore = math.Min(1.0, keywordScore)

	var lengthScore float64
	duration := segment.Duration()
	switch {
	case duration >= 2.0 && duration <= 8.0:
		lengthScore = 1.0
	case duration < 1.0 || duration > 15.0:
		lengthScore = 0.3
	default:
		lengthScore = 0.7
	}

	return positionScore*0.4 + keywordScore*0.4 + lengthScore*0.2
}

func (s *balanceService) hasConnector(text, language string) bool {
	lower := strings.ToLower(text)
	for _, conn := range s.keywords.Connectors(language) {
		if strings.Contains(lower, conn) {
			return true
		}
	}
	return false
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

func usableDurations(segments []*entities.Segment) []float64 {
	durations := make([]float64, 0, len(segments))
	for _, segment := range segments {
		if d := segment.Duration(); d > 0 {
			durations = append(durations, d)
		}
	}
	return durations
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
