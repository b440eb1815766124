package balance

import "github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"

// qualityAssessment renders a per-axis verdict from the metrics.
func (s *balanceService) qualityAssessment(metrics entities.BalanceMetrics) map[string]string {
	assessment := make(map[string]string, 4)

	switch {
	case metrics.Coherence >= 0.8:
		assessment["coherence"] = "excellent"
	case metrics.Coherence >= 0.6:
		assessment["coherence"] = "good"
	case metrics.Coherence >= 0.4:
		assessment["coherence"] = "fair"
	default:
		assessment["coherence"] = "needs improvement"
	}

	low, high := s.cfg.TargetRatioLow, s.cfg.TargetRatioHigh
	switch {
	case metrics.LengthRatio >= low && metrics.LengthRatio <= high:
		assessment["length"] = "ideal"
	case (metrics.LengthRatio >= low-0.1 && metrics.LengthRatio < low) ||
		(metrics.LengthRatio > high && metrics.LengthRatio <= high+0.1):
		assessment["length"] = "acceptable"
	default:
		assessment["length"] = "needs adjustment"
	}

	switch {
	case metrics.Shareability >= 0.7:
		assessment["shareability"] = "high"
	case metrics.Shareability >= 0.5:
		assessment["shareability"] = "medium"
	default:
		assessment["shareability"] = "low"
	}

	switch {
	case metrics.Quality >= 0.8:
		assessment["overall"] = "excellent, ready to publish"
	case metrics.Quality >= 0.6:
		assessment["overall"] = "good, minor tuning recommended"
	case metrics.Quality >= 0.4:
		assessment["overall"] = "fair, optimization needed"
	default:
		assessment["overall"] = "poor, consider regenerating the edit"
	}

	return assessment
}

// optimizationSuggestions lists what the scoring step found wanting. The
// list is deterministic for a given metrics/category pair.
func (s *balanceService) optimizationSuggestions(category entities.LengthCategory, metrics entities.BalanceMetrics) []string {
	suggestions := make([]string, 0)

	switch category {
	case entities.LengthTooShort:
		suggestions = append(suggestions,
			"edit is too short, add key narrative segments to improve continuity",
			"consider adding background or character-introduction segments")
	case entities.LengthTooLong:
		suggestions = append(suggestions,
			"edit is too long, remove secondary segments to sharpen the core narrative",
			"consider a faster cutting rhythm to trim redundant content")
	}

	if metrics.Coherence < s.cfg.MinCoherence {
		suggestions = append(suggestions,
			"narrative coherence is low, add transition segments",
			"check the logical connection between adjacent segments")
	}
	if metrics.Shareability < 0.5 {
		suggestions = append(suggestions,
			"shareability potential is low, strengthen the opening hook",
			"consider adding suspense or reversal elements")
	}
	if metrics.Rhythm < 0.5 {
		suggestions = append(suggestions,
			"pacing needs work, rebalance segment durations",
			"consider shorter segments around the climax for tension")
	}
	if metrics.LengthRatio < s.cfg.TargetRatioLow {
		suggestions = append(suggestions,
			"edit is very short relative to the original, key plot information may be lost")
	} else if metrics.LengthRatio > s.cfg.TargetRatioHigh {
		suggestions = append(suggestions,
			"edit is long relative to the original, trim further")
	}

	return suggestions
}

// recommendations derives the caller-facing guidance from the final metrics
// and length classification.
func (s *balanceService) recommendations(metrics entities.BalanceMetrics, category entities.LengthCategory) []string {
	recs := make([]string, 0)

	switch {
	case metrics.Quality >= 0.8:
		recs = append(recs, "quality is excellent, the edit can be published as is")
	case metrics.Quality >= 0.6:
		recs = append(recs, "quality is good, publish after minor tuning")
	default:
		recs = append(recs, "quality needs improvement, re-optimize before publishing")
	}

	switch category {
	case entities.LengthTooShort:
		recs = append(recs, "add two or three key segments to restore completeness")
	case entities.LengthTooLong:
		recs = append(recs, "drop secondary segments and keep the core narrative")
	case entities.LengthOptimalShort:
		recs = append(recs, "duration is ideal for short-form platforms")
	}

	if metrics.Coherence < s.cfg.MinCoherence {
		recs = append(recs, "add transition segments or connective phrases to improve coherence")
	}
	if metrics.Shareability < 0.5 {
		recs = append(recs, "strengthen the opening, add suspense or a reversal")
	}
	if metrics.Rhythm < 0.5 {
		recs = append(recs, "adjust the segment duration distribution for better pacing")
	}

	return recs
}
