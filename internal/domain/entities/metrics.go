package entities

// LengthCategory classifies a rewritten edit's total duration.
type LengthCategory string

const (
	LengthTooShort     LengthCategory = "too_short"     // <30s, narrative falls apart
	LengthOptimalShort LengthCategory = "optimal_short" // 30-90s, best short-form band
	LengthMedium       LengthCategory = "medium"        // 90-180s
	LengthLong         LengthCategory = "long"          // 180-300s
	LengthTooLong      LengthCategory = "too_long"      // >300s, barely differs from the original
)

// ClassifyLength maps a duration in seconds to its category.
func ClassifyLength(duration float64) LengthCategory {
	switch {
	case duration < 30:
		return LengthTooShort
	case duration <= 90:
		return LengthOptimalShort
	case duration <= 180:
		return LengthMedium
	case duration <= 300:
		return LengthLong
	default:
		return LengthTooLong
	}
}

// BalanceMetrics are the component scores of one balance analysis. All
// fields are in [0,1] except LengthRatio (rewritten/original duration).
type BalanceMetrics struct {
	Coherence    float64 `json:"coherence_score"`
	LengthRatio  float64 `json:"length_ratio"`
	Shareability float64 `json:"shareability_score"`
	Rhythm       float64 `json:"rhythm_score"`
	Quality      float64 `json:"quality_score"`
}

// BalanceReport is the full output of the balance controller.
type BalanceReport struct {
	OriginalDuration  float64           `json:"original_duration"`
	RewrittenDuration float64           `json:"rewritten_duration"`
	OptimizedDuration float64           `json:"optimized_duration"`
	LengthCategory    LengthCategory    `json:"length_category"`
	Metrics           BalanceMetrics    `json:"balance_metrics"`
	Assessment        map[string]string `json:"quality_assessment"`
	Suggestions       []string          `json:"optimization_suggestions"`
	Recommendations   []string          `json:"recommendations"`
	OptimizedSegments []*Segment        `json:"optimized_segments"`
	Optimized         bool              `json:"optimized"`
}

// ConsistencyViolationType enumerates the internal timing violations.
type ConsistencyViolationType string

const (
	ViolationOverlap       ConsistencyViolationType = "overlap"
	ViolationLargeGap      ConsistencyViolationType = "large_gap"
	ViolationTooShort      ConsistencyViolationType = "too_short"
	ViolationTooLong       ConsistencyViolationType = "too_long"
	ViolationPrecisionLoss ConsistencyViolationType = "precision_loss"
)

// ConsistencyViolation is one flagged timing problem. SegmentID names the
// offending segment; OtherID is set for pairwise violations.
type ConsistencyViolation struct {
	Type      ConsistencyViolationType `json:"type"`
	SegmentID string                   `json:"segment_id"`
	OtherID   string                   `json:"other_id,omitempty"`
	Value     float64                  `json:"value"`
}

// ConsistencyReport enumerates every finding. Detection is complete: each
// finding meeting a threshold is reported exactly once. Ordering problems
// (overlap, large gap) are violations; duration and precision findings are
// warnings, since legitimate scene-level segments may run long.
type ConsistencyReport struct {
	TotalSegments int                    `json:"total_segments"`
	Violations    []ConsistencyViolation `json:"violations"`
	Warnings      []ConsistencyViolation `json:"warnings"`
}

// SyncIssueType enumerates the signal-based sync findings.
type SyncIssueType string

const (
	SyncQuietDuringSegment SyncIssueType = "quiet_during_segment"
	SyncPeakBeforeSegment  SyncIssueType = "audio_peak_before_segment"
	SyncPeakAfterSegment   SyncIssueType = "audio_peak_after_segment"
	SyncGapTooSmall        SyncIssueType = "segment_gap_too_small"
	SyncLowTimingPrecision SyncIssueType = "low_timing_precision"
)

// SyncIssue is one likely sync error with the energies that triggered it.
// SuggestedShift is negative when the segment likely needs to start earlier.
type SyncIssue struct {
	Type           SyncIssueType `json:"type"`
	SegmentID      string        `json:"segment_id"`
	OtherID        string        `json:"other_id,omitempty"`
	SuggestedShift float64       `json:"suggested_shift,omitempty"`
	Confidence     float64       `json:"confidence"`
	EnergyDuring   float64       `json:"energy_during,omitempty"`
	EnergyBefore   float64       `json:"energy_before,omitempty"`
	EnergyAfter    float64       `json:"energy_after,omitempty"`
	Gap            float64       `json:"gap,omitempty"`
}

// SyncReport is the output of signal-based validation.
type SyncReport struct {
	TotalSegments int         `json:"total_segments"`
	SampleRate    int         `json:"sample_rate"`
	Issues        []SyncIssue `json:"issues"`
}
