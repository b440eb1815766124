package syncheck

import (
	"math"

	"go.uber.org/zap"

	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
	"github.com/clipsmith-dev/clip-analyzer/pkg/config"
)

// Service validates segment timing, either against the segments' own
// internal consistency or against decoded audio supplied by the caller.
type Service interface {
	// CheckConsistency scans a sequence for ordering, overlap, gap,
	// duration and precision violations. Detection is complete: every
	// violation meeting a threshold is reported.
	CheckConsistency(segments []*entities.Segment) entities.ConsistencyReport
	// CheckAgainstSignal flags segments whose time window does not line up
	// with signal energy. Samples are decoded mono audio on [-1, 1].
	CheckAgainstSignal(segments []*entities.Segment, samples []float64, sampleRate int) entities.SyncReport
}

type syncService struct {
	cfg    *config.SyncConfig
	logger *zap.Logger
}

// NewService constructs a synchronization validator
func NewService(cfg *config.SyncConfig, logger *zap.Logger) Service {
	return &syncService{cfg: cfg, logger: logger}
}

func (s *syncService) CheckConsistency(segments []*entities.Segment) entities.ConsistencyReport {
	report := entities.ConsistencyReport{
		TotalSegments: len(segments),
		Violations:    make([]entities.ConsistencyViolation, 0),
		Warnings:      make([]entities.ConsistencyViolation, 0),
	}

	for i, segment := range segments {
		duration := segment.Duration()
		if duration < s.cfg.MinSegmentDuration {
			report.Warnings = append(report.Warnings, entities.ConsistencyViolation{
				Type:      entities.ViolationTooShort,
				SegmentID: segment.Identity(),
				Value:     duration,
			})
		} else if duration > s.cfg.MaxSegmentDuration {
			report.Warnings = append(report.Warnings, entities.ConsistencyViolation{
				Type:      entities.ViolationTooLong,
				SegmentID: segment.Identity(),
				Value:     duration,
			})
		}

		for _, boundary := range []float64{segment.Start.Seconds(), segment.End.Seconds()} {
			if losesPrecision(boundary, s.cfg.Precision) {
				report.Warnings = append(report.Warnings, entities.ConsistencyViolation{
					Type:      entities.ViolationPrecisionLoss,
					SegmentID: segment.Identity(),
					Value:     boundary,
				})
				break
			}
		}

		if i == 0 {
			continue
		}
		prev := segments[i-1]
		prevEnd, nextStart := prev.End.Seconds(), segment.Start.Seconds()
		if prevEnd > nextStart {
			report.Violations = append(report.Violations, entities.ConsistencyViolation{
				Type:      entities.ViolationOverlap,
				SegmentID: prev.Identity(),
				OtherID:   segment.Identity(),
				Value:     prevEnd - nextStart,
			})
		} else if nextStart-prevEnd > s.cfg.MaxGap {
			report.Violations = append(report.Violations, entities.ConsistencyViolation{
				Type:      entities.ViolationLargeGap,
				SegmentID: prev.Identity(),
				OtherID:   segment.Identity(),
				Value:     nextStart - prevEnd,
			})
		}
	}

	s.logger.Debug("consistency check complete",
		zap.Int("segments", len(segments)),
		zap.Int("violations", len(report.Violations)),
		zap.Int("warnings", len(report.Warnings)))

	return report
}

func (s *syncService) CheckAgainstSignal(segments []*entities.Segment, samples []float64, sampleRate int) entities.SyncReport {
	report := entities.SyncReport{
		TotalSegments: len(segments),
		SampleRate:    sampleRate,
		Issues:        make([]entities.SyncIssue, 0),
	}
	if sampleRate <= 0 || len(samples) == 0 {
		return report
	}

	window := int(s.cfg.WindowSeconds * float64(sampleRate))
	for _, segment := range segments {
		startSample := int(segment.Start.Seconds() * float64(sampleRate))
		endSample := int(segment.End.Seconds() * float64(sampleRate))
		if startSample >= len(samples) || endSample >= len(samples) {
			continue
		}

		during := meanAbsEnergy(samples[startSample:endSample])

		preStart := startSample - window
		if preStart < 0 {
			preStart = 0
		}
		before := meanAbsEnergy(samples[preStart:startSample])

		postEnd := endSample + window
		if postEnd > len(samples) {
			postEnd = len(samples)
		}
		after := meanAbsEnergy(samples[endSample:postEnd])

		if issue, found := s.classifyEnergies(segment, during, before, after); found {
			report.Issues = append(report.Issues, issue)
		}
	}

	// Boundary checks on adjacent pairs. A hair-thin gap or coarse-grained
	// timestamps both hint at imprecise cut points.
	for i := 0; i < len(segments)-1; i++ {
		currEnd := segments[i].End.Seconds()
		nextStart := segments[i+1].Start.Seconds()

		gap := nextStart - currEnd
		if gap > 0 && gap < s.cfg.TinyGap {
			report.Issues = append(report.Issues, entities.SyncIssue{
				Type:       entities.SyncGapTooSmall,
				SegmentID:  segments[i].Identity(),
				OtherID:    segments[i+1].Identity(),
				Gap:        gap,
				Confidence: s.cfg.ConfidenceTinyGap,
			})
		}

		if isCoarse(currEnd) && isCoarse(nextStart) {
			report.Issues = append(report.Issues, entities.SyncIssue{
				Type:       entities.SyncLowTimingPrecision,
				SegmentID:  segments[i].Identity(),
				OtherID:    segments[i+1].Identity(),
				Confidence: s.cfg.ConfidencePrecision,
			})
		}
	}

	s.logger.Debug("signal validation complete",
		zap.Int("segments", len(segments)),
		zap.Int("issues", len(report.Issues)))

	return report
}

// classifyEnergies applies the energy heuristics to one segment window.
func (s *syncService) classifyEnergies(segment *entities.Segment, during, before, after float64) (entities.SyncIssue, bool) {
	issue := entities.SyncIssue{
		SegmentID:    segment.Identity(),
		Confidence:   s.cfg.ConfidenceEnergy,
		EnergyDuring: during,
		EnergyBefore: before,
		EnergyAfter:  after,
	}

	switch {
	case during < s.cfg.QuietEnergy && (before > s.cfg.ActiveEnergy || after > s.cfg.ActiveEnergy):
		issue.Type = entities.SyncQuietDuringSegment
		if before > after {
			issue.SuggestedShift = -0.2
		} else {
			issue.SuggestedShift = 0.2
		}
	case before > during*s.cfg.EnergyRatio:
		issue.Type = entities.SyncPeakBeforeSegment
		issue.SuggestedShift = -0.1
	case after > during*s.cfg.EnergyRatio:
		issue.Type = entities.SyncPeakAfterSegment
		issue.SuggestedShift = 0.1
	default:
		return entities.SyncIssue{}, false
	}

	return issue, true
}

func meanAbsEnergy(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += math.Abs(v)
	}
	return sum / float64(len(samples))
}

// losesPrecision reports whether rounding v to the configured precision
// would change it, i.e. the timestamp carries finer detail than the
// precision grid preserves.
func losesPrecision(v, precision float64) bool {
	if precision <= 0 {
		return false
	}
	rounded := math.Round(v/precision) * precision
	return math.Abs(rounded-v) > 1e-6
}

// isCoarse reports whether v sits exactly on the 0.1s grid, suggesting the
// producer did not carry millisecond precision.
func isCoarse(v float64) bool {
	return math.Abs(math.Round(v*10)-v*10) < 1e-3
}
