package protection

import (
	"go.uber.org/zap"

	apperrors "github.com/clipsmith-dev/clip-analyzer/errors"
	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
	"github.com/clipsmith-dev/clip-analyzer/pkg/config"
)

// Service evaluates protection rules over segments, tamper-evidently locks
// the important ones and re-verifies them later.
type Service interface {
	// RegisterRule appends a caller-supplied rule after the defaults.
	RegisterRule(rule Rule)
	// MarkProtected evaluates all rules against each segment and records
	// the resulting protection annotation in place.
	MarkProtected(segments []*entities.Segment) []*entities.Segment
	// Verify recomputes checksums on every CHECKSUM-carrying segment and
	// reports mismatches. LOCK-protected segments get their protection
	// flags forcibly restored; content fields are left as found.
	Verify(segments []*entities.Segment) ([]*entities.Segment, []apperrors.AppError)
	// Stats summarizes a marked sequence for observability.
	Stats(segments []*entities.Segment) entities.ProtectionStats
}

type protectionService struct {
	rules  []Rule
	logger *zap.Logger
}

// NewService constructs a protection service with the default rule set.
func NewService(cfg *config.ProtectionConfig, keywords config.KeywordTables, logger *zap.Logger) Service {
	return &protectionService{
		rules:  defaultRules(cfg, keywords),
		logger: logger,
	}
}

func (s *protectionService) RegisterRule(rule Rule) {
	s.rules = append(s.rules, rule)
}

func (s *protectionService) MarkProtected(segments []*entities.Segment) []*entities.Segment {
	for _, segment := range segments {
		s.markSegment(segment)
	}
	return segments
}

// markSegment applies every matching rule to one segment. A panicking
// predicate is contained here: the segment is left unprotected and the
// remaining segments still get analyzed.
func (s *protectionService) markSegment(segment *entities.Segment) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("protection rule panicked, segment left unprotected",
				zap.String("segment_id", segment.Identity()),
				zap.Any("panic", r))
		}
	}()

	info := &entities.ProtectionInfo{Level: entities.ProtectionLevelNone}
	for _, rule := range s.rules {
		if !rule.Predicate(segment) {
			continue
		}
		if rule.Level > info.Level {
			info.Level = rule.Level
		}
		for _, strategy := range rule.Strategies {
			info.AddStrategy(strategy)
		}
		info.Rules = append(info.Rules, rule.Name)
	}

	if len(info.Strategies) == 0 {
		return
	}

	info.Protected = true
	if info.HasStrategy(entities.StrategyNoCompression) {
		segment.Compressible = false
	}
	if info.HasStrategy(entities.StrategyChecksum) {
		info.Checksum = computeChecksum(segment)
	}
	segment.SetProtection(info)

	s.logger.Debug("segment protected",
		zap.String("segment_id", segment.Identity()),
		zap.String("level", info.Level.String()),
		zap.Strings("rules", info.Rules))
}

func (s *protectionService) Verify(segments []*entities.Segment) ([]*entities.Segment, []apperrors.AppError) {
	var mismatches []apperrors.AppError

	for _, segment := range segments {
		info, ok := segment.Protection()
		if !ok || !info.HasStrategy(entities.StrategyChecksum) {
			continue
		}

		computed := computeChecksum(segment)
		if computed == info.Checksum {
			continue
		}

		mismatch := apperrors.ErrChecksumMismatch(segment.Identity(), info.Checksum, computed)
		mismatches = append(mismatches, mismatch)
		s.logger.Warn("checksum mismatch on protected segment",
			zap.String("segment_id", segment.Identity()),
			zap.String("stored", info.Checksum),
			zap.String("computed", computed),
			zap.Bool("locked", info.HasStrategy(entities.StrategyLock)))

		// LOCK restores the protection flags only. The mutated text/time
		// fields stay as found; the mismatch record carries both digests so
		// the caller can revert content from its own copy.
		if info.HasStrategy(entities.StrategyLock) {
			segment.Compressible = false
			info.Protected = true
			segment.SetProtection(info)
		}
	}

	return segments, mismatches
}

func (s *protectionService) Stats(segments []*entities.Segment) entities.ProtectionStats {
	stats := entities.ProtectionStats{
		TotalSegments: len(segments),
		ByLevel:       make(map[string]int),
		ByStrategy:    make(map[string]int),
	}

	for _, segment := range segments {
		info, ok := segment.Protection()
		if !ok || !info.Protected {
			continue
		}
		stats.ProtectedSegments++
		stats.ByLevel[info.Level.String()]++
		for _, strategy := range info.Strategies {
			stats.ByStrategy[string(strategy)]++
		}
	}

	return stats
}
