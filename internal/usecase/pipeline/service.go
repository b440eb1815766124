package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/clipsmith-dev/clip-analyzer/errors"
	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/alignment"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/balance"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/protection"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/syncheck"
	"github.com/clipsmith-dev/clip-analyzer/pkg/config"
	"github.com/clipsmith-dev/clip-analyzer/pkg/runcontext"
)

// Input is everything one analysis run consumes. Segments are cloned before
// any stage touches them, so callers keep ownership of what they pass in.
type Input struct {
	OriginalSegments  []*entities.Segment
	RewrittenSegments []*entities.Segment
	OriginalPatterns  []entities.Pattern
	RewrittenPatterns []entities.Pattern
	AudioSamples      []float64
	SampleRate        int
	Language          string
}

// Result aggregates the reports of every stage that ran. Alignment and Sync
// are nil when the run had no patterns or no audio to feed them.
type Result struct {
	RunID              uuid.UUID
	Alignment          *entities.AlignmentResult
	Protection         entities.ProtectionStats
	ChecksumMismatches []apperrors.AppError
	Consistency        entities.ConsistencyReport
	Sync               *entities.SyncReport
	Balance            entities.BalanceReport
	Elapsed            time.Duration
}

// Service orchestrates a full analysis run across the four analyzers.
type Service interface {
	Run(ctx context.Context, input Input) (*Result, error)
}

type pipelineService struct {
	cfg        *config.Config
	alignment  alignment.Service
	protection protection.Service
	syncheck   syncheck.Service
	balance    balance.Service
	logger     *zap.Logger
}

// NewService constructs the pipeline orchestrator
func NewService(
	cfg *config.Config,
	alignmentSvc alignment.Service,
	protectionSvc protection.Service,
	syncheckSvc syncheck.Service,
	balanceSvc balance.Service,
	logger *zap.Logger,
) Service {
	return &pipelineService{
		cfg:        cfg,
		alignment:  alignmentSvc,
		protection: protectionSvc,
		syncheck:   syncheckSvc,
		balance:    balanceSvc,
		logger:     logger,
	}
}

// Run executes the analysis pipeline. The independent stages (alignment,
// protection, consistency, signal check) run concurrently behind a bounded
// worker semaphore; balance runs afterwards because its compression step
// must honor the protection marks.
func (s *pipelineService) Run(ctx context.Context, input Input) (*Result, error) {
	if len(input.RewrittenSegments) == 0 {
		return nil, apperrors.ErrInsufficientData("segments", 0, 1)
	}

	language := input.Language
	if language == "" {
		language = s.cfg.Language
	}

	runID := uuid.New()
	ctx, cancel := runcontext.RunBegin(ctx, runID, "pipeline")
	defer cancel()

	started := time.Now()
	result := &Result{RunID: runID}

	// The working copy is shared by protection and balance; consistency and
	// the signal check read the caller's segments, which no stage mutates.
	working := entities.CloneSegments(input.RewrittenSegments)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		sem      = make(chan struct{}, s.cfg.Pipeline.Workers)
	)

	dispatch := func(stage string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			stageCtx := runcontext.WithStage(ctx, stage)
			if err := runcontext.RunStage(stageCtx, fn); err != nil {
				s.logger.Error("pipeline stage failed",
					zap.String("run_id", runID.String()),
					zap.String("stage", stage),
					zap.Error(err))
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}

	if len(input.OriginalPatterns) > 0 || len(input.RewrittenPatterns) > 0 {
		dispatch("alignment", func(context.Context) error {
			aligned := s.alignment.Align(input.OriginalPatterns, input.RewrittenPatterns)
			mu.Lock()
			result.Alignment = &aligned
			mu.Unlock()
			return nil
		})
	}

	dispatch("protection", func(context.Context) error {
		s.protection.MarkProtected(working)
		_, mismatches := s.protection.Verify(working)
		stats := s.protection.Stats(working)
		mu.Lock()
		result.Protection = stats
		result.ChecksumMismatches = mismatches
		mu.Unlock()
		return nil
	})

	dispatch("consistency", func(context.Context) error {
		report := s.syncheck.CheckConsistency(input.RewrittenSegments)
		mu.Lock()
		result.Consistency = report
		mu.Unlock()
		return nil
	})

	if len(input.AudioSamples) > 0 && input.SampleRate > 0 {
		dispatch("signal_check", func(context.Context) error {
			report := s.syncheck.CheckAgainstSignal(input.RewrittenSegments, input.AudioSamples, input.SampleRate)
			mu.Lock()
			result.Sync = &report
			mu.Unlock()
			return nil
		})
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	balanceErr := runcontext.RunStage(runcontext.WithStage(ctx, "balance"), func(context.Context) error {
		result.Balance = s.balance.AnalyzeAndOptimize(input.OriginalSegments, working, language)
		return nil
	})
	if balanceErr != nil {
		s.logger.Error("pipeline stage failed",
			zap.String("run_id", runID.String()),
			zap.String("stage", "balance"),
			zap.Error(balanceErr))
		return nil, balanceErr
	}

	result.Elapsed = time.Since(started)

	s.logger.Info("pipeline run complete",
		zap.String("run_id", runID.String()),
		zap.Int("segments", len(input.RewrittenSegments)),
		zap.Int("consistency_violations", len(result.Consistency.Violations)),
		zap.Int("checksum_mismatches", len(result.ChecksumMismatches)),
		zap.Duration("elapsed", result.Elapsed))

	return result, nil
}
