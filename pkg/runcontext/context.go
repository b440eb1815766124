package runcontext

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyRunID     KeyContext = "run_id"
	keyStage     KeyContext = "stage"
	keyStartTime KeyContext = "run_start_time"
)

// RunMetadata holds metadata for a pipeline run
type RunMetadata struct {
	RunID     uuid.UUID
	Stage     string
	StartTime time.Time
}

// RunBegin initializes a run context with metadata and timeout.
// Creates a derived context with a 5 minute timeout so a stuck stage
// cannot hang the pipeline forever.
func RunBegin(parentCtx context.Context, runID uuid.UUID, stage string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parentCtx, 5*time.Minute)

	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyStage, stage)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())

	return ctx, cancel
}

// RunStage executes a stage function with panic recovery.
// A panicking stage becomes an error instead of taking the process down.
func RunStage(ctx context.Context, stageFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before stage execution: %w", ctx.Err())
	}

	return stageFunc(ctx)
}

// WithStage returns a derived context tagged with the given stage name
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, keyStage, stage)
}

// GetRunID extracts the run ID from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetStage extracts the current stage from context
func GetStage(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(keyStage).(string)
	return stage, ok
}

// GetStartTime extracts the run start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyStartTime).(time.Time)
	return startTime, ok
}

// GetRunMetadata extracts all run metadata from context
func GetRunMetadata(ctx context.Context) *RunMetadata {
	runID, _ := GetRunID(ctx)
	stage, _ := GetStage(ctx)
	startTime, _ := GetStartTime(ctx)

	return &RunMetadata{
		RunID:     runID,
		Stage:     stage,
		StartTime: startTime,
	}
}
