package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/clipsmith-dev/clip-analyzer/internal/adapter/ingest"
	"github.com/clipsmith-dev/clip-analyzer/internal/adapter/report"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/alignment"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/balance"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/pipeline"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/protection"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/syncheck"
	"github.com/clipsmith-dev/clip-analyzer/pkg/config"
)

func main() {
	inputPath := flag.String("input", "-", "run-input JSON file, or - for stdin")
	originalSRT := flag.String("original-srt", "", "original subtitles in SRT format (overrides original_segments)")
	rewrittenSRT := flag.String("rewritten-srt", "", "rewritten subtitles in SRT format (overrides rewritten_segments)")
	outPath := flag.String("out", "-", "report destination, or - for stdout")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize analysis services
	alignmentSvc := alignment.NewService(&cfg.Alignment, logger)
	protectionSvc := protection.NewService(&cfg.Protection, cfg.Keywords, logger)
	syncheckSvc := syncheck.NewService(&cfg.Sync, logger)
	balanceSvc := balance.NewService(&cfg.Balance, cfg.Keywords, logger)
	pipelineSvc := pipeline.NewService(cfg, alignmentSvc, protectionSvc, syncheckSvc, balanceSvc, logger)

	input, err := readInput(*inputPath, *originalSRT, *rewrittenSRT, logger)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result, err := pipelineSvc.Run(ctx, input)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	out, err := report.Render(result)
	if err != nil {
		log.Fatalf("Failed to render report: %v", err)
	}
	if err := writeOutput(*outPath, out); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
}

func readInput(inputPath, originalSRT, rewrittenSRT string, logger *zap.Logger) (pipeline.Input, error) {
	var input pipeline.Input

	if inputPath != "" {
		data, err := readFile(inputPath)
		if err != nil {
			return input, err
		}
		// A bare pair of SRT files is a valid invocation with no JSON input.
		if len(data) > 0 {
			input, err = ingest.NewParser(logger).Parse(data)
			if err != nil {
				return input, err
			}
		}
	}

	if originalSRT != "" {
		data, err := os.ReadFile(originalSRT)
		if err != nil {
			return input, err
		}
		if input.OriginalSegments, err = ingest.ParseSRT(data); err != nil {
			return input, err
		}
	}
	if rewrittenSRT != "" {
		data, err := os.ReadFile(rewrittenSRT)
		if err != nil {
			return input, err
		}
		if input.RewrittenSegments, err = ingest.ParseSRT(data); err != nil {
			return input, err
		}
	}

	return input, nil
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		// Reading stdin is skipped when it is a terminal, so SRT-only runs
		// don't block waiting for input.
		stat, err := os.Stdin.Stat()
		if err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			return nil, nil
		}
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	data = append(data, '\n')
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
