package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	apperrors "github.com/clipsmith-dev/clip-analyzer/errors"
	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/pipeline"
)

func TestRender_StampsRunMetadata(t *testing.T) {
	result := &pipeline.Result{
		RunID:   uuid.New(),
		Elapsed: 42 * time.Millisecond,
		Protection: entities.ProtectionStats{
			TotalSegments:     3,
			ProtectedSegments: 1,
			ByLevel:           map[string]int{"CRITICAL": 1},
			ByStrategy:        map[string]int{"lock": 1},
		},
		Consistency: entities.ConsistencyReport{TotalSegments: 3},
		Balance: entities.BalanceReport{
			LengthCategory: entities.LengthOptimalShort,
			Metrics:        entities.BalanceMetrics{Quality: 0.7},
		},
	}

	out, err := Render(result)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	doc := gjson.ParseBytes(out)
	if doc.Get("run.id").String() != result.RunID.String() {
		t.Fatal("run id not stamped")
	}
	if doc.Get("run.elapsed_ms").Int() != 42 {
		t.Fatalf("unexpected elapsed %v", doc.Get("run.elapsed_ms").Int())
	}
	if doc.Get("run.generated_at").String() == "" {
		t.Fatal("generation timestamp not stamped")
	}
	if doc.Get("protection.protected_segments").Int() != 1 {
		t.Fatal("protection stats not serialized")
	}
	if doc.Get("balance.balance_metrics.quality_score").Float() != 0.7 {
		t.Fatal("balance metrics not serialized")
	}
	if doc.Get("pattern_alignment").Exists() {
		t.Fatal("absent alignment must be omitted")
	}
	if doc.Get("sync").Exists() {
		t.Fatal("absent sync report must be omitted")
	}
}

func TestRender_FlattensChecksumMismatches(t *testing.T) {
	result := &pipeline.Result{
		RunID: uuid.New(),
		ChecksumMismatches: []apperrors.AppError{
			apperrors.ErrChecksumMismatch("seg-1", "aaa", "bbb"),
		},
	}

	out, err := Render(result)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	doc := gjson.ParseBytes(out)
	mismatch := doc.Get("checksum_mismatches.0")
	if mismatch.Get("segment_id").String() != "seg-1" {
		t.Fatal("segment id not flattened")
	}
	if mismatch.Get("stored_checksum").String() != "aaa" || mismatch.Get("computed_checksum").String() != "bbb" {
		t.Fatal("digests not flattened")
	}
}
