package report

import (
	"encoding/json"
	"time"

	"github.com/tidwall/sjson"

	apperrors "github.com/clipsmith-dev/clip-analyzer/errors"
	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/pipeline"
)

// Document is the serialized shape of one completed analysis run.
type Document struct {
	Alignment          *entities.AlignmentResult  `json:"pattern_alignment,omitempty"`
	Protection         entities.ProtectionStats   `json:"protection"`
	ChecksumMismatches []ChecksumMismatch         `json:"checksum_mismatches,omitempty"`
	Consistency        entities.ConsistencyReport `json:"consistency"`
	Sync               *entities.SyncReport       `json:"sync,omitempty"`
	Balance            entities.BalanceReport     `json:"balance"`
}

// ChecksumMismatch flattens a checksum error for the report.
type ChecksumMismatch struct {
	SegmentID        string `json:"segment_id"`
	StoredChecksum   string `json:"stored_checksum"`
	ComputedChecksum string `json:"computed_checksum"`
}

// Render serializes a pipeline result and stamps the run metadata onto the
// document. The metadata goes in through sjson so the Document shape stays a
// pure projection of the analysis output.
func Render(result *pipeline.Result) ([]byte, error) {
	doc := Document{
		Alignment:          result.Alignment,
		Protection:         result.Protection,
		ChecksumMismatches: flattenMismatches(result.ChecksumMismatches),
		Consistency:        result.Consistency,
		Sync:               result.Sync,
		Balance:            result.Balance,
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	out, err = sjson.SetBytes(out, "run.id", result.RunID.String())
	if err != nil {
		return nil, err
	}
	out, err = sjson.SetBytes(out, "run.generated_at", time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	out, err = sjson.SetBytes(out, "run.elapsed_ms", result.Elapsed.Milliseconds())
	if err != nil {
		return nil, err
	}
	return out, nil
}

func flattenMismatches(errs []apperrors.AppError) []ChecksumMismatch {
	mismatches := make([]ChecksumMismatch, 0, len(errs))
	for _, err := range errs {
		mismatches = append(mismatches, ChecksumMismatch{
			SegmentID:        err.Details["segment_id"],
			StoredChecksum:   err.Details["stored_checksum"],
			ComputedChecksum: err.Details["computed_checksum"],
		})
	}
	return mismatches
}
