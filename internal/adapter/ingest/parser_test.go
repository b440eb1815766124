package ingest

import (
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/clipsmith-dev/clip-analyzer/errors"
	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
)

func TestParse_FullDocument(t *testing.T) {
	parser := NewParser(zap.NewNop())
	doc := `{
		"language": "en",
		"original_segments": [
			{"id": "o1", "start": 0, "end": "00:00:05,500", "text": "hello", "tags": ["climax"], "emotion_intensity": 0.9}
		],
		"rewritten_segments": [
			{"id": "r1", "start": 1.5, "end": 3.0, "text": "hi", "compressible": false, "extra_field": "ignored"}
		],
		"original_patterns": [
			{"kind": "sequence", "elements": ["a", "b"], "support": 0.5, "confidence": 0.8}
		],
		"rewritten_patterns": [
			{"kind": "narrative", "type": "climax", "elements": ["a"], "position": 0.5}
		],
		"audio": {"sample_rate": 16000, "samples": [0.1, -0.2, 0.3]}
	}`

	input, err := parser.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if input.Language != "en" {
		t.Fatalf("unexpected language %s", input.Language)
	}
	if len(input.OriginalSegments) != 1 || len(input.RewrittenSegments) != 1 {
		t.Fatal("segment lists not parsed")
	}

	orig := input.OriginalSegments[0]
	if orig.ID != "o1" || orig.End.Seconds() != 5.5 {
		t.Fatalf("string timecode not parsed: %+v", orig)
	}
	if orig.EmotionIntensity == nil || *orig.EmotionIntensity != 0.9 {
		t.Fatal("emotion intensity not parsed")
	}
	if !orig.HasTag("climax") {
		t.Fatal("tags not parsed")
	}

	rew := input.RewrittenSegments[0]
	if rew.Start.Seconds() != 1.5 || rew.Compressible {
		t.Fatalf("numeric timecode or compressible flag not parsed: %+v", rew)
	}

	if len(input.OriginalPatterns) != 1 || input.OriginalPatterns[0].Kind != entities.PatternKindSequence {
		t.Fatal("patterns not parsed")
	}
	if input.OriginalPatterns[0].Confidence == nil || *input.OriginalPatterns[0].Confidence != 0.8 {
		t.Fatal("pattern confidence not parsed")
	}
	if input.RewrittenPatterns[0].Type != "climax" {
		t.Fatal("pattern type not parsed")
	}

	if input.SampleRate != 16000 || len(input.AudioSamples) != 3 {
		t.Fatal("audio not parsed")
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	parser := NewParser(zap.NewNop())
	_, err := parser.Parse([]byte("{not json"))
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if apperrors.CodeOf(err) != apperrors.ErrorCode_INVALID_INPUT {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestParse_MalformedTimecode(t *testing.T) {
	parser := NewParser(zap.NewNop())
	doc := `{"rewritten_segments": [{"start": "garbage", "end": 2, "text": "x"}]}`
	_, err := parser.Parse([]byte(doc))
	if err == nil {
		t.Fatal("expected error for malformed timecode")
	}
}

func TestParse_EmotionOutOfRange(t *testing.T) {
	parser := NewParser(zap.NewNop())
	doc := `{"rewritten_segments": [{"start": 0, "end": 2, "text": "x", "emotion_intensity": 3.0}]}`
	_, err := parser.Parse([]byte(doc))
	if err == nil {
		t.Fatal("expected validation error for out-of-range emotion")
	}
}

func TestParse_ReversedRange(t *testing.T) {
	parser := NewParser(zap.NewNop())
	doc := `{"rewritten_segments": [{"start": 5, "end": 2, "text": "x"}]}`
	_, err := parser.Parse([]byte(doc))
	if err == nil {
		t.Fatal("expected error for end before start")
	}
}

func TestParse_PatternKindDefaultsToGeneric(t *testing.T) {
	parser := NewParser(zap.NewNop())
	doc := `{"original_patterns": [{"type": "conflict", "position": 0.4}]}`
	input, err := parser.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if input.OriginalPatterns[0].Kind != entities.PatternKindGeneric {
		t.Fatalf("expected generic kind, got %s", input.OriginalPatterns[0].Kind)
	}
}

func TestParse_AudioWithoutSampleRate(t *testing.T) {
	parser := NewParser(zap.NewNop())
	doc := `{"audio": {"samples": [0.1, 0.2]}}`
	_, err := parser.Parse([]byte(doc))
	if err == nil {
		t.Fatal("samples without a sample rate must be rejected")
	}
}
