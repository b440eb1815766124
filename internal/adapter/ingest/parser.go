package ingest

import (
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apperrors "github.com/clipsmith-dev/clip-analyzer/errors"
	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
	"github.com/clipsmith-dev/clip-analyzer/internal/usecase/pipeline"
	"github.com/clipsmith-dev/clip-analyzer/pkg/validator"
)

// Parser turns a run-input JSON document into a pipeline.Input. Parsing is
// tolerant of extra fields and of timecodes given either as float seconds or
// as "HH:MM:SS,mmm" strings; structurally invalid entries fail the whole
// document rather than being silently dropped.
type Parser struct {
	validate *validator.CustomValidator
	logger   *zap.Logger
}

// NewParser constructs a run-input parser
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{validate: validator.New(), logger: logger}
}

type segmentDTO struct {
	Text             string   `validate:"max=10000"`
	Tags             []string `validate:"max=64"`
	Characters       []string `validate:"max=64"`
	EmotionIntensity *float64 `validate:"omitempty,gte=-1,lte=1"`
}

type patternDTO struct {
	Kind      string  `validate:"omitempty,oneof=sequence narrative generic"`
	Position  float64 `validate:"gte=0,lte=1"`
	Duration  float64 `validate:"gte=0"`
	Frequency float64 `validate:"gte=0"`
	Support   float64 `validate:"gte=0,lte=1"`
}

// Parse reads the full run-input document.
func (p *Parser) Parse(data []byte) (pipeline.Input, error) {
	if !gjson.ValidBytes(data) {
		return pipeline.Input{}, apperrors.ErrInvalidInput("input is not valid JSON")
	}
	doc := gjson.ParseBytes(data)

	input := pipeline.Input{Language: doc.Get("language").String()}

	var err error
	if input.OriginalSegments, err = p.parseSegments(doc.Get("original_segments"), "original_segments"); err != nil {
		return pipeline.Input{}, err
	}
	if input.RewrittenSegments, err = p.parseSegments(doc.Get("rewritten_segments"), "rewritten_segments"); err != nil {
		return pipeline.Input{}, err
	}
	if input.OriginalPatterns, err = p.parsePatterns(doc.Get("original_patterns"), "original_patterns"); err != nil {
		return pipeline.Input{}, err
	}
	if input.RewrittenPatterns, err = p.parsePatterns(doc.Get("rewritten_patterns"), "rewritten_patterns"); err != nil {
		return pipeline.Input{}, err
	}

	if audio := doc.Get("audio"); audio.Exists() {
		input.SampleRate = int(audio.Get("sample_rate").Int())
		for _, sample := range audio.Get("samples").Array() {
			input.AudioSamples = append(input.AudioSamples, sample.Float())
		}
		if len(input.AudioSamples) > 0 && input.SampleRate <= 0 {
			return pipeline.Input{}, apperrors.ErrInvalidInput("audio.sample_rate must be positive")
		}
	}

	p.logger.Debug("parsed run input",
		zap.Int("original_segments", len(input.OriginalSegments)),
		zap.Int("rewritten_segments", len(input.RewrittenSegments)),
		zap.Int("original_patterns", len(input.OriginalPatterns)),
		zap.Int("rewritten_patterns", len(input.RewrittenPatterns)),
		zap.Int("audio_samples", len(input.AudioSamples)))

	return input, nil
}

func (p *Parser) parseSegments(list gjson.Result, field string) ([]*entities.Segment, error) {
	if !list.Exists() {
		return nil, nil
	}

	var segments []*entities.Segment
	var parseErr error
	list.ForEach(func(idx, item gjson.Result) bool {
		segment, err := p.parseSegment(item)
		if err != nil {
			parseErr = fmt.Errorf("%s[%d]: %w", field, int(idx.Int()), err)
			return false
		}
		segments = append(segments, segment)
		return true
	})
	return segments, parseErr
}

func (p *Parser) parseSegment(item gjson.Result) (*entities.Segment, error) {
	start, err := parseTime(item.Get("start"))
	if err != nil {
		return nil, err
	}
	end, err := parseTime(item.Get("end"))
	if err != nil {
		return nil, err
	}

	dto := segmentDTO{Text: item.Get("text").String()}
	for _, tag := range item.Get("tags").Array() {
		dto.Tags = append(dto.Tags, tag.String())
	}
	for _, ch := range item.Get("characters").Array() {
		dto.Characters = append(dto.Characters, ch.String())
	}
	if emotion := item.Get("emotion_intensity"); emotion.Exists() {
		v := emotion.Float()
		dto.EmotionIntensity = &v
	}
	if err := p.validate.Validate(dto); err != nil {
		return nil, apperrors.ErrInvalidSegment(err.Error())
	}

	segment, err := entities.NewSegment(start, end, dto.Text)
	if err != nil {
		return nil, err
	}
	segment.ID = item.Get("id").String()
	segment.Tags = dto.Tags
	segment.Characters = dto.Characters
	if compressible := item.Get("compressible"); compressible.Exists() {
		segment.Compressible = compressible.Bool()
	}
	if dto.EmotionIntensity != nil {
		if _, err := segment.WithEmotion(*dto.EmotionIntensity); err != nil {
			return nil, err
		}
	}
	return segment, nil
}

func (p *Parser) parsePatterns(list gjson.Result, field string) ([]entities.Pattern, error) {
	if !list.Exists() {
		return nil, nil
	}

	var patterns []entities.Pattern
	var parseErr error
	list.ForEach(func(idx, item gjson.Result) bool {
		pattern, err := p.parsePattern(item)
		if err != nil {
			parseErr = fmt.Errorf("%s[%d]: %w", field, int(idx.Int()), err)
			return false
		}
		patterns = append(patterns, pattern)
		return true
	})
	return patterns, parseErr
}

func (p *Parser) parsePattern(item gjson.Result) (entities.Pattern, error) {
	dto := patternDTO{
		Kind:      item.Get("kind").String(),
		Position:  item.Get("position").Float(),
		Duration:  item.Get("duration").Float(),
		Frequency: item.Get("frequency").Float(),
		Support:   item.Get("support").Float(),
	}
	if err := p.validate.Validate(dto); err != nil {
		return entities.Pattern{}, apperrors.ErrInvalidPattern(item.Get("key").String(), err.Error())
	}

	kind := entities.PatternKind(dto.Kind)
	if dto.Kind == "" {
		kind = entities.PatternKindGeneric
	}

	pattern := entities.Pattern{
		Kind:      kind,
		Type:      item.Get("type").String(),
		Position:  dto.Position,
		Duration:  dto.Duration,
		Frequency: dto.Frequency,
		Support:   dto.Support,
		Sentiment: item.Get("sentiment").Float(),
		Key:       item.Get("key").String(),
	}
	for _, element := range item.Get("elements").Array() {
		pattern.Elements = append(pattern.Elements, element.String())
	}
	if v := item.Get("emotion_intensity"); v.Exists() {
		f := v.Float()
		pattern.EmotionIntensity = &f
	}
	if v := item.Get("conflict_level"); v.Exists() {
		f := v.Float()
		pattern.ConflictLevel = &f
	}
	if v := item.Get("confidence"); v.Exists() {
		f := v.Float()
		pattern.Confidence = &f
	}
	return pattern, nil
}

// parseTime accepts a float second count or an SRT-style timecode string.
func parseTime(value gjson.Result) (entities.TimeCode, error) {
	switch value.Type {
	case gjson.Number:
		return entities.TimeCodeFromSeconds(value.Float()), nil
	case gjson.String:
		return entities.ParseTimecode(value.String())
	default:
		return entities.TimeCode{}, apperrors.ErrMalformedTimecode(value.Raw, "start/end")
	}
}
