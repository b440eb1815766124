package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	apperrors "github.com/clipsmith-dev/clip-analyzer/errors"
)

// Metadata keys reserved for analysis annotations.
const (
	MetadataKeyProtection = "protection"
)

// Segment is the unit of narrative content: one subtitle line or scene.
// Created by an external producer; annotated in place by the protection
// engine; owned by the balance controller during an analysis run.
type Segment struct {
	ID               string         `json:"id,omitempty"`
	Start            TimeCode       `json:"start"`
	End              TimeCode       `json:"end"`
	Text             string         `json:"text"`
	Tags             []string       `json:"tags,omitempty"`
	EmotionIntensity *float64       `json:"emotion_intensity,omitempty"`
	Characters       []string       `json:"characters,omitempty"`
	Compressible     bool           `json:"compressible"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// NewSegment constructs a validated segment. End must not precede start and
// emotion intensity, when present, must lie in [-1, 1].
func NewSegment(start, end TimeCode, text string) (*Segment, error) {
	if end.Before(start) {
		return nil, apperrors.ErrInvalidSegment(
			fmt.Sprintf("end %s precedes start %s", end, start))
	}
	return &Segment{
		Start:        start,
		End:          end,
		Text:         text,
		Compressible: true,
		Metadata:     make(map[string]any),
	}, nil
}

// WithEmotion sets the emotion intensity, validating its range.
func (s *Segment) WithEmotion(intensity float64) (*Segment, error) {
	if intensity < -1 || intensity > 1 {
		return nil, apperrors.ErrInvalidSegment(
			fmt.Sprintf("emotion intensity %.3f outside [-1,1]", intensity))
	}
	s.EmotionIntensity = &intensity
	return s, nil
}

// Duration returns the segment length in seconds.
func (s *Segment) Duration() float64 {
	return s.End.Seconds() - s.Start.Seconds()
}

// HasTag reports whether the segment carries the given tag.
func (s *Segment) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Identity returns the explicit id if present, else a stable hash of the
// segment's text and time range. Used for protection logging and reports.
func (s *Segment) Identity() string {
	if s.ID != "" {
		return s.ID
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", s.Start, s.End, s.Text)))
	return hex.EncodeToString(sum[:8])
}

// Protection returns the protection annotation, if any.
func (s *Segment) Protection() (*ProtectionInfo, bool) {
	if s.Metadata == nil {
		return nil, false
	}
	info, ok := s.Metadata[MetadataKeyProtection].(*ProtectionInfo)
	return info, ok
}

// SetProtection stores the protection annotation on the segment.
func (s *Segment) SetProtection(info *ProtectionInfo) {
	if s.Metadata == nil {
		s.Metadata = make(map[string]any)
	}
	s.Metadata[MetadataKeyProtection] = info
}

// Clone returns a deep copy. The balance controller works on clones so the
// caller's sequence is never mutated behind its back.
func (s *Segment) Clone() *Segment {
	out := *s
	out.Tags = append([]string(nil), s.Tags...)
	out.Characters = append([]string(nil), s.Characters...)
	if s.EmotionIntensity != nil {
		v := *s.EmotionIntensity
		out.EmotionIntensity = &v
	}
	if s.Metadata != nil {
		out.Metadata = make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			if info, ok := v.(*ProtectionInfo); ok {
				out.Metadata[k] = info.Clone()
				continue
			}
			out.Metadata[k] = v
		}
	}
	return &out
}

// CloneSegments deep-copies a sequence.
func CloneSegments(segments []*Segment) []*Segment {
	out := make([]*Segment, len(segments))
	for i, s := range segments {
		out[i] = s.Clone()
	}
	return out
}

// TotalDuration sums the durations of a sequence, ignoring degenerate
// segments.
func TotalDuration(segments []*Segment) float64 {
	total := 0.0
	for _, s := range segments {
		if d := s.Duration(); d > 0 {
			total += d
		}
	}
	return total
}
