package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// PatternKind selects how a pattern's cross-version identity key is derived.
// The set is closed so key derivation is total.
type PatternKind string

const (
	PatternKindSequence  PatternKind = "sequence"
	PatternKindNarrative PatternKind = "narrative"
	PatternKindGeneric   PatternKind = "generic"
)

// Pattern type tags.
const (
	PatternTypeOpening    = "opening"
	PatternTypeClimax     = "climax"
	PatternTypeConflict   = "conflict"
	PatternTypeResolution = "resolution"
	PatternTypeTransition = "transition"
)

// Pattern is an extracted narrative motif used for cross-version comparison.
// Two patterns are the same pattern iff their identity keys match.
type Pattern struct {
	Kind             PatternKind `json:"kind"`
	Type             string      `json:"type"`
	Elements         []string    `json:"elements,omitempty"`
	Position         float64     `json:"position"`
	Duration         float64     `json:"duration"`
	Frequency        float64     `json:"frequency"`
	Support          float64     `json:"support"`
	Sentiment        float64     `json:"sentiment"`
	EmotionIntensity *float64    `json:"emotion_intensity,omitempty"`
	ConflictLevel    *float64    `json:"conflict_level,omitempty"`
	Confidence       *float64    `json:"confidence,omitempty"`
	Key              string      `json:"key,omitempty"`
}

// IdentityKey returns the cross-version identity of the pattern. An explicit
// Key wins; otherwise derivation is per-kind: ordered element list for
// sequence patterns, type plus element sequence for narrative patterns, and
// a stable hash of the canonical field subset for everything else.
func (p *Pattern) IdentityKey() string {
	if p.Key != "" {
		return p.Key
	}
	switch p.Kind {
	case PatternKindSequence:
		return "seq:" + strings.Join(p.Elements, ">")
	case PatternKindNarrative:
		return "nar:" + p.Type + ":" + strings.Join(p.Elements, ">")
	default:
		canonical := fmt.Sprintf("%s|%.4f|%.4f|%.4f", p.Type, p.Position, p.Duration, p.Frequency)
		sum := sha256.Sum256([]byte(canonical))
		return "gen:" + hex.EncodeToString(sum[:8])
	}
}

// ConfidenceOrDefault returns the confidence, defaulting to 1.0 when absent.
func (p *Pattern) ConfidenceOrDefault() float64 {
	if p.Confidence == nil {
		return 1.0
	}
	return *p.Confidence
}
