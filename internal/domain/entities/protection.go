package entities

// ProtectionLevel classifies how narratively important a segment is. Levels
// are totally ordered: NONE < LOW < MEDIUM < HIGH < CRITICAL.
type ProtectionLevel int

const (
	ProtectionLevelNone ProtectionLevel = iota
	ProtectionLevelLow
	ProtectionLevelMedium
	ProtectionLevelHigh
	ProtectionLevelCritical
)

var levelNames = map[ProtectionLevel]string{
	ProtectionLevelNone:     "none",
	ProtectionLevelLow:      "low",
	ProtectionLevelMedium:   "medium",
	ProtectionLevelHigh:     "high",
	ProtectionLevelCritical: "critical",
}

// String returns the stable lowercase name of the level.
func (l ProtectionLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "none"
}

// ProtectionStrategy is a concrete restriction applied to a protected
// segment.
type ProtectionStrategy string

const (
	StrategyLock          ProtectionStrategy = "lock"
	StrategyNoCompression ProtectionStrategy = "no_compression"
	StrategyNoTrim        ProtectionStrategy = "no_trim"
	StrategyNoDeletion    ProtectionStrategy = "no_deletion"
	StrategyWatermark     ProtectionStrategy = "watermark"
	StrategyChecksum      ProtectionStrategy = "checksum"
)

// ProtectionInfo is the protection annotation carried in segment metadata.
type ProtectionInfo struct {
	Level      ProtectionLevel      `json:"level"`
	Strategies []ProtectionStrategy `json:"strategies"`
	Rules      []string             `json:"rules"`
	Checksum   string               `json:"checksum,omitempty"`
	Protected  bool                 `json:"protected"`
}

// HasStrategy reports whether the given strategy is active.
func (p *ProtectionInfo) HasStrategy(strategy ProtectionStrategy) bool {
	for _, s := range p.Strategies {
		if s == strategy {
			return true
		}
	}
	return false
}

// AddStrategy appends a strategy if not already present.
func (p *ProtectionInfo) AddStrategy(strategy ProtectionStrategy) {
	if !p.HasStrategy(strategy) {
		p.Strategies = append(p.Strategies, strategy)
	}
}

// Clone returns a deep copy.
func (p *ProtectionInfo) Clone() *ProtectionInfo {
	out := *p
	out.Strategies = append([]ProtectionStrategy(nil), p.Strategies...)
	out.Rules = append([]string(nil), p.Rules...)
	return &out
}

// ProtectionStats is an observability summary over a marked sequence.
type ProtectionStats struct {
	TotalSegments     int            `json:"total_segments"`
	ProtectedSegments int            `json:"protected_segments"`
	ByLevel           map[string]int `json:"by_level"`
	ByStrategy        map[string]int `json:"by_strategy"`
}
