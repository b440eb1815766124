package entities

// Enhancement describes one field whose value intensified between versions.
type Enhancement struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Factor      float64 `json:"factor"`
}

// PatternChange is a pattern present on only one side of the diff, with its
// impact score (support × confidence).
type PatternChange struct {
	Pattern Pattern `json:"pattern"`
	Impact  float64 `json:"impact"`
}

// EnhancedPattern is a pattern present on both sides whose fields
// intensified past the configured ratios.
type EnhancedPattern struct {
	Pattern      Pattern       `json:"pattern"`
	Original     Pattern       `json:"original"`
	Impact       float64       `json:"impact"`
	Enhancements []Enhancement `json:"enhancements"`
}

// AlignmentResult is the output of the pattern diff: what was added, what
// was removed and what was intensified, each sorted by descending impact.
type AlignmentResult struct {
	Added    []PatternChange   `json:"added"`
	Removed  []PatternChange   `json:"removed"`
	Enhanced []EnhancedPattern `json:"enhanced"`
}
