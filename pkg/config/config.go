package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable the analysis components read. It is built once
// by Load and never mutated afterwards; components receive it by reference.
type Config struct {
	Language   string `envconfig:"LANGUAGE" default:"zh"`
	Alignment  AlignmentConfig
	Protection ProtectionConfig
	Sync       SyncConfig
	Balance    BalanceConfig
	Pipeline   PipelineConfig
	Keywords   KeywordTables `ignored:"true"`
}

// AlignmentConfig holds the pattern-alignment enhancement thresholds. A field
// is considered intensified when rewritten/original exceeds its ratio.
type AlignmentConfig struct {
	EmotionRatio   float64 `envconfig:"ALIGN_EMOTION_RATIO" default:"1.5"`
	DurationRatio  float64 `envconfig:"ALIGN_DURATION_RATIO" default:"1.35"`
	ConflictRatio  float64 `envconfig:"ALIGN_CONFLICT_RATIO" default:"2.0"`
	FrequencyRatio float64 `envconfig:"ALIGN_FREQUENCY_RATIO" default:"1.5"`
	SupportRatio   float64 `envconfig:"ALIGN_SUPPORT_RATIO" default:"1.8"`
	MaxPatterns    int     `envconfig:"ALIGN_MAX_PATTERNS" default:"50"`
}

// ProtectionConfig holds the default protection-rule thresholds.
type ProtectionConfig struct {
	EmotionThreshold float64 `envconfig:"PROTECT_EMOTION_THRESHOLD" default:"0.8"`
}

// SyncConfig holds the synchronization validator thresholds. The confidence
// values are uncalibrated defaults carried over from production tuning, not
// empirically derived.
type SyncConfig struct {
	Precision           float64 `envconfig:"SYNC_PRECISION" default:"0.1"`
	MaxGap              float64 `envconfig:"SYNC_MAX_GAP" default:"10.0"`
	MinSegmentDuration  float64 `envconfig:"SYNC_MIN_DURATION" default:"0.5"`
	MaxSegmentDuration  float64 `envconfig:"SYNC_MAX_DURATION" default:"10.0"`
	WindowSeconds       float64 `envconfig:"SYNC_WINDOW_SECONDS" default:"0.5"`
	QuietEnergy         float64 `envconfig:"SYNC_QUIET_ENERGY" default:"0.01"`
	ActiveEnergy        float64 `envconfig:"SYNC_ACTIVE_ENERGY" default:"0.03"`
	EnergyRatio         float64 `envconfig:"SYNC_ENERGY_RATIO" default:"3.0"`
	TinyGap             float64 `envconfig:"SYNC_TINY_GAP" default:"0.1"`
	ConfidenceEnergy    float64 `envconfig:"SYNC_CONFIDENCE_ENERGY" default:"0.8"`
	ConfidenceTinyGap   float64 `envconfig:"SYNC_CONFIDENCE_TINY_GAP" default:"0.9"`
	ConfidencePrecision float64 `envconfig:"SYNC_CONFIDENCE_PRECISION" default:"0.7"`
}

// BalanceConfig holds the narrative balance scoring thresholds and weights.
type BalanceConfig struct {
	MinCoherence     float64 `envconfig:"BALANCE_MIN_COHERENCE" default:"0.6"`
	TargetRatioLow   float64 `envconfig:"BALANCE_TARGET_RATIO_LOW" default:"0.3"`
	TargetRatioHigh  float64 `envconfig:"BALANCE_TARGET_RATIO_HIGH" default:"0.7"`
	SemanticWeight   float64 `envconfig:"BALANCE_SEMANTIC_WEIGHT" default:"0.7"`
	TimeWeight       float64 `envconfig:"BALANCE_TIME_WEIGHT" default:"0.3"`
	ConnectorBonus   float64 `envconfig:"BALANCE_CONNECTOR_BONUS" default:"0.3"`
	CoherenceWeight  float64 `envconfig:"BALANCE_COHERENCE_WEIGHT" default:"0.35"`
	LengthWeight     float64 `envconfig:"BALANCE_LENGTH_WEIGHT" default:"0.25"`
	ShareWeight      float64 `envconfig:"BALANCE_SHARE_WEIGHT" default:"0.25"`
	RhythmWeight     float64 `envconfig:"BALANCE_RHYTHM_WEIGHT" default:"0.15"`
	ShareDurationW   float64 `envconfig:"BALANCE_SHARE_DURATION_W" default:"0.4"`
	ShareKeywordW    float64 `envconfig:"BALANCE_SHARE_KEYWORD_W" default:"0.4"`
	ShareRhythmW     float64 `envconfig:"BALANCE_SHARE_RHYTHM_W" default:"0.2"`
	RhythmIdealRatio float64 `envconfig:"BALANCE_RHYTHM_IDEAL_RATIO" default:"0.3"`
	ExtendRatio      float64 `envconfig:"BALANCE_EXTEND_RATIO" default:"0.2"`
	ExtendCapSec     float64 `envconfig:"BALANCE_EXTEND_CAP_SEC" default:"2.0"`
	CompressKeep     float64 `envconfig:"BALANCE_COMPRESS_KEEP" default:"0.7"`
}

// PipelineConfig controls orchestration, not scoring.
type PipelineConfig struct {
	Workers int `envconfig:"PIPELINE_WORKERS" default:"4"`
}

// KeywordTables holds the per-language lexicons used by scoring and by the
// protection rules. Defaults ship in-code; a YAML file pointed at by
// KEYWORDS_FILE overrides any non-empty table.
type KeywordTables struct {
	HookKeywords       map[string][]string `yaml:"hook_keywords"`
	Connectives        map[string][]string `yaml:"connectives"`
	ImportanceKeywords map[string][]string `yaml:"importance_keywords"`
	CriticalTags       []string            `yaml:"critical_tags"`
	BoundaryTags       []string            `yaml:"boundary_tags"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{}
	if err := envconfig.Process("CLIP", config); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	config.Keywords = defaultKeywordTables()
	if path := os.Getenv("CLIP_KEYWORDS_FILE"); path != "" {
		if err := config.Keywords.mergeFromFile(path); err != nil {
			return nil, fmt.Errorf("load keyword tables: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Alignment.MaxPatterns <= 0 {
		return fmt.Errorf("ALIGN_MAX_PATTERNS must be positive")
	}
	if c.Protection.EmotionThreshold < 0 || c.Protection.EmotionThreshold > 1 {
		return fmt.Errorf("PROTECT_EMOTION_THRESHOLD must be in [0,1]")
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be positive")
	}
	sum := c.Balance.CoherenceWeight + c.Balance.LengthWeight +
		c.Balance.ShareWeight + c.Balance.RhythmWeight
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("balance weights must sum to 1.0, got %.3f", sum)
	}
	return nil
}

// Hooks returns the hook-keyword list for lang, falling back to the default
// language table.
func (k KeywordTables) Hooks(lang string) []string {
	return k.lookup(k.HookKeywords, lang)
}

// Connectors returns the connective-term list for lang.
func (k KeywordTables) Connectors(lang string) []string {
	return k.lookup(k.Connectives, lang)
}

// Importance returns the importance-keyword list for lang.
func (k KeywordTables) Importance(lang string) []string {
	return k.lookup(k.ImportanceKeywords, lang)
}

func (k KeywordTables) lookup(table map[string][]string, lang string) []string {
	if list, ok := table[lang]; ok {
		return list
	}
	return table["zh"]
}

func (k *KeywordTables) mergeFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var override KeywordTables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(override.HookKeywords) > 0 {
		k.HookKeywords = override.HookKeywords
	}
	if len(override.Connectives) > 0 {
		k.Connectives = override.Connectives
	}
	if len(override.ImportanceKeywords) > 0 {
		k.ImportanceKeywords = override.ImportanceKeywords
	}
	if len(override.CriticalTags) > 0 {
		k.CriticalTags = override.CriticalTags
	}
	if len(override.BoundaryTags) > 0 {
		k.BoundaryTags = override.BoundaryTags
	}
	return nil
}

func defaultKeywordTables() KeywordTables {
	return KeywordTables{
		HookKeywords: map[string][]string{
			"zh": {"震撼", "不敢相信", "惊人", "意外", "反转", "真相", "秘密"},
			"en": {"shocking", "unbelievable", "amazing", "unexpected", "twist", "truth", "secret"},
		},
		Connectives: map[string][]string{
			"zh": {"然后", "接着", "于是", "因此", "但是", "然而", "最后", "首先"},
			"en": {"then", "next", "so", "therefore", "but", "however", "finally", "first"},
		},
		ImportanceKeywords: map[string][]string{
			"zh": {"重要", "关键", "核心", "主要", "突然", "意外", "结果", "最后"},
			"en": {"important", "key", "main", "suddenly", "unexpected", "result", "finally"},
		},
		CriticalTags: []string{"climax", "turning_point", "finale", "key_scene"},
		BoundaryTags: []string{"introduction", "climax", "resolution"},
	}
}
