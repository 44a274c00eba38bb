// Package config loads the review generator configuration from reviewgen.yaml.
// Every component reads its options from Config; nothing mutates it after Load.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file looked up when no path is given.
const DefaultConfigFile = "reviewgen.yaml"

// DateLayout is the layout of every date in the config and in the output.
const DateLayout = "2006-01-02"

// Config holds all review generator configuration.
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Language   LanguageConfig   `yaml:"language"`
	Ratings    map[int]float64  `yaml:"rating_distribution"`
	Length     LengthConfig     `yaml:"review_length"`
	Dates      DateConfig       `yaml:"dates"`
	Usernames  UsernameConfig   `yaml:"usernames"`
	Content    ContentConfig    `yaml:"content"`
	Quantity   QuantityConfig   `yaml:"quantity"`
	Output     OutputConfig     `yaml:"output"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
}

// LLMConfig configures the text generation provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, gemini
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`

	ReviewMaxTokens   int     `yaml:"review_max_tokens"`
	ReviewTemperature float64 `yaml:"review_temperature"`
	RetryTemperature  float64 `yaml:"retry_temperature"`

	BenefitAnalysis    bool    `yaml:"benefit_analysis"`
	BenefitMaxTokens   int     `yaml:"benefit_max_tokens"`
	BenefitTemperature float64 `yaml:"benefit_temperature"`
}

// RequestTimeout parses Timeout, defaulting to 30s.
func (c LLMConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// LanguageConfig configures the language-mix distribution and its prompt examples.
type LanguageConfig struct {
	Distribution map[string]float64  `yaml:"distribution"`
	Examples     map[string][]string `yaml:"examples"`
}

// Range is an inclusive integer range.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// LengthConfig configures the review length buckets.
type LengthConfig struct {
	Distribution map[string]float64 `yaml:"distribution"`
	WordLimits   map[string]Range   `yaml:"word_limits"`
	MaxSentences int                `yaml:"max_sentences"`
}

// DateConfig configures the post-date window.
type DateConfig struct {
	Start            string  `yaml:"start_date"`
	End              string  `yaml:"end_date"`
	OrganicPacing    bool    `yaml:"organic_pacing"`
	HeavyDaysPercent float64 `yaml:"heavy_days_percentage"`
	HeavyDayWeight   float64 `yaml:"heavy_day_weight"`
}

// Window returns the parsed start and end dates.
func (c DateConfig) Window() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, c.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing start_date %q: %w", c.Start, err)
	}
	end, err := time.Parse(DateLayout, c.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing end_date %q: %w", c.End, err)
	}
	return start, end, nil
}

// UsernameConfig configures username diversity.
type UsernameConfig struct {
	Distribution   map[string]float64 `yaml:"distribution"`
	FunkyHandles   []string           `yaml:"funky_handles"`
	FirstNamesFile string             `yaml:"first_names_file"`
	LastNamesFile  string             `yaml:"last_names_file"`
	MaxAttempts    int                `yaml:"max_attempts"`
}

// ContentConfig configures content focus, emoji use and phrase rules.
type ContentConfig struct {
	ProductSpecificRatio float64  `yaml:"product_specific_ratio"`
	EmojiPercent         float64  `yaml:"emojis_percentage"`
	ForbiddenWords       []string `yaml:"forbidden_words"`
	AllowedAbbreviations []string `yaml:"allowed_abbreviations"`
	RepetitivePhrases    []string `yaml:"repetitive_phrases"`
	MaxRepetitivePhrases int      `yaml:"max_repetitive_phrases"`
}

// QuantityConfig configures how many reviews are generated and for which rows.
type QuantityConfig struct {
	ReviewsPerSKU    Range  `yaml:"reviews_per_sku"`
	DiscountCategory string `yaml:"discount_category"`
	SKUCooldown      string `yaml:"sku_cooldown"`
}

// Cooldown parses SKUCooldown, defaulting to 500ms. A zero duration disables it.
func (c QuantityConfig) Cooldown() time.Duration {
	if strings.TrimSpace(c.SKUCooldown) == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(c.SKUCooldown)
	if err != nil || d < 0 {
		return 500 * time.Millisecond
	}
	return d
}

// OutputConfig configures how results are serialized.
type OutputConfig struct {
	Columns   []string `yaml:"columns"`
	Separator string   `yaml:"separator"`
	Format    string   `yaml:"format"` // tsv, csv, parquet, sqlite
}

// CheckpointConfig configures checkpointing.
type CheckpointConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Dir            string `yaml:"dir"`
	SaveInterval   int    `yaml:"save_interval"`
	MaxCheckpoints int    `yaml:"max_checkpoints"`
}

// StorageConfig configures publishing results to a Supabase storage bucket.
type StorageConfig struct {
	URL    string `yaml:"url"`
	Key    string `yaml:"key"`
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// Enabled reports whether publishing is configured.
func (c StorageConfig) Enabled() bool {
	return c.URL != "" && c.Key != "" && c.Bucket != ""
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

// ServerConfig configures the HTTP upload shell.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadMB    int    `yaml:"max_upload_mb"`
	RequestTimeout string `yaml:"request_timeout"`
}

// Timeout parses RequestTimeout, defaulting to 30m.
func (c ServerConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.RequestTimeout))
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// MaxUploadBytes is the upload size limit, defaulting to 10 MiB.
func (c ServerConfig) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

// Load reads the config at path. A missing file yields Default().
// Environment overrides are applied after the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		if err := cfg.replaceDistributions(data); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "gemini":
			c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		c.Storage.URL = v
	}
	if v := os.Getenv("SUPABASE_KEY"); v != "" {
		c.Storage.Key = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// distributions mirrors the map-valued sections of Config. yaml.v3 merges into
// existing maps, so a distribution given in the file must replace the default one
// instead of being merged with it.
type distributions struct {
	Language struct {
		Distribution map[string]float64  `yaml:"distribution"`
		Examples     map[string][]string `yaml:"examples"`
	} `yaml:"language"`
	Ratings map[int]float64 `yaml:"rating_distribution"`
	Length  struct {
		Distribution map[string]float64 `yaml:"distribution"`
		WordLimits   map[string]Range   `yaml:"word_limits"`
	} `yaml:"review_length"`
	Usernames struct {
		Distribution map[string]float64 `yaml:"distribution"`
	} `yaml:"usernames"`
}

func (c *Config) replaceDistributions(data []byte) error {
	var d distributions
	if err := yaml.Unmarshal(data, &d); err != nil {
		return err
	}
	if d.Language.Distribution != nil {
		c.Language.Distribution = d.Language.Distribution
	}
	if d.Language.Examples != nil {
		c.Language.Examples = d.Language.Examples
	}
	if d.Ratings != nil {
		c.Ratings = d.Ratings
	}
	if d.Length.Distribution != nil {
		c.Length.Distribution = d.Length.Distribution
	}
	if d.Length.WordLimits != nil {
		c.Length.WordLimits = d.Length.WordLimits
	}
	if d.Usernames.Distribution != nil {
		c.Usernames.Distribution = d.Usernames.Distribution
	}
	return nil
}
