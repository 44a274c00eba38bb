package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LLM_PROVIDER", "LLM_BASE_URL", "LLM_MODEL", "OPENAI_API_KEY", "GEMINI_API_KEY", "SUPABASE_URL", "SUPABASE_KEY", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reviewgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_DistributionsReplaceDefaults(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
rating_distribution:
  5: 100
language:
  distribution:
    Hinglish: 1
quantity:
  reviews_per_sku: {min: 3, max: 4}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, map[int]float64{5: 100}, cfg.Ratings)
	assert.Equal(t, map[string]float64{"Hinglish": 1}, cfg.Language.Distribution)
	assert.Equal(t, Range{Min: 3, Max: 4}, cfg.Quantity.ReviewsPerSKU)
	// untouched sections keep their defaults
	assert.Equal(t, Default().Usernames.Distribution, cfg.Usernames.Distribution)
	assert.Equal(t, "FMCG", cfg.Quantity.DiscountCategory)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_MODEL", "llama-3")
	t.Setenv("LLM_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "key")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeYAML(t, "llm:\n  model: gpt-4o\n"))
	require.NoError(t, err)
	assert.Equal(t, "llama-3", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:8080/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Storage.Enabled())
}

func TestLoad_GeminiKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(writeYAML(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.LLM.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeYAML(t, "llm: [not, a, map]\n"))
	assert.ErrorContains(t, err, "parsing config")

	_, err = Load(writeYAML(t, `
llm:
  provider: llamafile
rating_distribution:
  1: 10
output:
  format: xlsx
  separator: "||"
  columns: [sku_id, stars]
quantity:
  reviews_per_sku: {min: 5, max: 2}
`))
	require.Error(t, err)
	for _, want := range []string{
		"llm.provider",
		"rating 1 outside 2-5",
		"output.format",
		"output.separator",
		`unknown column "stars"`,
		"quantity.reviews_per_sku",
	} {
		assert.ErrorContains(t, err, want)
	}
}

func TestValidate_WindowAndPercentages(t *testing.T) {
	cfg := Default()
	cfg.Dates.Start, cfg.Dates.End = "2025-12-31", "2025-01-01"
	cfg.Content.EmojiPercent = 120
	cfg.Length.WordLimits = map[string]Range{LengthShort: {Min: 5, Max: 10}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "before start_date")
	assert.ErrorContains(t, err, "content.emojis_percentage")
	assert.ErrorContains(t, err, `missing bucket "medium"`)
}

func TestSave_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "reviewgen.yaml")
	cfg := Default()
	cfg.Quantity.ReviewsPerSKU = Range{Min: 1, Max: 2}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDurations(t *testing.T) {
	assert.Equal(t, 30*time.Second, LLMConfig{}.RequestTimeout())
	assert.Equal(t, 5*time.Second, LLMConfig{Timeout: "5s"}.RequestTimeout())

	assert.Equal(t, 500*time.Millisecond, QuantityConfig{}.Cooldown())
	assert.Equal(t, time.Duration(0), QuantityConfig{SKUCooldown: "0s"}.Cooldown())
	assert.Equal(t, 500*time.Millisecond, QuantityConfig{SKUCooldown: "soon"}.Cooldown())

	assert.Equal(t, 30*time.Minute, ServerConfig{}.Timeout())
	assert.Equal(t, int64(10<<20), ServerConfig{}.MaxUploadBytes())
	assert.Equal(t, int64(2<<20), ServerConfig{MaxUploadMB: 2}.MaxUploadBytes())
}
