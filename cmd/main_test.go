package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aymen-fkir/sku-review-generator/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LLM_PROVIDER", "LLM_BASE_URL", "LLM_MODEL", "SUPABASE_URL", "SUPABASE_KEY", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// reviewServer answers chat completions with numbered reviews.
func reviewServer(t *testing.T) *httptest.Server {
	t.Helper()
	var n atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": fmt.Sprintf("Review %d, using it daily and happy so far", n.Add(1)),
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()
	cfg := fmt.Sprintf(`llm:
  provider: openai
  base_url: %s
  model: test-model
  timeout: 5s
  benefit_analysis: false
quantity:
  reviews_per_sku:
    min: 2
    max: 2
  discount_category: FMCG
  sku_cooldown: 0s
checkpoint:
  enabled: true
  dir: %s
  save_interval: 4
  max_checkpoints: 5
logging:
  level: error
`, baseURL, filepath.Join(dir, "checkpoints"))
	path := filepath.Join(dir, "reviewgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestSampleCommand(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "products.tsv")

	out, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "sample", path)
	require.NoError(t, err)
	assert.Contains(t, out, "sample written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "sku_id\tName\tbrand"))
}

func TestInitCommand(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "reviewgen.yaml")

	_, err := execute(t, "--config", path, "init")
	require.NoError(t, err)
	_, err = execute(t, "--config", path, "init")
	assert.ErrorContains(t, err, "already exists")
	_, err = execute(t, "--config", path, "init", "--force")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Quantity, cfg.Quantity)
}

func TestGenerateCommand(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, reviewServer(t).URL)
	input := filepath.Join(dir, "products.csv")
	output := filepath.Join(dir, "reviews.tsv")

	_, err := execute(t, "--config", cfgPath, "sample", input)
	require.NoError(t, err)

	out, err := execute(t, "--config", cfgPath, "generate", "--input", input, "--output", output, "--seed", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "generated 6 reviews for 3 SKUs (2 per SKU, mode standard)")
	assert.Contains(t, out, "distinct usernames: 6")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "sku_id\tsku_name\trating\treview\tpost_date\tusername", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "CER0576\tCeraVe - CeraVe Moisturizing Cream\t"))

	out, err = execute(t, "--config", cfgPath, "checkpoints", "--input", input)
	require.NoError(t, err)
	assert.Contains(t, out, "final")
	assert.Contains(t, out, "latest: 6 reviews, 2 per SKU")
}

func TestGenerateCommand_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "http://127.0.0.1:1")
	input := filepath.Join(dir, "products.csv")
	_, err := execute(t, "--config", cfgPath, "sample", input)
	require.NoError(t, err)

	_, err = execute(t, "--config", cfgPath, "generate", "--input", input, "--format", "xlsx")
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "--config", cfgPath, "generate", "--input", input, "--mode", "turbo")
	assert.ErrorContains(t, err, "unknown mode")

	_, err = execute(t, "--config", cfgPath, "generate", "--input", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, err = execute(t, "--config", cfgPath, "generate", "--input", "storage://inbox/products.csv")
	assert.ErrorContains(t, err, "storage is not configured")
}

func TestPublishedWithoutStorage(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "published")
	assert.ErrorContains(t, err, "storage is not configured")
}

func TestCheckpointsCommand_Empty(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "http://127.0.0.1:1")

	out, err := execute(t, "--config", cfgPath, "checkpoints", "--input", "products.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "no checkpoints for products.csv")
}

func TestDefaultOutput(t *testing.T) {
	assert.Equal(t, "generated_reviews_products.tsv", defaultOutput("/tmp/in/products.csv", "tsv"))
	assert.Equal(t, "generated_reviews_products.sqlite", defaultOutput("products.parquet", "sqlite"))
}
