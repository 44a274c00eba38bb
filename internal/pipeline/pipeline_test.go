package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aymen-fkir/sku-review-generator/internal/checkpoint"
	"github.com/aymen-fkir/sku-review-generator/internal/config"
	"github.com/aymen-fkir/sku-review-generator/internal/models"
	"github.com/aymen-fkir/sku-review-generator/internal/textgen"
	"github.com/aymen-fkir/sku-review-generator/internal/usernames"
)

func TestMain(m *testing.M) {
	// opencensus, pulled in by the genai client, starts its worker in init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func testConfig(t *testing.T, perSKU int) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Quantity.ReviewsPerSKU = config.Range{Min: perSKU, Max: perSKU}
	cfg.Quantity.SKUCooldown = "0s"
	cfg.Checkpoint.Dir = t.TempDir()
	return cfg
}

func products(ids ...string) []models.Product {
	var out []models.Product
	for _, id := range ids {
		out = append(out, models.NewProduct(models.SKURow{
			SKUID: id, Name: "Moisturizing Cream " + id, Brand: "CeraVe", DiscountCategory: "FMCG",
			Classifier1: "PERSONAL CARE", Classifier2: "SKIN CARE", Classifier3: "BODY CARE",
		}))
	}
	return out
}

// counting returns a generator answering with numbered, distinct reviews.
func counting(calls *int) textgen.Generator {
	return textgen.GeneratorFunc(func(context.Context, textgen.Request) (string, error) {
		*calls++
		return fmt.Sprintf("Review %d: skin feels soft after a week", *calls), nil
	})
}

func TestRun_OneSKUFiveReviews(t *testing.T) {
	cfg := testConfig(t, 5)
	var calls int
	p := New(cfg, counting(&calls), nil, nil, nil)

	res, err := p.Run(context.Background(), products("CER0576"), RunOptions{InputFile: "skus.csv", Seed: 7})
	require.NoError(t, err)
	require.Len(t, res.Records, 5)
	assert.Equal(t, 5, calls)
	assert.Equal(t, 5, res.ReviewsPerSKU)
	assert.Equal(t, ModeStandard, res.Mode)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Checkpoints)

	start, end, err := cfg.Dates.Window()
	require.NoError(t, err)
	for _, r := range res.Records {
		assert.Equal(t, "CER0576", r.SKUID)
		assert.Equal(t, "CeraVe - Moisturizing Cream CER0576", r.SKUName)
		assert.GreaterOrEqual(t, r.Rating, 2)
		assert.LessOrEqual(t, r.Rating, 5)
		d, err := time.Parse(config.DateLayout, r.PostDate)
		require.NoError(t, err)
		assert.False(t, d.Before(start) || d.After(end), "post date %s outside window", r.PostDate)
	}
	assert.Equal(t, 5, res.Summary.DistinctUsernames)
	assert.Equal(t, 1, res.Summary.SKUs)
}

func TestRun_FailingGeneratorUsesTemplates(t *testing.T) {
	cfg := testConfig(t, 4)
	gen := textgen.GeneratorFunc(func(context.Context, textgen.Request) (string, error) {
		return "", errors.New("provider unavailable")
	})
	p := New(cfg, gen, nil, nil, nil)

	res, err := p.Run(context.Background(), products("A", "B"), RunOptions{Seed: 3})
	require.NoError(t, err)
	require.Len(t, res.Records, 8)
	assert.Equal(t, 8, res.Fallbacks)
	for _, r := range res.Records {
		assert.Contains(t, r.Review, "skin hydration")
	}
}

func TestRun_SeededRunsMatch(t *testing.T) {
	cfg := testConfig(t, 3)
	run := func() []models.ReviewRecord {
		var calls int
		res, err := New(cfg, counting(&calls), nil, nil, nil).Run(context.Background(), products("A", "B"), RunOptions{Seed: 42})
		require.NoError(t, err)
		return res.Records
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("seeded runs differ (-first +second):\n%s", diff)
	}
}

func TestRun_CheckpointCadence(t *testing.T) {
	cfg := testConfig(t, 2)
	cfg.Checkpoint.SaveInterval = 3
	store := checkpoint.NewFileStore(cfg.Checkpoint.Dir, 10, nil)
	var calls int

	res, err := New(cfg, counting(&calls), nil, store, nil).Run(context.Background(), products("A", "B", "C"), RunOptions{InputFile: "skus.csv", Mode: ModeStandard, Seed: 1})
	require.NoError(t, err)

	require.Len(t, res.Checkpoints, 3)
	for i, seq := range []string{"_1_", "_2_", "_final_"} {
		assert.Contains(t, filepath.Base(res.Checkpoints[i]), "skus_standard"+seq)
	}

	cp, ok := store.Latest("skus.csv", ModeStandard)
	require.True(t, ok)
	assert.Equal(t, checkpoint.Final, cp.CheckpointNumber)
	assert.Equal(t, 6, cp.TotalReviews)
	assert.Equal(t, 2, cp.ReviewsPerSKU)
	assert.Equal(t, res.RunID, cp.RunID)
}

func TestRun_ResumeTopsUpPartialSKU(t *testing.T) {
	cfg := testConfig(t, 3)
	var calls int
	first, err := New(cfg, counting(&calls), nil, nil, nil).Run(context.Background(), products("A", "B"), RunOptions{Seed: 5})
	require.NoError(t, err)

	store := checkpoint.NewFileStore(t.TempDir(), 10, nil)
	partial := first.Records[:4]
	require.NotEmpty(t, store.Save(partial, "skus.csv", ModeMedium, "1", checkpoint.Meta{RunID: first.RunID, ReviewsPerSKU: 3}))

	// The counter keeps running so new texts never repeat restored ones.
	before := calls
	res, err := New(cfg, counting(&calls), nil, store, nil).Run(context.Background(), products("A", "B"),
		RunOptions{InputFile: "skus.csv", Mode: ModeMedium, Resume: true, Seed: 6})
	require.NoError(t, err)

	assert.Equal(t, 2, calls-before)
	assert.Equal(t, 4, res.Resumed)
	assert.Equal(t, 3, res.ReviewsPerSKU)
	require.Len(t, res.Records, 6)
	if diff := cmp.Diff(partial, res.Records[:4]); diff != "" {
		t.Errorf("resumed records changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, "B", res.Records[4].SKUID)
	assert.Equal(t, "B", res.Records[5].SKUID)
	assert.Equal(t, 6, res.Summary.DistinctUsernames)
}

func TestRun_ResumeRepeatedSKUByPosition(t *testing.T) {
	cfg := testConfig(t, 3)
	store := checkpoint.NewFileStore(t.TempDir(), 10, nil)
	var calls int
	first, err := New(cfg, counting(&calls), nil, nil, nil).Run(context.Background(), products("A"), RunOptions{Seed: 9})
	require.NoError(t, err)
	require.NotEmpty(t, store.Save(first.Records, "skus.csv", ModeStandard, "1", checkpoint.Meta{ReviewsPerSKU: 3}))

	before := calls
	res, err := New(cfg, counting(&calls), nil, store, nil).Run(context.Background(), products("A", "A"),
		RunOptions{InputFile: "skus.csv", Resume: true, Seed: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, calls-before)
	assert.Equal(t, 3, res.Resumed)
	assert.Len(t, res.Records, 6)
}

func TestRun_ResumeKeepsUsernamesDistinct(t *testing.T) {
	cfg := testConfig(t, 3)
	cfg.Usernames.Distribution = map[string]float64{config.StyleFunkyHandle: 100}
	handles := []string{"h1", "h2", "h3", "h4", "h5", "h6"}
	pools := usernames.Pools{FunkyHandles: handles}

	store := checkpoint.NewFileStore(t.TempDir(), 10, nil)
	var partial []models.ReviewRecord
	for _, h := range handles[:3] {
		partial = append(partial, models.ReviewRecord{SKUID: "A", Rating: 5, Review: "old review by " + h, PostDate: "2025-10-01", Username: h})
	}
	require.NotEmpty(t, store.Save(partial, "skus.csv", ModeStandard, "1", checkpoint.Meta{ReviewsPerSKU: 3}))

	var calls int
	res, err := New(cfg, counting(&calls), nil, store, nil).WithPools(pools).Run(context.Background(), products("A", "B"),
		RunOptions{InputFile: "skus.csv", Resume: true, Seed: 11})
	require.NoError(t, err)
	require.Len(t, res.Records, 6)

	var got []string
	for _, r := range res.Records {
		got = append(got, r.Username)
	}
	assert.ElementsMatch(t, handles, got)
}

func TestRun_ResumeWithoutCheckpointStartsFresh(t *testing.T) {
	cfg := testConfig(t, 2)
	store := checkpoint.NewFileStore(cfg.Checkpoint.Dir, 10, nil)
	var calls int

	res, err := New(cfg, counting(&calls), nil, store, nil).Run(context.Background(), products("A"), RunOptions{InputFile: "skus.csv", Resume: true, Seed: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Resumed)
	assert.Len(t, res.Records, 2)
}

func TestRun_CancellationSavesInterruptedCheckpoint(t *testing.T) {
	cfg := testConfig(t, 5)
	store := checkpoint.NewFileStore(cfg.Checkpoint.Dir, 10, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int
	gen := textgen.GeneratorFunc(func(ctx context.Context, _ textgen.Request) (string, error) {
		calls++
		if calls == 3 {
			cancel()
			return "", ctx.Err()
		}
		return fmt.Sprintf("Review %d about the cream", calls), nil
	})

	res, err := New(cfg, gen, nil, store, nil).Run(ctx, products("A"), RunOptions{InputFile: "skus.csv", Seed: 8})
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsInterrupted(err))
	assert.Len(t, res.Records, 2)
	assert.Zero(t, res.Fallbacks)

	cp, ok := store.Latest("skus.csv", ModeStandard)
	require.True(t, ok)
	assert.Equal(t, checkpoint.Interrupted, cp.CheckpointNumber)
	assert.Len(t, cp.Results, 2)
}

func TestRun_CooldownIsCancellable(t *testing.T) {
	cfg := testConfig(t, 1)
	cfg.Quantity.SKUCooldown = "1h"
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var calls int

	res, err := New(cfg, counting(&calls), nil, nil, nil).Run(ctx, products("A", "B"), RunOptions{Seed: 1})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, res.Records, 1)
}

func TestRun_UnknownMode(t *testing.T) {
	var calls int
	_, err := New(testConfig(t, 1), counting(&calls), nil, nil, nil).Run(context.Background(), products("A"), RunOptions{Mode: "turbo"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown mode"))
}

func TestReviewRange(t *testing.T) {
	configured := config.Range{Min: 17, Max: 22}
	cases := map[string]config.Range{
		"":              configured,
		"standard":      configured,
		"quick":         {Min: 1, Max: 1},
		"Medium":        {Min: 3, Max: 5},
		"comprehensive": {Min: 15, Max: 20},
	}
	for mode, want := range cases {
		got, err := ReviewRange(mode, configured)
		require.NoError(t, err, mode)
		assert.Equal(t, want, got, mode)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]models.ReviewRecord{
		{SKUID: "A", Rating: 5, Username: "a"},
		{SKUID: "A", Rating: 5, Username: "b"},
		{SKUID: "B", Rating: 3, Username: "a"},
	})
	assert.Equal(t, Summary{SKUs: 2, Ratings: map[int]int{5: 2, 3: 1}, DistinctUsernames: 2}, s)
}
