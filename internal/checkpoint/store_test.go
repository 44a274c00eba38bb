package checkpoint

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aymen-fkir/sku-review-generator/internal/models"
)

func records(n int) []models.ReviewRecord {
	out := make([]models.ReviewRecord, n)
	for i := range out {
		out[i] = models.ReviewRecord{
			SKUID:    "SKU" + strconv.Itoa(i/5),
			SKUName:  "Dabur - Honey 250g",
			Rating:   2 + i%4,
			Review:   "review number " + strconv.Itoa(i),
			PostDate: "2025-10-01",
			Username: "user" + strconv.Itoa(i),
		}
	}
	return out
}

func TestSave_RoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir(), 10, nil)
	want := records(12)

	path := store.Save(want, "uploads/skus.csv", "standard", "1", Meta{RunID: "run-1", ReviewsPerSKU: 5})
	require.NotEmpty(t, path)
	assert.Regexp(t, regexp.MustCompile(`skus_standard_1_\d{8}_\d{6}_[0-9A-Z]{26}\.json$`), filepath.Base(path))

	got, count := store.LoadLatest("uploads/skus.csv", "standard")
	assert.Equal(t, len(want), count)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("restored records mismatch (-want +got):\n%s", diff)
	}

	cp, ok := store.Latest("uploads/skus.csv", "standard")
	require.True(t, ok)
	assert.Equal(t, "run-1", cp.RunID)
	assert.Equal(t, 5, cp.ReviewsPerSKU)
	assert.Equal(t, "1", cp.CheckpointNumber)
}

func TestLoadLatest_Empty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing"), 10, nil)

	got, count := store.LoadLatest("skus.csv", "quick")
	assert.Empty(t, got)
	assert.Zero(t, count)
	assert.Empty(t, store.List("skus.csv", "quick"))
}

func TestSave_Retention(t *testing.T) {
	const keep = 3
	store := NewFileStore(t.TempDir(), keep, nil)

	var paths []string
	for i := 1; i <= keep+1; i++ {
		paths = append(paths, store.Save(records(i), "skus.csv", "medium", strconv.Itoa(i), Meta{}))
	}

	entries := store.List("skus.csv", "medium")
	require.Len(t, entries, keep)
	assert.Equal(t, []string{"4", "3", "2"}, []string{entries[0].Number, entries[1].Number, entries[2].Number})

	_, err := os.Stat(paths[0])
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, count := store.LoadLatest("skus.csv", "medium")
	assert.Equal(t, 4, count)
}

func TestList_KeysAreSeparate(t *testing.T) {
	store := NewFileStore(t.TempDir(), 10, nil)
	store.Save(records(1), "skus.csv", "quick", "1", Meta{})
	store.Save(records(2), "skus.csv", "medium", "1", Meta{})
	store.Save(records(3), "other.csv", "quick", Final, Meta{})

	assert.Len(t, store.List("skus.csv", "quick"), 1)
	assert.Len(t, store.List("skus.csv", "medium"), 1)

	entries := store.List("other.csv", "quick")
	require.Len(t, entries, 1)
	assert.Equal(t, Final, entries[0].Number)
	assert.Positive(t, entries[0].Size)
}

func TestLatest_SkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, 10, nil)
	store.Save(records(2), "skus.csv", "quick", "1", Meta{})
	newest := store.Save(records(3), "skus.csv", "quick", "2", Meta{})
	require.NoError(t, os.WriteFile(newest, []byte("{not json"), 0o644))

	_, count := store.LoadLatest("skus.csv", "quick")
	assert.Equal(t, 2, count)
}

func TestSave_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	store := NewFileStore(filepath.Join(file, "checkpoints"), 10, nil)
	assert.Empty(t, store.Save(records(1), "skus.csv", "quick", "1", Meta{}))
}

func TestParseName(t *testing.T) {
	id := "01JABCDEFGHJKMNPQRSTVWXYZ0"
	e, ok := parseName("my_skus_standard_final_20251001_101010_"+id+".json", "my_skus_standard")
	require.True(t, ok)
	assert.Equal(t, Final, e.Number)

	_, ok = parseName("my_skus_standard_final_20251001_101010_"+id+".json", "skus_standard")
	assert.False(t, ok)
	_, ok = parseName("notes.txt", "skus_standard")
	assert.False(t, ok)
}

func TestSave_NamesAreListedAndPruned(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, 2, nil)

	for i := 1; i <= 3; i++ {
		path := store.Save(records(i), "skus.csv", "standard", strconv.Itoa(i), Meta{})
		require.NotEmpty(t, path)
		assert.Regexp(t, regexp.MustCompile(`^skus_standard_`+strconv.Itoa(i)+`_\d{8}_\d{6}_[0-9A-Z]{26}\.json$`), filepath.Base(path))
	}

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	cp, ok := store.Latest("skus.csv", "standard")
	require.True(t, ok)
	assert.Equal(t, "3", cp.CheckpointNumber)
	assert.Len(t, store.List("skus.csv", "standard"), 2)
}
