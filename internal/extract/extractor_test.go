package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aymen-fkir/sku-review-generator/internal/models"
	"github.com/aymen-fkir/sku-review-generator/internal/storage"
)

const sheet = "sku_id,Name,brand,product_discount_category,Classifier 1,classifier 2,classifier 3,mrp\n" +
	"CER0576,CeraVe Moisturizing Cream,CeraVe,FMCG,PERSONAL CARE,SKIN CARE,BODY CARE,650\n" +
	"DOL0650,Dolo 650,Micro Labs,Pharma,MEDICINE,FEVER,TABLET,30\n" +
	"PL0001,House Wipes,Own Label,PL,BABY CARE,DIAPERING,WIPES,99\n" +
	"EVI0105,Evion 400mg Capsule,Evion,fmcg ,NUTRITION & METABOLISM,VITAMINS AND MINERALS,VITAMINS AND MINERALS,45\n" +
	",No Id,Nobody,FMCG,,,,1\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtract_CSVFiltersDiscountCategory(t *testing.T) {
	e := NewExtractor("FMCG", nil)

	products, err := e.Extract(writeFile(t, "skus.csv", sheet))
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "CER0576", products[0].SKUID)
	assert.Equal(t, "CeraVe - CeraVe Moisturizing Cream", products[0].SKUName)
	assert.Equal(t, models.Classification{Category: "PERSONAL CARE", Subcategory: "SKIN CARE", Type: "BODY CARE"}, products[0].Classification)
	assert.Equal(t, "EVI0105", products[1].SKUID)
}

func TestExtract_NoFilterKeepsAllRowsWithID(t *testing.T) {
	products, err := NewExtractor("", nil).Extract(writeFile(t, "skus.csv", sheet))
	require.NoError(t, err)
	assert.Len(t, products, 4)
}

func TestExtract_TSV(t *testing.T) {
	content := "\ufeffsku_id\tName\tbrand\tproduct_discount_category\tClassifier 1\tclassifier 2\tclassifier 3\n" +
		"A1\tHoney\tDabur\tFMCG\tFOOD\tSPREADS\tHONEY\n"
	products, err := NewExtractor("FMCG", nil).Extract(writeFile(t, "skus.tsv", content))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Dabur - Honey", products[0].SKUName)
}

func TestExtract_MissingColumns(t *testing.T) {
	path := writeFile(t, "skus.csv", "sku_id,Name,brand\nA1,Honey,Dabur\n")

	_, err := NewExtractor("FMCG", nil).Extract(path)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"product_discount_category", "Classifier 1", "classifier 2", "classifier 3"}, verr.Missing)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestExtract_Errors(t *testing.T) {
	var verr *ValidationError

	_, err := NewExtractor("", nil).Extract(writeFile(t, "skus.xlsx", "binary"))
	assert.True(t, errors.As(err, &verr), "unsupported format")

	_, err = NewExtractor("", nil).Extract(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.As(err, &verr), "unreadable file")

	_, err = NewExtractor("", nil).Extract(writeFile(t, "empty.csv", ""))
	require.True(t, errors.As(err, &verr), "empty file")
	assert.Equal(t, RequiredColumns, verr.Missing)
}

func TestExtract_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skus.parquet")
	require.NoError(t, WriteSample(path))

	products, err := NewExtractor("FMCG", nil).Extract(path)
	require.NoError(t, err)
	require.Len(t, products, len(SampleRows()))
	assert.Equal(t, "CeraVe - CeraVe Moisturizing Cream", products[0].SKUName)
}

func TestExtract_ParquetMissingColumns(t *testing.T) {
	type partial struct {
		SKUID string `parquet:"sku_id"`
		Name  string `parquet:"Name"`
	}
	path := filepath.Join(t.TempDir(), "partial.parquet")
	require.NoError(t, parquet.WriteFile(path, []partial{{SKUID: "A", Name: "B"}}))

	_, err := NewExtractor("", nil).Extract(path)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Missing, "brand")
}

func TestWriteSample_RoundTrip(t *testing.T) {
	for _, name := range []string{"sample.csv", "sample.tsv"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, WriteSample(path))

		rows, err := NewExtractor("", nil).ReadRows(path)
		require.NoError(t, err)
		assert.Equal(t, SampleRows(), rows)
	}

	var verr *ValidationError
	assert.True(t, errors.As(WriteSample(filepath.Join(t.TempDir(), "sample.xlsx")), &verr))
}

func TestRemote_FetchAndArchive(t *testing.T) {
	bucket := storage.NewMemory()
	require.NoError(t, bucket.Upload("inbox/skus.csv", []byte(sheet), "text/csv"))
	r := NewRemote(bucket, nil)

	local, err := r.Fetch("inbox/skus.csv", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "skus.csv", filepath.Base(local))

	products, err := NewExtractor("FMCG", nil).Extract(local)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	dest, err := r.Archive("inbox/skus.csv")
	require.NoError(t, err)
	assert.Equal(t, "processed/skus.csv", dest)
	_, err = bucket.Download("inbox/skus.csv")
	assert.Error(t, err)

	_, err = r.Fetch("inbox/missing.csv", t.TempDir())
	assert.Error(t, err)
}
