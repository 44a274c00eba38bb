package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/aymen-fkir/sku-review-generator/internal/models"
)

// SampleRows returns a small sheet showing the expected input structure.
func SampleRows() []models.SKURow {
	return []models.SKURow{
		{
			SKUID: "CER0576", Name: "CeraVe Moisturizing Cream", Brand: "CeraVe",
			DiscountCategory: "FMCG", Classifier1: "PERSONAL CARE", Classifier2: "SKIN CARE", Classifier3: "BODY CARE",
		},
		{
			SKUID: "NEU0830", Name: "Neurobion Forte Tablet", Brand: "Neurobion",
			DiscountCategory: "FMCG", Classifier1: "NUTRITION & METABOLISM", Classifier2: "VITAMINS AND MINERALS", Classifier3: "VITAMINS AND MINERALS",
		},
		{
			SKUID: "EVI0105", Name: "Evion 400mg Capsule", Brand: "Evion",
			DiscountCategory: "FMCG", Classifier1: "NUTRITION & METABOLISM", Classifier2: "VITAMINS AND MINERALS", Classifier3: "VITAMINS AND MINERALS",
		},
	}
}

// WriteSample writes the sample sheet to path as CSV, TSV or Parquet.
func WriteSample(path string) error {
	rows := SampleRows()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		if err := parquet.WriteFile(path, rows); err != nil {
			return fmt.Errorf("writing sample %s: %w", path, err)
		}
		return nil
	case ".tsv":
		return writeSampleFile(path, '\t', rows)
	case ".csv":
		return writeSampleFile(path, ',', rows)
	default:
		return &ValidationError{Path: path, Reason: "unsupported file format, expected .csv, .tsv or .parquet"}
	}
}

func writeSampleFile(path string, comma rune, rows []models.SKURow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating sample %s: %w", path, err)
	}
	if err := WriteSampleCSV(f, comma, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteSampleCSV writes rows with a header to w.
func WriteSampleCSV(w io.Writer, comma rune, rows []models.SKURow) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(RequiredColumns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.SKUID, r.Name, r.Brand, r.DiscountCategory, r.Classifier1, r.Classifier2, r.Classifier3}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
