// Package extract reads SKU input sheets.
package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/models"
)

// RequiredColumns are the columns every input sheet must carry.
var RequiredColumns = []string{
	"sku_id", "Name", "brand", "product_discount_category",
	"Classifier 1", "classifier 2", "classifier 3",
}

// ValidationError reports an input sheet that cannot be used.
type ValidationError struct {
	Path    string
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Extractor reads SKU sheets and keeps the rows of one discount category
type Extractor struct {
	discountCategory string
	logger           *zap.Logger
}

// NewExtractor creates a new Extractor instance. An empty discountCategory keeps every row.
func NewExtractor(discountCategory string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{discountCategory: strings.TrimSpace(discountCategory), logger: logger}
}

// Extract reads the sheet at path and returns the products to review, in file order.
func (e *Extractor) Extract(path string) ([]models.Product, error) {
	rows, err := e.ReadRows(path)
	if err != nil {
		return nil, err
	}
	products := e.Filter(rows)
	e.logger.Info("input read",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Int("products", len(products)),
		zap.String("discount_category", e.discountCategory))
	return products, nil
}

// ReadRows reads every row of the sheet at path. CSV, TSV and Parquet are supported.
func (e *Extractor) ReadRows(path string) ([]models.SKURow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readDelimited(path, ',')
	case ".tsv":
		return readDelimited(path, '\t')
	case ".parquet":
		return readParquet(path)
	default:
		return nil, &ValidationError{Path: path, Reason: "unsupported file format, expected .csv, .tsv or .parquet"}
	}
}

// Filter keeps the rows of the configured discount category and builds their products.
func (e *Extractor) Filter(rows []models.SKURow) []models.Product {
	var products []models.Product
	for i, row := range rows {
		if e.discountCategory != "" && !strings.EqualFold(strings.TrimSpace(row.DiscountCategory), e.discountCategory) {
			continue
		}
		if strings.TrimSpace(row.SKUID) == "" {
			e.logger.Warn("skipping row without sku_id", zap.Int("row", i+1))
			continue
		}
		products = append(products, models.NewProduct(row))
	}
	return products
}

func readDelimited(path string, comma rune) ([]models.SKURow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ValidationError{Path: path, Reason: err.Error()}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Path: path, Missing: RequiredColumns}
		}
		return nil, &ValidationError{Path: path, Reason: fmt.Sprintf("reading header: %v", err)}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[h] = i
	}
	has := func(c string) bool {
		_, ok := index[c]
		return ok
	}
	if missing := missingColumns(has); len(missing) > 0 {
		return nil, &ValidationError{Path: path, Missing: missing}
	}

	field := func(rec []string, col string) string {
		if i := index[col]; i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var rows []models.SKURow
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s line %d: %w", path, line, err)
		}
		rows = append(rows, models.SKURow{
			SKUID:            field(rec, "sku_id"),
			Name:             field(rec, "Name"),
			Brand:            field(rec, "brand"),
			DiscountCategory: field(rec, "product_discount_category"),
			Classifier1:      field(rec, "Classifier 1"),
			Classifier2:      field(rec, "classifier 2"),
			Classifier3:      field(rec, "classifier 3"),
		})
	}
	return rows, nil
}

func readParquet(path string) ([]models.SKURow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ValidationError{Path: path, Reason: err.Error()}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &ValidationError{Path: path, Reason: err.Error()}
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, &ValidationError{Path: path, Reason: fmt.Sprintf("opening parquet: %v", err)}
	}

	columns := make(map[string]bool)
	for _, field := range pf.Schema().Fields() {
		columns[field.Name()] = true
	}
	if missing := missingColumns(func(c string) bool { return columns[c] }); len(missing) > 0 {
		return nil, &ValidationError{Path: path, Missing: missing}
	}

	rows, err := parquet.ReadFile[models.SKURow](path)
	if err != nil {
		return nil, fmt.Errorf("reading parquet %s: %w", path, err)
	}
	return rows, nil
}

func missingColumns(has func(string) bool) []string {
	var missing []string
	for _, c := range RequiredColumns {
		if !has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}
