// Package load writes generated reviews to files and publishes them to storage.
package load

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/aymen-fkir/sku-review-generator/internal/config"
	"github.com/aymen-fkir/sku-review-generator/internal/models"
	"github.com/aymen-fkir/sku-review-generator/pkg/utils"
)

// Output formats.
const (
	FormatTSV     = "tsv"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatSQLite  = "sqlite"
)

// Table is the SQLite table reviews are written to.
const Table = "reviews"

const insertBatchSize = 500

var extensions = map[string]string{
	".tsv":     FormatTSV,
	".csv":     FormatCSV,
	".parquet": FormatParquet,
	".sqlite":  FormatSQLite,
	".db":      FormatSQLite,
}

// Loader handles writing review records in the configured layout
type Loader struct {
	columns   []string
	separator rune
	format    string
	logger    *zap.Logger
}

// NewLoader creates a new Loader instance
func NewLoader(cfg config.OutputConfig, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	columns := cfg.Columns
	if len(columns) == 0 {
		columns = models.Columns
	}
	sep := '\t'
	if r := []rune(cfg.Separator); len(r) == 1 {
		sep = r[0]
	}
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format == "" {
		format = FormatTSV
	}
	return &Loader{columns: columns, separator: sep, format: format, logger: logger}
}

// FormatFor returns the format path is written in. A known extension wins
// over the configured format.
func (l *Loader) FormatFor(path string) string {
	if f, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return l.format
}

// Write writes records to path.
func (l *Loader) Write(path string, records []models.ReviewRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	format := l.FormatFor(path)
	var err error
	if format == FormatSQLite {
		err = l.writeSQLite(path, records)
	} else {
		err = l.writeFile(path, format, records)
	}
	if err != nil {
		return err
	}
	l.logger.Info("results written",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("records", len(records)))
	return nil
}

func (l *Loader) writeFile(path, format string, records []models.ReviewRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := l.Encode(f, format, records); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Encode streams records to w. SQLite cannot be streamed and needs Write.
func (l *Loader) Encode(w io.Writer, format string, records []models.ReviewRecord) error {
	switch format {
	case FormatTSV, FormatCSV:
		return l.encodeDelimited(w, l.delimiter(format), records)
	case FormatParquet:
		return parquet.Write(w, records)
	default:
		return fmt.Errorf("format %q cannot be encoded to a stream", format)
	}
}

// delimiter is the configured separator for the configured format and the
// format's own default otherwise.
func (l *Loader) delimiter(format string) rune {
	switch {
	case format == l.format:
		return l.separator
	case format == FormatCSV:
		return ','
	default:
		return '\t'
	}
}

func (l *Loader) encodeDelimited(w io.Writer, sep rune, records []models.ReviewRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep
	if err := cw.Write(l.columns); err != nil {
		return err
	}
	row := make([]string, len(l.columns))
	for _, r := range records {
		for i, col := range l.columns {
			row[i], _ = r.Field(col)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (l *Loader) writeSQLite(path string, records []models.ReviewRecord) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()

	defs := make([]string, len(l.columns))
	quoted := make([]string, len(l.columns))
	for i, c := range l.columns {
		typ := "TEXT"
		if c == "rating" {
			typ = "INTEGER"
		}
		defs[i] = fmt.Sprintf("%q %s", c, typ)
		quoted[i] = fmt.Sprintf("%q", c)
	}
	if _, err := db.Exec(`CREATE TABLE "` + Table + `" (` + strings.Join(defs, ",") + `)`); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tuple := "(" + strings.TrimRight(strings.Repeat("?,", len(l.columns)), ",") + ")"
	for _, batch := range utils.Transform(records, insertBatchSize) {
		values := make([]string, len(batch))
		args := make([]any, 0, len(batch)*len(l.columns))
		for i, r := range batch {
			values[i] = tuple
			for _, c := range l.columns {
				args = append(args, sqliteValue(r, c))
			}
		}
		stmt := `INSERT INTO "` + Table + `" (` + strings.Join(quoted, ",") + `) VALUES ` + strings.Join(values, ",")
		if _, err := tx.Exec(stmt, args...); err != nil {
			return fmt.Errorf("inserting reviews: %w", err)
		}
	}
	if slices.Contains(l.columns, "sku_id") {
		if _, err := tx.Exec(`CREATE INDEX idx_reviews_sku ON "` + Table + `"(sku_id)`); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return tx.Commit()
}

func sqliteValue(r models.ReviewRecord, column string) any {
	if column == "rating" {
		return r.Rating
	}
	v, _ := r.Field(column)
	return v
}

// ContentType returns the MIME type uploads of format are stored with.
func ContentType(format string) string {
	switch format {
	case FormatTSV:
		return "text/tab-separated-values"
	case FormatCSV:
		return "text/csv"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	case FormatSQLite:
		return "application/vnd.sqlite3"
	default:
		return "application/octet-stream"
	}
}
