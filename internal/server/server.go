// Package server exposes review generation over HTTP: a sheet is uploaded and
// the generated reviews are returned as a download.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/config"
	"github.com/aymen-fkir/sku-review-generator/internal/extract"
	"github.com/aymen-fkir/sku-review-generator/internal/load"
	"github.com/aymen-fkir/sku-review-generator/internal/models"
	"github.com/aymen-fkir/sku-review-generator/internal/pipeline"
)

// Runner generates reviews for products. pipeline.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, products []models.Product, opts pipeline.RunOptions) (*pipeline.Result, error)
}

var (
	uploadExtensions = []string{".csv", ".tsv", ".parquet"}
	downloadFormats  = []string{load.FormatTSV, load.FormatCSV, load.FormatParquet}
)

// Server serves the upload and sample endpoints
type Server struct {
	cfg       config.ServerConfig
	extractor *extract.Extractor
	runner    Runner
	loader    *load.Loader
	logger    *zap.Logger
}

// New creates a new Server instance
func New(cfg config.ServerConfig, extractor *extract.Extractor, runner Runner, loader *load.Loader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, extractor: extractor, runner: runner, loader: loader, logger: logger}
}

// Routes returns the router with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/sample", s.handleSample)
	r.With(chimw.Timeout(s.cfg.Timeout())).Post("/generate", s.handleGenerate)
	r.With(chimw.Timeout(s.cfg.Timeout())).Post("/upload", s.handleGenerate)
	return r
}

// HTTPServer returns an http.Server listening on addr, or on the configured
// address when addr is empty.
func (s *Server) HTTPServer(addr string) *http.Server {
	if addr == "" {
		addr = s.cfg.Addr
	}
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	comma, name, contentType := ',', "sample_products.csv", "text/csv"
	if r.URL.Query().Get("format") == load.FormatTSV {
		comma, name, contentType = '\t', "sample_products.tsv", "text/tab-separated-values"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := extract.WriteSampleCSV(w, comma, extract.SampleRows()); err != nil {
		s.logger.Error("writing sample", zap.Error(err))
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With(zap.String("request_id", chimw.GetReqID(r.Context())))

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
			return
		}
		writeError(w, http.StatusBadRequest, "no file selected, upload the sheet in the \"file\" field")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(uploadExtensions, ext) {
		writeError(w, http.StatusBadRequest, "invalid file type, upload a .csv, .tsv or .parquet sheet")
		return
	}

	format := r.FormValue("format")
	if format == "" {
		format = load.FormatTSV
	}
	if !slices.Contains(downloadFormats, format) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported download format %q", format))
		return
	}
	// Each upload gets its own checkpoint key so concurrent uploads of the
	// same sheet never prune each other's checkpoints.
	key := strings.TrimSuffix(name, ext) + "-" + uuid.NewString() + ext
	opts := pipeline.RunOptions{InputFile: key, Mode: r.FormValue("mode")}
	if v := r.FormValue("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "seed must be a non-negative integer")
			return
		}
		opts.Seed = seed
	}

	dir, err := os.MkdirTemp("", "reviewgen-upload-*")
	if err != nil {
		log.Error("creating upload dir", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store the upload")
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	if err := saveUpload(path, file); err != nil {
		log.Error("saving upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store the upload")
		return
	}

	products, err := s.extractor.Extract(path)
	if err != nil {
		var verr *extract.ValidationError
		if errors.As(err, &verr) {
			shown := *verr
			shown.Path = name
			writeError(w, http.StatusUnprocessableEntity, shown.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if len(products) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no rows matched the configured discount category")
		return
	}

	res, err := s.runner.Run(r.Context(), products, opts)
	if err != nil {
		if pipeline.IsInterrupted(err) {
			log.Warn("generation interrupted", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("generation was interrupted, progress is checkpointed as %s", key))
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	download := fmt.Sprintf("generated_reviews_%s.%s", strings.TrimSuffix(name, ext), format)
	w.Header().Set("Content-Type", load.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download))
	w.Header().Set("X-Run-ID", res.RunID)
	w.Header().Set("X-Review-Count", strconv.Itoa(len(res.Records)))
	if err := s.loader.Encode(w, format, res.Records); err != nil {
		log.Error("writing results", zap.Error(err))
		return
	}
	log.Info("reviews served",
		zap.String("file", name),
		zap.String("run_id", res.RunID),
		zap.Int("reviews", len(res.Records)))
}

func saveUpload(path string, src io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
