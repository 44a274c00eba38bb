// Package pipeline runs review generation over a list of products.
package pipeline

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/checkpoint"
	"github.com/aymen-fkir/sku-review-generator/internal/config"
	"github.com/aymen-fkir/sku-review-generator/internal/enrichment"
	"github.com/aymen-fkir/sku-review-generator/internal/models"
	"github.com/aymen-fkir/sku-review-generator/internal/sampler"
	"github.com/aymen-fkir/sku-review-generator/internal/synth"
	"github.com/aymen-fkir/sku-review-generator/internal/textgen"
	"github.com/aymen-fkir/sku-review-generator/internal/usernames"
)

// Store persists run snapshots. checkpoint.FileStore implements it.
type Store interface {
	Save(results []models.ReviewRecord, inputFile, mode, seq string, meta checkpoint.Meta) string
	Latest(inputFile, mode string) (*checkpoint.Checkpoint, bool)
}

// RunOptions select what one run generates.
type RunOptions struct {
	// InputFile names the input sheet. Checkpoints are keyed by its base name and Mode.
	InputFile string
	Mode      string
	// Resume continues from the newest checkpoint of InputFile and Mode.
	Resume bool
	// Seed makes the run reproducible. Zero draws a random seed.
	Seed uint64
}

// Summary describes the records of a run.
type Summary struct {
	SKUs              int
	Ratings           map[int]int
	DistinctUsernames int
}

// Result is the outcome of a run.
type Result struct {
	RunID         string
	Mode          string
	ReviewsPerSKU int
	Records       []models.ReviewRecord
	Resumed       int
	Checkpoints   []string
	Fallbacks     int
	Summary       Summary
}

// Pipeline generates reviews for products. Every Run owns its own random
// source, username registry and text ledger, so runs may execute concurrently.
type Pipeline struct {
	cfg       *config.Config
	generator textgen.Generator
	analyzer  enrichment.BenefitAnalyzer
	enhancer  *enrichment.Enhancer
	pools     usernames.Pools
	store     Store
	logger    *zap.Logger
}

// New creates a Pipeline. A nil analyzer uses static benefits and a nil
// store disables checkpoints.
func New(cfg *config.Config, generator textgen.Generator, analyzer enrichment.BenefitAnalyzer, store Store, logger *zap.Logger) *Pipeline {
	if analyzer == nil {
		analyzer = enrichment.StaticAnalyzer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:       cfg,
		generator: generator,
		analyzer:  analyzer,
		enhancer:  enrichment.NewDefaultEnhancer(),
		pools:     usernames.DefaultPools(),
		store:     store,
		logger:    logger,
	}
}

// WithPools sets the name pools usernames are drawn from.
func (p *Pipeline) WithPools(pools usernames.Pools) *Pipeline {
	p.pools = pools
	return p
}

// run is the state of one Run call.
type run struct {
	opts      RunOptions
	id        string
	perSKU    int
	records   []models.ReviewRecord
	resumed   int
	saved     []string
	lastSaved int
	logger    *zap.Logger
}

// Run generates reviews for products in order and returns them SKU-major.
// When ctx is cancelled Run saves an interrupted checkpoint and returns the
// records generated so far together with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, products []models.Product, opts RunOptions) (*Result, error) {
	opts.Mode = strings.ToLower(strings.TrimSpace(opts.Mode))
	if opts.Mode == "" {
		opts.Mode = ModeStandard
	}
	reviewRange, err := ReviewRange(opts.Mode, p.cfg.Quantity.ReviewsPerSKU)
	if err != nil {
		return nil, err
	}

	rng := sampler.NewRand(opts.Seed)
	attrs, err := sampler.New(p.cfg, rng)
	if err != nil {
		return nil, err
	}
	registry := usernames.NewRegistry()
	ledger := synth.NewLedger(p.cfg.Content.RepetitivePhrases, p.cfg.Content.MaxRepetitivePhrases)
	names := usernames.NewGenerator(p.cfg.Usernames, p.pools, registry, rng, p.logger)
	writer := synth.New(p.cfg, p.generator, ledger, rng, p.logger)

	r := &run{opts: opts, id: uuid.NewString()}
	r.logger = p.logger.With(zap.String("run_id", r.id), zap.String("mode", opts.Mode))

	if opts.Resume {
		p.resume(r, registry, ledger)
	}
	if r.perSKU <= 0 {
		r.perSKU = sampler.ReviewCount(rng, reviewRange)
	}
	if interval := p.cfg.Checkpoint.SaveInterval; interval > 0 {
		r.lastSaved = len(r.records) / interval
	}
	r.resumed = len(r.records)

	r.logger.Info("run started",
		zap.String("input", opts.InputFile),
		zap.Int("skus", len(products)),
		zap.Int("reviews_per_sku", r.perSKU),
		zap.Int("resumed_reviews", r.resumed))

	// Records are SKU-major with perSKU reviews per product, so restored
	// records cover the first done products and part of the next one.
	done, partial := len(r.records)/r.perSKU, len(r.records)%r.perSKU

	cooldown := p.cfg.Quantity.Cooldown()
	for i, product := range products {
		if i < done {
			continue
		}
		missing := r.perSKU
		if i == done {
			missing -= partial
		}

		product.Benefits = p.enhancer.Enhance(product, p.analyzer.Analyze(ctx, product))
		r.logger.Info("generating reviews",
			zap.String("sku_id", product.SKUID),
			zap.Int("sku", i+1),
			zap.Int("reviews", missing),
			zap.String("primary_benefit", product.Benefits.PrimaryBenefit))

		for range missing {
			if ctx.Err() != nil {
				return p.interrupt(ctx, r, writer)
			}
			a := attrs.Sample()
			text := writer.Generate(ctx, product, a)
			if ctx.Err() != nil {
				return p.interrupt(ctx, r, writer)
			}
			r.records = append(r.records, models.ReviewRecord{
				SKUID:    product.SKUID,
				SKUName:  product.SKUName,
				Rating:   a.Rating,
				Review:   text,
				PostDate: a.PostDate.Format(config.DateLayout),
				Username: names.Next(),
			})
		}

		p.maybeCheckpoint(r)

		if err := sleep(ctx, cooldown); err != nil {
			return p.interrupt(ctx, r, writer)
		}
	}

	p.save(r, checkpoint.Final)
	res := p.result(r, writer)
	r.logger.Info("run finished",
		zap.Int("reviews", len(res.Records)),
		zap.Int("distinct_usernames", res.Summary.DistinctUsernames),
		zap.Int("fallbacks", res.Fallbacks),
		zap.Any("ratings", res.Summary.Ratings))
	return res, nil
}

func (p *Pipeline) resume(r *run, registry *usernames.Registry, ledger *synth.Ledger) {
	if p.store == nil {
		r.logger.Warn("resume requested but checkpoints are disabled")
		return
	}
	cp, ok := p.store.Latest(r.opts.InputFile, r.opts.Mode)
	if !ok {
		r.logger.Info("no checkpoint to resume from, starting fresh")
		return
	}
	r.records = cp.Results
	r.perSKU = cp.ReviewsPerSKU
	registry.Rebuild(r.records)
	ledger.Rebuild(r.records)
	r.logger.Info("resuming from checkpoint",
		zap.String("checkpoint", cp.CheckpointNumber),
		zap.String("previous_run_id", cp.RunID),
		zap.Int("total_reviews", len(cp.Results)))
}

// maybeCheckpoint saves when the record count has crossed another multiple
// of the save interval.
func (p *Pipeline) maybeCheckpoint(r *run) {
	interval := p.cfg.Checkpoint.SaveInterval
	if interval <= 0 {
		return
	}
	if q := len(r.records) / interval; q > r.lastSaved {
		r.lastSaved = q
		p.save(r, strconv.Itoa(q))
	}
}

func (p *Pipeline) save(r *run, seq string) {
	if p.store == nil {
		return
	}
	meta := checkpoint.Meta{RunID: r.id, ReviewsPerSKU: r.perSKU}
	if path := p.store.Save(r.records, r.opts.InputFile, r.opts.Mode, seq, meta); path != "" {
		r.saved = append(r.saved, path)
	}
}

func (p *Pipeline) interrupt(ctx context.Context, r *run, writer *synth.Synthesizer) (*Result, error) {
	p.save(r, checkpoint.Interrupted)
	r.logger.Warn("run interrupted", zap.Int("reviews", len(r.records)), zap.Error(ctx.Err()))
	return p.result(r, writer), ctx.Err()
}

func (p *Pipeline) result(r *run, writer *synth.Synthesizer) *Result {
	res := &Result{
		RunID:         r.id,
		Mode:          r.opts.Mode,
		ReviewsPerSKU: r.perSKU,
		Records:       r.records,
		Resumed:       r.resumed,
		Checkpoints:   r.saved,
		Fallbacks:     writer.Fallbacks(),
		Summary:       Summarize(r.records),
	}
	if res.Records == nil {
		res.Records = []models.ReviewRecord{}
	}
	return res
}

// Summarize counts ratings, SKUs and distinct usernames in records.
func Summarize(records []models.ReviewRecord) Summary {
	s := Summary{Ratings: make(map[int]int)}
	skus := make(map[string]struct{})
	users := make(map[string]struct{})
	for _, r := range records {
		s.Ratings[r.Rating]++
		skus[r.SKUID] = struct{}{}
		users[r.Username] = struct{}{}
	}
	s.SKUs = len(skus)
	s.DistinctUsernames = len(users)
	return s
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsInterrupted reports whether err ended a run early through cancellation.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
