package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/extract"
	"github.com/aymen-fkir/sku-review-generator/internal/load"
	"github.com/aymen-fkir/sku-review-generator/internal/pipeline"
	"github.com/aymen-fkir/sku-review-generator/internal/textgen"
)

// storageScheme marks an input read from the storage bucket.
const storageScheme = "storage://"

var outputFormats = []string{load.FormatTSV, load.FormatCSV, load.FormatParquet, load.FormatSQLite}

type generateOptions struct {
	input  string
	output string
	mode   string
	resume bool
	seed   uint64
	format string
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate reviews for every SKU of an input sheet",
		Long: `Reads the input sheet, generates reviews for every SKU of the configured
discount category and writes them to the output file. The input may be a local
.csv, .tsv or .parquet file or storage://<object path> in the configured bucket.

Progress is checkpointed; an interrupted run continues with --resume.`,
		Example: `  reviewgen generate --input products.csv --mode medium
  reviewgen generate --input storage://inbox/products.csv --resume`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "input sheet (.csv, .tsv, .parquet or storage://path)")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default generated_reviews_<input>.<format>)")
	f.StringVarP(&opts.mode, "mode", "m", pipeline.ModeStandard, "run mode: "+strings.Join(pipeline.Modes, ", "))
	f.BoolVar(&opts.resume, "resume", false, "continue from the latest checkpoint of this input and mode")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed for a reproducible run (0 picks one)")
	f.StringVarP(&opts.format, "format", "f", "", "output format: "+strings.Join(outputFormats, ", "))
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (a *app) generate(cmd *cobra.Command, opts *generateOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.format != "" {
		if !slices.Contains(outputFormats, opts.format) {
			return fmt.Errorf("unknown format %q: must be one of %s", opts.format, strings.Join(outputFormats, ", "))
		}
		a.cfg.Output.Format = opts.format
	}
	if _, err := pipeline.ReviewRange(opts.mode, a.cfg.Quantity.ReviewsPerSKU); err != nil {
		return err
	}

	input := opts.input
	var remote *extract.Remote
	object := strings.TrimPrefix(input, storageScheme)
	if object != input {
		bucket, err := a.bucket()
		if err != nil {
			return err
		}
		dir, err := os.MkdirTemp("", "reviewgen-input-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
		remote = extract.NewRemote(bucket, a.logger)
		if input, err = remote.Fetch(object, dir); err != nil {
			return err
		}
	}

	products, err := extract.NewExtractor(a.cfg.Quantity.DiscountCategory, a.logger).Extract(input)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return fmt.Errorf("%s has no rows with discount category %q", opts.input, a.cfg.Quantity.DiscountCategory)
	}

	generator, err := textgen.New(ctx, a.cfg.LLM)
	if err != nil {
		return err
	}
	res, err := a.pipeline(generator).Run(ctx, products, pipeline.RunOptions{
		InputFile: input,
		Mode:      opts.mode,
		Resume:    opts.resume,
		Seed:      opts.seed,
	})
	if err != nil {
		if pipeline.IsInterrupted(err) && res != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "interrupted after %d reviews, rerun with --resume to continue\n", len(res.Records))
		}
		return err
	}

	loader := load.NewLoader(a.cfg.Output, a.logger)
	out := opts.output
	if out == "" {
		out = defaultOutput(input, a.cfg.Output.Format)
	}
	if err := loader.Write(out, res.Records); err != nil {
		return err
	}

	if a.cfg.Storage.Enabled() {
		publisher, err := a.publisher()
		if err != nil {
			return err
		}
		published, err := publisher.Publish(out, loader.FormatFor(out))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published %s\n", published)
	}
	if remote != nil {
		if _, err := remote.Archive(object); err != nil {
			a.logger.Warn("archiving input", zap.String("object", object), zap.Error(err))
		}
	}

	printSummary(cmd, res, out)
	return nil
}

func defaultOutput(input, format string) string {
	base := filepath.Base(input)
	ext := "." + format
	if format == load.FormatSQLite {
		ext = ".sqlite"
	}
	return "generated_reviews_" + strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func printSummary(cmd *cobra.Command, res *pipeline.Result, out string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "generated %d reviews for %d SKUs (%d per SKU, mode %s) -> %s\n",
		len(res.Records), res.Summary.SKUs, res.ReviewsPerSKU, res.Mode, out)
	if res.Resumed > 0 {
		fmt.Fprintf(w, "resumed %d reviews from checkpoint\n", res.Resumed)
	}

	ratings := make([]int, 0, len(res.Summary.Ratings))
	for r := range res.Summary.Ratings {
		ratings = append(ratings, r)
	}
	slices.Sort(ratings)
	slices.Reverse(ratings)
	parts := make([]string, len(ratings))
	for i, r := range ratings {
		parts[i] = fmt.Sprintf("%d★ %d", r, res.Summary.Ratings[r])
	}
	fmt.Fprintf(w, "ratings: %s | distinct usernames: %d | template fallbacks: %d\n",
		strings.Join(parts, ", "), res.Summary.DistinctUsernames, res.Fallbacks)
}
