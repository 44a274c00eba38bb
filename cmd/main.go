package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/checkpoint"
	"github.com/aymen-fkir/sku-review-generator/internal/config"
	"github.com/aymen-fkir/sku-review-generator/internal/enrichment"
	"github.com/aymen-fkir/sku-review-generator/internal/load"
	"github.com/aymen-fkir/sku-review-generator/internal/logging"
	"github.com/aymen-fkir/sku-review-generator/internal/pipeline"
	"github.com/aymen-fkir/sku-review-generator/internal/storage"
	"github.com/aymen-fkir/sku-review-generator/internal/textgen"
	"github.com/aymen-fkir/sku-review-generator/internal/usernames"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "reviewgen",
		Short: "Generate realistic customer reviews for SKU sheets",
		Long: `reviewgen reads a sheet of SKUs and writes synthetic customer reviews for
every product of the configured discount category. Ratings, dates, lengths,
language mix and usernames follow the distributions in reviewgen.yaml.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultConfigFile, "config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newGenerateCmd(a),
		newCheckpointsCmd(a),
		newSampleCmd(a),
		newServeCmd(a),
		newPublishedCmd(a),
		newInitCmd(a),
	)
	return root
}

func (a *app) setup(*cobra.Command, []string) error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// store returns the checkpoint store, or nil when checkpoints are disabled.
func (a *app) store() *checkpoint.FileStore {
	if !a.cfg.Checkpoint.Enabled {
		return nil
	}
	return checkpoint.NewFileStore(a.cfg.Checkpoint.Dir, a.cfg.Checkpoint.MaxCheckpoints, a.logger)
}

func (a *app) pipeline(generator textgen.Generator) *pipeline.Pipeline {
	var analyzer enrichment.BenefitAnalyzer
	if a.cfg.LLM.BenefitAnalysis {
		analyzer = enrichment.NewAnalyzer(generator, a.cfg.LLM, a.logger)
	}
	var store pipeline.Store
	if s := a.store(); s != nil {
		store = s
	}
	src := usernames.CSVSource{FirstFile: a.cfg.Usernames.FirstNamesFile, LastFile: a.cfg.Usernames.LastNamesFile}
	pools := usernames.LoadPools(src, a.cfg.Usernames.FunkyHandles, a.logger)
	return pipeline.New(a.cfg, generator, analyzer, store, a.logger).WithPools(pools)
}

func (a *app) bucket() (storage.Bucket, error) {
	if !a.cfg.Storage.Enabled() {
		return nil, fmt.Errorf("storage is not configured: set SUPABASE_URL, SUPABASE_KEY and storage.bucket")
	}
	return storage.NewSupabase(a.cfg.Storage.URL, a.cfg.Storage.Key, a.cfg.Storage.Bucket), nil
}

func (a *app) publisher() (*load.Publisher, error) {
	bucket, err := a.bucket()
	if err != nil {
		return nil, err
	}
	return load.NewPublisher(bucket, a.cfg.Storage.Prefix, a.logger), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
