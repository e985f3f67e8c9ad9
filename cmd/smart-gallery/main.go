package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dgraph-io/badger/v4"
	"github.com/fpang/smart-gallery/internal/caption"
	"github.com/fpang/smart-gallery/internal/cli"
	"github.com/fpang/smart-gallery/internal/config"
	"github.com/fpang/smart-gallery/internal/engine"
	"github.com/fpang/smart-gallery/internal/enhance"
	"github.com/fpang/smart-gallery/internal/gallery"
	"github.com/fpang/smart-gallery/internal/logging"
	"github.com/fpang/smart-gallery/internal/metrics"
	"github.com/fpang/smart-gallery/internal/tagging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// Global flags
var (
	configFlag   string
	logLevelFlag string
	storeFlag    string
	storeDirFlag string
	taggerFlag   string
	modelFlag    string
	metricsFlag  bool
	jsonFlag     bool
)

// app holds what every subcommand needs once configuration is resolved.
type app struct {
	cfg    *config.Config
	engine *engine.Engine
	badger *badger.DB
}

var current *app

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "smart-gallery",
	Short: "Prompt-driven gallery generation and captions for a media library",
	Long: `Smart Gallery picks the media in a library that best match a short
natural-language prompt, optionally enhances the picks, writes captions with
hashtags and keeps named galleries.

Examples:
  smart-gallery generate "pick 2 photos of staff"
  smart-gallery generate -d ./library --enhance --save "Team" "our team"
  smart-gallery caption --tone excited library/sourdough.jpg
  smart-gallery gallery list
  smart-gallery delete-media library/old.jpg`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFlag, "config", "", "Config file (default: $SMART_GALLERY_CONFIG or ./smart-gallery.yaml)")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&storeFlag, "store", "", "Gallery store backend: file, badger, s3, dynamodb")
	pf.StringVar(&storeDirFlag, "store-dir", "", "Gallery directory for the file backend")
	pf.StringVar(&taggerFlag, "tagger", "", "Tagger backend: heuristic, gemini")
	pf.StringVarP(&modelFlag, "model", "m", "", "Gemini model for the gemini tagger")
	pf.BoolVar(&metricsFlag, "metrics", false, "Write CloudWatch EMF metric lines to stderr")
	pf.BoolVar(&jsonFlag, "json", false, "Print results as JSON")

	rootCmd.AddCommand(generateCmd, captionCmd, tagsCmd, libraryCmd, galleryCmd, deleteMediaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration, applies flag overrides and builds the engine.
func setup(cmd *cobra.Command, _ []string) error {
	start := time.Now()

	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logging.Init(cfg.Log.Level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var em *metrics.Emitter
	if cfg.Metrics.Enabled {
		em = metrics.NewEmitter(os.Stderr, metrics.DefaultNamespace)
	}

	a := &app{cfg: cfg}
	repo, err := a.openRepository(ctx)
	if err != nil {
		return err
	}

	tagger := buildTagger(ctx, cfg, em)
	enhancer := enhance.NewLocalEnhancer(cfg.Enhance.OutputDir, cfg.Enhance.MaxDimension, cfg.Enhance.JPEGQuality)

	a.engine = engine.New(engine.Options{
		Tagger:   tagger,
		Enhancer: enhancer,
		Store:    gallery.NewStore(repo),
		Rand:     caption.NewRand(cfg.Caption.Seed),
		Metrics:  em,
	})
	current = a

	logging.NewStartupLogger(cmd.CommandPath()).
		Version(version).
		Storage(cfg.Store.Backend, storageLocation(cfg)).
		Feature("metrics", cfg.Metrics.Enabled).
		Config("tagger", cfg.Tagger.Backend).
		Config("library", cfg.Library.Dir).
		InitDuration(time.Since(start)).
		Log()
	return nil
}

func teardown(*cobra.Command, []string) {
	if current == nil || current.badger == nil {
		return
	}
	if err := current.badger.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close badger database")
	}
}

// applyFlags overrides configuration with flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevelFlag
	}
	if flags.Changed("store") {
		cfg.Store.Backend = storeFlag
	}
	if flags.Changed("store-dir") {
		cfg.Store.Dir = storeDirFlag
	}
	if flags.Changed("tagger") {
		cfg.Tagger.Backend = taggerFlag
	}
	if flags.Changed("model") {
		cfg.Tagger.Model = modelFlag
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Enabled = metricsFlag
	}
	if flags.Lookup("directory") != nil && flags.Changed("directory") {
		cfg.Library.Dir = directoryFlag
	}
}

func (a *app) openRepository(ctx context.Context) (gallery.Repository, error) {
	cfg := a.cfg.Store
	switch cfg.Backend {
	case config.BackendBadger:
		db, err := gallery.OpenBadger(cfg.BadgerDir)
		if err != nil {
			return nil, err
		}
		a.badger = db
		return gallery.NewBadgerRepository(db), nil
	case config.BackendS3, config.BackendDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		if cfg.Backend == config.BackendS3 {
			return gallery.NewS3Repository(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix), nil
		}
		return gallery.NewDynamoRepository(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), nil
	default:
		return gallery.NewFileRepository(cfg.Dir)
	}
}

func buildTagger(ctx context.Context, cfg *config.Config, em *metrics.Emitter) tagging.Tagger {
	heuristic := tagging.NewHeuristicTagger(nil)
	if cfg.Tagger.Backend != config.TaggerGemini {
		return tagging.NewCachedTagger(heuristic)
	}
	model := cfg.Tagger.Model
	if model == "" {
		model = tagging.DefaultGeminiModel
	}
	client := cli.InitGeminiClient(ctx, model, em)
	return tagging.NewCachedTagger(tagging.NewGeminiTagger(client, model, heuristic))
}

func storageLocation(cfg *config.Config) string {
	switch cfg.Store.Backend {
	case config.BackendBadger:
		return cfg.Store.BadgerDir
	case config.BackendS3:
		return "s3://" + cfg.Store.S3Bucket + "/" + cfg.Store.S3Prefix
	case config.BackendDynamo:
		return cfg.Store.DynamoTable
	default:
		return cfg.Store.Dir
	}
}

// out is where results are printed; tests swap it.
var out io.Writer = os.Stdout
