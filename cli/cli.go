// Package cli wires the command-line surface: serving the HTTP API, running
// migrations, and operator commands for resolving and generating artifacts.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sf1tzp/symbology-sub000/blobstore"
	"github.com/sf1tzp/symbology-sub000/blobstore/filesystem"
	"github.com/sf1tzp/symbology-sub000/blobstore/memory"
	"github.com/sf1tzp/symbology-sub000/blobstore/s3"
	"github.com/sf1tzp/symbology-sub000/config"
	"github.com/sf1tzp/symbology-sub000/orm"
	"github.com/sf1tzp/symbology-sub000/store"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:   "symbology",
		Short: "Content-addressed store for generated SEC filing analyses",
		Long: `Symbology stores AI-generated analyses of SEC filings as
content-addressed artifacts: identical content deduplicates by sha256
fingerprint, derivation edges record what each artifact was built from, and
pipeline stages classify where in the summarization flow it was produced.`,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configFile, "config", "", "path to a config file (optional)",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(lineageCmd)
	rootCmd.AddCommand(generateCmd)
}

func setupLogging(cfg *config.AppConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.HumanReadableOutput {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func loadConfig() *config.AppConfig {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(cfg)

	return cfg
}

func newService(cfg *config.AppConfig) *store.Service {
	db := orm.InitDB(cfg)

	blobs, err := newBlobStore(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob storage")
	}

	return store.NewService(db, blobs)
}

func newBlobStore(cfg config.StorageConfig) (blobstore.Store, error) {
	switch cfg.Type {
	case "filesystem":
		return filesystem.New(cfg.Dir)
	case "s3":
		return s3.New(cfg.S3)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
