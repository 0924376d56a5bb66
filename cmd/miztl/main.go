// Command miztl translates the player-facing text of DCS World mission
// files using AI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/miztl"
	"github.com/ZaguanLabs/miztl/cache"
	"github.com/ZaguanLabs/miztl/config"
	"github.com/ZaguanLabs/miztl/provider"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	return newApp(stdout, stderr).execute(args)
}

// app holds state shared by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger

	configPath string
	verbose    bool
	quiet      bool

	// Replaced in tests.
	newProvider func(cfg *config.Config) miztl.AIProvider
	openStore   func(ctx context.Context, cfg *config.Config) (cache.Store, func(), error)
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:      stdout,
		stderr:      stderr,
		logger:      zerolog.Nop(),
		newProvider: openAIProvider,
		openStore:   openCacheStore,
	}
}

func (a *app) execute(args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root.Execute()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           miztl.Name,
		Short:         miztl.Description,
		Long:          "miztl extracts briefing, dictionary and trigger text from DCS World .miz files,\ntranslates it with an OpenAI-compatible model and writes it back as a new language variant.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setupLogger()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./miztl.yaml if present)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Only log warnings and errors; hide progress")

	root.AddCommand(a.translateCmd())
	root.AddCommand(a.extractCmd())
	root.AddCommand(a.diffCmd())
	root.AddCommand(a.cacheCmd())
	root.AddCommand(a.versionCmd())

	return root
}

func (a *app) setupLogger() {
	level := zerolog.InfoLevel
	switch {
	case a.verbose:
		level = zerolog.DebugLevel
	case a.quiet:
		level = zerolog.WarnLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, NoColor: a.stderr != os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// setupContext returns a context cancelled on SIGINT or SIGTERM.
func setupContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openAIProvider(cfg *config.Config) miztl.AIProvider {
	return provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
}

// openCacheStore returns the Redis store when a Redis URL is configured and
// the file store otherwise.
func openCacheStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if cfg.Redis.URL == "" {
		return cache.NewFileStore(cfg.CacheDir), func() {}, nil
	}
	store, err := cache.NewRedisStore(cache.RedisConfig{URL: cfg.Redis.URL, KeyPrefix: cfg.Redis.KeyPrefix})
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return store, func() { store.Close() }, nil
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
