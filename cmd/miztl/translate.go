package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/miztl"
	"github.com/ZaguanLabs/miztl/cache"
	"github.com/ZaguanLabs/miztl/config"
	"github.com/ZaguanLabs/miztl/processor"
	"github.com/ZaguanLabs/miztl/report"
)

type translateFlags struct {
	lang            string
	source          string
	model           string
	context         string
	cacheDir        string
	redisURL        string
	minLength       int
	rpm             int
	reportPath      string
	continueOnError bool
}

func (a *app) translateCmd() *cobra.Command {
	var f translateFlags

	cmd := &cobra.Command{
		Use:   "translate <mission.miz>",
		Short: "Translate a mission and write the language variant into it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			return a.runTranslate(cfg, args[0], f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.lang, "lang", "l", "", "Target language code (e.g., CN, DE, ru)")
	fl.StringVar(&f.source, "source", "", "Source language code (default EN)")
	fl.StringVar(&f.model, "model", "", "Model to use (default: gpt-4o-mini)")
	fl.StringVar(&f.context, "context", "", "Mission notes passed to the model")
	fl.StringVar(&f.cacheDir, "cache-dir", "", "Directory holding the per-language cache files")
	fl.StringVar(&f.redisURL, "redis", "", "Keep the cache in Redis instead (e.g., redis://localhost:6379/0)")
	fl.IntVar(&f.minLength, "min-length", 0, "Shortest text, in characters, that is translated")
	fl.IntVar(&f.rpm, "rpm", 0, "Maximum requests per minute (0 = unlimited)")
	fl.StringVar(&f.reportPath, "report", "", "Write an HTML review sheet to this file")
	fl.BoolVar(&f.continueOnError, "continue-on-error", false, "Keep source text for strings that fail instead of stopping")

	return cmd
}

// apply copies the flags the user set over the loaded config.
func (f *translateFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("lang") {
		cfg.TargetLang = f.lang
	}
	if changed("source") {
		cfg.SourceLang = f.source
	}
	if changed("model") {
		cfg.Model = f.model
	}
	if changed("context") {
		cfg.Context = f.context
	}
	if changed("cache-dir") {
		cfg.CacheDir = f.cacheDir
	}
	if changed("redis") {
		cfg.Redis.URL = f.redisURL
	}
	if changed("min-length") {
		cfg.MinLength = f.minLength
	}
	if changed("rpm") {
		cfg.RequestsPerMinute = f.rpm
	}
}

func (a *app) runTranslate(cfg *config.Config, path string, f translateFlags) error {
	if cfg.TargetLang == "" {
		return fmt.Errorf("--lang is required")
	}
	cfg.TargetLang = miztl.NormalizeLangCode(cfg.TargetLang)
	if err := cfg.Validate(); err != nil {
		return err
	}
	idents, err := cfg.ParsedIdentifiers()
	if err != nil {
		return err
	}
	if !miztl.IsSupportedLanguage(cfg.TargetLang) {
		a.logger.Warn().Str("lang", cfg.TargetLang).Msg("DCS does not ship this language; the variant is written anyway")
	}

	ctx, cancel := setupContext()
	defer cancel()

	store, closeStore, err := a.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	tc, err := cache.Load(ctx, store, cfg.TargetLang)
	if err != nil {
		return err
	}
	a.logger.Info().Str("cache", tc.Location()).Int("entries", tc.Len()).Msg("Loaded cache")

	retry := miztl.DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries
	retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		a.logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying translation")
	}
	var p miztl.AIProvider = miztl.NewRetryableProvider(a.newProvider(cfg), retry)
	if cfg.RequestsPerMinute > 0 {
		p = miztl.NewRateLimitedProvider(p, miztl.RateLimitConfig{RequestsPerMinute: cfg.RequestsPerMinute, BurstSize: 1})
	}

	opts := []miztl.TranslatorOption{
		miztl.WithSourceLang(cfg.SourceLang),
		miztl.WithCache(tc),
		miztl.WithProcessors(processor.NewDictionaryProcessor(), processor.NewTokenProcessor(idents...)),
		miztl.WithContext(cfg.Context),
		miztl.WithGlossary(cfg.Glossary),
		miztl.WithMinLength(cfg.MinLength),
		miztl.WithSkipPrefixes(cfg.SkipPrefixes...),
		miztl.WithContinueOnError(f.continueOnError),
		miztl.WithLogger(a.logger),
	}

	var bars *progressBars
	if !a.quiet {
		bars = newProgressBars(a.stderr)
		opts = append(opts, miztl.WithProgress(bars.update))
	}

	translator := miztl.NewTranslator(cfg.TargetLang, p, opts...)

	a.logger.Info().Str("file", filepath.Base(path)).Str("lang", cfg.TargetLang).Msg("Translating mission")

	start := time.Now()
	result, err := translator.TranslateFile(ctx, path)
	if bars != nil {
		bars.wait()
	}

	if f.reportPath != "" && result != nil {
		if rerr := report.WriteFile(f.reportPath, result, report.Options{Source: filepath.Base(path)}); rerr != nil {
			a.logger.Error().Err(rerr).Msg("Failed to write report")
		} else {
			a.logger.Info().Str("report", f.reportPath).Msg("Wrote report")
		}
	}

	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	for _, pr := range result.Processors {
		fmt.Fprintf(a.stdout, "%-10s entries: %d  distinct: %d  cached: %d  translated: %d  failed: %d\n",
			pr.Processor, pr.Entries, pr.Distinct, pr.Cached, pr.Translated, pr.Failed)
	}
	fmt.Fprintf(a.stdout, "Done in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(a.stdout, "Translate completed. The cache file written to: %s\n", result.CacheLocation)
	return nil
}
