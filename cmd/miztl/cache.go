package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/miztl"
	"github.com/ZaguanLabs/miztl/cache"
)

func (a *app) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Export or import a language's translation cache",
	}
	cmd.AddCommand(a.cacheExportCmd())
	cmd.AddCommand(a.cacheImportCmd())
	return cmd
}

type cacheFlags struct {
	lang     string
	cacheDir string
	redisURL string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.lang, "lang", "l", "", "Language of the cache")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "Directory holding the per-language cache files")
	cmd.Flags().StringVar(&f.redisURL, "redis", "", "Use the Redis cache at this URL")
}

// loadCache resolves flags against cfg and opens the language cache.
func (a *app) loadCache(cmd *cobra.Command, f cacheFlags) (*cache.PersistentCache, func(), error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("lang") {
		cfg.TargetLang = f.lang
	}
	if cmd.Flags().Changed("cache-dir") {
		cfg.CacheDir = f.cacheDir
	}
	if cmd.Flags().Changed("redis") {
		cfg.Redis.URL = f.redisURL
	}
	if cfg.TargetLang == "" {
		return nil, nil, fmt.Errorf("--lang is required")
	}
	cfg.TargetLang = miztl.NormalizeLangCode(cfg.TargetLang)

	ctx := cmd.Context()
	store, closeStore, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	c, err := cache.Load(ctx, store, cfg.TargetLang)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return c, closeStore, nil
}

func (a *app) cacheExportCmd() *cobra.Command {
	var f cacheFlags
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a language's cache as versioned JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeStore, err := a.loadCache(cmd, f)
			if err != nil {
				return err
			}
			defer closeStore()

			meta := map[string]string{
				"lang":     c.Lang(),
				"source":   c.Location(),
				"exporter": miztl.UserAgent(),
			}
			exporter := cache.NewExporter(c)
			if output == "" || output == "-" {
				return exporter.Export(a.stdout, meta)
			}
			if err := exporter.ExportToFile(output, meta); err != nil {
				return err
			}
			a.logger.Info().Int("entries", c.Len()).Str("file", output).Msg("Exported cache")
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func (a *app) cacheImportCmd() *cobra.Command {
	var f cacheFlags
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "import <export.json>",
		Short: "Merge an exported cache into a language's cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeStore, err := a.loadCache(cmd, f)
			if err != nil {
				return err
			}
			defer closeStore()

			result, err := cache.NewImporter(c, overwrite).ImportFromFile(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()
			if err := c.Flush(ctx); err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Imported %d entries (%d skipped, %d failed) into %s\n",
				result.Imported, result.Skipped, result.Failed, c.Location())
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing translations")
	return cmd
}
