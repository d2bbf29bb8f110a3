package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/jscompat"
	"github.com/jward/jscompat/internal/config"
	"github.com/jward/jscompat/internal/source"
)

var (
	flagFormat string
	flagConfig string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "jscompat",
	Short:         "JavaScript feature detection and browser compatibility reports",
	Long:          "jscompat parses JavaScript with tree-sitter, detects language and runtime-API feature usage, and reports which browsers and runtimes can run the code unmodified.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run function: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: text|json")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .jscompat.toml if present)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(datasetCmd)
}

func validateFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid format %q (want text or json)", format)
	}
}

var (
	flagEnvironments string
	flagNoCache      bool
	flagCacheDB      string
	flagTimeout      time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check [files, directories, globs, or URLs...]",
	Short: "Analyze JavaScript sources for compatibility",
	Long:  "Parses each input, detects feature usage, and prints a per-file compatibility report. Directories are scanned for .js/.mjs/.cjs files; http(s) URLs are fetched and cached.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&flagEnvironments, "environments", "", "comma-separated environment filter (e.g. chrome,node)")
	checkCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "disable result and download caching")
	checkCmd.Flags().StringVar(&flagCacheDB, "cache-db", "", "cache database path (default: .jscompat/cache.db)")
	checkCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "per-input fetch/parse timeout (e.g. 30s)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	refs, err := source.Expand(args)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("no JavaScript inputs matched %s", strings.Join(args, " "))
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := jscompat.DefaultOptions()
	opts.UseCache = !flagNoCache
	if ttl := cfg.Cache.TTL(); ttl > 0 {
		opts.CacheTTL = ttl
	}
	opts.Environments = environments(cfg)

	start := time.Now()
	results := engine.AnalyzeBatch(context.Background(), refs, opts)

	var out error
	switch flagFormat {
	case "json":
		out = renderJSON(os.Stdout, results)
	default:
		out = renderText(os.Stdout, results)
	}
	if out != nil {
		return out
	}

	printSummary(os.Stderr, results, time.Since(start))

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d input(s) failed", failed)
	}
	return nil
}

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Show the bundled compatibility dataset version and environments",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := jscompat.New()
		if err != nil {
			return err
		}
		defer engine.Close()
		fmt.Printf("dataset version: %s\n", engine.DatasetVersion())
		fmt.Printf("environments: %s\n", strings.Join(engine.Environments(), ", "))
		return nil
	},
}

// loadConfig reads --config, or the default file when present.
func loadConfig() (config.Config, error) {
	path := flagConfig
	explicit := path != ""
	if !explicit {
		path = config.DefaultFileName
	}
	return config.Load(path, explicit)
}

// buildEngine assembles engine options from config and flags. Flags win.
func buildEngine(cfg config.Config) (*jscompat.Engine, error) {
	var opts []jscompat.Option

	if !flagNoCache {
		path := flagCacheDB
		if path == "" {
			path = cfg.Cache.Path
		}
		if path == "" {
			path = filepath.Join(".jscompat", "cache.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		opts = append(opts, jscompat.WithCachePath(path))
	}
	if cfg.Cache.Capacity > 0 {
		opts = append(opts, jscompat.WithCacheCapacity(cfg.Cache.Capacity))
	}

	timeout := flagTimeout
	if timeout == 0 {
		timeout = cfg.Timeout()
	}
	if timeout > 0 {
		opts = append(opts, jscompat.WithUnitTimeout(timeout))
	}

	return jscompat.New(opts...)
}

// environments resolves the environment filter: flag, then config file,
// then empty (every environment in the dataset).
func environments(cfg config.Config) []string {
	if flagEnvironments != "" {
		parts := strings.Split(flagEnvironments, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return cfg.Environments
}
