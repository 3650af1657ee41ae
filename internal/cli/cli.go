// Package cli implements the designtree command-line interface.
//
// The commands run design documents through the same pipeline as the HTTP
// API:
//
//   - resolve: run the whole pipeline and write the annotated document
//   - classify: print the semantic role of every visible node
//   - plan: print the hierarchy build order
//   - render: draw the node tree or the build plan with Graphviz
//   - inspect: browse an annotated document interactively
//   - serve: start the HTTP API
//   - cache, config: manage the cache and show the effective configuration
//
// Settings come from the config file (see package config), DESIGNTREE_*
// environment variables and flags, in increasing precedence.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/designtree/pkg/buildinfo"
	"github.com/matzehuels/designtree/pkg/cache"
	"github.com/matzehuels/designtree/pkg/config"
	"github.com/matzehuels/designtree/pkg/design"
	"github.com/matzehuels/designtree/pkg/pipeline"
)

// appName is the application name used for display.
const appName = "designtree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config *config.Config

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "designtree turns design documents into typed, layered component trees",
		Long: `designtree classifies the nodes of a design document, resolves their layout
geometry and organizes them into an atomic-design hierarchy of reusable
components built bottom-up.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (.toml, .yaml or .yml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the result and classifier cache")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.classifyCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the config file named by --config, or the default one,
// and applies the environment.
func (c *CLI) loadConfig() error {
	if c.Config != nil {
		return nil
	}
	var cfg *config.Config
	var err error
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
		if err == nil {
			err = cfg.ApplyEnv(os.Getenv)
		}
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, c.Config.CacheOptions())
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", c.Config.Cache.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return store, nil
}

// =============================================================================
// Pipeline Flags
// =============================================================================

// pipelineFlags are the flags shared by every command that runs the pipeline.
type pipelineFlags struct {
	classifier    string
	endpoint      string
	model         string
	threshold     string
	matchMode     string
	tiers         map[string]string
	skipClassify  bool
	skipLayout    bool
	skipHierarchy bool
	refresh       bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.classifier, "classifier", "", "external classifier: none, http, gemini")
	fl.StringVar(&f.endpoint, "endpoint", "", "HTTP classifier endpoint")
	fl.StringVar(&f.model, "model", "", "Gemini model")
	fl.StringVar(&f.threshold, "threshold", "", "confidence below which the external classifier is asked: low, medium, high, very-high")
	fl.StringVar(&f.matchMode, "match-mode", "", "child correlation when building: name, provenance")
	fl.StringToStringVar(&f.tiers, "tier", nil, "tier override, e.g. --tier component:button=atom --tier Card=organism")
	fl.BoolVar(&f.skipClassify, "skip-classify", false, "skip type classification")
	fl.BoolVar(&f.skipLayout, "skip-layout", false, "skip layout translation")
	fl.BoolVar(&f.skipHierarchy, "skip-hierarchy", false, "skip hierarchy resolution")
	fl.BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	registerValueCompletions(cmd, map[string][]string{
		"classifier": classifierValues,
		"threshold":  thresholdValues,
		"match-mode": matchModeValues,
	})
}

// options merges the flags over the configured pipeline options.
func (f *pipelineFlags) options(cfg *config.Config) pipeline.Options {
	opts := cfg.PipelineOptions()
	if f.classifier != "" {
		opts.Classifier = f.classifier
	}
	if f.endpoint != "" {
		opts.Endpoint = f.endpoint
	}
	if f.model != "" {
		opts.Model = f.model
	}
	if f.threshold != "" {
		opts.Threshold = f.threshold
	}
	if f.matchMode != "" {
		opts.MatchMode = f.matchMode
	}
	if len(f.tiers) > 0 {
		merged := make(map[string]string, len(opts.Tiers)+len(f.tiers))
		for k, v := range opts.Tiers {
			merged[k] = v
		}
		for k, v := range f.tiers {
			merged[k] = v
		}
		opts.Tiers = merged
	}
	opts.SkipClassify = opts.SkipClassify || f.skipClassify
	opts.SkipLayout = opts.SkipLayout || f.skipLayout
	opts.SkipHierarchy = opts.SkipHierarchy || f.skipHierarchy
	opts.Refresh = f.refresh
	return opts
}

// =============================================================================
// Helpers
// =============================================================================

// readDocument reads a design document from path, or from stdin when path
// is "-".
func readDocument(path string) (*design.Document, error) {
	if path == "-" {
		return design.ReadDocument(os.Stdin)
	}
	return design.ReadDocumentFile(path)
}

// execute runs the pipeline with a spinner and logs the outcome.
func (c *CLI) execute(ctx context.Context, path string, opts pipeline.Options) (*pipeline.Result, error) {
	d, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %s...", path))
	if c.Logger.GetLevel() <= log.InfoLevel {
		spin.Start()
	}
	res, err := runner.Execute(ctx, d, opts)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Resolved %d nodes", res.Stats.NodeCount))
	return res, nil
}

// defaultOutput derives an output path from the input path.
func defaultOutput(input, suffix string) string {
	if input == "-" {
		return "-"
	}
	base := strings.TrimSuffix(input, ".json")
	return base + suffix
}
