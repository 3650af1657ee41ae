package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/designtree/pkg/cache"
	"github.com/matzehuels/designtree/pkg/classify"
	"github.com/matzehuels/designtree/pkg/classify/remote"
	"github.com/matzehuels/designtree/pkg/design"
	apperrors "github.com/matzehuels/designtree/pkg/errors"
	"github.com/matzehuels/designtree/pkg/hierarchy"
	"github.com/matzehuels/designtree/pkg/layout"
	"github.com/matzehuels/designtree/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options and different documents.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedResult is the cached form of a [Result].
type cachedResult struct {
	Document  *design.Document      `json:"document"`
	Plan      *hierarchy.Plan       `json:"plan,omitempty"`
	Refs      []design.ArtifactRef  `json:"refs,omitempty"`
	Artifacts []*hierarchy.Artifact `json:"artifacts,omitempty"`
	Stats     Stats                 `json:"stats"`
}

// Execute runs the complete validate → classify → layout → build pipeline
// over d with caching. d is annotated in place; on a cache hit the result
// carries the cached document instead.
func (r *Runner) Execute(ctx context.Context, d *design.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString(), Document: d}
	logger := opts.Logger.With("run", result.RunID)

	// Stage 1: Validate
	err := r.stage(ctx, observability.StageValidate, 0, &result.Stats.ValidateTime, func() error {
		return Validate(d)
	})
	if err != nil {
		return nil, err
	}
	result.Stats.NodeCount = d.NodeCount()

	data, err := design.MarshalDocument(d)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "hash document")
	}
	result.DocumentHash = cache.Hash(data)
	cacheKey := r.Keyer.ResultKey(result.DocumentHash, opts.ResultKeyOpts())

	if opts.Cacheable() {
		if cached, ok := r.lookup(ctx, cacheKey); ok {
			cached.RunID = result.RunID
			cached.DocumentHash = result.DocumentHash
			logger.Info("served cached result", "hash", result.DocumentHash)
			return cached, nil
		}
	}

	// Stage 2: Classify
	if !opts.SkipClassify {
		classifier, err := r.NewClassifier(ctx, &opts)
		if err != nil {
			return nil, err
		}
		err = r.stage(ctx, observability.StageClassify, result.Stats.NodeCount, &result.Stats.ClassifyTime, func() error {
			st, err := classifier.ClassifyDocument(ctx, d)
			result.Stats.Classify = st
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("classify: %w", err)
		}
		logger.Info("classified nodes",
			"nodes", result.Stats.Classify.Nodes,
			"external", result.Stats.Classify.ExternalCalls,
			"fallbacks", result.Stats.Classify.Fallbacks,
			"duration", result.Stats.ClassifyTime)
	}

	// Stage 3: Layout
	if !opts.SkipLayout {
		translator := layout.New(layout.WithLogger(opts.Logger))
		err = r.stage(ctx, observability.StageLayout, result.Stats.NodeCount, &result.Stats.LayoutTime, func() error {
			st, err := translator.Translate(ctx, d)
			result.Stats.Layout = st
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		logger.Info("resolved layout",
			"containers", result.Stats.Layout.Containers,
			"spacers", result.Stats.Layout.Spacers,
			"approximations", result.Stats.Layout.Approximations,
			"duration", result.Stats.LayoutTime)
	}

	// Stage 4: Build
	if !opts.SkipHierarchy {
		builder := opts.Builder
		var mem *hierarchy.MemoryBuilder
		if builder == nil {
			mem = hierarchy.NewMemoryBuilder()
			builder = mem
		}
		resolver := hierarchy.New(
			hierarchy.WithOverrides(opts.overrides),
			hierarchy.WithMatchMode(opts.match),
			hierarchy.WithLogger(opts.Logger),
		)
		err = r.stage(ctx, observability.StageBuild, result.Stats.NodeCount, &result.Stats.BuildTime, func() error {
			plan, err := resolver.Plan(ctx, d)
			if err != nil {
				return err
			}
			result.Plan = plan
			report, err := resolver.Build(ctx, d, plan, builder)
			if err != nil {
				return err
			}
			result.Refs = report.Artifacts
			result.Stats.Units = len(plan.Units)
			result.Stats.References = report.References
			result.Stats.Duplicates = report.Duplicates
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("build: %w", err)
		}
		if mem != nil {
			result.Artifacts = mem.Artifacts
		}
		logger.Info("built hierarchy",
			"units", result.Stats.Units,
			"stages", len(result.Plan.Stages),
			"references", result.Stats.References,
			"duration", result.Stats.BuildTime)
	}

	if opts.Cacheable() {
		r.store(ctx, cacheKey, result)
	}
	return result, nil
}

// Validate checks the structural invariants of d and fills missing safe
// names. Structural violations are returned as coded errors that name the
// offending nodes.
func Validate(d *design.Document) error {
	if err := design.Validate(d); err != nil {
		code := apperrors.ErrCodeInvalidDocument
		switch {
		case errors.Is(err, design.ErrCycle):
			code = apperrors.ErrCodeCycle
		case errors.Is(err, design.ErrDuplicateID):
			code = apperrors.ErrCodeDuplicateID
		}
		return apperrors.Wrap(code, err, "invalid document")
	}
	design.FillSafeNames(d)
	return nil
}

// NewClassifier builds the classifier described by opts, including the
// external fallback and its answer cache.
func (r *Runner) NewClassifier(ctx context.Context, opts *Options) (*classify.Classifier, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	copts := []classify.Option{
		classify.WithThreshold(opts.threshold),
		classify.WithConcurrency(opts.Concurrency),
		classify.WithLogger(opts.Logger),
	}

	ext := opts.External
	if ext == nil {
		switch opts.Classifier {
		case ProviderHTTP:
			var hopts []remote.HTTPOption
			if opts.Token != "" {
				hopts = append(hopts, remote.WithBearerToken(opts.Token))
			}
			ext = remote.NewHTTPClassifier(opts.Endpoint, hopts...)
		case ProviderGemini:
			g, err := remote.NewGeminiClassifier(ctx, opts.APIKey, opts.Model)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrCodeClassifier, err, "create gemini classifier")
			}
			ext = g
		}
	}
	if ext != nil {
		cached, err := remote.NewCached(ext, opts.ClassifierCacheSize,
			remote.WithStore(r.Cache, r.Keyer, cache.TTLClassification),
			remote.WithCacheLogger(opts.Logger))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "create classifier cache")
		}
		copts = append(copts, classify.WithExternal(cached))
	}
	return classify.New(copts...), nil
}

// stage runs fn as a named pipeline stage, recording its duration and
// reporting it to the pipeline hooks.
func (r *Runner) stage(ctx context.Context, name string, nodes int, elapsed *time.Duration, fn func() error) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name, nodes)
	start := time.Now()
	err := fn()
	*elapsed = time.Since(start)
	hooks.OnStageComplete(ctx, name, *elapsed, err)
	return err
}

func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, key)
		return nil, false
	}
	var c cachedResult
	if err := json.Unmarshal(data, &c); err != nil || c.Document == nil {
		// Unreadable entries are recomputed.
		hooks.OnCacheMiss(ctx, key)
		return nil, false
	}
	hooks.OnCacheHit(ctx, key)
	return &Result{
		Document:  c.Document,
		Plan:      c.Plan,
		Refs:      c.Refs,
		Artifacts: c.Artifacts,
		Stats:     c.Stats,
		CacheHit:  true,
	}, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(cachedResult{
		Document:  res.Document,
		Plan:      res.Plan,
		Refs:      res.Refs,
		Artifacts: res.Artifacts,
		Stats:     res.Stats,
	})
	if err != nil {
		r.Logger.Debug("result not cached", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLResult); err != nil {
		r.Logger.Debug("result not cached", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
