// Package pipeline provides the resolution pipeline for designtree.
//
// This package runs the complete validate → classify → layout → build
// pipeline over a design document, so that the CLI and the HTTP server
// behave identically.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Validate: reject ownership cycles and duplicate IDs, fill safe names
//  2. Classify: annotate every visible node with a semantic role
//  3. Layout: annotate every visible node with resolved layout geometry
//  4. Build: assign hierarchy tiers, plan the build order and emit artifacts
//
// Only the validate stage can fail on document content. Classification
// degrades to local rules when the external classifier fails, and layout
// approximates unsupported features instead of failing.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Classifier: pipeline.ProviderHTTP,
//	    Endpoint:   "https://classifier.internal/v1/classify",
//	}
//	result, err := runner.Execute(ctx, doc, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, stage := range result.Plan.Stages {
//	    fmt.Println(stage.Tier, stage.NodeIDs)
//	}
package pipeline

import (
	"io"
	"maps"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/designtree/pkg/cache"
	"github.com/matzehuels/designtree/pkg/classify"
	"github.com/matzehuels/designtree/pkg/classify/remote"
	"github.com/matzehuels/designtree/pkg/design"
	apperrors "github.com/matzehuels/designtree/pkg/errors"
	"github.com/matzehuels/designtree/pkg/hierarchy"
	"github.com/matzehuels/designtree/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultThreshold is the confidence below which the external
	// classifier is consulted.
	DefaultThreshold = "medium"

	// DefaultConcurrency is the number of parallel external classifier calls.
	DefaultConcurrency = classify.DefaultConcurrency

	// DefaultClassifierCacheSize is the in-memory answer cache size.
	DefaultClassifierCacheSize = remote.DefaultCacheSize

	// DefaultMatchMode is the child correlation used while building.
	DefaultMatchMode = string(hierarchy.MatchName)
)

// External classifier providers.
const (
	ProviderNone   = "none"
	ProviderHTTP   = "http"
	ProviderGemini = "gemini"
)

// ValidProviders is the set of supported external classifier providers.
var ValidProviders = map[string]bool{
	ProviderNone:   true,
	ProviderHTTP:   true,
	ProviderGemini: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Classification options
	Classifier          string `json:"classifier,omitempty"` // none, http or gemini
	Endpoint            string `json:"endpoint,omitempty"`   // HTTP classifier URL
	Model               string `json:"model,omitempty"`      // Gemini model
	Threshold           string `json:"threshold,omitempty"`  // confidence name
	Concurrency         int    `json:"concurrency,omitempty"`
	ClassifierCacheSize int    `json:"classifier_cache_size,omitempty"`
	SkipClassify        bool   `json:"skip_classify,omitempty"`

	// Layout options
	SkipLayout bool `json:"skip_layout,omitempty"`

	// Hierarchy options
	MatchMode     string            `json:"match_mode,omitempty"`
	Tiers         map[string]string `json:"tiers,omitempty"` // "node:<id>", "component:<id>" or name → tier
	SkipHierarchy bool              `json:"skip_hierarchy,omitempty"`

	// Refresh bypasses the result cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger       `json:"-"`
	APIKey   string            `json:"-"` // Gemini API key
	Token    string            `json:"-"` // HTTP classifier bearer token
	External classify.External `json:"-"` // overrides Classifier
	Builder  hierarchy.Builder `json:"-"` // artifacts are kept in memory when nil

	threshold design.Confidence
	match     hierarchy.MatchMode
	overrides hierarchy.Overrides

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string `json:"run_id"`

	// DocumentHash is the content hash of the validated input.
	DocumentHash string `json:"document_hash"`

	// Document is the annotated document.
	Document *design.Document `json:"document"`

	// Plan is the hierarchy build order. Nil when the build stage was skipped.
	Plan *hierarchy.Plan `json:"plan,omitempty"`

	// Refs lists the emitted artifacts in build order.
	Refs []design.ArtifactRef `json:"refs,omitempty"`

	// Artifacts holds the built artifacts when no Builder was configured.
	Artifacts []*hierarchy.Artifact `json:"artifacts,omitempty"`

	// Stats contains counts and timings.
	Stats Stats `json:"stats"`

	// CacheHit is true when the result was served from the cache.
	CacheHit bool `json:"cache_hit"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int            `json:"node_count"`
	Classify     classify.Stats `json:"classify"`
	Layout       layout.Stats   `json:"layout"`
	Units        int            `json:"units"`
	References   int            `json:"references"`
	Duplicates   int            `json:"duplicates"`
	ValidateTime time.Duration  `json:"validate_time"`
	ClassifyTime time.Duration  `json:"classify_time"`
	LayoutTime   time.Duration  `json:"layout_time"`
	BuildTime    time.Duration  `json:"build_time"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateProvider checks that a classifier provider is valid.
func ValidateProvider(provider string) error {
	if !ValidProviders[provider] {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"invalid classifier: %q (must be one of: none, http, gemini)", provider)
	}
	return nil
}

// ValidateThreshold parses a confidence threshold.
func ValidateThreshold(threshold string) (design.Confidence, error) {
	c, err := design.ParseConfidence(threshold)
	if err != nil || c == design.ConfidenceNone {
		return design.ConfidenceNone, apperrors.New(apperrors.ErrCodeInvalidConfig,
			"invalid threshold: %q (must be one of: low, medium, high, very-high)", threshold)
	}
	return c, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForClassify(); err != nil {
		return err
	}
	if err := o.ValidateForHierarchy(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ValidateForClassify checks the classifier options and applies defaults.
func (o *Options) ValidateForClassify() error {
	if o.Classifier == "" {
		o.Classifier = ProviderNone
	}
	if o.Threshold == "" {
		o.Threshold = DefaultThreshold
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.ClassifierCacheSize <= 0 {
		o.ClassifierCacheSize = DefaultClassifierCacheSize
	}
	if o.Classifier == ProviderGemini && o.Model == "" {
		o.Model = remote.DefaultGeminiModel
	}

	if err := ValidateProvider(o.Classifier); err != nil {
		return err
	}
	t, err := ValidateThreshold(o.Threshold)
	if err != nil {
		return err
	}
	o.threshold = t

	if o.External != nil || o.SkipClassify {
		return nil
	}
	switch o.Classifier {
	case ProviderHTTP:
		if o.Endpoint == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "endpoint is required for the http classifier")
		}
		if err := apperrors.ValidateURL(o.Endpoint); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "invalid endpoint")
		}
	case ProviderGemini:
		if o.APIKey == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "an API key is required for the gemini classifier")
		}
	}
	return nil
}

// ValidateForHierarchy checks the hierarchy options and applies defaults.
func (o *Options) ValidateForHierarchy() error {
	if o.MatchMode == "" {
		o.MatchMode = DefaultMatchMode
	}
	m, err := hierarchy.ParseMatchMode(o.MatchMode)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "invalid match_mode")
	}
	o.match = m

	ov, err := hierarchy.ParseOverrides(o.Tiers)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidTier, err, "invalid tiers")
	}
	o.overrides = ov
	return nil
}

// UsesExternal reports whether an external classifier will be consulted.
func (o *Options) UsesExternal() bool {
	return !o.SkipClassify && (o.External != nil || o.Classifier != ProviderNone)
}

// Cacheable reports whether the whole result may be served from or stored
// in the cache. Results built through a custom Builder are not cached,
// since serving them would skip emission.
func (o *Options) Cacheable() bool {
	return !o.Refresh && o.Builder == nil
}

// ResultKeyOpts returns cache key options for the resolved document.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	provider, endpoint := o.Classifier, ""
	switch {
	case o.External != nil:
		provider = classify.CacheKey(o.External)
	case o.Classifier == ProviderHTTP:
		endpoint = o.Endpoint
	}
	return cache.ResultKeyOpts{
		Classifier:    provider,
		Endpoint:      endpoint,
		Model:         o.Model,
		Threshold:     int(o.threshold),
		MatchMode:     string(o.match),
		Tiers:         maps.Clone(o.Tiers),
		SkipClassify:  o.SkipClassify,
		SkipLayout:    o.SkipLayout,
		SkipHierarchy: o.SkipHierarchy,
	}
}
