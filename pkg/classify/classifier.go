package classify

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/designtree/pkg/design"
	"github.com/matzehuels/designtree/pkg/observability"
)

// DefaultConcurrency is the default number of parallel external calls.
const DefaultConcurrency = 4

// External is an optional classifier consulted for ambiguous nodes.
//
// Implementations return the role and the confidence they claim. Any error,
// including an unknown role, is treated as "no answer".
type External interface {
	Name() string
	Classify(ctx context.Context, s Summary) (design.Classification, error)
}

// CacheKeyer is implemented by external classifiers whose answers depend on
// more than their name, such as the endpoint they call.
type CacheKeyer interface {
	CacheKey() string
}

// CacheKey returns the identity under which answers of e may be cached:
// its CacheKey when it has one, its Name otherwise.
func CacheKey(e External) string {
	if k, ok := e.(CacheKeyer); ok {
		return k.CacheKey()
	}
	return e.Name()
}

// Stats summarises one document classification.
type Stats struct {
	Nodes            int                 `json:"nodes"`
	ExternalCalls    int                 `json:"external_calls"`
	ExternalAccepted int                 `json:"external_accepted"`
	Fallbacks        int                 `json:"fallbacks"`
	Roles            map[design.Role]int `json:"roles"`
}

// Option configures a [Classifier].
type Option func(*Classifier)

// WithExternal sets the external classifier.
func WithExternal(e External) Option { return func(c *Classifier) { c.external = e } }

// WithThreshold sets the confidence at which a rule terminates evaluation
// and below which the external classifier is consulted.
func WithThreshold(t design.Confidence) Option { return func(c *Classifier) { c.threshold = t } }

// WithConcurrency bounds the number of parallel external calls.
func WithConcurrency(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRules replaces the rule list.
func WithRules(rules []Rule) Option { return func(c *Classifier) { c.rules = rules } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// Classifier runs the rule tiers and the external fallback.
type Classifier struct {
	rules       []Rule
	external    External
	threshold   design.Confidence
	concurrency int
	logger      *log.Logger
}

// New creates a Classifier with the default rules and a medium threshold.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules:       DefaultRules(),
		threshold:   design.ConfidenceMedium,
		concurrency: DefaultConcurrency,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassifyLocal evaluates the rules only. The first rule answering at or
// above the threshold wins; otherwise the most confident answer is kept,
// earlier rules winning ties, and [Default] when nothing matched.
func (c *Classifier) ClassifyLocal(n *design.Node) design.Classification {
	best, found := design.Classification{}, false
	for _, r := range c.rules {
		got, ok := r.Apply(n)
		if !ok {
			continue
		}
		if got.Confidence >= c.threshold {
			return got
		}
		if !found || got.Confidence > best.Confidence {
			best, found = got, true
		}
	}
	if !found {
		return Default()
	}
	return best
}

// Classify classifies a single node, consulting the external classifier when
// the local result is below the threshold. It never fails.
func (c *Classifier) Classify(ctx context.Context, n *design.Node) design.Classification {
	local := c.ClassifyLocal(n)
	if c.external == nil || local.Confidence >= c.threshold {
		return local
	}
	got, _ := c.consult(ctx, n, local)
	return got
}

// ClassifyDocument writes a classification onto every visible node of d.
// Rules run during a depth-first walk; external calls for ambiguous nodes
// then run in parallel, each writing only its own node. The only error is
// the context's, when it is cancelled.
func (c *Classifier) ClassifyDocument(ctx context.Context, d *design.Document) (Stats, error) {
	st := Stats{Roles: make(map[design.Role]int)}
	var ambiguous []*design.Node

	var walkErr error
	d.Walk(func(n *design.Node) bool {
		if walkErr != nil {
			return false
		}
		if walkErr = ctx.Err(); walkErr != nil {
			return false
		}
		if !n.IsVisible() {
			return false
		}
		local := c.ClassifyLocal(n)
		n.Classification = &local
		st.Nodes++
		if c.external != nil && local.Confidence < c.threshold {
			ambiguous = append(ambiguous, n)
		}
		return true
	})
	if walkErr != nil {
		return st, walkErr
	}

	if len(ambiguous) > 0 {
		accepted := make([]bool, len(ambiguous))
		failed := make([]bool, len(ambiguous))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		for i, n := range ambiguous {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				got, ok := c.consult(gctx, n, *n.Classification)
				n.Classification = &got
				accepted[i] = ok && got.Source == design.SourceExternal
				failed[i] = !ok
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return st, err
		}
		if err := ctx.Err(); err != nil {
			return st, err
		}

		st.ExternalCalls = len(ambiguous)
		for i := range ambiguous {
			if accepted[i] {
				st.ExternalAccepted++
			}
			if failed[i] {
				st.Fallbacks++
			}
		}
	}

	d.Walk(func(n *design.Node) bool {
		if n.Classification == nil {
			return false
		}
		st.Roles[n.Classification.Role]++
		return true
	})

	c.logger.Debug("classified document",
		"nodes", st.Nodes,
		"external", st.ExternalCalls,
		"accepted", st.ExternalAccepted,
		"fallbacks", st.Fallbacks)
	return st, nil
}

// consult asks the external classifier about n. It returns the accepted
// classification, which is local unless the external answer is strictly more
// confident, and false when the call failed.
func (c *Classifier) consult(ctx context.Context, n *design.Node, local design.Classification) (design.Classification, bool) {
	provider := c.external.Name()
	hooks := observability.Classifier()
	hooks.OnExternalRequest(ctx, provider, n.ID)

	start := time.Now()
	got, err := c.external.Classify(ctx, Summarize(n))
	if err == nil {
		_, err = design.ParseRole(string(got.Role))
	}
	if err != nil {
		hooks.OnFallback(ctx, provider, n.ID, err)
		c.logger.Debug("external classifier failed", "provider", provider, "node", n.ID, "err", err)
		return local, false
	}

	accept := got.Confidence > local.Confidence
	hooks.OnExternalResult(ctx, provider, n.ID, string(got.Role), accept, time.Since(start))
	if !accept {
		return local, true
	}
	got.Source = design.SourceExternal
	if got.Reason == "" {
		got.Reason = provider
	}
	return got, true
}
