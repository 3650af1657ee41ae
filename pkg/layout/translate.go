package layout

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/designtree/pkg/design"
	"github.com/matzehuels/designtree/pkg/observability"
)

// Stats summarises one translation.
type Stats struct {
	Nodes          int `json:"nodes"`
	Containers     int `json:"containers"`
	Absolute       int `json:"absolute"`
	Spacers        int `json:"spacers"`
	Approximations int `json:"approximations"`
}

// Option configures a [Translator].
type Option func(*Translator)

// WithLogger sets the logger used for per-node debug output.
func WithLogger(l *log.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// Translator writes a [design.Resolved] annotation onto every visible node
// of a document. A Translator holds no per-document state and may be shared.
type Translator struct {
	logger *log.Logger
}

// New creates a Translator.
func New(opts ...Option) *Translator {
	t := &Translator{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate resolves the layout of every page of d. Each node is visited
// once, parent before children: its container is configured, its own sizing
// resolved against the parent's axis mode, and its absolute placement
// computed. Spacers for space-between containers are inserted after the
// children have been visited. Invisible nodes and their subtrees are skipped.
//
// Cancellation is checked between node visits; on cancellation the context
// error is returned and the document is left partially annotated.
func (t *Translator) Translate(ctx context.Context, d *design.Document) (Stats, error) {
	var st Stats
	for _, p := range d.Pages {
		for _, root := range p.Nodes {
			if err := t.visit(ctx, root, nil, &st); err != nil {
				return st, err
			}
		}
	}
	t.logger.Debug("translated layout",
		"nodes", st.Nodes,
		"containers", st.Containers,
		"spacers", st.Spacers,
		"approximations", st.Approximations)
	return st, nil
}

// TranslateNode resolves the subtree rooted at n as if n's parent were
// parent, which may be nil.
func (t *Translator) TranslateNode(ctx context.Context, n, parent *design.Node) (Stats, error) {
	var st Stats
	err := t.visit(ctx, n, parent, &st)
	return st, err
}

func (t *Translator) visit(ctx context.Context, n, parent *design.Node, st *Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !n.IsVisible() {
		return nil
	}
	st.Nodes++
	res := &design.Resolved{}

	// Pre-order: configure the container before the children are visited.
	if dir, tags := ResolveAlignment(n); dir != nil {
		res.Container = dir
		st.Containers++
		t.approximate(ctx, n, tags, st)
	}

	parentMode := design.AxisNone
	if parent != nil && !n.IsAbsolute() {
		parentMode = parent.Container.Mode
	}
	sizing, tags := ResolveSizing(n, parentMode)
	res.Sizing = sizing
	t.approximate(ctx, n, tags, st)

	if n.IsAbsolute() {
		if parent == nil {
			res.Placement = OriginPlacement(n)
			t.approximate(ctx, n, []string{TagAbsoluteRootFallback}, st)
		} else {
			res.Placement = ResolvePlacement(n, parent)
			st.Absolute++
		}
	}
	n.Layout = res

	for _, c := range n.Children {
		if err := t.visit(ctx, c, n, st); err != nil {
			return err
		}
	}

	// Post-order: the visible child set is final, insert spacers.
	res.Items = BuildItems(n, res.Container)
	if s := res.SpacerCount(); s > 0 {
		st.Spacers += s
		t.logger.Debug("inserted spacers", "node", n.ID, "count", s)
	}
	return nil
}

func (t *Translator) approximate(ctx context.Context, n *design.Node, tags []string, st *Stats) {
	for _, tag := range tags {
		n.Tag(tag)
		st.Approximations++
		t.logger.Debug("layout approximated", "node", n.ID, "tag", tag)
		observability.Layout().OnApproximation(ctx, n.ID, tag)
	}
}
