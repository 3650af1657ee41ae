package layout

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/matzehuels/designtree/pkg/design"
)

func ptr(v float64) *float64 { return &v }

func hidden() *bool {
	b := false
	return &b
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestResolveSizing(t *testing.T) {
	tests := []struct {
		name       string
		node       design.Node
		parentMode design.AxisMode
		wantH      design.AxisSize
		wantTags   []string
	}{
		{
			name: "fixed clamped to max",
			node: design.Node{
				Bounds: design.Rect{Width: 300},
				Sizing: design.Sizing{Horizontal: design.SizingFixed, MaxWidth: ptr(200)},
			},
			parentMode: design.AxisHorizontal,
			wantH:      design.AxisSize{Kind: design.SizeExact, Size: 200},
		},
		{
			name: "fixed clamped to min",
			node: design.Node{
				Bounds: design.Rect{Width: 10},
				Sizing: design.Sizing{Horizontal: design.SizingFixed, MinWidth: ptr(40)},
			},
			parentMode: design.AxisVertical,
			wantH:      design.AxisSize{Kind: design.SizeExact, Size: 40},
		},
		{
			name: "fill default weight",
			node: design.Node{
				Bounds: design.Rect{Width: 120},
				Sizing: design.Sizing{Horizontal: design.SizingFill},
			},
			parentMode: design.AxisHorizontal,
			wantH:      design.AxisSize{Kind: design.SizeGrow, Size: 120, Weight: 1},
		},
		{
			name: "fill uses grow",
			node: design.Node{
				Bounds: design.Rect{Width: 120},
				Sizing: design.Sizing{Horizontal: design.SizingFill, Grow: 3},
			},
			parentMode: design.AxisHorizontal,
			wantH:      design.AxisSize{Kind: design.SizeGrow, Size: 120, Weight: 3},
		},
		{
			name: "fill with max is a soft cap",
			node: design.Node{
				Bounds: design.Rect{Width: 500},
				Sizing: design.Sizing{Horizontal: design.SizingFill, MaxWidth: ptr(320)},
			},
			parentMode: design.AxisHorizontal,
			wantH:      design.AxisSize{Kind: design.SizeGrow, Size: 320, Weight: 1, SoftMax: ptr(320)},
			wantTags:   []string{TagSoftMaxCap},
		},
		{
			name: "hug is content driven",
			node: design.Node{
				Bounds: design.Rect{Width: 88},
				Sizing: design.Sizing{Horizontal: design.SizingHug},
			},
			parentMode: design.AxisHorizontal,
			wantH:      design.AxisSize{Kind: design.SizeShrink, Size: 88, ContentDriven: true},
		},
		{
			name: "hug without parent layout collapses",
			node: design.Node{
				Bounds: design.Rect{Width: 88},
				Sizing: design.Sizing{Horizontal: design.SizingHug},
			},
			parentMode: design.AxisNone,
			wantH:      design.AxisSize{Kind: design.SizeExact, Size: 88},
		},
		{
			name: "fill without parent layout is fixed",
			node: design.Node{
				Bounds: design.Rect{Width: 88},
				Sizing: design.Sizing{Horizontal: design.SizingFill},
			},
			parentMode: design.AxisNone,
			wantH:      design.AxisSize{Kind: design.SizeExact, Size: 88},
			wantTags:   []string{TagFillWithoutLayout},
		},
		{
			name:       "missing data degrades to fixed",
			node:       design.Node{Bounds: design.Rect{Width: 64}},
			parentMode: "",
			wantH:      design.AxisSize{Kind: design.SizeExact, Size: 64},
		},
		{
			name: "unknown mode degrades to fixed",
			node: design.Node{
				Bounds: design.Rect{Width: 64},
				Sizing: design.Sizing{Horizontal: "STRETCHY"},
			},
			parentMode: design.AxisHorizontal,
			wantH:      design.AxisSize{Kind: design.SizeExact, Size: 64},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tags := ResolveSizing(&tt.node, tt.parentMode)
			h := got.Horizontal
			if h.Kind != tt.wantH.Kind || !approx(h.Size, tt.wantH.Size) || h.Weight != tt.wantH.Weight || h.ContentDriven != tt.wantH.ContentDriven {
				t.Errorf("horizontal = %+v, want %+v", h, tt.wantH)
			}
			if (h.SoftMax == nil) != (tt.wantH.SoftMax == nil) {
				t.Errorf("SoftMax = %v, want %v", h.SoftMax, tt.wantH.SoftMax)
			} else if h.SoftMax != nil && *h.SoftMax != *tt.wantH.SoftMax {
				t.Errorf("SoftMax = %v, want %v", *h.SoftMax, *tt.wantH.SoftMax)
			}
			if len(tags) != len(tt.wantTags) {
				t.Fatalf("tags = %v, want %v", tags, tt.wantTags)
			}
			for i := range tags {
				if tags[i] != tt.wantTags[i] {
					t.Errorf("tags[%d] = %q, want %q", i, tags[i], tt.wantTags[i])
				}
			}
		})
	}
}

func TestResolveSizingFixedWithinBounds(t *testing.T) {
	for _, w := range []float64{0, 5, 50, 150, 1000} {
		n := &design.Node{
			Bounds: design.Rect{Width: w, Height: w},
			Sizing: design.Sizing{MinWidth: ptr(10), MaxWidth: ptr(100), MinHeight: ptr(10), MaxHeight: ptr(100)},
		}
		got, _ := ResolveSizing(n, design.AxisHorizontal)
		for _, a := range []design.AxisSize{got.Horizontal, got.Vertical} {
			if a.Size < 10 || a.Size > 100 {
				t.Errorf("width %v: size %v outside [10, 100]", w, a.Size)
			}
		}
	}
}

func TestResolveAlignment(t *testing.T) {
	tests := []struct {
		name         string
		container    design.Container
		wantNil      bool
		wantPrimary  design.Align
		wantCounter  design.Align
		spaceBetween bool
		wantTag      string
	}{
		{name: "no mode", container: design.Container{}, wantNil: true},
		{
			name:        "center end",
			container:   design.Container{Mode: design.AxisHorizontal, Primary: design.AlignCenter, Counter: design.AlignEnd},
			wantPrimary: design.AlignCenter, wantCounter: design.AlignEnd,
		},
		{
			name:        "space between",
			container:   design.Container{Mode: design.AxisHorizontal, Primary: design.AlignSpaceBetween},
			wantPrimary: design.AlignStart, wantCounter: design.AlignStart, spaceBetween: true,
		},
		{
			name:        "baseline counter",
			container:   design.Container{Mode: design.AxisHorizontal, Counter: design.AlignBaseline},
			wantPrimary: design.AlignStart, wantCounter: design.AlignStart, wantTag: TagBaselineApproximated,
		},
		{
			name:        "counter space between",
			container:   design.Container{Mode: design.AxisVertical, Counter: design.AlignSpaceBetween},
			wantPrimary: design.AlignStart, wantCounter: design.AlignStart, wantTag: TagCounterSpaceBetween,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, tags := ResolveAlignment(&design.Node{Container: tt.container})
			if tt.wantNil {
				if dir != nil {
					t.Fatalf("expected nil directive, got %+v", dir)
				}
				return
			}
			if dir.Primary != tt.wantPrimary || dir.Counter != tt.wantCounter {
				t.Errorf("primary/counter = %s/%s, want %s/%s", dir.Primary, dir.Counter, tt.wantPrimary, tt.wantCounter)
			}
			if dir.SpaceBetween != tt.spaceBetween {
				t.Errorf("SpaceBetween = %v, want %v", dir.SpaceBetween, tt.spaceBetween)
			}
			if tt.wantTag == "" && len(tags) > 0 {
				t.Errorf("unexpected tags %v", tags)
			}
			if tt.wantTag != "" && (len(tags) != 1 || tags[0] != tt.wantTag) {
				t.Errorf("tags = %v, want [%s]", tags, tt.wantTag)
			}
		})
	}
}

func spaceBetweenRow(children ...*design.Node) *design.Node {
	return &design.Node{
		ID:        "row",
		Kind:      design.KindFrame,
		Container: design.Container{Mode: design.AxisHorizontal, Primary: design.AlignSpaceBetween, Spacing: 8},
		Children:  children,
	}
}

func leaf(id string) *design.Node {
	return &design.Node{ID: id, Kind: design.KindRectangle, Bounds: design.Rect{Width: 10, Height: 10}}
}

func TestBuildItemsSpacerCount(t *testing.T) {
	for n := 0; n <= 5; n++ {
		children := make([]*design.Node, n)
		for i := range children {
			children[i] = leaf(string(rune('a' + i)))
		}
		row := spaceBetweenRow(children...)
		dir, _ := ResolveAlignment(row)
		items := BuildItems(row, dir)

		want := n - 1
		if want < 0 {
			want = 0
		}
		got := (&design.Resolved{Items: items}).SpacerCount()
		if got != want {
			t.Errorf("%d children: %d spacers, want %d", n, got, want)
		}
		for i, it := range items {
			if it.IsSpacer() && (i == 0 || i == len(items)-1 || items[i-1].IsSpacer() || items[i+1].IsSpacer()) {
				t.Errorf("%d children: spacer at %d is not between two real children", n, i)
			}
		}
		if len(row.Children) != n {
			t.Errorf("children mutated: %d, want %d", len(row.Children), n)
		}
	}
}

func TestBuildItemsSkipsInvisibleAndAbsolute(t *testing.T) {
	ghost := leaf("ghost")
	ghost.Visible = hidden()
	badge := leaf("badge")
	badge.Positioning = design.PositionAbsolute

	row := spaceBetweenRow(leaf("a"), ghost, badge, leaf("b"))
	dir, _ := ResolveAlignment(row)
	items := BuildItems(row, dir)

	var ids []string
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	want := []string{"a", "badge", "row#spacer-0", "b"}
	if len(ids) != len(want) {
		t.Fatalf("items = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("items[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestNewSpacerAxes(t *testing.T) {
	h := NewSpacer("p", 0, design.AxisHorizontal)
	if h.Layout.Sizing.Horizontal.Kind != design.SizeGrow || h.Layout.Sizing.Horizontal.Weight != 1 || h.Layout.Sizing.Horizontal.Size != 0 {
		t.Errorf("horizontal spacer primary = %+v", h.Layout.Sizing.Horizontal)
	}
	if h.Layout.Sizing.Vertical.Kind != design.SizeExact || h.Layout.Sizing.Vertical.Size != 0 {
		t.Errorf("horizontal spacer counter = %+v", h.Layout.Sizing.Vertical)
	}

	v := NewSpacer("p", 1, design.AxisVertical)
	if v.Layout.Sizing.Vertical.Kind != design.SizeGrow {
		t.Errorf("vertical spacer primary = %+v", v.Layout.Sizing.Vertical)
	}
	if v.ID != "p#spacer-1" || v.Kind != design.KindSpacer {
		t.Errorf("spacer id/kind = %s/%s", v.ID, v.Kind)
	}
}

func absoluteChild(h, v design.Constraint) (*design.Node, *design.Node) {
	parent := &design.Node{
		ID:        "parent",
		Bounds:    design.Rect{X: 100, Y: 50, Width: 430, Height: 320},
		Container: design.Container{Padding: design.Padding{Top: 10, Right: 10, Bottom: 10, Left: 20}},
	}
	child := &design.Node{
		ID:          "child",
		Bounds:      design.Rect{X: 140, Y: 80, Width: 100, Height: 60},
		Positioning: design.PositionAbsolute,
		Constraints: design.Constraints{Horizontal: h, Vertical: v},
	}
	return child, parent
}

func TestResolvePlacementAnchors(t *testing.T) {
	// Content box: x 120..510 (400 wide), y 60..360 (300 high).
	// Child: left 20, right 280, top 20, bottom 220.
	tests := []struct {
		name     string
		h, v     design.Constraint
		wantH    design.AnchorKind
		wantV    design.AnchorKind
		resizeW  float64
		wantOffX float64
		wantW    float64
	}{
		{"left top", design.ConstraintMin, design.ConstraintMin, design.AnchorNear, design.AnchorFar, 800, 20, 100},
		{"right bottom", design.ConstraintMax, design.ConstraintMax, design.AnchorFar, design.AnchorNear, 800, 420, 100},
		{"center", design.ConstraintCenter, design.ConstraintCenter, design.AnchorCenter, design.AnchorCenter, 800, 220, 100},
		{"stretch", design.ConstraintStretch, design.ConstraintStretch, design.AnchorStretch, design.AnchorStretch, 800, 20, 500},
		{"scale", design.ConstraintScale, design.ConstraintScale, design.AnchorScale, design.AnchorScale, 800, 40, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child, parent := absoluteChild(tt.h, tt.v)
			p := ResolvePlacement(child, parent)
			if p == nil {
				t.Fatal("expected placement")
			}
			if p.ParentWidth != 400 || p.ParentHeight != 300 {
				t.Errorf("content box = %vx%v, want 400x300", p.ParentWidth, p.ParentHeight)
			}
			if p.Horizontal.Kind != tt.wantH {
				t.Errorf("horizontal kind = %s, want %s", p.Horizontal.Kind, tt.wantH)
			}
			if p.Vertical.Kind != tt.wantV {
				t.Errorf("vertical kind = %s, want %s", p.Vertical.Kind, tt.wantV)
			}

			// Unchanged parent reproduces the source geometry.
			x, w := p.Horizontal.Resolve(p.ParentWidth)
			if !approx(x, 20) || !approx(w, 100) {
				t.Errorf("Resolve(400) = %v, %v; want 20, 100", x, w)
			}
			y, hgt := p.SourceVertical().Resolve(p.ParentHeight)
			if !approx(y, 20) || !approx(hgt, 60) {
				t.Errorf("SourceVertical().Resolve(300) = %v, %v; want 20, 60", y, hgt)
			}

			// Resized parent follows the constraint family.
			x, w = p.Horizontal.Resolve(tt.resizeW)
			if !approx(x, tt.wantOffX) || !approx(w, tt.wantW) {
				t.Errorf("Resolve(%v) = %v, %v; want %v, %v", tt.resizeW, x, w, tt.wantOffX, tt.wantW)
			}
		})
	}
}

func TestResolvePlacementVerticalFlip(t *testing.T) {
	child, parent := absoluteChild(design.ConstraintMin, design.ConstraintMin)
	p := ResolvePlacement(child, parent)

	// Top-pinned in source is pinned to the far edge in y-up.
	if p.Vertical.Far != 20 {
		t.Errorf("Far = %v, want 20", p.Vertical.Far)
	}
	bottom, _ := p.Vertical.Resolve(p.ParentHeight)
	if !approx(bottom, 220) {
		t.Errorf("y-up offset = %v, want 220", bottom)
	}
	if got := p.SourceVertical().Flip(); got != p.Vertical {
		t.Errorf("double flip changed anchor: %+v vs %+v", got, p.Vertical)
	}
}

func TestResolvePlacementStretchRoundTrip(t *testing.T) {
	child, parent := absoluteChild(design.ConstraintStretch, design.ConstraintStretch)
	p := ResolvePlacement(child, parent)
	for _, size := range []float64{200, 400, 1200} {
		off, w := p.Horizontal.Resolve(size)
		if !approx(off, p.Horizontal.Near) || !approx(size-off-w, p.Horizontal.Far) {
			t.Errorf("size %v: edge distances not preserved (%v, %v)", size, off, size-off-w)
		}
	}
}

func TestResolvePlacementNoParent(t *testing.T) {
	child, _ := absoluteChild(design.ConstraintMin, design.ConstraintMin)
	if p := ResolvePlacement(child, nil); p != nil {
		t.Errorf("expected nil placement without parent, got %+v", p)
	}
}

func TestTranslate(t *testing.T) {
	badge := leaf("badge")
	badge.Positioning = design.PositionAbsolute
	badge.Constraints = design.Constraints{Horizontal: design.ConstraintMax, Vertical: design.ConstraintMin}

	ghost := leaf("ghost")
	ghost.Visible = hidden()

	fill := leaf("fill")
	fill.Sizing = design.Sizing{Horizontal: design.SizingFill}

	row := spaceBetweenRow(leaf("a"), fill, ghost, badge, leaf("b"))
	row.Bounds = design.Rect{Width: 400, Height: 40}
	row.Container.Counter = design.AlignBaseline

	floating := leaf("floating")
	floating.Positioning = design.PositionAbsolute

	doc := &design.Document{Pages: []*design.Page{{ID: "0:1", Nodes: []*design.Node{row, floating}}}}

	st, err := New().Translate(context.Background(), doc)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if st.Nodes != 6 {
		t.Errorf("Nodes = %d, want 6", st.Nodes)
	}
	if st.Spacers != 2 {
		t.Errorf("Spacers = %d, want 2", st.Spacers)
	}
	if st.Absolute != 1 {
		t.Errorf("Absolute = %d, want 1", st.Absolute)
	}

	if ghost.Layout != nil {
		t.Error("invisible node should not be annotated")
	}
	if !row.HasTag(TagBaselineApproximated) {
		t.Error("row should be tagged baseline-approximated")
	}
	if row.Layout.Container == nil || row.Layout.Container.Primary != design.AlignStart {
		t.Errorf("row container = %+v", row.Layout.Container)
	}
	if fill.Layout.Sizing.Horizontal.Kind != design.SizeGrow {
		t.Errorf("fill child sizing = %+v", fill.Layout.Sizing.Horizontal)
	}
	if badge.Layout.Placement == nil || badge.Layout.Placement.Horizontal.Kind != design.AnchorFar {
		t.Errorf("badge placement = %+v", badge.Layout.Placement)
	}
	if badge.Layout.Sizing.Horizontal.Kind != design.SizeExact {
		t.Errorf("absolute child should size as free-form, got %+v", badge.Layout.Sizing.Horizontal)
	}
	if !floating.HasTag(TagAbsoluteRootFallback) {
		t.Errorf("root absolute fallback not applied: tags %v", floating.Tags)
	}
	if p := floating.Layout.Placement; p == nil {
		t.Error("root absolute node should be placed at the origin")
	} else {
		for axis, a := range map[string]design.AxisAnchor{"horizontal": p.Horizontal, "vertical": p.Vertical} {
			if a.Kind != design.AnchorNear || a.Near != 0 {
				t.Errorf("%s anchor = %+v, want near at 0", axis, a)
			}
		}
		if p.Horizontal.Size != floating.Bounds.Width || p.Vertical.Size != floating.Bounds.Height {
			t.Errorf("origin placement size = %vx%v, want %vx%v",
				p.Horizontal.Size, p.Vertical.Size, floating.Bounds.Width, floating.Bounds.Height)
		}
	}
}

func TestTranslateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := &design.Document{Pages: []*design.Page{{Nodes: []*design.Node{leaf("a")}}}}
	_, err := New().Translate(ctx, doc)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
