package layout

import "github.com/matzehuels/designtree/pkg/design"

// Approximation tags.
const (
	TagSoftMaxCap           = "soft-max-cap"
	TagFillWithoutLayout    = "fill-without-layout"
	TagBaselineApproximated = "baseline-approximated"
	TagAbsoluteRootFallback = "absolute-root-fallback"
	TagCounterSpaceBetween  = "counter-space-between-approximated"
)

// ResolveSizing resolves how n sizes itself inside a parent arranging its
// children along parentMode. It never fails: unknown modes degrade to a fixed
// size equal to the node's stored bounds. The returned tags name any
// approximation that was applied.
func ResolveSizing(n *design.Node, parentMode design.AxisMode) (design.SizeDirective, []string) {
	var tags []string
	inFlow := parentMode.HasLayout()

	h, tag := resolveAxis(n.Sizing.Horizontal, n.Bounds.Width,
		n.Sizing.MinWidth, n.Sizing.MaxWidth, n.Sizing.Grow, inFlow)
	tags = appendTag(tags, tag)

	v, tag := resolveAxis(n.Sizing.Vertical, n.Bounds.Height,
		n.Sizing.MinHeight, n.Sizing.MaxHeight, n.Sizing.Grow, inFlow)
	tags = appendTag(tags, tag)

	return design.SizeDirective{Horizontal: h, Vertical: v}, tags
}

func resolveAxis(mode design.SizingMode, size float64, lo, hi *float64, grow float64, inFlow bool) (design.AxisSize, string) {
	if size < 0 {
		size = 0
	}
	if !inFlow {
		switch mode {
		case design.SizingFill:
			return design.AxisSize{Kind: design.SizeExact, Size: clamp(size, lo, hi)}, TagFillWithoutLayout
		case design.SizingHug:
			return design.AxisSize{Kind: design.SizeExact, Size: size}, ""
		default:
			return design.AxisSize{Kind: design.SizeExact, Size: clamp(size, lo, hi)}, ""
		}
	}

	switch mode {
	case design.SizingFill:
		weight := grow
		if weight <= 0 {
			weight = 1
		}
		out := design.AxisSize{Kind: design.SizeGrow, Size: size, Weight: weight}
		if lo != nil && out.Size < *lo {
			out.Size = *lo
		}
		if hi == nil {
			return out, ""
		}
		capped := *hi
		out.SoftMax = &capped
		if out.Size > capped {
			out.Size = capped
		}
		return out, TagSoftMaxCap
	case design.SizingHug:
		return design.AxisSize{Kind: design.SizeShrink, Size: size, ContentDriven: true}, ""
	default:
		return design.AxisSize{Kind: design.SizeExact, Size: clamp(size, lo, hi)}, ""
	}
}

func clamp(v float64, lo, hi *float64) float64 {
	if hi != nil && v > *hi {
		v = *hi
	}
	if lo != nil && v < *lo {
		v = *lo
	}
	return v
}

func appendTag(tags []string, tag string) []string {
	if tag == "" {
		return tags
	}
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
