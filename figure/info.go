package figure

import (
	"strings"

	"github.com/danielpatrickdp/livefig/snapshot"
	"github.com/danielpatrickdp/livefig/sym"
)

// #region policy
// DynamicPolicy decides how computed info segments appear in snapshots.
type DynamicPolicy string

const (
	// DynamicPlaceholder records every computed segment as snapshot.DynamicPlaceholder.
	DynamicPlaceholder DynamicPolicy = "placeholder"
	// DynamicFreeze renders computed segments with the current parameter
	// values and records the text as static.
	DynamicFreeze DynamicPolicy = "freeze"
)

// #endregion policy

// #region segment
// Segment is one piece of an info card.
type Segment struct {
	text    string
	dynamic bool
	compute func(sym.Env) string
}

// Text is a static segment.
func Text(s string) Segment { return Segment{text: s} }

// Computed is a segment rendered from the current parameter values.
func Computed(fn func(values sym.Env) string) Segment {
	return Segment{dynamic: true, compute: fn}
}

// Placeholder is a dynamic segment with no renderer. Replayed figures use it
// where the original content could not be captured.
func Placeholder() Segment { return Segment{dynamic: true} }

func (s Segment) render(values sym.Env) string {
	switch {
	case !s.dynamic:
		return s.text
	case s.compute == nil:
		return snapshot.DynamicPlaceholder
	}
	return s.compute(values)
}

// #endregion segment

// #region card
// InfoCard is a block of text shown next to the plots.
type InfoCard struct {
	fig      *Figure
	segments []Segment
}

// Render concatenates the segments using values for computed ones.
func (c *InfoCard) Render(values sym.Env) string {
	var b strings.Builder
	for _, s := range c.segments {
		b.WriteString(s.render(values))
	}
	return b.String()
}

// Snapshot copies the static segments and handles computed ones per policy.
func (c *InfoCard) Snapshot(policy DynamicPolicy) snapshot.InfoCard {
	var values sym.Env
	if policy == DynamicFreeze && c.fig != nil {
		values = c.fig.values()
	}
	out := snapshot.InfoCard{Segments: make([]snapshot.Segment, len(c.segments))}
	for i, s := range c.segments {
		switch {
		case !s.dynamic:
			out.Segments[i] = snapshot.Segment{Text: s.text}
		case policy == DynamicFreeze && s.compute != nil:
			out.Segments[i] = snapshot.Segment{Text: s.compute(values)}
		default:
			out.Segments[i] = snapshot.Segment{Dynamic: true, Text: snapshot.DynamicPlaceholder}
		}
	}
	return out
}

// #endregion card
