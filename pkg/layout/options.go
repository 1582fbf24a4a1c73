// Package layout computes grid positions for graph nodes.
//
// The engine partitions a graph into weakly-connected components, lays each
// one out independently (hierarchical layers by default, with specialized
// strategies for small patterned components), and stacks the results
// vertically into one coordinate map consumed by pkg/render.
//
// All placement decisions iterate identifier-sorted node and edge
// enumerations, so the same graph and options always produce the same
// positions.
package layout

import (
	"strings"

	"github.com/scottvr/phart/pkg/errors"
)

// Style selects the decorator pair wrapped around node labels.
type Style string

// Node styles.
const (
	StyleMinimal Style = "minimal" // bare label
	StyleSquare  Style = "square"  // [label]
	StyleRound   Style = "round"   // (label)
	StyleDiamond Style = "diamond" // <label>
	StyleCustom  Style = "custom"  // per-node decorators from Options
)

// ParseStyle converts a style name to a Style, case-insensitively.
func ParseStyle(name string) (Style, error) {
	switch s := Style(strings.ToLower(name)); s {
	case StyleMinimal, StyleSquare, StyleRound, StyleDiamond, StyleCustom:
		return s, nil
	}
	return "", errors.New(errors.ErrCodeInvalidStyle,
		"invalid node style %q, valid options are: minimal, square, round, diamond, custom", name)
}

// Decorator is the prefix/suffix pair wrapped around one node's label.
type Decorator struct {
	Prefix string
	Suffix string
}

// customFallback decorates nodes with no entry in CustomDecorators.
var customFallback = Decorator{Prefix: "*", Suffix: "*"}

// Named defaults for the 3-node strategy selection heuristics. The density
// threshold can be overridden per Options; the mutual-pair limit cannot,
// since more than one mutual pair always reads better stacked.
const (
	// TriadDensityThreshold is the fraction of the 6 possible directed
	// edges above which a 3-node component uses the vertical strategy.
	TriadDensityThreshold = 0.5

	// TriadMutualPairLimit is the number of mutual (bidirectional) pairs
	// above which a 3-node component uses the vertical strategy.
	TriadMutualPairLimit = 1
)

// Options configures layout and rendering. Construct with Default and adjust
// fields before the first use; Validate rejects unusable values. The engine
// never mutates an Options value, so one value may serve any number of
// layout and render calls.
type Options struct {
	// NodeSpacing is the minimum horizontal gap between nodes in a layer.
	// Must be at least 1.
	NodeSpacing int

	// LayerSpacing is the number of rows between consecutive layers. The
	// vertical pitch is LayerSpacing+1, so 0 still yields distinct rows.
	// Must be non-negative.
	LayerSpacing int

	// NodeStyle selects the decorator pair for node labels.
	NodeStyle Style

	// CustomDecorators maps node IDs to decorator pairs. Required
	// (non-empty) when NodeStyle is StyleCustom; nodes without an entry
	// fall back to "*label*".
	CustomDecorators map[string]Decorator

	// UseASCII selects 7-bit glyphs instead of Unicode box drawing.
	UseASCII bool

	// ShowArrows toggles arrowheads and bidirectional markers on edges.
	ShowArrows bool

	// BinaryTreeLayout orders layer members by the side attribute on their
	// incoming edge instead of alphabetically.
	BinaryTreeLayout bool

	// LeftPadding and RightPadding are extra blank columns around the
	// diagram. Right padding grows by two when UseASCII is set, since
	// ASCII arrowheads need more clearance than box-drawing glyphs.
	LeftPadding  int
	RightPadding int

	// DensityThreshold overrides TriadDensityThreshold when positive.
	DensityThreshold float64
}

// Default returns the baseline options: square decorators, Unicode glyphs,
// arrows on, spacing matched to the reference renderer.
func Default() Options {
	return Options{
		NodeSpacing:  4,
		LayerSpacing: 2,
		NodeStyle:    StyleSquare,
		ShowArrows:   true,
		RightPadding: 4,
	}
}

// Validate checks the options and returns a coded error for the first
// violation found. Engines call this once up front so later stages can
// assume a well-formed configuration.
func (o Options) Validate() error {
	if o.NodeSpacing < 1 {
		return errors.New(errors.ErrCodeInvalidSpacing, "node spacing must be at least 1, got %d", o.NodeSpacing)
	}
	if o.LayerSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidSpacing, "layer spacing must be non-negative, got %d", o.LayerSpacing)
	}
	if o.LeftPadding < 0 || o.RightPadding < 0 {
		return errors.New(errors.ErrCodeInvalidPadding, "padding must be non-negative, got left=%d right=%d", o.LeftPadding, o.RightPadding)
	}
	if _, err := ParseStyle(string(o.NodeStyle)); err != nil {
		return err
	}
	if o.NodeStyle == StyleCustom && len(o.CustomDecorators) == 0 {
		return errors.New(errors.ErrCodeInvalidDecorators, "custom decorators must be provided when using the custom node style")
	}
	if o.DensityThreshold < 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "density threshold must be non-negative, got %g", o.DensityThreshold)
	}
	return nil
}

// Decorator returns the prefix/suffix pair for one node.
func (o Options) Decorator(node string) Decorator {
	switch o.NodeStyle {
	case StyleMinimal:
		return Decorator{}
	case StyleRound:
		return Decorator{Prefix: "(", Suffix: ")"}
	case StyleDiamond:
		return Decorator{Prefix: "<", Suffix: ">"}
	case StyleCustom:
		if d, ok := o.CustomDecorators[node]; ok {
			return d
		}
		return customFallback
	default:
		return Decorator{Prefix: "[", Suffix: "]"}
	}
}

// DisplayWidth returns the rendered width of a node: label plus decorators.
func (o Options) DisplayWidth(node string) int {
	d := o.Decorator(node)
	return len(d.Prefix) + len(node) + len(d.Suffix)
}

// rowPitch is the vertical distance between consecutive layers.
func (o Options) rowPitch() int { return o.LayerSpacing + 1 }

// densityThreshold resolves the effective triad density threshold.
func (o Options) densityThreshold() float64 {
	if o.DensityThreshold > 0 {
		return o.DensityThreshold
	}
	return TriadDensityThreshold
}

// Glyphs is the character set used by the renderer.
type Glyphs struct {
	Horizontal rune
	Vertical   rune
	Cross      rune
	ArrowRight rune
	ArrowLeft  rune
	ArrowUp    rune
	ArrowDown  rune
	BidirV     rune // both-ways marker on vertical runs
	BidirH     rune // both-ways marker on horizontal runs
}

var (
	unicodeGlyphs = Glyphs{
		Horizontal: '─',
		Vertical:   '│',
		Cross:      '+',
		ArrowRight: '→',
		ArrowLeft:  '←',
		ArrowUp:    '↑',
		ArrowDown:  '↓',
		BidirV:     '↕',
		BidirH:     '↔',
	}
	asciiGlyphs = Glyphs{
		Horizontal: '-',
		Vertical:   '|',
		Cross:      '+',
		ArrowRight: '>',
		ArrowLeft:  '<',
		ArrowUp:    '^',
		ArrowDown:  'v',
		BidirV:     'x',
		BidirH:     'x',
	}
)

// Glyphs returns the character set selected by UseASCII.
func (o Options) Glyphs() Glyphs {
	if o.UseASCII {
		return asciiGlyphs
	}
	return unicodeGlyphs
}
