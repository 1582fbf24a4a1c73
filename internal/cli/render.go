package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scottvr/phart/pkg/cache"
	"github.com/scottvr/phart/pkg/dot"
	"github.com/scottvr/phart/pkg/graph"
	"github.com/scottvr/phart/pkg/layout"
	"github.com/scottvr/phart/pkg/render"
)

// renderTTL is how long rendered diagrams stay in the cache. Inputs are
// content-addressed, so a long TTL never serves stale output.
const renderTTL = 24 * time.Hour

// layoutFlags holds the command-line flags shared by every command that
// builds layout options.
type layoutFlags struct {
	style        string
	ascii        bool
	noArrows     bool
	nodeSpacing  int
	layerSpacing int
	leftPadding  int
	rightPadding int
	btree        bool
	density      float64
}

// addLayoutFlags registers the shared layout flags on cmd. base carries the
// effective defaults (library defaults overlaid with the user's config
// file), so --help shows what will actually apply.
func addLayoutFlags(cmd *cobra.Command, f *layoutFlags, base layout.Options) {
	cmd.Flags().StringVar(&f.style, "style", string(base.NodeStyle), "node style: minimal, square, round, diamond")
	cmd.Flags().BoolVar(&f.ascii, "ascii", base.UseASCII, "use 7-bit ASCII glyphs instead of Unicode")
	cmd.Flags().BoolVar(&f.noArrows, "no-arrows", !base.ShowArrows, "draw edges without arrowheads")
	cmd.Flags().IntVar(&f.nodeSpacing, "node-spacing", base.NodeSpacing, "horizontal gap between nodes in a layer")
	cmd.Flags().IntVar(&f.layerSpacing, "layer-spacing", base.LayerSpacing, "rows between consecutive layers")
	cmd.Flags().IntVar(&f.leftPadding, "left-padding", base.LeftPadding, "blank columns left of the diagram")
	cmd.Flags().IntVar(&f.rightPadding, "right-padding", base.RightPadding, "blank columns right of the diagram")
	cmd.Flags().BoolVar(&f.btree, "btree", base.BinaryTreeLayout, "order children by left/right edge attributes")
	cmd.Flags().Float64Var(&f.density, "density-threshold", base.DensityThreshold, "edge density above which 3-node components stack vertically")
}

// options converts the flag values into validated layout options.
func (f *layoutFlags) options() (layout.Options, error) {
	style, err := layout.ParseStyle(f.style)
	if err != nil {
		return layout.Options{}, err
	}
	opts := layout.Default()
	opts.NodeStyle = style
	opts.UseASCII = f.ascii
	opts.ShowArrows = !f.noArrows
	opts.NodeSpacing = f.nodeSpacing
	opts.LayerSpacing = f.layerSpacing
	opts.LeftPadding = f.leftPadding
	opts.RightPadding = f.rightPadding
	opts.BinaryTreeLayout = f.btree
	opts.DensityThreshold = f.density
	return opts, opts.Validate()
}

// renderKeyOpts extracts the cache-relevant option fields.
func renderKeyOpts(opts layout.Options) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Style:            string(opts.NodeStyle),
		ASCII:            opts.UseASCII,
		ShowArrows:       opts.ShowArrows,
		NodeSpacing:      opts.NodeSpacing,
		LayerSpacing:     opts.LayerSpacing,
		LeftPadding:      opts.LeftPadding,
		BinaryTree:       opts.BinaryTreeLayout,
		DensityThreshold: opts.DensityThreshold,
	}
}

// renderOpts holds the flags specific to the render command.
type renderOpts struct {
	layoutFlags
	output  string // output file path; empty means stdout
	dotOut  string // DOT export path; "-" prints to stdout
	svgOut  string // SVG export path
	noCache bool
}

// newRenderCmd creates the render command: read a graph file, lay it out,
// and emit the text diagram, optionally alongside DOT and SVG exports.
func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a graph file as a text diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	addLayoutFlags(cmd, &opts.layoutFlags, defaultOptions())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the diagram to a file instead of stdout")
	cmd.Flags().StringVar(&opts.dotOut, "dot", "", "also export Graphviz DOT to a file (- for stdout)")
	cmd.Flags().StringVar(&opts.svgOut, "svg", "", "also export an SVG rendering to a file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")

	return cmd
}

func runRender(ctx context.Context, path string, o *renderOpts) error {
	logger := loggerFromContext(ctx)

	opts, err := o.options()
	if err != nil {
		return err
	}

	g, err := graph.ReadGraphFile(path)
	if err != nil {
		return fmt.Errorf("read graph: %w", err)
	}
	logger.Debug("parsed graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())

	prog := newProgress(logger)
	c, err := newCache(o.noCache)
	if err != nil {
		return err
	}
	defer c.Close()

	text, hit, err := cachedRender(ctx, c, g, opts)
	if err != nil {
		return err
	}

	if o.output != "" {
		if err := os.WriteFile(o.output, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("write %s: %w", o.output, err)
		}
		printFile(o.output)
	} else if text != "" {
		fmt.Println(text)
	}
	printStats(g.NodeCount(), g.EdgeCount(), hit)
	prog.done(fmt.Sprintf("Rendered %d nodes", g.NodeCount()))

	if o.dotOut != "" || o.svgOut != "" {
		return runExports(g, o)
	}
	return nil
}

// cachedRender renders g through the cache: content hash plus options key
// the entry, so any change to either re-renders.
func cachedRender(ctx context.Context, c cache.Cache, g *graph.Graph, opts layout.Options) (string, bool, error) {
	raw, err := graph.MarshalGraph(g)
	if err != nil {
		return "", false, err
	}
	key := cache.NewDefaultKeyer().RenderKey(cache.Hash(raw), renderKeyOpts(opts))

	if data, hit, err := c.Get(ctx, key); err == nil && hit {
		return string(data), true, nil
	}

	text, err := render.Render(g, opts)
	if err != nil {
		return "", false, err
	}
	if err := c.Set(ctx, key, []byte(text), renderTTL); err != nil {
		loggerFromContext(ctx).Debug("cache store failed", "err", err)
	}
	return text, false, nil
}

// runExports writes the DOT and SVG artifacts requested by flags.
func runExports(g *graph.Graph, o *renderOpts) error {
	dotText := dot.ToDOT(g, dot.Options{})

	if o.dotOut == "-" {
		fmt.Print(dotText)
	} else if o.dotOut != "" {
		if err := os.WriteFile(o.dotOut, []byte(dotText), 0644); err != nil {
			return fmt.Errorf("write %s: %w", o.dotOut, err)
		}
		printFile(o.dotOut)
	}

	if o.svgOut != "" {
		sp := newSpinner("Rendering SVG")
		sp.Start()
		svg, err := dot.RenderSVG(dotText)
		if err != nil {
			sp.StopWithError("SVG rendering failed")
			return err
		}
		sp.Stop()
		if err := os.WriteFile(o.svgOut, svg, 0644); err != nil {
			return fmt.Errorf("write %s: %w", o.svgOut, err)
		}
		printFile(o.svgOut)
	}
	return nil
}

// newCache picks the CLI cache backend: file-based under the XDG cache
// directory, or null when disabled. A missing home directory degrades to no
// caching rather than failing the render.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}
