package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/callscape/callscape/pkg/cache"
	"github.com/callscape/callscape/pkg/observability"
	"github.com/callscape/callscape/pkg/render/console"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	metrics        []string // primary and optional secondary metric columns
	annotation     string   // categorical or temporal-pattern annotation column
	precision      int      // decimal places for metric values
	nameColumn     string   // display-name column
	expandNames    bool     // disable the long-name collapse
	contextColumn  string   // source-location column appended after the name
	rank           int      // rank slice for multi-rank profiles
	thread         int      // thread slice for multi-thread profiles
	depth          int      // traversal cutoff, 0 means unlimited
	highlightNames bool     // highlight known procedure names
	colormap       string   // metric palette name
	invertColormap bool     // reverse the palette
	minValue       float64  // normalization lower bound override
	maxValue       float64  // normalization upper bound override
	colorMode      string   // "auto", "always", or "never"
	ascii          bool     // use ASCII glyphs instead of Unicode
	header         bool     // prepend the version banner
	output         string   // output file path, empty means stdout
	noCache        bool     // bypass the render cache

	bounds boundFlags // which of min/max were set explicitly
}

// newTreeCmd creates the tree command, the primary profile view: a
// depth-first call tree with metric values colored by their share of
// the metric range.
func newTreeCmd() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree [profile.json]",
		Short: "Render a profile as a color-coded call tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateColorMode(opts.colorMode); err != nil {
				return err
			}
			opts.markBoundFlags(cmd)
			return runTree(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.metrics, "metric", "m", []string{"time"}, "metric column(s), primary and optional secondary")
	cmd.Flags().StringVarP(&opts.annotation, "annotation", "a", "", "annotation column (names containing \"_pattern\" switch to symbol mode)")
	cmd.Flags().IntVarP(&opts.precision, "precision", "p", 0, "decimal places for metric values")
	cmd.Flags().StringVar(&opts.nameColumn, "name-column", "", "column holding display names")
	cmd.Flags().BoolVar(&opts.expandNames, "expand-names", false, "never shorten long names")
	cmd.Flags().StringVar(&opts.contextColumn, "context", "", "column appended after the name (e.g. source location)")
	cmd.Flags().IntVar(&opts.rank, "rank", 0, "rank to display for multi-rank profiles")
	cmd.Flags().IntVar(&opts.thread, "thread", 0, "thread to display for multi-thread profiles")
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", 0, "maximum tree depth (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.highlightNames, "highlight-names", false, "highlight known procedure names")
	cmd.Flags().StringVarP(&opts.colormap, "colormap", "c", "", "metric palette (RdYlGn, RdYlBu, PiYG, PuOr, Greys, viridis)")
	cmd.Flags().BoolVar(&opts.invertColormap, "invert-colormap", false, "reverse the palette")
	cmd.Flags().Float64Var(&opts.minValue, "min", 0, "override the normalization lower bound")
	cmd.Flags().Float64Var(&opts.maxValue, "max", 0, "override the normalization upper bound")
	cmd.Flags().StringVar(&opts.colorMode, "color", "auto", "colorize output: auto, always, never")
	cmd.Flags().BoolVar(&opts.ascii, "ascii", false, "use ASCII tree glyphs")
	cmd.Flags().BoolVar(&opts.header, "header", false, "prepend the version banner")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write output to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")

	return cmd
}

// boundFlags records which normalization bounds were set explicitly. A
// plain float flag cannot distinguish "unset" from zero.
type boundFlags struct {
	min, max bool
}

func (o *treeOpts) markBoundFlags(cmd *cobra.Command) {
	o.bounds.min = cmd.Flags().Changed("min")
	o.bounds.max = cmd.Flags().Changed("max")
}

func validateColorMode(mode string) error {
	switch mode {
	case "auto", "always", "never":
		return nil
	}
	return fmt.Errorf("invalid color mode: %s (must be 'auto', 'always', or 'never')", mode)
}

// colorEnabled resolves the --color flag. Auto means color when stdout
// is a terminal and the output is not redirected to a file.
func colorEnabled(mode string, toFile bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if toFile {
		return false
	}
	info, err := os.Stdout.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func runTree(ctx context.Context, path string, opts *treeOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	prog := newProgress(logger)

	p, raw, err := loadProfile(ctx, path)
	if err != nil {
		return err
	}

	renderOpts := opts.consoleOptions(cfg.Render)

	var store cache.Cache
	if !opts.noCache {
		store = openCache(ctx, cfg.Cache)
		defer store.Close()
	}

	key := ""
	if store != nil {
		key = cache.RenderKey(raw, renderOpts)
		if data, ok, err := store.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "render")
			logger.Debug("render cache hit", "key", key)
			return writeTree(string(data), opts.output, p.Table.Len(), len(p.Graph.Nodes()), true, prog)
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, "tree", len(p.Graph.Nodes()))
	renderOpts.Logger = logger
	out, err := console.Render(p.Graph, p.Table, renderOpts)
	observability.Render().OnRenderComplete(ctx, "tree", len(out), time.Since(start), err)
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.Set(ctx, key, []byte(out), cfg.Cache.TTLDuration()); err != nil {
			logger.Warn("render cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "render", len(out))
		}
	}

	return writeTree(out, opts.output, p.Table.Len(), len(p.Graph.Nodes()), false, prog)
}

// consoleOptions translates flags and config defaults into render
// options. The logger is attached separately so it never enters the
// cache key.
func (o *treeOpts) consoleOptions(defaults RenderConfig) console.Options {
	colormap := o.colormap
	if colormap == "" {
		colormap = defaults.Colormap
	}
	precision := o.precision
	if precision < 1 {
		precision = defaults.Precision
	}
	nameColumn := o.nameColumn
	if nameColumn == "" {
		nameColumn = defaults.NameColumn
	}

	copts := console.Options{
		Unicode:          defaults.Unicode && !o.ascii,
		Color:            colorEnabled(o.colorMode, o.output != ""),
		MetricColumns:    o.metrics,
		AnnotationColumn: o.annotation,
		Precision:        precision,
		NameColumn:       nameColumn,
		ExpandName:       o.expandNames,
		ContextColumn:    o.contextColumn,
		Rank:             o.rank,
		Thread:           o.thread,
		Depth:            o.depth,
		HighlightName:    o.highlightNames,
		Colormap:         colormap,
		InvertColormap:   o.invertColormap,
		RenderHeader:     o.header,
	}
	if copts.Color && o.annotation != "" {
		copts.AnnotationColors = console.AnnotationColors{Name: colormap}
	}
	if o.bounds.min {
		v := o.minValue
		copts.MinValue = &v
	}
	if o.bounds.max {
		v := o.maxValue
		copts.MaxValue = &v
	}
	return copts
}

func writeTree(out, path string, rows, nodes int, cached bool, prog *progress) error {
	if path == "" {
		fmt.Print(out)
		prog.done("Rendered tree")
		return nil
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return err
	}
	printSuccess("Rendered tree")
	printFile(path)
	printStats(nodes, rows, cached)
	return nil
}
