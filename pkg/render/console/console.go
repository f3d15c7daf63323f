// Package console renders hierarchical profiling graphs as color-coded
// text for terminal display.
//
// The renderer walks the call graph depth-first and emits one line per
// node: the primary metric colored by its bucket, an optional secondary
// metric, an optional categorical annotation, the (possibly truncated)
// node name, diff-arrow decorations when two graphs were compared, and
// an optional context string. When color is enabled a legend trailer
// maps the six color buckets back into the metric domain.
//
// Shared subtrees (the graph may be a DAG) are rendered exactly once
// per call, guarded by a visited set keyed by node id. All state for a
// call lives in a per-call context threaded through the traversal, so a
// single Render is a pure function of (graph, table, options) and
// concurrent calls are independent.
package console

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/callscape/callscape/pkg/errors"
	"github.com/callscape/callscape/pkg/profile"
)

// DefaultPrecision is the fixed-point precision used when Options
// leaves Precision unset.
const DefaultPrecision = 2

// emptyGraphMessage is emitted when the root set is empty or absent.
const emptyGraphMessage = "The graph is empty.\n\n"

// Sentinel names that never receive the highlight accent.
const (
	unknownProcedure = "<unknown procedure>"
	unknownFile      = "<unknown file>"
)

// nameCollapseLimit is the visible length above which names are
// collapsed to their first and last 18 characters when expansion is
// disabled.
const nameCollapseLimit = 39

// Options configures one render call. The zero value renders the
// "time" view of an uncolored ASCII tree; see the field docs for the
// individual defaults.
type Options struct {
	// Unicode selects the Unicode glyph tables (├─, ◀/▶). When false,
	// ASCII stand-ins are used.
	Unicode bool

	// Color enables ANSI color output and the legend trailer.
	Color bool

	// MetricColumns names the primary and optional secondary metric
	// columns. At least one is required; columns beyond the second are
	// ignored with a warning.
	MetricColumns []string

	// AnnotationColumn optionally names a categorical annotation
	// column. Column names containing "_pattern" switch the overlay to
	// temporal-pattern symbol mode.
	AnnotationColumn string

	// AnnotationColors configures categorical annotation coloring.
	AnnotationColors AnnotationColors

	// Precision is the number of fixed-point decimal places for metric
	// formatting. Values below 1 fall back to DefaultPrecision.
	Precision int

	// NameColumn names the display-name column. Defaults to "name".
	NameColumn string

	// ExpandName disables the 39-character name collapse.
	ExpandName bool

	// ContextColumn optionally names a column appended in the faint
	// accent after the name (typically a source location).
	ContextColumn string

	// Rank and Thread select the row slice when the table carries
	// those dimensions.
	Rank   int
	Thread int

	// Depth is the traversal cutoff: nodes at depth >= Depth (and
	// their entire subtrees) are pruned. Values below 1 mean unlimited.
	Depth int

	// HighlightName renders known procedure names with the highlight
	// accent.
	HighlightName bool

	// Colormap names the metric palette (see pkg/colormap). Defaults
	// to colormap.Default. InvertColormap reverses it.
	Colormap       string
	InvertColormap bool

	// MinValue and MaxValue override the normalization bounds. A nil
	// bound is computed from the finite values of the primary metric.
	MinValue *float64
	MaxValue *float64

	// RenderHeader prepends the ASCII-art preamble and version string.
	RenderHeader bool

	// Logger receives recoverable warnings (e.g. more than two metric
	// columns). Defaults to log.Default().
	Logger *log.Logger
}

// state is the per-call render context. It is created at the start of
// Render, threaded through the traversal, and discarded when Render
// returns; nothing is shared between calls.
type state struct {
	table     *profile.Table
	colors    scheme
	ann       *annotations
	glyphs    glyphSet
	arrows    arrowSet
	primary   string
	secondary string
	precision int
	min       float64
	max       float64
	rank      int
	thread    int
	depth     int
	expand    bool
	highlight bool
	nameCol   string
	context   string
	visited   map[int]struct{}
}

// Render renders the profiling graph into a single text blob.
//
// The returned string is UTF-8 in both glyph modes; it contains ANSI
// escape sequences when Options.Color is set. An empty or nil root set
// short-circuits to a fixed empty-graph message (plus the preamble when
// headers are enabled) without touching the table.
//
// Render fails with COLUMN_NOT_FOUND if the primary or secondary metric
// column is absent from the table, with INVALID_COLORMAP for an unknown
// palette name, and with EMPTY_METRIC_DOMAIN when normalization bounds
// must be computed from a column with no finite values. Validation
// happens before traversal begins; there is no partial output.
func Render(g *profile.Graph, table *profile.Table, opts Options) (string, error) {
	var b strings.Builder

	if opts.RenderHeader {
		b.WriteString(preamble())
	}

	if g == nil || len(g.Roots) == 0 {
		b.WriteString(emptyGraphMessage)
		return b.String(), nil
	}

	st, err := newState(table, opts)
	if err != nil {
		return "", err
	}

	for _, root := range profile.SortByID(g.Roots) {
		st.renderFrame(&b, root, "", "")
	}

	if opts.Color {
		b.WriteString(st.legend())
	}
	return b.String(), nil
}

// newState resolves the per-call configuration: metric columns, color
// scheme, annotation overlay, glyph tables, and normalization bounds.
func newState(table *profile.Table, opts Options) (*state, error) {
	primary, secondary, err := resolveMetrics(opts)
	if err != nil {
		return nil, err
	}

	for _, col := range []string{primary, secondary} {
		if col != "" && !table.HasColumn(col) {
			return nil, errors.New(errors.ErrCodeColumnNotFound,
				"metric column %q does not exist in the table", col)
		}
	}

	colors, err := resolveScheme(opts)
	if err != nil {
		return nil, err
	}

	ann, err := resolveAnnotations(table, opts, colors.End)
	if err != nil {
		return nil, err
	}

	min, max, err := metricBounds(table, primary, opts.Rank, opts.MinValue, opts.MaxValue)
	if err != nil {
		return nil, err
	}

	glyphs, arrows := glyphsFor(opts.Unicode)

	precision := opts.Precision
	if precision < 1 {
		precision = DefaultPrecision
	}
	depth := opts.Depth
	if depth < 1 {
		depth = math.MaxInt
	}
	nameCol := opts.NameColumn
	if nameCol == "" {
		nameCol = "name"
	}

	return &state{
		table:     table,
		colors:    colors,
		ann:       ann,
		glyphs:    glyphs,
		arrows:    arrows,
		primary:   primary,
		secondary: secondary,
		precision: precision,
		min:       min,
		max:       max,
		rank:      opts.Rank,
		thread:    opts.Thread,
		depth:     depth,
		expand:    opts.ExpandName,
		highlight: opts.HighlightName,
		nameCol:   nameCol,
		context:   opts.ContextColumn,
		visited:   make(map[int]struct{}),
	}, nil
}

// resolveMetrics picks the primary and secondary metric columns.
// More than two configured columns is a recoverable warning, not a
// failure: the first two are used.
func resolveMetrics(opts Options) (string, string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	switch len(opts.MetricColumns) {
	case 0:
		return "", "", errors.New(errors.ErrCodeInvalidInput, "at least one metric column is required")
	case 1:
		return opts.MetricColumns[0], "", nil
	case 2:
		return opts.MetricColumns[0], opts.MetricColumns[1], nil
	default:
		logger.Warn("more than 2 metric columns specified; only the first two will be shown",
			"columns", opts.MetricColumns)
		return opts.MetricColumns[0], opts.MetricColumns[1], nil
	}
}

// renderFrame emits the line for one node and recurses into its
// children. Nodes at or below the depth cutoff contribute nothing, and
// a node id already in the visited set is never rendered again within
// the same call; this bounds output on a DAG.
func (st *state) renderFrame(b *strings.Builder, n *profile.Node, indent, childIndent string) {
	if n.Depth >= st.depth {
		return
	}
	if _, seen := st.visited[n.ID]; seen {
		return
	}
	st.visited[n.ID] = struct{}{}

	key := st.table.Key(n.ID, st.rank, st.thread)

	b.WriteString(indent)
	st.writeMetrics(b, key)
	b.WriteByte(' ')
	st.writeName(b, key)
	st.writeDiffMarker(b, key)
	st.writeContext(b, key)
	b.WriteByte('\n')

	children := profile.SortByID(n.Children)
	for i, child := range children {
		if i < len(children)-1 {
			st.renderFrame(b, child, childIndent+st.glyphs.branch, childIndent+st.glyphs.vertical)
		} else {
			st.renderFrame(b, child, childIndent+st.glyphs.lastBranch, childIndent+st.glyphs.blank)
		}
	}
}

// writeMetrics emits the primary metric colored by bucket, the
// secondary metric in the faint accent, and the annotation overlay.
// Non-finite metrics format as their literal representation; they are
// tolerated, never fatal.
func (st *state) writeMetrics(b *strings.Builder, key profile.Key) {
	value := st.table.Number(key, st.primary)
	b.WriteString(st.colors.metricColor(value, st.min, st.max))
	fmt.Fprintf(b, "%.*f", st.precision, value)
	b.WriteString(st.colors.End)

	if st.secondary != "" {
		b.WriteByte(' ')
		b.WriteString(st.colors.Faint)
		fmt.Fprintf(b, "%.*f", st.precision, st.table.Number(key, st.secondary))
		b.WriteString(st.colors.End)
	}

	if st.ann != nil {
		b.WriteString(st.ann.render(st.table, key))
	}
}

// writeName emits the display name, collapsed to its first and last 18
// characters when it exceeds 39 characters and expansion is disabled.
func (st *state) writeName(b *strings.Builder, key profile.Key) {
	name := st.table.String(key, st.nameCol)
	if !st.expand {
		if r := []rune(name); len(r) > nameCollapseLimit {
			name = string(r[:18]) + "..." + string(r[len(r)-18:])
		}
	}
	b.WriteString(st.nameColor(name))
	b.WriteString(name)
	b.WriteString(st.colors.End)
}

// nameColor returns the highlight accent for a name, or "" when
// highlighting is off or the name is an unknown-frame sentinel.
func (st *state) nameColor(name string) string {
	if !st.highlight {
		return ""
	}
	if strings.Contains(name, unknownProcedure) || strings.Contains(name, unknownFile) {
		return ""
	}
	return st.colors.HighlightBG + st.colors.HighlightFG
}

// writeDiffMarker appends the left/right arrow for rows exclusive to
// one of two compared graphs. Marker 0 (present in both) and rows
// without the column append nothing.
func (st *state) writeDiffMarker(b *strings.Builder, key profile.Key) {
	if !st.table.HasColumn(profile.MissingNodeColumn) {
		return
	}
	switch st.table.Number(key, profile.MissingNodeColumn) {
	case 1:
		b.WriteByte(' ')
		b.WriteString(st.colors.Left)
		b.WriteString(st.arrows.left)
		b.WriteString(st.colors.End)
	case 2:
		b.WriteByte(' ')
		b.WriteString(st.colors.Right)
		b.WriteString(st.arrows.right)
		b.WriteString(st.colors.End)
	}
}

// writeContext appends the context column in the faint accent when one
// is configured and present in the table.
func (st *state) writeContext(b *strings.Builder, key profile.Key) {
	if st.context == "" || !st.table.HasColumn(st.context) {
		return
	}
	b.WriteByte(' ')
	b.WriteString(st.colors.Faint)
	b.WriteString(st.table.String(key, st.context))
	b.WriteString(st.colors.End)
}
