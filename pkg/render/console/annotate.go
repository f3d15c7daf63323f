package console

import (
	"strings"

	"github.com/callscape/callscape/pkg/colormap"
	"github.com/callscape/callscape/pkg/profile"
)

// AnnotationColors configures categorical coloring for the annotation
// column. At most one field should be set:
//
//   - Name: a named colormap, resolved via pkg/colormap
//   - Colors: an explicit ordered palette of ANSI sequences
//   - Mapping: an explicit value→color table
//
// With Name or Colors, a value's color is palette[i % len(palette)]
// where i is the value's position among the sorted unique string values
// of the whole column. The zero value leaves annotations uncolored.
type AnnotationColors struct {
	Name    string
	Colors  []string
	Mapping map[string]string
}

func (a AnnotationColors) isZero() bool {
	return a.Name == "" && len(a.Colors) == 0 && len(a.Mapping) == 0
}

// temporalPatternMarker activates the temporal-pattern symbol mode when
// it appears in the annotation column's name.
const temporalPatternMarker = "_pattern"

// temporalSymbols maps temporal pattern names to their display glyphs,
// in legend order. The glyphs stay Unicode even in ASCII glyph mode;
// there is no readable single-cell ASCII stand-in for them.
var temporalSymbols = []struct {
	name   string
	symbol string
}{
	{"none", ""},
	{"constant", "→"},
	{"phased", "⤳"},
	{"dynamic", "⇝"},
	{"sporadic", "↝"},
}

// temporalSymbol returns the glyph for a pattern value. Values outside
// the symbol table fall back to their literal text so a malformed row
// stays visible instead of aborting the render.
func temporalSymbol(value string) string {
	for _, ts := range temporalSymbols {
		if ts.name == value {
			return ts.symbol
		}
	}
	return value
}

// annotations holds the per-call state of the annotation overlay: the
// resolved palette or mapping and the hoisted value→index table,
// computed once before traversal from the sorted unique string values
// of the annotation column.
type annotations struct {
	column   string
	temporal bool
	palette  []string
	mapping  map[string]string
	index    map[string]int
	end      string // style terminator, "" when color is disabled
}

// resolveAnnotations prepares the annotation overlay for one render
// call. Coloring applies only when color output is enabled; the
// annotation column itself renders regardless.
func resolveAnnotations(table *profile.Table, opts Options, colorEnd string) (*annotations, error) {
	if opts.AnnotationColumn == "" {
		return nil, nil
	}
	a := &annotations{
		column:   opts.AnnotationColumn,
		temporal: strings.Contains(opts.AnnotationColumn, temporalPatternMarker),
		end:      colorEnd,
	}
	if !opts.Color || opts.AnnotationColors.isZero() {
		return a, nil
	}

	switch {
	case len(opts.AnnotationColors.Mapping) > 0:
		a.mapping = opts.AnnotationColors.Mapping
	case len(opts.AnnotationColors.Colors) > 0:
		a.palette = opts.AnnotationColors.Colors
	default:
		palette, err := colormap.Get(opts.AnnotationColors.Name, false)
		if err != nil {
			return nil, err
		}
		a.palette = palette
	}

	if a.palette != nil {
		a.index = make(map[string]int)
		for i, v := range table.UniqueStrings(opts.AnnotationColumn) {
			a.index[v] = i
		}
	}
	return a, nil
}

// colorFor resolves the color for an annotation value: direct lookup
// for an explicit mapping, modulo palette indexing otherwise.
func (a *annotations) colorFor(value string) string {
	if a.mapping != nil {
		return a.mapping[value]
	}
	if len(a.palette) == 0 {
		return ""
	}
	return a.palette[a.index[value]%len(a.palette)]
}

// render produces the overlay text appended after the metrics for one
// node. Default mode brackets the value; temporal-pattern mode swaps in
// the pattern glyph, coloring any value other than "none".
func (a *annotations) render(table *profile.Table, key profile.Key) string {
	content := table.String(key, a.column)

	if a.temporal {
		symbol := temporalSymbol(content)
		if a.mapping == nil && len(a.palette) == 0 {
			return " " + symbol
		}
		if content == "none" {
			return symbol
		}
		return " " + a.colorFor(content) + symbol + a.end
	}

	if a.mapping == nil && len(a.palette) == 0 {
		return " [" + content + "]"
	}
	return " [" + a.colorFor(content) + content + a.end + "]"
}
