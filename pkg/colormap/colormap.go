// Package colormap provides named ANSI color palettes for metric
// rendering.
//
// A palette is an ordered list of six ANSI escape sequences, hottest
// bucket first. The console renderer indexes palettes by bucket (0–5)
// for metrics and by modulo for categorical annotations.
package colormap

import (
	"slices"
	"sort"
	"strings"

	"github.com/callscape/callscape/pkg/errors"
)

// Default is the palette used when no colormap is configured.
const Default = "RdYlGn"

// fg builds a 256-color foreground escape sequence.
func fg(code string) string {
	return "\033[38;5;" + code + "m"
}

// palettes maps colormap names to their six-color palettes,
// hottest (bucket 0) to coldest (bucket 5).
var palettes = map[string][]string{
	// Red through yellow to green, the classic hot/cold diverging map.
	"RdYlGn": {fg("196"), fg("208"), fg("220"), fg("148"), fg("71"), fg("28")},
	// Red through yellow to blue.
	"RdYlBu": {fg("196"), fg("208"), fg("220"), fg("153"), fg("74"), fg("26")},
	// Magenta through white to green.
	"PiYG": {fg("162"), fg("211"), fg("224"), fg("194"), fg("114"), fg("28")},
	// Orange through white to purple.
	"PuOr": {fg("166"), fg("215"), fg("223"), fg("189"), fg("104"), fg("55")},
	// Sequential greys, light to dark.
	"Greys": {fg("255"), fg("251"), fg("247"), fg("243"), fg("239"), fg("235")},
	// Perceptually uniform yellow to purple.
	"viridis": {fg("226"), fg("184"), fg("71"), fg("30"), fg("61"), fg("54")},
}

// Names returns the available colormap names in sorted order.
func Names() []string {
	out := make([]string, 0, len(palettes))
	for name := range palettes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Get returns the palette for name, coldest-first when invert is set.
// The returned slice is a copy; callers may modify it freely.
// Unknown names fail with INVALID_COLORMAP.
func Get(name string, invert bool) ([]string, error) {
	p, ok := palettes[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidColormap,
			"unknown colormap %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	out := slices.Clone(p)
	if invert {
		slices.Reverse(out)
	}
	return out, nil
}
