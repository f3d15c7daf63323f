package console

import (
	"math"

	"github.com/callscape/callscape/pkg/colormap"
	"github.com/callscape/callscape/pkg/errors"
	"github.com/callscape/callscape/pkg/profile"
)

// scheme is the resolved color scheme for one render call. It has
// exactly two cases: enabled, with a metric palette and ANSI accents,
// and disabled, where every field is the empty string. Both cases
// expose the identical field set so rendering code never branches on
// color support.
type scheme struct {
	Palette []string // six entries, bucket 0 (hottest) through 5 (coldest)

	Left        string // left-only diff marker accent
	Right       string // right-only diff marker accent
	Faint       string // secondary metric and context accent
	End         string // style terminator
	HighlightBG string // name highlight background
	HighlightFG string // name highlight foreground
	OutOfRange  string // fallback for negative proportions
}

// enabledScheme builds the enabled color scheme around a metric palette.
func enabledScheme(palette []string) scheme {
	return scheme{
		Palette:     palette,
		Left:        "\033[38;5;160m",
		Right:       "\033[38;5;28m",
		Faint:       "\033[2m",
		End:         "\033[0m",
		HighlightBG: "\033[48;5;246m",
		HighlightFG: "\033[38;5;232m",
		OutOfRange:  "\033[34m",
	}
}

// disabledScheme resolves every accent and palette entry to "".
func disabledScheme() scheme {
	return scheme{Palette: make([]string, 6)}
}

// resolveScheme selects the color scheme once per render call.
func resolveScheme(opts Options) (scheme, error) {
	if !opts.Color {
		return disabledScheme(), nil
	}
	name := opts.Colormap
	if name == "" {
		name = colormap.Default
	}
	palette, err := colormap.Get(name, opts.InvertColormap)
	if err != nil {
		return scheme{}, err
	}
	return enabledScheme(palette), nil
}

// BucketIndex maps a metric value to a discrete color bucket.
//
// The value is normalized against (min, max): proportion =
// (value-min)/(max-min). When the range is zero the raw value is used
// as the proportion; this mirrors the behavior of earlier tooling and
// is kept as-is rather than fixed. Returns 0 (hottest) through 5
// (coldest), or -1 for negative (out-of-range) proportions. NaN values
// also map to -1.
func BucketIndex(value, min, max float64) int {
	span := max - min

	var proportion float64
	if span != 0 {
		proportion = (value - min) / span
	} else {
		proportion = value
	}

	switch {
	case proportion > 0.9:
		return 0
	case proportion > 0.7:
		return 1
	case proportion > 0.5:
		return 2
	case proportion > 0.3:
		return 3
	case proportion > 0.1:
		return 4
	case proportion >= 0:
		return 5
	default:
		return -1
	}
}

// metricColor returns the ANSI color for a metric value.
func (s *scheme) metricColor(value, min, max float64) string {
	idx := BucketIndex(value, min, max)
	if idx < 0 {
		return s.OutOfRange
	}
	return s.Palette[idx]
}

// metricBounds establishes the normalization domain for the primary
// metric: the min and max over its finite values, each overridable by
// an explicit bound. When the table carries a rank dimension only rows
// of the selected rank contribute.
//
// If a bound must come from data and the column has no finite values,
// metricBounds fails with EMPTY_METRIC_DOMAIN rather than propagating
// NaN into every downstream proportion.
func metricBounds(t *profile.Table, col string, rank int, minOverride, maxOverride *float64) (float64, float64, error) {
	if minOverride != nil && maxOverride != nil {
		return *minOverride, *maxOverride, nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	finite := false
	for _, v := range t.MetricValues(col, rank) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite = true
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !finite {
		return 0, 0, errors.New(errors.ErrCodeEmptyMetricDomain,
			"metric column %q has no finite values to normalize against", col)
	}

	if minOverride != nil {
		lo = *minOverride
	}
	if maxOverride != nil {
		hi = *maxOverride
	}
	return lo, hi, nil
}
