package console

import (
	"fmt"
	"strings"

	"github.com/callscape/callscape/pkg/buildinfo"
)

// legendBands are the proportion ranges of the six color buckets, in
// palette order (hottest first).
var legendBands = [6][2]float64{
	{0.9, 1.0},
	{0.7, 0.9},
	{0.5, 0.7},
	{0.3, 0.5},
	{0.1, 0.3},
	{0.0, 0.1},
}

// scoreBands are the fixed temporal-score ranges shown in the
// temporal-pattern legend.
var scoreBands = [4][2]float64{
	{0.0, 0.2},
	{0.2, 0.4},
	{0.4, 0.6},
	{0.6, 1.0},
}

// legend builds the color legend appended after the tree when color is
// enabled: the bucket→metric-range bands, the name/diff key line, and
// the temporal-pattern legend when that annotation mode is active.
func (st *state) legend() string {
	var b strings.Builder

	b.WriteString("\n\033[4mLegend")
	b.WriteString(st.colors.End)
	fmt.Fprintf(&b, " (Metric: %s Min: %.2f Max: %.2f)\n", st.primary, st.min, st.max)

	span := st.max - st.min
	for i, band := range legendBands {
		b.WriteString(st.colors.Palette[i])
		b.WriteString("█ ")
		b.WriteString(st.colors.End)
		fmt.Fprintf(&b, "%.2f - %.2f\n", band[0]*span+st.min, band[1]*span+st.min)
	}

	b.WriteByte('\n')
	b.WriteString(st.nameColor("name"))
	b.WriteString("name")
	b.WriteString(st.colors.End)
	b.WriteString(" User code    ")
	b.WriteString(st.colors.Left)
	b.WriteString(st.arrows.left)
	b.WriteString(st.colors.End)
	b.WriteString(" Only in left graph    ")
	b.WriteString(st.colors.Right)
	b.WriteString(st.arrows.right)
	b.WriteString(st.colors.End)
	b.WriteString(" Only in right graph\n")

	if st.ann != nil && st.ann.temporal {
		st.writeTemporalLegend(&b)
	}
	return b.String()
}

// writeTemporalLegend lists the pattern symbols and the four fixed
// score bands, colored by the annotation palette when one is
// configured; an explicit value→color mapping carries no band order,
// so the bands stay uncolored in that case.
func (st *state) writeTemporalLegend(b *strings.Builder) {
	b.WriteString("\nTemporal Pattern")
	for _, ts := range temporalSymbols {
		if ts.name == "none" {
			continue
		}
		fmt.Fprintf(b, "   %s %s", ts.symbol, ts.name)
	}

	b.WriteString("\nTemporal Score  ")
	palette := st.ann.palette
	for i, band := range scoreBands {
		if len(palette) > 0 {
			b.WriteString(palette[(i+1)%len(palette)])
		}
		fmt.Fprintf(b, "   %.1f - %.1f", band[0], band[1])
		if len(palette) > 0 {
			b.WriteString(st.ann.end)
		}
	}
}

// preamble is the ASCII-art banner emitted when headers are enabled,
// stamped with the build version.
func preamble() string {
	lines := []string{
		`              ____                          `,
		`  _________ _/ / /_____________ _____  ___  `,
		` / ___/ __ ` + "`" + `/ / / ___/ ___/ __ ` + "`" + `/ __ \/ _ \ `,
		`/ /__/ /_/ / / (__  ) /__/ /_/ / /_/ /  __/ `,
		fmt.Sprintf(`\___/\__,_/_/_/____/\___/\__,_/ .___/\___/  %s`, buildinfo.Version),
		`                               /_/          `,
		``,
		``,
	}
	return strings.Join(lines, "\n")
}
