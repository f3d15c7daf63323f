package console

import (
	"strings"
	"testing"

	"github.com/callscape/callscape/pkg/profile"
)

func TestLegendRoundTrip(t *testing.T) {
	n0 := &profile.Node{ID: 0}
	g := &profile.Graph{Roots: []*profile.Node{n0}}
	table := profile.NewTable()
	table.AddRow(profile.Key{Node: 0}, profile.Row{"time": 5.0, "name": "main"})

	lo, hi := 0.0, 10.0
	out := mustRender(t, g, table, Options{
		MetricColumns: []string{"time"},
		Color:         true,
		MinValue:      &lo,
		MaxValue:      &hi,
	})

	// Each proportion band maps back into the metric domain.
	for _, band := range []string{
		"9.00 - 10.00",
		"7.00 - 9.00",
		"5.00 - 7.00",
		"3.00 - 5.00",
		"1.00 - 3.00",
		"0.00 - 1.00",
	} {
		if !strings.Contains(out, band) {
			t.Errorf("legend missing band %q:\n%s", band, out)
		}
	}

	if !strings.Contains(out, "\033[4mLegend") {
		t.Error("legend header not underlined")
	}
	if !strings.Contains(out, "(Metric: time Min: 0.00 Max: 10.00)") {
		t.Errorf("legend header missing metric summary:\n%s", out)
	}
	if !strings.Contains(out, "Only in left graph") || !strings.Contains(out, "Only in right graph") {
		t.Errorf("legend missing diff key:\n%s", out)
	}
	if got := strings.Count(out, "█ "); got != 6 {
		t.Errorf("legend has %d swatches, want 6", got)
	}
}

func TestLegendOnlyWhenColorEnabled(t *testing.T) {
	g, table := diamond()
	out := mustRender(t, g, table, Options{MetricColumns: []string{"time"}})
	if strings.Contains(out, "Legend") {
		t.Errorf("legend rendered without color:\n%s", out)
	}
}

func TestTemporalLegend(t *testing.T) {
	n0 := &profile.Node{ID: 0}
	g := &profile.Graph{Roots: []*profile.Node{n0}}
	table := profile.NewTable()
	table.AddRow(profile.Key{Node: 0}, profile.Row{"time": 1.0, "name": "main", "time_pattern": "phased"})

	out := mustRender(t, g, table, Options{
		MetricColumns:    []string{"time"},
		Color:            true,
		AnnotationColumn: "time_pattern",
		AnnotationColors: AnnotationColors{Name: "RdYlGn"},
	})

	if !strings.Contains(out, "Temporal Pattern") {
		t.Fatalf("temporal legend missing:\n%s", out)
	}
	for _, entry := range []string{"→ constant", "⤳ phased", "⇝ dynamic", "↝ sporadic"} {
		if !strings.Contains(out, entry) {
			t.Errorf("temporal legend missing %q:\n%s", entry, out)
		}
	}
	if strings.Contains(out, " none") {
		t.Errorf("temporal legend lists the none pattern:\n%s", out)
	}
	if !strings.Contains(out, "Temporal Score") {
		t.Errorf("temporal score bands missing:\n%s", out)
	}
	for _, band := range []string{"0.0 - 0.2", "0.2 - 0.4", "0.4 - 0.6", "0.6 - 1.0"} {
		if !strings.Contains(out, band) {
			t.Errorf("temporal legend missing score band %q:\n%s", band, out)
		}
	}
}

func TestTemporalLegendAbsentForPlainAnnotation(t *testing.T) {
	n0 := &profile.Node{ID: 0}
	g := &profile.Graph{Roots: []*profile.Node{n0}}
	table := profile.NewTable()
	table.AddRow(profile.Key{Node: 0}, profile.Row{"time": 1.0, "name": "main", "region": "GPU"})

	out := mustRender(t, g, table, Options{
		MetricColumns:    []string{"time"},
		Color:            true,
		AnnotationColumn: "region",
	})
	if strings.Contains(out, "Temporal Pattern") {
		t.Errorf("temporal legend rendered for a non-pattern column:\n%s", out)
	}
}

func TestPreambleVersion(t *testing.T) {
	out := preamble()
	if !strings.Contains(out, `/_/`) {
		t.Errorf("preamble art malformed: %q", out)
	}
	if !strings.HasSuffix(out, "\n\n") {
		t.Errorf("preamble should end with a blank line: %q", out)
	}
}
