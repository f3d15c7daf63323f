package console

import (
	"math"
	"testing"

	"github.com/callscape/callscape/pkg/errors"
	"github.com/callscape/callscape/pkg/profile"
)

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min, max float64
		want     int
	}{
		{"Hottest", 1.0, 0, 1, 0},
		{"ExactNineTenthsIsBucket1", 0.9, 0, 1, 1}, // the 0.9 boundary is exclusive
		{"JustAboveNineTenths", 0.9 + 1e-9, 0, 1, 0},
		{"ExactSevenTenths", 0.7, 0, 1, 2},
		{"Middle", 0.6, 0, 1, 2},
		{"ExactHalf", 0.5, 0, 1, 3},
		{"ExactThreeTenths", 0.3, 0, 1, 4},
		{"ExactOneTenth", 0.1, 0, 1, 5},
		{"Zero", 0.0, 0, 1, 5},
		{"Coldest", 0.05, 0, 1, 5},
		{"NegativeProportion", -1.0, 0, 1, -1},
		{"NaN", math.NaN(), 0, 1, -1},
		{"ShiftedDomain", 95, 50, 100, 0},
		// Zero-range fallback: the raw value is used as the proportion.
		{"ZeroRangeHot", 0.95, 5, 5, 0},
		{"ZeroRangeCold", 0.05, 5, 5, 5},
		{"ZeroRangeNegative", -0.5, 5, 5, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BucketIndex(tt.value, tt.min, tt.max); got != tt.want {
				t.Errorf("BucketIndex(%v, %v, %v) = %d, want %d", tt.value, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestMetricColorDisabled(t *testing.T) {
	s := disabledScheme()
	if got := s.metricColor(0.95, 0, 1); got != "" {
		t.Errorf("disabled scheme color = %q, want empty", got)
	}
	if got := s.metricColor(-1, 0, 1); got != "" {
		t.Errorf("disabled scheme out-of-range color = %q, want empty", got)
	}
}

func TestMetricBounds(t *testing.T) {
	table := profile.NewTable()
	table.AddRow(profile.Key{Node: 0}, profile.Row{"time": 4.0})
	table.AddRow(profile.Key{Node: 1}, profile.Row{"time": 1.0})
	table.AddRow(profile.Key{Node: 2}, profile.Row{"time": math.Inf(1)})
	table.AddRow(profile.Key{Node: 3}, profile.Row{"time": math.NaN()})

	lo, hi, err := metricBounds(table, "time", 0, nil, nil)
	if err != nil {
		t.Fatalf("metricBounds() error = %v", err)
	}
	if lo != 1.0 || hi != 4.0 {
		t.Errorf("bounds = (%v, %v), want (1, 4); non-finite values must be ignored", lo, hi)
	}

	// A single override still computes the other bound from data.
	min := 0.0
	lo, hi, err = metricBounds(table, "time", 0, &min, nil)
	if err != nil {
		t.Fatalf("metricBounds() error = %v", err)
	}
	if lo != 0.0 || hi != 4.0 {
		t.Errorf("bounds = (%v, %v), want (0, 4)", lo, hi)
	}

	max := 10.0
	lo, hi, err = metricBounds(table, "time", 0, nil, &max)
	if err != nil {
		t.Fatalf("metricBounds() error = %v", err)
	}
	if lo != 1.0 || hi != 10.0 {
		t.Errorf("bounds = (%v, %v), want (1, 10)", lo, hi)
	}
}

func TestMetricBoundsEmptyDomain(t *testing.T) {
	table := profile.NewTable()
	table.AddRow(profile.Key{Node: 0}, profile.Row{"time": math.NaN()})

	if _, _, err := metricBounds(table, "time", 0, nil, nil); !errors.Is(err, errors.ErrCodeEmptyMetricDomain) {
		t.Fatalf("error = %v, want EMPTY_METRIC_DOMAIN", err)
	}

	// Fully overridden bounds never touch the data.
	lo, hi := 0.0, 1.0
	gotLo, gotHi, err := metricBounds(table, "time", 0, &lo, &hi)
	if err != nil {
		t.Fatalf("metricBounds() error = %v", err)
	}
	if gotLo != 0.0 || gotHi != 1.0 {
		t.Errorf("bounds = (%v, %v), want (0, 1)", gotLo, gotHi)
	}
}

func TestResolveSchemeUnknownColormap(t *testing.T) {
	_, err := resolveScheme(Options{Color: true, Colormap: "NoSuchMap"})
	if !errors.Is(err, errors.ErrCodeInvalidColormap) {
		t.Fatalf("error = %v, want INVALID_COLORMAP", err)
	}
}
