package profile

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Index dimension names a table may carry beyond the node id.
const (
	DimNode   = "node"
	DimRank   = "rank"
	DimThread = "thread"
)

// MissingNodeColumn is the diff-marker column produced when two graphs
// are compared: 0 means present in both, 1 left-only, 2 right-only.
const MissingNodeColumn = "_missing_node"

// Key addresses one row of a Table. Rank and Thread are zero when the
// table does not carry that dimension.
type Key struct {
	Node   int
	Rank   int
	Thread int
}

// Row carries the per-key column values. Values are primitives as
// decoded from JSON: float64, string, bool, or nil.
type Row map[string]any

// Table is a read-only row store addressed by a composite key of
// (node[, rank][, thread]), depending on which dimensions were declared
// at construction. Each row carries arbitrary named columns; metric
// columns hold numbers, the name/context columns hold strings.
type Table struct {
	hasRank   bool
	hasThread bool
	columns   map[string]struct{}
	order     []Key // insertion order, for deterministic column scans
	rows      map[Key]Row
}

// NewTable creates an empty table carrying the given index dimensions
// beyond the implicit node dimension. Valid extras: "rank", "thread".
func NewTable(dims ...string) *Table {
	t := &Table{
		columns: make(map[string]struct{}),
		rows:    make(map[Key]Row),
	}
	for _, d := range dims {
		switch d {
		case DimRank:
			t.hasRank = true
		case DimThread:
			t.hasThread = true
		}
	}
	return t
}

// HasRank reports whether the table carries a rank dimension.
func (t *Table) HasRank() bool { return t.hasRank }

// HasThread reports whether the table carries a thread dimension.
func (t *Table) HasThread() bool { return t.hasThread }

// Dims returns the index dimension names in canonical order.
func (t *Table) Dims() []string {
	dims := []string{DimNode}
	if t.hasRank {
		dims = append(dims, DimRank)
	}
	if t.hasThread {
		dims = append(dims, DimThread)
	}
	return dims
}

// AddRow stores a row under the given key, registering any new columns.
// Dimensions the table does not carry are zeroed in the stored key, so
// lookups built with Key are insensitive to stray values.
func (t *Table) AddRow(k Key, r Row) {
	k = t.normalize(k)
	if _, ok := t.rows[k]; !ok {
		t.order = append(t.order, k)
	}
	t.rows[k] = r
	for col := range r {
		t.columns[col] = struct{}{}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether any row carries the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Columns returns all column names in sorted order.
func (t *Table) Columns() []string {
	out := make([]string, 0, len(t.columns))
	for c := range t.columns {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Key builds a lookup key for a node under the configured selectors.
// Selector values for dimensions the table does not carry are ignored.
func (t *Table) Key(node int, rank, thread int) Key {
	return t.normalize(Key{Node: node, Rank: rank, Thread: thread})
}

// Value returns the raw column value for a key, and whether it exists.
func (t *Table) Value(k Key, col string) (any, bool) {
	row, ok := t.rows[t.normalize(k)]
	if !ok {
		return nil, false
	}
	v, ok := row[col]
	return v, ok
}

// Number returns the column value for a key as a float64.
// Missing rows, missing columns and non-numeric values all yield NaN;
// per-row anomalies never abort rendering.
func (t *Table) Number(k Key, col string) float64 {
	v, ok := t.Value(k, col)
	if !ok {
		return math.NaN()
	}
	f, ok := toFloat(v)
	if !ok {
		return math.NaN()
	}
	return f
}

// String returns the column value for a key formatted as a string.
// Missing values format as their literal representation, "<nil>".
func (t *Table) String(k Key, col string) string {
	v, _ := t.Value(k, col)
	return fmt.Sprint(v)
}

// MetricValues returns every value of the named column as float64, in
// row insertion order. When the table carries a rank dimension only
// rows of the given rank are included. Non-numeric values come back as
// NaN so callers can filter non-finite entries in one pass.
func (t *Table) MetricValues(col string, rank int) []float64 {
	out := make([]float64, 0, len(t.order))
	for _, k := range t.order {
		if t.hasRank && k.Rank != rank {
			continue
		}
		v, ok := t.rows[k][col]
		if !ok {
			out = append(out, math.NaN())
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			f = math.NaN()
		}
		out = append(out, f)
	}
	return out
}

// UniqueStrings returns the sorted unique values of a column, each
// formatted with fmt.Sprint. Rendering uses this once per call to build
// a stable value→palette-index mapping for annotation coloring.
func (t *Table) UniqueStrings(col string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, k := range t.order {
		v, ok := t.rows[k][col]
		if !ok {
			continue
		}
		s := fmt.Sprint(v)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func (t *Table) normalize(k Key) Key {
	if !t.hasRank {
		k.Rank = 0
	}
	if !t.hasThread {
		k.Thread = 0
	}
	return k
}

// toFloat converts JSON-decoded primitives to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
