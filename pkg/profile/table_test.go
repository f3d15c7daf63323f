package profile

import (
	"math"
	"reflect"
	"testing"
)

func TestTableDims(t *testing.T) {
	tests := []struct {
		name      string
		dims      []string
		wantDims  []string
		hasRank   bool
		hasThread bool
	}{
		{"NodeOnly", nil, []string{"node"}, false, false},
		{"WithRank", []string{DimRank}, []string{"node", "rank"}, true, false},
		{"WithThread", []string{DimThread}, []string{"node", "thread"}, false, true},
		{"Full", []string{DimRank, DimThread}, []string{"node", "rank", "thread"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable(tt.dims...)
			if got := table.Dims(); !reflect.DeepEqual(got, tt.wantDims) {
				t.Errorf("Dims() = %v, want %v", got, tt.wantDims)
			}
			if table.HasRank() != tt.hasRank {
				t.Errorf("HasRank() = %v, want %v", table.HasRank(), tt.hasRank)
			}
			if table.HasThread() != tt.hasThread {
				t.Errorf("HasThread() = %v, want %v", table.HasThread(), tt.hasThread)
			}
		})
	}
}

func TestTableKeyNormalization(t *testing.T) {
	table := NewTable(DimRank)
	table.AddRow(Key{Node: 1, Rank: 2, Thread: 99}, Row{"time": 1.0})

	// The thread dimension is absent, so stray thread selectors are
	// ignored on lookup.
	if v, ok := table.Value(Key{Node: 1, Rank: 2, Thread: 7}, "time"); !ok || v != 1.0 {
		t.Errorf("Value() = %v, %v; want 1.0, true", v, ok)
	}
	if got := table.Key(1, 2, 7); got != (Key{Node: 1, Rank: 2}) {
		t.Errorf("Key() = %+v, want thread zeroed", got)
	}
}

func TestTableNumber(t *testing.T) {
	table := NewTable()
	table.AddRow(Key{Node: 0}, Row{"time": 1.5, "name": "main", "count": 7.0})

	if got := table.Number(Key{Node: 0}, "time"); got != 1.5 {
		t.Errorf("Number(time) = %v, want 1.5", got)
	}
	if got := table.Number(Key{Node: 0}, "name"); !math.IsNaN(got) {
		t.Errorf("Number(name) = %v, want NaN for non-numeric", got)
	}
	if got := table.Number(Key{Node: 0}, "missing"); !math.IsNaN(got) {
		t.Errorf("Number(missing) = %v, want NaN", got)
	}
	if got := table.Number(Key{Node: 9}, "time"); !math.IsNaN(got) {
		t.Errorf("Number for missing row = %v, want NaN", got)
	}
}

func TestTableMetricValuesRankSlice(t *testing.T) {
	table := NewTable(DimRank)
	table.AddRow(Key{Node: 0, Rank: 0}, Row{"time": 1.0})
	table.AddRow(Key{Node: 0, Rank: 1}, Row{"time": 5.0})
	table.AddRow(Key{Node: 1, Rank: 0}, Row{"time": 2.0})
	table.AddRow(Key{Node: 1, Rank: 1}, Row{"name": "odd"})

	if got := table.MetricValues("time", 0); !reflect.DeepEqual(got, []float64{1.0, 2.0}) {
		t.Errorf("MetricValues(rank 0) = %v, want [1 2]", got)
	}

	got := table.MetricValues("time", 1)
	if len(got) != 2 || got[0] != 5.0 || !math.IsNaN(got[1]) {
		t.Errorf("MetricValues(rank 1) = %v, want [5 NaN]", got)
	}
}

func TestTableUniqueStrings(t *testing.T) {
	table := NewTable()
	table.AddRow(Key{Node: 0}, Row{"region": "GPU"})
	table.AddRow(Key{Node: 1}, Row{"region": "CPU"})
	table.AddRow(Key{Node: 2}, Row{"region": "GPU"})
	table.AddRow(Key{Node: 3}, Row{"time": 1.0})

	want := []string{"CPU", "GPU"}
	if got := table.UniqueStrings("region"); !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueStrings() = %v, want %v", got, want)
	}
}

func TestTableColumns(t *testing.T) {
	table := NewTable()
	table.AddRow(Key{Node: 0}, Row{"time": 1.0, "name": "main"})
	table.AddRow(Key{Node: 1}, Row{"_missing_node": 1.0})

	if !table.HasColumn("time") || !table.HasColumn(MissingNodeColumn) {
		t.Error("HasColumn() missing registered columns")
	}
	if table.HasColumn("cycles") {
		t.Error("HasColumn(cycles) = true for absent column")
	}
	want := []string{MissingNodeColumn, "name", "time"}
	if got := table.Columns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
}

func TestGraphNodesAndDepths(t *testing.T) {
	shared := &Node{ID: 4}
	left := &Node{ID: 2, Children: []*Node{shared}}
	right := &Node{ID: 3, Children: []*Node{shared}}
	root := &Node{ID: 1, Children: []*Node{left, right}}
	g := &Graph{Roots: []*Node{root}}
	g.ComputeDepths()

	if root.Depth != 0 || left.Depth != 1 || right.Depth != 1 || shared.Depth != 2 {
		t.Errorf("depths = %d %d %d %d, want 0 1 1 2", root.Depth, left.Depth, right.Depth, shared.Depth)
	}

	nodes := g.Nodes()
	if len(nodes) != 4 {
		t.Fatalf("Nodes() returned %d nodes, want 4 (shared node deduplicated)", len(nodes))
	}
	for i, n := range nodes {
		if n.ID != i+1 {
			t.Errorf("Nodes()[%d].ID = %d, want %d", i, n.ID, i+1)
		}
	}
}

func TestSortByID(t *testing.T) {
	nodes := []*Node{{ID: 3}, {ID: 1}, {ID: 2}}
	sorted := SortByID(nodes)
	for i, want := range []int{1, 2, 3} {
		if sorted[i].ID != want {
			t.Errorf("sorted[%d].ID = %d, want %d", i, sorted[i].ID, want)
		}
	}
	// The input slice is untouched.
	if nodes[0].ID != 3 {
		t.Error("SortByID mutated its input")
	}
}
