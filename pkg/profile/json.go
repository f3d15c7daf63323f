package profile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/callscape/callscape/pkg/errors"
)

// Profile bundles a call graph with its metric table.
type Profile struct {
	Graph *Graph
	Table *Table
}

// document is the JSON wire format for a profile.
//
//	{
//	  "index": ["node", "rank"],
//	  "roots": [0],
//	  "nodes": [{"id": 0, "children": [1, 2]}, ...],
//	  "rows":  [{"node": 0, "rank": 0, "time": 1.5, "name": "main"}, ...]
//	}
//
// Row objects mix index dimensions with columns: the keys named by
// "index" address the row, every other key is a column value.
type document struct {
	Index []string         `json:"index,omitempty"`
	Roots []int            `json:"roots"`
	Nodes []docNode        `json:"nodes"`
	Rows  []map[string]any `json:"rows"`
}

type docNode struct {
	ID       int   `json:"id"`
	Children []int `json:"children,omitempty"`
}

// ReadJSON decodes a JSON profile from r.
//
// ReadJSON returns an INVALID_PROFILE error if:
//   - The JSON is malformed
//   - The index names a dimension other than "node", "rank", "thread"
//   - A node has a duplicate id
//   - A root or child references an unknown node id
//   - A row is missing a declared index dimension
//
// Node depths are computed from the root set before returning. The
// returned profile is independent of r; ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Profile, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "decode profile")
	}

	var dims []string
	for _, d := range doc.Index {
		switch d {
		case DimNode:
			// implicit, always present
		case DimRank, DimThread:
			dims = append(dims, d)
		default:
			return nil, errors.New(errors.ErrCodeInvalidProfile, "unknown index dimension %q", d)
		}
	}

	nodes := make(map[int]*Node, len(doc.Nodes))
	for _, dn := range doc.Nodes {
		if _, dup := nodes[dn.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidProfile, "duplicate node id %d", dn.ID)
		}
		nodes[dn.ID] = &Node{ID: dn.ID}
	}
	for _, dn := range doc.Nodes {
		n := nodes[dn.ID]
		for _, cid := range dn.Children {
			c, ok := nodes[cid]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidProfile, "node %d: unknown child id %d", dn.ID, cid)
			}
			n.Children = append(n.Children, c)
		}
	}

	g := &Graph{}
	for _, rid := range doc.Roots {
		root, ok := nodes[rid]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidProfile, "unknown root id %d", rid)
		}
		g.Roots = append(g.Roots, root)
	}
	g.ComputeDepths()

	table := NewTable(dims...)
	for i, raw := range doc.Rows {
		key, row, err := splitRow(table, raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "row %d", i)
		}
		if _, ok := nodes[key.Node]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidProfile, "row %d: unknown node id %d", i, key.Node)
		}
		table.AddRow(key, row)
	}

	return &Profile{Graph: g, Table: table}, nil
}

// splitRow separates index dimensions from column values.
func splitRow(t *Table, raw map[string]any) (Key, Row, error) {
	var key Key
	row := make(Row, len(raw))
	for k, v := range raw {
		switch k {
		case DimNode, DimRank, DimThread:
			f, ok := toFloat(v)
			if !ok {
				return Key{}, nil, fmt.Errorf("dimension %q: not an integer: %v", k, v)
			}
			switch k {
			case DimNode:
				key.Node = int(f)
			case DimRank:
				key.Rank = int(f)
			case DimThread:
				key.Thread = int(f)
			}
		default:
			row[k] = v
		}
	}
	if _, ok := raw[DimNode]; !ok {
		return Key{}, nil, fmt.Errorf("missing %q dimension", DimNode)
	}
	for _, d := range t.Dims() {
		if _, ok := raw[d]; !ok {
			return Key{}, nil, fmt.Errorf("missing %q dimension", d)
		}
	}
	return key, row, nil
}

// ImportJSON reads a JSON profile file at path.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes
// the file. Errors wrap the underlying cause with the file path for
// context and carry the same codes as [ReadJSON].
func ImportJSON(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	p, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// WriteJSON encodes a profile as JSON and writes it to w.
// The output round-trips through [ReadJSON].
func WriteJSON(p *Profile, w io.Writer) error {
	doc := document{Rows: make([]map[string]any, 0, p.Table.Len())}

	for _, d := range p.Table.Dims() {
		if d != DimNode {
			doc.Index = append(doc.Index, d)
		}
	}
	if len(doc.Index) > 0 {
		doc.Index = append([]string{DimNode}, doc.Index...)
	}

	for _, r := range p.Graph.Roots {
		doc.Roots = append(doc.Roots, r.ID)
	}
	slices.Sort(doc.Roots)

	for _, n := range p.Graph.Nodes() {
		dn := docNode{ID: n.ID}
		for _, c := range SortByID(n.Children) {
			dn.Children = append(dn.Children, c.ID)
		}
		doc.Nodes = append(doc.Nodes, dn)
	}

	for _, k := range p.Table.order {
		raw := make(map[string]any, len(p.Table.rows[k])+3)
		raw[DimNode] = k.Node
		if p.Table.hasRank {
			raw[DimRank] = k.Rank
		}
		if p.Table.hasThread {
			raw[DimThread] = k.Thread
		}
		for col, v := range p.Table.rows[k] {
			raw[col] = v
		}
		doc.Rows = append(doc.Rows, raw)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a profile to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(p *Profile, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(p, f)
}
