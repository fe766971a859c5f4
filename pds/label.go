package pds

import (
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
)

// Column describes one table column derived from a COLUMN object. Index
// holds the zero-based offsets of the column's raw fields within a table
// row: one offset for a scalar column, a contiguous run for a vector column
// (ITEMS > 1).
type Column struct {
	Name            string
	DatatypeTag     string
	MissingConstant string
	Unit            string
	Items           int // 0 when the ITEMS attribute is absent
	Index           []int

	node *Node
}

// Width returns the number of raw fields the column occupies in a row
func (c *Column) Width() int {
	return len(c.Index)
}

// Scalar reports whether the column occupies exactly one raw field
func (c *Column) Scalar() bool {
	return len(c.Index) == 1 && c.Items == 0
}

// Label is a parsed and indexed PDS label. The node tree is owned by the
// label; the column index assigns every COLUMN object its offsets in the
// companion table by a single left-to-right pass in document order, which is
// the only place column position is recorded in the format.
type Label struct {
	schema  Schema
	nodes   []*Node
	columns []*Column
	index   map[string]*Column
	skipped int
}

// ParseLabel parses label text with the given schema. Parsing never fails:
// malformed spans are dropped and counted, and the caller can check Skipped
// to detect silent loss.
func ParseLabel(text string, sc Schema) *Label {
	l := &Label{
		schema: sc,
		index:  make(map[string]*Column),
	}

	pos := 0
	for pos < len(text) {
		var node *Node
		node, pos = l.parseNode(text, pos)
		if node.Valid(sc) {
			l.nodes = append(l.nodes, node)
		} else if !node.empty() {
			l.skipped++
		}
	}

	l.buildColumnIndex()

	return l
}

// LoadLabel reads and parses a label file. A missing file is the one hard
// failure of this package.
func LoadLabel(path string, sc Schema) (*Label, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label file: %w", err)
	}

	return ParseLabel(string(text), sc), nil
}

// parseNode parses the next attribute or object starting at pos. An OBJECT
// attribute opens a nested object that accumulates children until a matching
// END_OBJECT makes it valid or the input runs out. Invalid children are
// dropped and counted.
func (l *Label) parseNode(text string, pos int) (*Node, int) {
	att, next := parseAttribute(l.schema, text, pos)
	if att.Name != l.schema.ObjectTag {
		return att, next
	}

	obj := newObject(att.Value)
	for !obj.Valid(l.schema) && next < len(text) {
		var child *Node
		child, next = l.parseNode(text, next)
		if child.Valid(l.schema) {
			obj.Children = append(obj.Children, child)
		} else if !child.empty() {
			l.skipped++
		}
	}

	return obj, next
}

// buildColumnIndex walks COLUMN objects in document order and assigns each
// column its table offsets: a scalar column takes the next free offset, a
// vector column with ITEMS = k takes the next k. Offsets are contiguous and
// gap-free by construction.
func (l *Label) buildColumnIndex() {
	next := 0

	for obj := range l.Objects(l.schema.ColumnType) {
		name, ok := obj.Get(l.schema.NameField)
		if !ok || name == "" {
			l.skipped++
			continue
		}

		col := &Column{Name: name, node: obj}
		col.DatatypeTag, _ = obj.Get(l.schema.DatatypeField)
		col.MissingConstant, _ = obj.Get(l.schema.MissingField)
		col.Unit, _ = obj.Get(l.schema.UnitField)

		width := 1
		if items, ok := obj.Get(l.schema.ItemsField); ok {
			k, err := strconv.Atoi(items)
			if err == nil && k > 0 {
				col.Items = k
				width = k
			}
		}

		col.Index = make([]int, width)
		for i := range col.Index {
			col.Index[i] = next + i
		}
		next += width

		l.columns = append(l.columns, col)
		l.index[name] = col
	}
}

// Nodes returns the top-level nodes of the label in document order
func (l *Label) Nodes() []*Node {
	return l.nodes
}

// Skipped returns the number of malformed spans dropped during parsing
func (l *Label) Skipped() int {
	return l.skipped
}

// Objects iterates over all objects of the given type in document order,
// descending into nested objects. An empty typeName yields every object.
func (l *Label) Objects(typeName string) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, n := range l.nodes {
			if !walkObjects(n, typeName, yield) {
				return
			}
		}
	}
}

// Columns returns the column descriptors in document order
func (l *Label) Columns() []*Column {
	return l.columns
}

// ColumnCount returns the number of indexed columns
func (l *Label) ColumnCount() int {
	return len(l.columns)
}

// FindColumn looks a column up by name in the index map. This map is the
// single authority for column offsets.
func (l *Label) FindColumn(name string) (*Column, bool) {
	col, ok := l.index[name]
	return col, ok
}

// Get returns the value of a named top-level attribute
func (l *Label) Get(name string) (string, bool) {
	for _, n := range l.nodes {
		if n.IsAttribute() && n.Name == name {
			return unquote(n.Value), true
		}
	}
	return "", false
}

// Summary writes a short description of the label to w
func (l *Label) Summary(w io.Writer) {
	fmt.Fprintln(w, "PDS label")
	fmt.Fprintf(w, "columns : %d\n", l.ColumnCount())
	for _, col := range l.columns {
		fmt.Fprintf(w, "\tcolumn : %s\n", col.Name)
	}
}
