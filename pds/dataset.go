package pds

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	amdago "github.com/amdalab/amdago"
)

// ColumnArray holds one column of typed table data. Values are stored
// row-major in a flat slice of Rows*Width entries; Width is 1 for scalar
// columns and ITEMS for vector columns. Exactly one of Floats, Ints and Raw
// is populated, matching Datatype (TIME columns fill Floats with UTC epoch
// seconds). Missing counts the cells that failed coercion or matched the
// column's missing constant and were replaced by the NaN sentinel.
type ColumnArray struct {
	Name     string
	Datatype Datatype
	Width    int
	Floats   []float64
	Ints     []int32
	Raw      []string
	Missing  int
}

// Rows returns the number of table rows covered by the array
func (a *ColumnArray) Rows() int {
	if a.Width == 0 {
		return 0
	}
	switch a.Datatype {
	case DatatypeFloat64, DatatypeTime:
		return len(a.Floats) / a.Width
	case DatatypeInt32:
		return len(a.Ints) / a.Width
	default:
		return len(a.Raw) / a.Width
	}
}

// FloatRow returns the float values of row i (vector columns yield Width entries)
func (a *ColumnArray) FloatRow(i int) []float64 {
	return a.Floats[i*a.Width : (i+1)*a.Width]
}

// Dataset is the read-only view over one parsed label and one loaded table.
// Both are built once at construction; every accessor afterwards is a pure
// query, so independent datasets can be used from independent goroutines
// without locking.
type Dataset struct {
	LabelPath string
	TablePath string

	label *Label
	rows  [][]string
}

// NewDataset builds a dataset from in-memory label and table text. Table
// rows are split on newlines and then on sep; empty fields are dropped, so
// runs of the separator collapse.
func NewDataset(labelText, tableText, sep string, sc Schema) *Dataset {
	return &Dataset{
		label: ParseLabel(labelText, sc),
		rows:  splitTable(tableText, sep),
	}
}

// OpenDataset reads a label file and its companion table file. Missing files
// are hard failures; everything past this point degrades instead of failing.
func OpenDataset(labelPath, tablePath, sep string, sc Schema) (*Dataset, error) {
	label, err := LoadLabel(labelPath, sc)
	if err != nil {
		return nil, err
	}

	tableText, err := os.ReadFile(tablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read table file: %w", err)
	}

	return &Dataset{
		LabelPath: labelPath,
		TablePath: tablePath,
		label:     label,
		rows:      splitTable(string(tableText), sep),
	}, nil
}

// splitTable cuts table text into rows of raw string fields
func splitTable(text, sep string) [][]string {
	var rows [][]string

	for _, line := range strings.Split(text, "\n") {
		if len(line) == 0 {
			continue
		}
		fields := splitFields(line, sep)
		if len(fields) > 0 {
			rows = append(rows, fields)
		}
	}

	return rows
}

// splitFields splits one row on sep, dropping empty fields. Whitespace
// separators fall through to Fields so that mixed space/tab runs collapse
// the same way.
func splitFields(line, sep string) []string {
	if strings.TrimSpace(sep) == "" {
		return strings.Fields(line)
	}

	parts := strings.Split(line, sep)
	fields := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			fields = append(fields, p)
		}
	}

	return fields
}

// Label returns the parsed label
func (d *Dataset) Label() *Label {
	return d.label
}

// Shape returns the table dimensions as (rows, raw fields per row)
func (d *Dataset) Shape() (int, int) {
	if len(d.rows) == 0 {
		return 0, 0
	}
	return len(d.rows), len(d.rows[0])
}

// Columns returns the column descriptors in document order
func (d *Dataset) Columns() []*Column {
	return d.label.Columns()
}

// ColumnNames returns the column names in document order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, 0, len(d.label.columns))
	for _, col := range d.label.columns {
		names = append(names, col.Name)
	}
	return names
}

// HasColumn reports whether the label describes a column with this name
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.label.FindColumn(name)
	return ok
}

// ColumnIndex returns the raw-field offsets of the named column
func (d *Dataset) ColumnIndex(name string) ([]int, error) {
	col, ok := d.label.FindColumn(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", amdago.ErrColumnNotFound, name)
	}
	return col.Index, nil
}

// ColumnNameByIndex resolves a scalar column's name from its offset by a
// linear scan in document order. Vector columns are not matched; their
// fields have no single offset.
func (d *Dataset) ColumnNameByIndex(index int) (string, bool) {
	for _, col := range d.label.columns {
		if col.Scalar() && col.Index[0] == index {
			return col.Name, true
		}
	}
	return "", false
}

// ColumnDatatype returns the decoded datatype of the named column. An
// unrecognized DATA_TYPE tag yields DatatypeUnknown without an error; only
// an unknown column name fails.
func (d *Dataset) ColumnDatatype(name string) (Datatype, error) {
	col, ok := d.label.FindColumn(name)
	if !ok {
		return DatatypeUnknown, fmt.Errorf("%w: %s", amdago.ErrColumnNotFound, name)
	}
	return d.label.schema.datatype(col.DatatypeTag), nil
}

// ColumnData extracts the named column as a typed array.
//
// TIME columns parse each field with the schema's time layout into float64
// UTC epoch seconds; unparseable fields become NaN. Numeric columns first
// replace fields equal to the column's MISSING_CONSTANT, then coerce; fields
// that still fail coercion also degrade to the NaN sentinel (0 for int32
// columns, which cannot hold NaN). All degraded cells are counted in
// Missing. Columns with an unrecognized datatype come back as raw strings.
// Coercion never fails the call: the only errors are an unknown column name
// and a table row too short for the column's offsets.
func (d *Dataset) ColumnData(name string) (*ColumnArray, error) {
	col, ok := d.label.FindColumn(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", amdago.ErrColumnNotFound, name)
	}

	sc := d.label.schema
	arr := &ColumnArray{
		Name:     col.Name,
		Datatype: sc.datatype(col.DatatypeTag),
		Width:    col.Width(),
	}

	maxOffset := col.Index[len(col.Index)-1]
	for i, row := range d.rows {
		if maxOffset >= len(row) {
			return nil, fmt.Errorf("%w: row %d has %d fields, column %q needs offset %d",
				amdago.ErrShortRow, i, len(row), name, maxOffset)
		}
	}

	switch arr.Datatype {
	case DatatypeTime:
		arr.Floats = make([]float64, 0, len(d.rows)*arr.Width)
		for _, row := range d.rows {
			for _, off := range col.Index {
				v, ok := coerceTime(row[off], sc.TimeLayout)
				if !ok {
					arr.Missing++
				}
				arr.Floats = append(arr.Floats, v)
			}
		}
	case DatatypeFloat64:
		arr.Floats = make([]float64, 0, len(d.rows)*arr.Width)
		for _, row := range d.rows {
			for _, off := range col.Index {
				v, ok := coerceFloat(row[off], col.MissingConstant)
				if !ok {
					arr.Missing++
				}
				arr.Floats = append(arr.Floats, v)
			}
		}
	case DatatypeInt32:
		arr.Ints = make([]int32, 0, len(d.rows)*arr.Width)
		for _, row := range d.rows {
			for _, off := range col.Index {
				v, ok := coerceInt(row[off], col.MissingConstant)
				if !ok {
					arr.Missing++
				}
				arr.Ints = append(arr.Ints, v)
			}
		}
	default:
		arr.Raw = make([]string, 0, len(d.rows)*arr.Width)
		for _, row := range d.rows {
			for _, off := range col.Index {
				arr.Raw = append(arr.Raw, row[off])
			}
		}
	}

	return arr, nil
}

// coerceTime parses a timestamp field into UTC epoch seconds. The false
// result marks an unparseable field, already mapped to NaN.
func coerceTime(field, layout string) (float64, bool) {
	t, err := time.Parse(layout, field)
	if err != nil {
		return math.NaN(), false
	}
	return float64(t.UnixNano()) / float64(time.Second), true
}

// coerceFloat converts one raw field, treating the column's missing constant
// as NaN. The false result marks a degraded cell.
func coerceFloat(field, missingConstant string) (float64, bool) {
	if missingConstant != "" && field == missingConstant {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// coerceInt converts one raw field to int32. int32 has no NaN, so degraded
// cells store 0 and rely on the Missing count.
func coerceInt(field, missingConstant string) (int32, bool) {
	if missingConstant != "" && field == missingConstant {
		return 0, false
	}
	v, err := strconv.ParseInt(field, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(v), true
}

// TimeColumnName returns the first column whose name contains "time",
// case-insensitively
func (d *Dataset) TimeColumnName() (string, bool) {
	for _, col := range d.label.columns {
		if strings.Contains(strings.ToLower(col.Name), "time") {
			return col.Name, true
		}
	}
	return "", false
}

// TimeData returns the time column's data, or an empty array if the dataset
// has no time column
func (d *Dataset) TimeData() (*ColumnArray, error) {
	name, ok := d.TimeColumnName()
	if !ok {
		return &ColumnArray{Datatype: DatatypeTime, Width: 1}, nil
	}
	return d.ColumnData(name)
}

// Timespan returns the first and last values of the time column. The table
// is not sorted first: callers needing chronological bounds must ensure row
// order themselves.
func (d *Dataset) Timespan() (float64, float64, error) {
	t, err := d.TimeData()
	if err != nil {
		return 0, 0, err
	}
	if len(t.Floats) == 0 {
		return 0, 0, amdago.ErrNoTimeColumn
	}
	return t.Floats[0], t.Floats[len(t.Floats)-1], nil
}

// Summary writes a human-readable description of the dataset to w
func (d *Dataset) Summary(w io.Writer) {
	fmt.Fprintf(w, "Label filename : %s\n", d.LabelPath)
	fmt.Fprintf(w, "Data filename  : %s\n", d.TablePath)
	rows, fields := d.Shape()
	fmt.Fprintf(w, "Data shape     : (%d, %d)\n", rows, fields)
	if d.label.Skipped() > 0 {
		fmt.Fprintf(w, "Skipped spans  : %d\n", d.label.Skipped())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Columns :")

	for _, col := range d.label.columns {
		dt := d.label.schema.datatype(col.DatatypeTag)
		data, err := d.ColumnData(col.Name)
		if err != nil {
			fmt.Fprintf(w, " %v. %s, %s, error: %v\n", col.Index, col.Name, dt, err)
			continue
		}
		shape := fmt.Sprintf("(%d)", data.Rows())
		if data.Width > 1 {
			shape = fmt.Sprintf("(%d, %d)", data.Rows(), data.Width)
		}
		if data.Missing > 0 {
			shape += fmt.Sprintf(", %d missing", data.Missing)
		}
		fmt.Fprintf(w, " %v. %s, %s, %s\n", col.Index, col.Name, dt, shape)
	}
}
