// Package netcdfout converts a PDS ASCII dataset into a NETCDF3 classic
// file. Every output file carries a Time dimension sized to the table, the
// dataset timespan as fixed-width DDTime StartTime/StopTime variables, and
// one variable per mapped column; vector columns get an extra dimension
// matching their item count.
package netcdfout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"

	amdago "github.com/amdalab/amdago"
	"github.com/amdalab/amdago/ddtime"
	"github.com/amdalab/amdago/pds"
)

// timeLengthDim is the dimension of the DDTime string variables
const timeLengthDim = "TimeLength"

// Options controls one export
type Options struct {
	// Output is the explicit output path. When empty the file is named
	// <prefix>_<start-ddtime>.nc inside Dir.
	Output string
	Prefix string
	Dir    string

	// NameMap maps each output variable name to the source column (or
	// columns, stacked into a vector variable) it is built from. Numeric
	// source references resolve through the column index. A nil map selects
	// the default mapping.
	NameMap map[string][]string

	// Warn receives non-fatal messages for columns that were skipped
	Warn func(format string, args ...any)
}

func (o *Options) warnf(format string, args ...any) {
	if o.Warn != nil {
		o.Warn(format, args...)
	}
}

// DefaultNameMap maps the dataset's time column to the Time variable,
// mirroring the catalogue convention that every AMDA dataset is a time
// series
func DefaultNameMap(ds *pds.Dataset) map[string][]string {
	m := make(map[string][]string)
	if name, ok := ds.TimeColumnName(); ok {
		m["Time"] = []string{name}
	}
	return m
}

// ParseNameMapHint parses a NEW:OLD;VEC:a,b,c mapping hint as accepted by
// the convert command
func ParseNameMapHint(hint string) (map[string][]string, error) {
	m := make(map[string][]string)

	for _, entry := range strings.Split(hint, ";") {
		if entry == "" {
			continue
		}
		name, sources, ok := strings.Cut(entry, ":")
		if !ok || name == "" || sources == "" {
			return nil, fmt.Errorf("%w: bad namemap entry %q", amdago.ErrNoMappedColumns, entry)
		}
		m[name] = strings.Split(sources, ",")
	}

	if len(m) == 0 {
		return nil, amdago.ErrNoMappedColumns
	}

	return m, nil
}

// variable is one resolved output variable
type variable struct {
	name     string
	datatype pds.Datatype
	width    int
	floats   []float64
	ints     []int32
}

// Export writes the dataset to a NetCDF file and returns the output path
func Export(ds *pds.Dataset, opts Options) (string, error) {
	nameMap := opts.NameMap
	if nameMap == nil {
		nameMap = DefaultNameMap(ds)
	}

	vars, err := resolveVariables(ds, nameMap, &opts)
	if err != nil {
		return "", err
	}
	if len(vars) == 0 {
		return "", amdago.ErrNoMappedColumns
	}

	start, stop, err := ds.Timespan()
	if err != nil {
		return "", fmt.Errorf("failed to derive dataset timespan: %w", err)
	}

	startDD, err := ddtime.FromUnixSeconds(start)
	if err != nil {
		return "", fmt.Errorf("failed to encode start time: %w", err)
	}
	stopDD, err := ddtime.FromUnixSeconds(stop)
	if err != nil {
		return "", fmt.Errorf("failed to encode stop time: %w", err)
	}

	rows, _ := ds.Shape()
	path := opts.Output
	if path == "" {
		prefix := opts.Prefix
		if prefix == "" {
			prefix = "dataset"
		}
		path = filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.nc", prefix, strings.TrimRight(startDD, "\x00")))
	}

	header := buildHeader(vars, rows)
	header.Define()
	for _, err := range header.Check() {
		return "", fmt.Errorf("invalid NetCDF header: %w", err)
	}

	ff, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer ff.Close()

	f, err := cdf.Create(ff, header)
	if err != nil {
		return "", fmt.Errorf("failed to write NetCDF header: %w", err)
	}

	if err := writeDDTime(f, "StartTime", startDD); err != nil {
		return "", err
	}
	if err := writeDDTime(f, "StopTime", stopDD); err != nil {
		return "", err
	}

	for _, v := range vars {
		if err := writeVariable(f, v, rows); err != nil {
			return "", err
		}
	}

	return path, nil
}

// resolveVariables turns the name mapping into typed data arrays
func resolveVariables(ds *pds.Dataset, nameMap map[string][]string, opts *Options) ([]*variable, error) {
	var vars []*variable

	for name, sources := range nameMap {
		if len(sources) > 1 {
			v, err := stackColumns(ds, name, sources)
			if err != nil {
				return nil, err
			}
			vars = append(vars, v)
			continue
		}

		column, err := resolveColumnName(ds, sources[0])
		if err != nil {
			return nil, err
		}

		data, err := ds.ColumnData(column)
		if err != nil {
			return nil, err
		}

		switch data.Datatype {
		case pds.DatatypeFloat64, pds.DatatypeTime:
			vars = append(vars, &variable{name: name, datatype: data.Datatype, width: data.Width, floats: data.Floats})
		case pds.DatatypeInt32:
			vars = append(vars, &variable{name: name, datatype: data.Datatype, width: data.Width, ints: data.Ints})
		default:
			opts.warnf("skipping column %q: unknown datatype", column)
		}
	}

	return vars, nil
}

// stackColumns joins several scalar columns into one vector variable
func stackColumns(ds *pds.Dataset, name string, sources []string) (*variable, error) {
	width := len(sources)
	columns := make([]*pds.ColumnArray, 0, width)

	rows := -1
	for _, src := range sources {
		column, err := resolveColumnName(ds, src)
		if err != nil {
			return nil, err
		}

		data, err := ds.ColumnData(column)
		if err != nil {
			return nil, err
		}
		if data.Width != 1 || (data.Datatype != pds.DatatypeFloat64 && data.Datatype != pds.DatatypeTime) {
			return nil, fmt.Errorf("%w: column %q cannot join vector variable %q", amdago.ErrDimensionMismatch, column, name)
		}
		if rows >= 0 && data.Rows() != rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", amdago.ErrDimensionMismatch, column, data.Rows(), rows)
		}

		rows = data.Rows()
		columns = append(columns, data)
	}

	floats := make([]float64, rows*width)
	for i := 0; i < rows; i++ {
		for j, col := range columns {
			floats[i*width+j] = col.Floats[i]
		}
	}

	return &variable{name: name, datatype: pds.DatatypeFloat64, width: width, floats: floats}, nil
}

// resolveColumnName accepts either a column name or a numeric column offset
func resolveColumnName(ds *pds.Dataset, ref string) (string, error) {
	if ds.HasColumn(ref) {
		return ref, nil
	}
	if isInteger(ref) {
		index := 0
		for _, r := range ref {
			index = index*10 + int(r-'0')
		}
		if name, ok := ds.ColumnNameByIndex(index); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", amdago.ErrColumnNotFound, ref)
}

// isInteger reports whether s is a plain run of decimal digits
func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// buildHeader assembles the NetCDF header: the Time and TimeLength
// dimensions plus one auto-created dimension per distinct vector width,
// reused across variables of the same width
func buildHeader(vars []*variable, rows int) *cdf.Header {
	dims := []string{"Time", timeLengthDim}
	lengths := []int{rows, ddtime.Length}

	widthDims := make(map[int]string)
	nextDim := 0
	for _, v := range vars {
		if v.width <= 1 {
			continue
		}
		if _, ok := widthDims[v.width]; ok {
			continue
		}
		name := fmt.Sprintf("dim%d", nextDim)
		nextDim++
		widthDims[v.width] = name
		dims = append(dims, name)
		lengths = append(lengths, v.width)
	}

	h := cdf.NewHeader(dims, lengths)
	h.AddVariable("StartTime", []string{timeLengthDim}, []byte{0})
	h.AddVariable("StopTime", []string{timeLengthDim}, []byte{0})

	for _, v := range vars {
		vdims := []string{"Time"}
		if v.width > 1 {
			vdims = append(vdims, widthDims[v.width])
		}
		switch v.datatype {
		case pds.DatatypeInt32:
			h.AddVariable(v.name, vdims, []int32{0})
		default:
			h.AddVariable(v.name, vdims, []float64{0})
		}
	}

	return h
}

// writeDDTime stores one DDTime string variable
func writeDDTime(f *cdf.File, name, value string) error {
	w := f.Writer(name, []int{0}, []int{ddtime.Length})
	if _, err := w.Write([]byte(value)); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// writeVariable stores one column variable
func writeVariable(f *cdf.File, v *variable, rows int) error {
	begin := []int{0}
	end := []int{rows}
	if v.width > 1 {
		begin = []int{0, 0}
		end = []int{rows, v.width}
	}

	w := f.Writer(v.name, begin, end)

	var err error
	if v.datatype == pds.DatatypeInt32 {
		_, err = w.Write(v.ints)
	} else {
		_, err = w.Write(v.floats)
	}
	if err != nil {
		return fmt.Errorf("failed to write variable %s: %w", v.name, err)
	}

	return nil
}
