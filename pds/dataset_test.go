package pds

import (
	"math"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	amdago "github.com/amdalab/amdago"
)

const scenarioLabel = `OBJECT = TABLE
  OBJECT = COLUMN
    NAME = "Time"
    DATA_TYPE = "TIME"
  END_OBJECT = COLUMN
  OBJECT = COLUMN
    NAME = "A"
    DATA_TYPE = "ASCII_REAL"
    MISSING_CONSTANT = "-1"
  END_OBJECT = COLUMN
  OBJECT = COLUMN
    NAME = "B"
    DATA_TYPE = "ASCII_REAL"
    ITEMS = 2
  END_OBJECT = COLUMN
END_OBJECT = TABLE
END
`

const scenarioTable = `2020-01-01T00:00:00.000Z -1 1.0 2.0
2020-01-01T00:01:00.000Z 3.5 4.0 5.0
`

func scenarioDataset() *Dataset {
	return NewDataset(scenarioLabel, scenarioTable, " ", DefaultSchema())
}

func TestDatasetShape(t *testing.T) {
	ds := scenarioDataset()

	rows, fields := ds.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 4, fields)
	assert.Equal(t, []string{"Time", "A", "B"}, ds.ColumnNames())
}

func TestColumnDatatype(t *testing.T) {
	ds := scenarioDataset()

	tests := []struct {
		column string
		want   Datatype
	}{
		{"Time", DatatypeTime},
		{"A", DatatypeFloat64},
		{"B", DatatypeFloat64},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			dt, err := ds.ColumnDatatype(tt.column)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, dt)
		})
	}

	_, err := ds.ColumnDatatype("Nope")
	assert.IsError(t, err, amdago.ErrColumnNotFound)
}

func TestUnknownDatatypeReturnsRawStrings(t *testing.T) {
	label := `OBJECT = COLUMN
NAME = Timestamp
DATA_TYPE = WEIRD_TYPE
END_OBJECT = COLUMN
OBJECT = COLUMN
NAME = Flag
DATA_TYPE = ASCII_INTEGER
END_OBJECT = COLUMN
`
	ds := NewDataset(label, "x 1\ny 2\n", " ", DefaultSchema())

	dt, err := ds.ColumnDatatype("Timestamp")
	assert.NoError(t, err)
	assert.Equal(t, DatatypeUnknown, dt)

	data, err := ds.ColumnData("Timestamp")
	assert.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, data.Raw)

	flags, err := ds.ColumnData("Flag")
	assert.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, flags.Ints)
}

func TestTimeColumnParsing(t *testing.T) {
	ds := scenarioDataset()

	data, err := ds.ColumnData("Time")
	assert.NoError(t, err)
	assert.Equal(t, DatatypeTime, data.Datatype)
	assert.Equal(t, 2, data.Rows())

	// 2020-01-01T00:00:00Z as UTC epoch seconds.
	assert.Equal(t, 1577836800.0, data.Floats[0])
	assert.Equal(t, 1577836860.0, data.Floats[1])
	assert.Equal(t, 0, data.Missing)
}

func TestUnparseableTimeBecomesNaN(t *testing.T) {
	table := "not-a-date 1.0 1.0 1.0\n2020-01-01T00:01:00.000Z 2.0 2.0 2.0\n"
	ds := NewDataset(scenarioLabel, table, " ", DefaultSchema())

	data, err := ds.ColumnData("Time")
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(data.Floats[0]))
	assert.False(t, math.IsNaN(data.Floats[1]))
	assert.Equal(t, 1, data.Missing)
}

func TestMissingConstantSubstitution(t *testing.T) {
	ds := scenarioDataset()

	data, err := ds.ColumnData("A")
	assert.NoError(t, err)
	assert.Equal(t, DatatypeFloat64, data.Datatype)

	// "-1" matches the MISSING_CONSTANT and degrades to NaN; the finite
	// value passes through unchanged.
	assert.True(t, math.IsNaN(data.Floats[0]))
	assert.Equal(t, 3.5, data.Floats[1])
	assert.Equal(t, 1, data.Missing)
}

func TestNonNumericFieldBecomesNaN(t *testing.T) {
	table := "2020-01-01T00:00:00.000Z garbage 1.0 2.0\n"
	ds := NewDataset(scenarioLabel, table, " ", DefaultSchema())

	data, err := ds.ColumnData("A")
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(data.Floats[0]))
	assert.Equal(t, 1, data.Missing)
}

func TestVectorColumnData(t *testing.T) {
	ds := scenarioDataset()

	data, err := ds.ColumnData("B")
	assert.NoError(t, err)
	assert.Equal(t, 2, data.Width)
	assert.Equal(t, 2, data.Rows())
	assert.Equal(t, []float64{1.0, 2.0}, data.FloatRow(0))
	assert.Equal(t, []float64{4.0, 5.0}, data.FloatRow(1))
}

func TestColumnIndexLookup(t *testing.T) {
	ds := scenarioDataset()

	idx, err := ds.ColumnIndex("B")
	assert.NoError(t, err)
	assert.Equal(t, []int{2, 3}, idx)

	_, err = ds.ColumnIndex("Missing")
	assert.IsError(t, err, amdago.ErrColumnNotFound)
}

func TestColumnNameByIndex(t *testing.T) {
	ds := scenarioDataset()

	name, ok := ds.ColumnNameByIndex(1)
	assert.True(t, ok)
	assert.Equal(t, "A", name)

	// Vector columns have no single offset and are not matched.
	_, ok = ds.ColumnNameByIndex(2)
	assert.False(t, ok)
}

func TestTimespan(t *testing.T) {
	ds := scenarioDataset()

	name, ok := ds.TimeColumnName()
	assert.True(t, ok)
	assert.Equal(t, "Time", name)

	first, last, err := ds.Timespan()
	assert.NoError(t, err)
	assert.Equal(t, 1577836800.0, first)
	assert.Equal(t, 1577836860.0, last)
	assert.True(t, last > first)
}

func TestTimespanWithoutTimeColumn(t *testing.T) {
	label := "OBJECT = COLUMN\nNAME = A\nDATA_TYPE = ASCII_REAL\nEND_OBJECT = COLUMN\n"
	ds := NewDataset(label, "1.0\n", " ", DefaultSchema())

	data, err := ds.TimeData()
	assert.NoError(t, err)
	assert.Equal(t, 0, len(data.Floats))

	_, _, err = ds.Timespan()
	assert.IsError(t, err, amdago.ErrNoTimeColumn)
}

func TestShortRowFailsLoudly(t *testing.T) {
	table := "2020-01-01T00:00:00.000Z 1.0\n"
	ds := NewDataset(scenarioLabel, table, " ", DefaultSchema())

	_, err := ds.ColumnData("B")
	assert.IsError(t, err, amdago.ErrShortRow)
}

func TestCommaSeparatedTable(t *testing.T) {
	table := "2020-01-01T00:00:00.000Z,,-1, 1.0 ,2.0\n"
	ds := NewDataset(scenarioLabel, table, ",", DefaultSchema())

	// Empty tokens from separator runs are dropped.
	rows, fields := ds.Shape()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 4, fields)

	data, err := ds.ColumnData("B")
	assert.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.0}, data.FloatRow(0))
}

func TestEndToEndScenario(t *testing.T) {
	ds := scenarioDataset()

	a, err := ds.ColumnData("A")
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(a.Floats[0]))
	assert.Equal(t, 3.5, a.Floats[1])

	b, err := ds.ColumnData("B")
	assert.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.0}, b.FloatRow(0))
	assert.Equal(t, []float64{4.0, 5.0}, b.FloatRow(1))

	first, last, err := ds.Timespan()
	assert.NoError(t, err)
	assert.True(t, last > first)
}

func TestOpenDataset(t *testing.T) {
	ds, err := OpenDataset("testdata/swepam.LBL", "testdata/swepam.TAB", " ", DefaultSchema())
	assert.NoError(t, err)

	rows, _ := ds.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, ds.Label().ColumnCount())

	var summary strings.Builder
	ds.Summary(&summary)
	assert.True(t, strings.Contains(summary.String(), "Columns :"))

	_, err = OpenDataset("testdata/nope.LBL", "testdata/nope.TAB", " ", DefaultSchema())
	assert.Error(t, err)
}
