package obstree

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	amdago "github.com/amdalab/amdago"
)

const testTree = `<?xml version="1.0"?>
<dataRoot xmlns:xml="http://www.w3.org/XML/1998/namespace">
  <dataCenter xml:id="AMDA" name="AMDA">
    <mission xml:id="ACE" name="ACE" target="Earth" desc="Advanced Composition Explorer">
      <instrument xml:id="ACE_swepam" name="SWEPAM" desc="Solar Wind Electron Proton Alpha Monitor">
        <dataset xml:id="ace-swe-all" name="solar wind" dataStart="1998-02-04T00:00:00Z"
                 dataStop="2020-12-31T23:59:59Z" sampling="64s" target="Earth">
          <parameter xml:id="sw_n" name="density" units="cm-3" display_type="timeseries"/>
          <parameter xml:id="sw_v" name="velocity" units="km/s" display_type="timeseries">
            <component xml:id="sw_v_x" name="vx" Index1="0"/>
            <component xml:id="sw_v_y" name="vy" Index1="1"/>
            <component xml:id="sw_v_z" name="vz" Index1="2"/>
          </parameter>
        </dataset>
      </instrument>
    </mission>
    <mission xml:id="Cassini" name="Cassini" target="Saturn">
      <instrument xml:id="Cassini_mag" name="MAG">
        <dataset xml:id="cass-mag-hires" name="hi-res field" dataStart="MissionDependent" dataStop="">
          <parameter xml:id="b_tot" name="btot" units="nT"/>
        </dataset>
      </instrument>
    </mission>
  </dataCenter>
</dataRoot>
`

func parseTestTree(t *testing.T) *Tree {
	t.Helper()

	tree, err := Parse([]byte(testTree))
	assert.NoError(t, err)

	return tree
}

func TestParseTree(t *testing.T) {
	tree := parseTestTree(t)

	assert.Equal(t, 2, len(tree.Missions))
	assert.Equal(t, 2, tree.DatasetCount())

	ace, ok := tree.FindMission("ACE")
	assert.True(t, ok)
	assert.Equal(t, "ACE", ace.ID)
	assert.Equal(t, "Earth", ace.Target)

	swepam, ok := ace.FindInstrument("SWEPAM")
	assert.True(t, ok)
	assert.Equal(t, 1, len(swepam.Datasets))
}

func TestFindDataset(t *testing.T) {
	tree := parseTestTree(t)

	ds, err := tree.FindDataset("ace-swe-all")
	assert.NoError(t, err)
	assert.Equal(t, "solar wind", ds.Name)
	assert.Equal(t, "64s", ds.Sampling)
	assert.Equal(t, 2, len(ds.Parameters))

	start, stop := ds.Timespan()
	assert.Equal(t, time.Date(1998, 2, 4, 0, 0, 0, 0, time.UTC), start)
	assert.True(t, stop.After(start))

	_, err = tree.FindDataset("nope")
	assert.IsError(t, err, amdago.ErrDatasetNotFound)
}

func TestMissionDependentDates(t *testing.T) {
	tree := parseTestTree(t)

	ds, err := tree.FindDataset("cass-mag-hires")
	assert.NoError(t, err)

	start, stop := ds.Timespan()
	assert.True(t, start.IsZero())
	assert.True(t, stop.IsZero())
}

func TestFindParameter(t *testing.T) {
	tree := parseTestTree(t)

	p, ok := tree.FindParameter("sw_v")
	assert.True(t, ok)
	assert.Equal(t, "velocity", p.Name)
	assert.Equal(t, 3, p.Size())
	assert.Equal(t, "ace-swe-all", p.DatasetID)
	assert.Equal(t, "vx", p.Components[0].Name)

	_, ok = tree.FindParameter("nope")
	assert.False(t, ok)
}

func TestParameterFilters(t *testing.T) {
	tree := parseTestTree(t)

	var names []string
	for p := range tree.Parameters("km/s") {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"velocity"}, names)

	var ids []string
	for d := range tree.Datasets("ACE", "SWEPAM") {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"ace-swe-all"}, ids)
}

func TestParameterTimespan(t *testing.T) {
	tree := parseTestTree(t)

	start, stop, err := tree.ParameterTimespan("sw_n")
	assert.NoError(t, err)
	assert.True(t, stop.After(start))
}

func TestParseBadXML(t *testing.T) {
	_, err := Parse([]byte("not xml <<"))
	assert.Error(t, err)

	_, err = Parse([]byte("<root><other/></root>"))
	assert.IsError(t, err, amdago.ErrNoDatasetElement)
}
