// Package obstree parses the AMDA observatory tree: the XML catalogue
// returned by the getObsDataTree web service, describing every available
// dataset as dataCenter → mission → instrument → dataset → parameter →
// component. All AMDA datasets are time series; dataset descriptions carry
// the covered timespan when it is not mission dependent.
package obstree

import (
	"fmt"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/beevik/etree"

	amdago "github.com/amdalab/amdago"
)

// XML vocabulary of the observatory tree
const (
	dataCenterTag = "dataCenter"
	missionTag    = "mission"
	instrumentTag = "instrument"
	datasetTag    = "dataset"
	parameterTag  = "parameter"
	componentTag  = "component"

	// missionDependent marks dataset start/stop dates that vary per mission
	missionDependent = "MissionDependent"

	// dateLayout is the format of dataStart/dataStop attributes
	dateLayout = "2006-01-02T15:04:05Z"
)

// Component describes one component of a vector parameter
type Component struct {
	ID    string
	Name  string
	Index string
}

// Parameter describes one parameter of a dataset. A parameter without
// components is a scalar.
type Parameter struct {
	ID          string
	Name        string
	Units       string
	Description string
	DisplayType string
	DatasetID   string
	Components  []Component
}

// Size returns the number of components (0 for scalar parameters)
func (p *Parameter) Size() int {
	return len(p.Components)
}

func (p *Parameter) String() string {
	return fmt.Sprintf("Parameter(id:%s, name:%s, units:%s, size:%d)",
		p.ID, p.Name, p.Units, len(p.Components))
}

// Dataset describes one dataset of the catalogue
type Dataset struct {
	ID          string
	Name        string
	Description string
	DataSource  string
	SpaseID     string
	Sampling    string
	Target      string
	LastUpdate  string
	DataStart   time.Time // zero when mission dependent or absent
	DataStop    time.Time
	Parameters  []Parameter
}

// Timespan returns the covered start and stop times. Zero times mean the
// span is mission dependent or unknown.
func (d *Dataset) Timespan() (time.Time, time.Time) {
	return d.DataStart, d.DataStop
}

func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset(id:%s, name:%s, start:%s, stop:%s, params:%d)",
		d.ID, d.Name, d.DataStart.Format(dateLayout), d.DataStop.Format(dateLayout), len(d.Parameters))
}

// Instrument groups the datasets produced by one instrument
type Instrument struct {
	ID          string
	Name        string
	Description string
	Datasets    []Dataset
}

// Mission groups the instruments of one mission
type Mission struct {
	ID          string
	Name        string
	Description string
	Target      string
	Instruments []Instrument
}

// FindInstrument returns the named instrument of the mission
func (m *Mission) FindInstrument(name string) (*Instrument, bool) {
	for i := range m.Instruments {
		if m.Instruments[i].Name == name {
			return &m.Instruments[i], true
		}
	}
	return nil, false
}

// Tree is the parsed observatory catalogue
type Tree struct {
	Missions []Mission
}

// Parse reads an observatory tree from its XML representation
func Parse(data []byte) (*Tree, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse observatory tree XML: %w", err)
	}

	root := doc.FindElement("//" + dataCenterTag)
	if root == nil {
		return nil, amdago.ErrNoDatasetElement
	}

	tree := &Tree{}
	for _, el := range root.FindElements(".//" + missionTag) {
		tree.Missions = append(tree.Missions, parseMission(el))
	}

	return tree, nil
}

// Load reads and parses an observatory tree XML file
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read observatory tree file: %w", err)
	}
	return Parse(data)
}

func parseMission(el *etree.Element) Mission {
	m := Mission{
		ID:          elementID(el),
		Name:        el.SelectAttrValue("name", ""),
		Description: el.SelectAttrValue("desc", ""),
		Target:      el.SelectAttrValue("target", ""),
	}
	for _, child := range el.FindElements(".//" + instrumentTag) {
		m.Instruments = append(m.Instruments, parseInstrument(child))
	}
	return m
}

func parseInstrument(el *etree.Element) Instrument {
	in := Instrument{
		ID:          elementID(el),
		Name:        el.SelectAttrValue("name", ""),
		Description: el.SelectAttrValue("desc", ""),
	}
	for _, child := range el.FindElements(".//" + datasetTag) {
		in.Datasets = append(in.Datasets, parseDataset(child))
	}
	return in
}

func parseDataset(el *etree.Element) Dataset {
	d := Dataset{
		ID:          elementID(el),
		Name:        el.SelectAttrValue("name", ""),
		Description: el.SelectAttrValue("desc", ""),
		DataSource:  el.SelectAttrValue("dataSource", ""),
		SpaseID:     el.SelectAttrValue("spaseId", ""),
		Sampling:    el.SelectAttrValue("sampling", ""),
		Target:      el.SelectAttrValue("target", ""),
		LastUpdate:  el.SelectAttrValue("lastUpdate", ""),
		DataStart:   parseTreeDate(el.SelectAttrValue("dataStart", "")),
		DataStop:    parseTreeDate(el.SelectAttrValue("dataStop", "")),
	}
	for _, child := range el.FindElements(".//" + parameterTag) {
		d.Parameters = append(d.Parameters, parseParameter(child, d.ID))
	}
	return d
}

func parseParameter(el *etree.Element, datasetID string) Parameter {
	p := Parameter{
		ID:          elementID(el),
		Name:        el.SelectAttrValue("name", ""),
		Units:       el.SelectAttrValue("units", ""),
		Description: el.SelectAttrValue("description", ""),
		DisplayType: el.SelectAttrValue("display_type", ""),
		DatasetID:   datasetID,
	}
	for _, child := range el.FindElements(".//" + componentTag) {
		p.Components = append(p.Components, Component{
			ID:    elementID(child),
			Name:  child.SelectAttrValue("name", ""),
			Index: child.SelectAttrValue("Index1", ""),
		})
	}
	return p
}

// elementID returns the element's id attribute, tolerating a namespace
// prefix on the attribute key
func elementID(el *etree.Element) string {
	for _, attr := range el.Attr {
		if attr.Key == "id" || strings.HasSuffix(attr.Key, "}id") {
			return attr.Value
		}
	}
	return ""
}

// parseTreeDate parses a dataStart/dataStop attribute. MissionDependent and
// empty values map to the zero time.
func parseTreeDate(s string) time.Time {
	if s == "" || s == missionDependent {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Datasets iterates over every dataset in the tree, optionally restricted to
// one mission and one instrument name (empty strings match everything).
func (t *Tree) Datasets(mission, instrument string) iter.Seq[*Dataset] {
	return func(yield func(*Dataset) bool) {
		for mi := range t.Missions {
			m := &t.Missions[mi]
			if mission != "" && m.Name != mission {
				continue
			}
			for ii := range m.Instruments {
				in := &m.Instruments[ii]
				if instrument != "" && in.Name != instrument {
					continue
				}
				for di := range in.Datasets {
					if !yield(&in.Datasets[di]) {
						return
					}
				}
			}
		}
	}
}

// Parameters iterates over every parameter, optionally filtered by units
func (t *Tree) Parameters(units string) iter.Seq[*Parameter] {
	return func(yield func(*Parameter) bool) {
		for d := range t.Datasets("", "") {
			for pi := range d.Parameters {
				p := &d.Parameters[pi]
				if units != "" && p.Units != units {
					continue
				}
				if !yield(p) {
					return
				}
			}
		}
	}
}

// FindMission returns the named mission
func (t *Tree) FindMission(name string) (*Mission, bool) {
	for i := range t.Missions {
		if t.Missions[i].Name == name {
			return &t.Missions[i], true
		}
	}
	return nil, false
}

// FindDataset returns the dataset with the given id
func (t *Tree) FindDataset(id string) (*Dataset, error) {
	for d := range t.Datasets("", "") {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", amdago.ErrDatasetNotFound, id)
}

// FindParameter returns the parameter with the given id
func (t *Tree) FindParameter(id string) (*Parameter, bool) {
	for p := range t.Parameters("") {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ParameterTimespan returns the covered timespan of the parameter's parent
// dataset
func (t *Tree) ParameterTimespan(id string) (time.Time, time.Time, error) {
	p, ok := t.FindParameter(id)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: parameter %s", amdago.ErrDatasetNotFound, id)
	}
	d, err := t.FindDataset(p.DatasetID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, stop := d.Timespan()
	return start, stop, nil
}

// DatasetCount returns the number of datasets in the tree
func (t *Tree) DatasetCount() int {
	n := 0
	for range t.Datasets("", "") {
		n++
	}
	return n
}
