package pds

// Datatype represents the decoded type of a table column
type Datatype int

const (
	// DatatypeUnknown marks a DATA_TYPE tag this package does not recognize
	DatatypeUnknown Datatype = iota
	// DatatypeFloat64 corresponds to the ASCII_REAL tag
	DatatypeFloat64
	// DatatypeInt32 corresponds to the ASCII_INTEGER tag
	DatatypeInt32
	// DatatypeTime corresponds to the TIME tag
	DatatypeTime
)

// String returns the tag-like name of the datatype
func (d Datatype) String() string {
	switch d {
	case DatatypeFloat64:
		return "float64"
	case DatatypeInt32:
		return "int32"
	case DatatypeTime:
		return "TIME"
	default:
		return "unknown"
	}
}

// Schema names the tags and attributes the parser looks for in a label.
// PDS labels use a fixed vocabulary, but keeping it in a value (rather than
// package-level constants) lets tests exercise the parser with alternate
// vocabularies and keeps the coupling visible.
type Schema struct {
	// Structural tags
	EndTag       string // terminates the label ("END")
	ObjectTag    string // opens a nested object ("OBJECT")
	EndObjectTag string // closes a nested object ("END_OBJECT")

	// Object types
	ColumnType string // object type describing one table column ("COLUMN")

	// Column attributes
	NameField     string // column name ("NAME")
	DatatypeField string // column type tag ("DATA_TYPE")
	MissingField  string // missing-value sentinel ("MISSING_CONSTANT")
	ItemsField    string // vector width ("ITEMS")
	UnitField     string // physical unit ("UNIT")

	// Datatype tags
	FloatTag string // "ASCII_REAL"
	IntTag   string // "ASCII_INTEGER"
	TimeTag  string // "TIME"

	// TimeLayout is the Go layout of TIME column values
	// (the PDS spelling is %Y-%m-%dT%H:%M:%S.%fZ)
	TimeLayout string
}

// DefaultSchema returns the standard PDS ASCII label vocabulary
func DefaultSchema() Schema {
	return Schema{
		EndTag:        "END",
		ObjectTag:     "OBJECT",
		EndObjectTag:  "END_OBJECT",
		ColumnType:    "COLUMN",
		NameField:     "NAME",
		DatatypeField: "DATA_TYPE",
		MissingField:  "MISSING_CONSTANT",
		ItemsField:    "ITEMS",
		UnitField:     "UNIT",
		FloatTag:      "ASCII_REAL",
		IntTag:        "ASCII_INTEGER",
		TimeTag:       "TIME",
		TimeLayout:    "2006-01-02T15:04:05.000Z",
	}
}

// datatype maps a DATA_TYPE tag to a Datatype
func (s Schema) datatype(tag string) Datatype {
	switch tag {
	case s.FloatTag:
		return DatatypeFloat64
	case s.IntTag:
		return DatatypeInt32
	case s.TimeTag:
		return DatatypeTime
	default:
		return DatatypeUnknown
	}
}
