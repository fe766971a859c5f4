package amdago

import "errors"

// Common errors used throughout the amdago package
var (
	// PDS label/table errors

	// ErrColumnNotFound indicates a column name was not present in the label index.
	ErrColumnNotFound = errors.New("column not found in label")
	// ErrNoTimeColumn indicates the dataset has no column whose name contains "time".
	ErrNoTimeColumn = errors.New("dataset has no time column")
	// ErrShortRow indicates a table row has fewer fields than the column index requires.
	ErrShortRow = errors.New("table row has fewer fields than the label describes")
	// ErrUnknownDatatype indicates a DATA_TYPE tag that is not ASCII_REAL, ASCII_INTEGER or TIME.
	ErrUnknownDatatype = errors.New("unknown column datatype")
	// ErrEmptyContent indicates the label or table file contained no usable content.
	ErrEmptyContent = errors.New("empty content")

	// Observatory tree errors

	// ErrNoDatasetElement indicates the observatory XML lacked the expected root element.
	ErrNoDatasetElement = errors.New("no dataCenter element found in observatory tree")
	// ErrDatasetNotFound indicates a dataset id was not present in the observatory tree.
	ErrDatasetNotFound = errors.New("dataset not found in observatory tree")

	// Time representation errors

	// ErrBadDDTime indicates a DDTime string was malformed or too short.
	ErrBadDDTime = errors.New("malformed DDTime string")

	// Web service errors

	// ErrRequestFailed indicates the AMDA web service answered with a non-success status.
	ErrRequestFailed = errors.New("AMDA web service request failed")
	// ErrEmptyResult indicates the web service envelope carried no data file URLs.
	ErrEmptyResult = errors.New("AMDA web service returned no data file URLs")

	// Session cache errors

	// ErrDatasetExists indicates the session cache already holds a table for the dataset.
	ErrDatasetExists = errors.New("dataset already cached in session")
	// ErrShapeMismatch indicates time and value slices disagree on row count.
	ErrShapeMismatch = errors.New("time and value slices have different lengths")

	// NetCDF export errors

	// ErrNoMappedColumns indicates the name mapping selected no exportable columns.
	ErrNoMappedColumns = errors.New("no columns selected for export")
	// ErrDimensionMismatch indicates mapped columns disagree on vector width.
	ErrDimensionMismatch = errors.New("mapped columns have mismatched dimensions")
)
