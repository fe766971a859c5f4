// Package session caches downloaded dataset slices in a local SQLite file so
// repeated requests for the same dataset do not go back to the service. Each
// dataset becomes one table of (time, val1, ..., valN) rows keyed by the
// dataset id with dashes mapped to underscores.
package session

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	amdago "github.com/amdalab/amdago"
)

// Session is an open cache database
type Session struct {
	path string
	db   *sql.DB
}

// Open opens (creating if needed) the cache database at path
func Open(path string) (*Session, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	return &Session{path: path, db: db}, nil
}

// Close closes the underlying database
func (s *Session) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Session) Path() string {
	return s.path
}

// tableName maps a dataset id to its table name. Anything outside
// [A-Za-z0-9_] is rejected after the dash mapping: table names cannot be
// bound as query parameters, so the identifier must be vetted here.
func tableName(datasetID string) (string, error) {
	name := strings.ReplaceAll(datasetID, "-", "_")
	if name == "" {
		return "", fmt.Errorf("%w: empty dataset id", amdago.ErrDatasetNotFound)
	}
	for _, r := range name {
		ok := r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !ok {
			return "", fmt.Errorf("%w: dataset id %q has unusable characters", amdago.ErrDatasetNotFound, datasetID)
		}
	}
	return name, nil
}

// datasetID maps a table name back to the dataset id
func datasetID(table string) string {
	return strings.ReplaceAll(table, "_", "-")
}

// Tables lists the cached table names
func (s *Session) Tables() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list session tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// Datasets lists the cached dataset ids
func (s *Session) Datasets() ([]string, error) {
	tables, err := s.Tables()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(tables))
	for _, t := range tables {
		ids = append(ids, datasetID(t))
	}

	return ids, nil
}

// Contains reports whether a dataset is already cached
func (s *Session) Contains(id string) (bool, error) {
	table, err := tableName(id)
	if err != nil {
		return false, err
	}

	var count int
	err = s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check session table: %w", err)
	}

	return count > 0, nil
}

// Add caches one dataset slice. times holds one epoch-seconds value per row;
// values holds the remaining columns per row. Adding an already cached
// dataset fails with ErrDatasetExists.
func (s *Session) Add(id string, times []float64, values [][]float64) error {
	if len(times) != len(values) {
		return amdago.ErrShapeMismatch
	}

	exists, err := s.Contains(id)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", amdago.ErrDatasetExists, id)
	}

	table, err := tableName(id)
	if err != nil {
		return err
	}

	width := 0
	if len(values) > 0 {
		width = len(values[0])
	}

	var cols strings.Builder
	cols.WriteString("time real")
	for i := 1; i <= width; i++ {
		fmt.Fprintf(&cols, ", val%d real", i)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", table, cols.String())); err != nil {
		return fmt.Errorf("failed to create session table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", width+1), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, width+1)
	for i, t := range times {
		if len(values[i]) != width {
			return fmt.Errorf("%w: row %d has %d values, want %d", amdago.ErrShapeMismatch, i, len(values[i]), width)
		}
		args[0] = t
		for j, v := range values[i] {
			args[j+1] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Timespan returns the MIN and MAX cached times of a dataset
func (s *Session) Timespan(id string) (float64, float64, error) {
	table, err := tableName(id)
	if err != nil {
		return 0, 0, err
	}

	exists, err := s.Contains(id)
	if err != nil {
		return 0, 0, err
	}
	if !exists {
		return 0, 0, fmt.Errorf("%w: %s", amdago.ErrDatasetNotFound, id)
	}

	var minT, maxT float64
	err = s.db.QueryRow(fmt.Sprintf("SELECT MIN(time), MAX(time) FROM %s", table)).Scan(&minT, &maxT)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read cached timespan: %w", err)
	}

	return minT, maxT, nil
}

// Rows reads one cached dataset back in insertion order
func (s *Session) Rows(id string) ([]float64, [][]float64, error) {
	table, err := tableName(id)
	if err != nil {
		return nil, nil, err
	}

	exists, err := s.Contains(id)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: %s", amdago.ErrDatasetNotFound, id)
	}

	rows, err := s.db.Query(fmt.Sprintf("SELECT * FROM %s ORDER BY rowid", table))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read cached rows: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read cached columns: %w", err)
	}
	width := len(cols) - 1

	var (
		times  []float64
		values [][]float64
	)

	scan := make([]any, len(cols))
	for rows.Next() {
		var t float64
		row := make([]float64, width)

		scan[0] = &t
		for j := range row {
			scan[j+1] = &row[j]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan cached row: %w", err)
		}

		times = append(times, t)
		values = append(values, row)
	}

	return times, values, rows.Err()
}
