/*
Package sqlsource provides an implementation of engine.Source that
reads training records from a table on a SQL database, with adapters
for PostgreSQL and SQLite3 backends.
*/
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

/*
Source reads the rows of a table and serializes each one as a
delimited record, with the configured columns in order.
*/
type Source struct {
	db        *sql.DB
	table     string
	columns   []string
	delimiter string
}

/*
New takes an open database handle, a table name, the ordered column
names matching the schema and a delimiter, and returns a source
producing one record per row. The caller keeps ownership of the
database handle unless it closes the source with Close.
*/
func New(db *sql.DB, table string, columns []string, delimiter string) *Source {
	return &Source{db: db, table: table, columns: columns, delimiter: delimiter}
}

// Records drains the table and returns its rows as delimited records.
// NULL column values serialize as empty strings.
func (s *Source) Records(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(s.columns, ", "), s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading records from table %s: %v", s.table, err)
	}
	defer rows.Close()
	var records []string
	values := make([]sql.NullString, len(s.columns))
	scanTargets := make([]interface{}, len(s.columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}
	fields := make([]string, len(s.columns))
	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("reading records from table %s: %v", s.table, err)
		}
		for i, v := range values {
			if v.Valid {
				fields[i] = v.String
			} else {
				fields[i] = ""
			}
		}
		records = append(records, strings.Join(fields, s.delimiter))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading records from table %s: %v", s.table, err)
	}
	return records, nil
}

// Close closes the underlying database handle.
func (s *Source) Close() error {
	return s.db.Close()
}
