package sqlsource

import (
	"database/sql"
	"fmt"

	// registers the sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

/*
OpenSQLite3 takes the path to a SQLite3 database file, a table name,
the ordered column names matching the schema and a delimiter, and
returns a source over that table or an error if the file cannot be
opened. The source owns the opened connection; close it with Close.
*/
func OpenSQLite3(path, table string, columns []string, delimiter string, maxConns int) (*Source, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite3 database %s: %v", path, err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	return New(db, table, columns, delimiter), nil
}
