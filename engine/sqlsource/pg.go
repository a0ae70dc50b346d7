package sqlsource

import (
	"database/sql"
	"fmt"

	// registers the postgres driver
	_ "github.com/lib/pq"
)

/*
OpenPostgreSQL takes a PostgreSQL connection URL, a table name, the
ordered column names matching the schema and a delimiter, and returns
a source over that table or an error if the database cannot be
reached. The source owns the opened connection; close it with Close.
*/
func OpenPostgreSQL(url, table string, columns []string, delimiter string, maxConns int) (*Source, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("opening postgresql database: %v", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgresql database: %v", err)
	}
	return New(db, table, columns, delimiter), nil
}
