package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dilo00o/spark-dectree/engine"
	"github.com/dilo00o/spark-dectree/engine/mongosource"
	"github.com/dilo00o/spark-dectree/engine/sqlsource"
	"github.com/dilo00o/spark-dectree/tree"
	treejson "github.com/dilo00o/spark-dectree/tree/json"
	"github.com/dilo00o/spark-dectree/tree/redisstore"
	mgo "gopkg.in/mgo.v2"
	redis "gopkg.in/redis.v5"
)

func (c *rootCmdConfig) engine() engine.Engine {
	return engine.NewLocal(c.partitions)
}

/*
dataInputConfig holds the flags every command reading a dataset
shares: the input itself plus the table/collection and column names
database-backed inputs need.
*/
type dataInputConfig struct {
	dataInput  string
	delimiter  string
	table      string
	columns    string
	maxDBConns int
}

/*
dataset dispatches on the input flag the way data inputs are
addressed: empty for STDIN, a postgresql:// URL, a mongodb:// URL or a
.db file for database backends, anything else for a delimited text
file.
*/
func (c *rootCmdConfig) dataset(ctx context.Context, eng engine.Engine, dic *dataInputConfig) (engine.Dataset, error) {
	switch {
	case dic.dataInput == "":
		c.Logf("Reading dataset from STDIN...")
		var lines []string
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading dataset from STDIN: %v", err)
		}
		return eng.FromLines(ctx, lines)
	case strings.HasPrefix(dic.dataInput, "postgresql://"):
		columns, err := dic.columnNames()
		if err != nil {
			return nil, err
		}
		c.Logf("Opening PostgreSQL source for %s...", dic.dataInput)
		src, err := sqlsource.OpenPostgreSQL(dic.dataInput, dic.table, columns, dic.delimiter, dic.maxDBConns)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return eng.FromSource(ctx, src)
	case strings.HasPrefix(dic.dataInput, "mongodb://"):
		columns, err := dic.columnNames()
		if err != nil {
			return nil, err
		}
		c.Logf("Opening MongoDB source for %s...", dic.dataInput)
		session, err := mgo.Dial(dic.dataInput)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongodb: %v", err)
		}
		defer session.Close()
		src := mongosource.New(session, "", dic.table, columns, dic.delimiter)
		return eng.FromSource(ctx, src)
	case strings.HasSuffix(dic.dataInput, ".db"):
		columns, err := dic.columnNames()
		if err != nil {
			return nil, err
		}
		c.Logf("Opening SQLite3 source for %s...", dic.dataInput)
		src, err := sqlsource.OpenSQLite3(dic.dataInput, dic.table, columns, dic.delimiter, dic.maxDBConns)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return eng.FromSource(ctx, src)
	default:
		c.Logf("Loading dataset from %s...", dic.dataInput)
		return eng.Load(ctx, dic.dataInput)
	}
}

func (dic *dataInputConfig) columnNames() ([]string, error) {
	if dic.table == "" {
		return nil, fmt.Errorf("required table flag was not set for database input %s", dic.dataInput)
	}
	if dic.columns == "" {
		return nil, fmt.Errorf("required columns flag was not set for database input %s", dic.dataInput)
	}
	return strings.Split(dic.columns, ","), nil
}

/*
modelStore dispatches on the path the way model stores are addressed:
a redis:// URL selects the redis-backed store, with the key following
the URL fragment, and anything else the file-backed store keyed by
path.
*/
func modelStore(path string) (tree.ModelStore, string, error) {
	if strings.HasPrefix(path, "redis://") {
		url, key := path, "model"
		if i := strings.LastIndex(path, "#"); i >= 0 {
			url, key = path[:i], path[i+1:]
		}
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, "", fmt.Errorf("parsing redis model store URL %s: %v", url, err)
		}
		return redisstore.New(redis.NewClient(opts), "dectree"), key, nil
	}
	return treejson.NewFileStore(), path, nil
}
