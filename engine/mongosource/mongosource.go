/*
Package mongosource provides an implementation of engine.Source that
reads training records from a MongoDB collection.
*/
package mongosource

import (
	"context"
	"fmt"
	"strings"

	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

/*
Source reads the documents of a MongoDB collection and serializes each
one as a delimited record, with the configured fields in order.
*/
type Source struct {
	session    *mgo.Session
	database   string
	collection string
	fields     []string
	delimiter  string
}

/*
New takes a MongoDB session, a database name (empty for the session's
default database), a collection name, the ordered field names matching
the schema's columns and a delimiter, and returns a source producing
one record per document.
*/
func New(session *mgo.Session, database, collection string, fields []string, delimiter string) *Source {
	return &Source{
		session:    session,
		database:   database,
		collection: collection,
		fields:     fields,
		delimiter:  delimiter,
	}
}

// Records drains the collection and returns its documents as
// delimited records. Fields missing on a document serialize as empty
// strings.
func (s *Source) Records(ctx context.Context) ([]string, error) {
	var records []string
	iter := s.session.DB(s.database).C(s.collection).Find(nil).Iter()
	doc := bson.M{}
	values := make([]string, len(s.fields))
	for iter.Next(&doc) {
		if err := ctx.Err(); err != nil {
			iter.Close()
			return nil, err
		}
		for i, field := range s.fields {
			if v, ok := doc[field]; ok && v != nil {
				values[i] = fmt.Sprintf("%v", v)
			} else {
				values[i] = ""
			}
		}
		records = append(records, strings.Join(values, s.delimiter))
		doc = bson.M{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("reading records from collection %s: %v", s.collection, err)
	}
	return records, nil
}
