/*
Package feature describes the schema of delimited training data: the
name, inferred type and positional index of every column.
*/
package feature

import (
	"fmt"
	"strconv"
	"strings"
)

/*
Type is the kind of values a feature can take: numerical features
take values parseable as real numbers, categorical features take any
other string value.
*/
type Type int

const (
	// Numerical identifies features whose values parse as real numbers
	Numerical Type = iota
	// Categorical identifies features whose values are arbitrary strings
	Categorical
)

func (t Type) String() string {
	if t == Numerical {
		return "numerical"
	}
	return "categorical"
}

/*
SchemaError is the kind of error returned for bad or missing feature
names, an absent sample record or a field-count mismatch on rename.
*/
type SchemaError string

func (e SchemaError) Error() string {
	return string(e)
}

func schemaErrorf(format string, a ...interface{}) SchemaError {
	return SchemaError(fmt.Sprintf(format, a...))
}

/*
Feature represents one column of the schema: a name, a type inferred
once from a sample record and the position of the column in the data.
The type and index of a feature never change; the name can be replaced
through the catalog's Rename.
*/
type Feature struct {
	name  string
	typ   Type
	index int
}

// New returns a feature with the given name, type and positional index.
func New(name string, typ Type, index int) *Feature {
	return &Feature{name: name, typ: typ, index: index}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return f.name
}

// Type returns the type of the feature.
func (f *Feature) Type() Type {
	return f.typ
}

// Index returns the position of the feature's column in the data.
func (f *Feature) Index() int {
	return f.index
}

func (f *Feature) String() string {
	return fmt.Sprintf("%s(%v)", f.name, f.typ)
}

/*
Catalog is the ordered sequence of features describing every column of
the source data, with unique indices 0..n-1. It is fixed once inferred,
except for name overrides through Rename.
*/
type Catalog struct {
	features []*Feature
	byName   map[string]int
}

/*
Infer takes a sample record and a delimiter, splits the record on the
delimiter and returns a catalog with one feature per field: fields
parseable as numbers become Numerical features, every other field
becomes a Categorical feature. Features are named "Column<i>" after
their position. It returns a SchemaError if the sample record is empty.
*/
func Infer(sampleRecord, delimiter string) (*Catalog, error) {
	if sampleRecord == "" {
		return nil, SchemaError("cannot infer schema from an empty sample record")
	}
	fields := strings.Split(sampleRecord, delimiter)
	features := make([]*Feature, 0, len(fields))
	for i, field := range fields {
		typ := Categorical
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err == nil {
			typ = Numerical
		}
		features = append(features, New(fmt.Sprintf("Column%d", i), typ, i))
	}
	return NewCatalog(features)
}

/*
NewCatalog takes a slice of features and returns a catalog with them,
or a SchemaError if the features' indices do not cover exactly the
positions 0..n-1 or a name is duplicated.
*/
func NewCatalog(features []*Feature) (*Catalog, error) {
	byName := make(map[string]int, len(features))
	for i, f := range features {
		if f.index != i {
			return nil, schemaErrorf("feature %s has index %d at position %d", f.name, f.index, i)
		}
		if _, taken := byName[f.name]; taken {
			return nil, schemaErrorf("duplicate feature name %s", f.name)
		}
		byName[f.name] = i
	}
	return &Catalog{features: features, byName: byName}, nil
}

// Len returns the number of features in the catalog.
func (c *Catalog) Len() int {
	return len(c.features)
}

// Feature returns the feature at the given index or nil if the index
// is out of range.
func (c *Catalog) Feature(index int) *Feature {
	if index < 0 || index >= len(c.features) {
		return nil
	}
	return c.features[index]
}

// Lookup returns the feature with the given name and whether it exists.
func (c *Catalog) Lookup(name string) (*Feature, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.features[i], true
}

// Features returns the catalog's features in positional order.
func (c *Catalog) Features() []*Feature {
	return c.features
}

/*
Rename replaces the names of all features in the catalog, keeping
types and indices untouched. It returns a SchemaError if the number of
given names does not match the number of features in the catalog.
*/
func (c *Catalog) Rename(names []string) error {
	if len(names) != len(c.features) {
		return schemaErrorf("renaming features: got %d names for %d features", len(names), len(c.features))
	}
	byName := make(map[string]int, len(names))
	for i, name := range names {
		if _, taken := byName[name]; taken {
			return schemaErrorf("renaming features: duplicate name %s", name)
		}
		byName[name] = i
	}
	for i, name := range names {
		c.features[i].name = name
	}
	c.byName = byName
	return nil
}

/*
Resolve takes the names of the predictor features and the name of the
target feature and returns their indices. An empty target name selects
the last feature of the catalog; an empty predictor list selects every
feature except the target. It returns a SchemaError if a named feature
does not exist in the catalog.
*/
func (c *Catalog) Resolve(xNames []string, yName string) (xIndices []int, yIndex int, err error) {
	if len(c.features) == 0 {
		return nil, 0, SchemaError("cannot resolve features on an empty catalog")
	}
	if yName == "" {
		yIndex = len(c.features) - 1
	} else {
		f, ok := c.Lookup(yName)
		if !ok {
			return nil, 0, schemaErrorf("target feature %s is not defined", yName)
		}
		yIndex = f.Index()
	}
	if len(xNames) == 0 {
		for i := range c.features {
			if i != yIndex {
				xIndices = append(xIndices, i)
			}
		}
		return xIndices, yIndex, nil
	}
	for _, name := range xNames {
		f, ok := c.Lookup(name)
		if !ok {
			return nil, 0, schemaErrorf("predictor feature %s is not defined", name)
		}
		if f.Index() != yIndex {
			xIndices = append(xIndices, f.Index())
		}
	}
	return xIndices, yIndex, nil
}
