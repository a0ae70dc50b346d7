/*
Package yaml provides methods to parse feature.Catalog specifications,
also known as metadata, from YAML documents and to serialize them back.
*/
package yaml

import (
	"fmt"
	"os"

	"github.com/dilo00o/spark-dectree/feature"
	yaml "gopkg.in/yaml.v2"
)

type metadata struct {
	Features []featureSpec `yaml:"features"`
}

type featureSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

/*
ReadCatalog takes a slice of bytes with a feature specification in YML
and returns a catalog parsed from it or an error.
The YML is expected to be an object with a features property holding an
ordered list of objects with a name and a type of either 'numerical' or
'categorical'. The position of a feature on the list is its column
index on the data.
*/
func ReadCatalog(md []byte) (*feature.Catalog, error) {
	m := &metadata{}
	err := yaml.Unmarshal(md, m)
	if err != nil {
		return nil, fmt.Errorf("parsing yml features: %v", err)
	}
	if len(m.Features) == 0 {
		return nil, fmt.Errorf("metadata has no feature information")
	}
	features := make([]*feature.Feature, 0, len(m.Features))
	for i, fs := range m.Features {
		var typ feature.Type
		switch fs.Type {
		case "numerical":
			typ = feature.Numerical
		case "categorical":
			typ = feature.Categorical
		default:
			return nil, fmt.Errorf("feature %s declares invalid type %q", fs.Name, fs.Type)
		}
		features = append(features, feature.New(fs.Name, typ, i))
	}
	return feature.NewCatalog(features)
}

/*
ReadCatalogFromFile takes a filepath string, reads its contents and
uses ReadCatalog to parse it and return the catalog or an error.
*/
func ReadCatalogFromFile(filepath string) (*feature.Catalog, error) {
	md, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading features yml file %s: %v", filepath, err)
	}
	c, err := ReadCatalog(md)
	if err != nil {
		err = fmt.Errorf("parsing features yml file %s: %v", filepath, err)
	}
	return c, err
}

/*
WriteCatalog takes a catalog and returns a slice of bytes with its
specification serialized as YML, in the format ReadCatalog parses.
*/
func WriteCatalog(c *feature.Catalog) ([]byte, error) {
	m := &metadata{}
	for _, f := range c.Features() {
		m.Features = append(m.Features, featureSpec{Name: f.Name(), Type: f.Type().String()})
	}
	return yaml.Marshal(m)
}

/*
WriteCatalogToFile takes a catalog and a filepath string and writes the
catalog's YML specification to the file, creating or truncating it.
*/
func WriteCatalogToFile(c *feature.Catalog, filepath string) error {
	md, err := WriteCatalog(c)
	if err != nil {
		return fmt.Errorf("serializing features: %v", err)
	}
	err = os.WriteFile(filepath, md, 0644)
	if err != nil {
		return fmt.Errorf("writing features yml file %s: %v", filepath, err)
	}
	return nil
}
