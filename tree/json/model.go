/*
Package json serializes tree models as JSON documents and provides a
file-backed tree.ModelStore.

A model is serialized as an object with the catalog's feature
specifications, the resolved predictor and target indices, the build
parameters, the completeness flag and a flat array of the decided
nodes in ascending ID order. Because node IDs encode positions,
parents always precede their children on the array and the tree can be
reassembled by attaching nodes in order. Decoding ignores unknown
fields, so snapshots written by structurally newer encoders still load
as long as the fields here keep their meaning.
*/
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dilo00o/spark-dectree/feature"
	"github.com/dilo00o/spark-dectree/tree"
)

type jsonModel struct {
	Features      []jsonFeature `json:"features"`
	XIndices      []int         `json:"xIndices"`
	YIndex        int           `json:"yIndex"`
	MinSplit      int           `json:"minSplit"`
	CVThreshold   float64       `json:"cvThreshold"`
	MaxDepth      int           `json:"maxDepth"`
	MaxComplexity float64       `json:"maxComplexity"`
	Delimiter     string        `json:"delimiter"`
	Complete      bool          `json:"complete"`
	Nodes         []*jsonNode   `json:"nodes"`
}

type jsonFeature struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonNode struct {
	ID    int64      `json:"id"`
	Value string     `json:"v,omitempty"`
	Stats *jsonStats `json:"stats,omitempty"`
	Split *jsonSplit `json:"split,omitempty"`
}

type jsonStats struct {
	Numeric     bool           `json:"numeric,omitempty"`
	Count       int            `json:"n"`
	Sum         float64        `json:"sum,omitempty"`
	SquareSum   float64        `json:"sqSum,omitempty"`
	ClassCounts map[string]int `json:"classes,omitempty"`
}

type jsonSplit struct {
	FeatureIndex int     `json:"f"`
	Threshold    float64 `json:"t,omitempty"`
	Category     string  `json:"c,omitempty"`
}

/*
WriteModel takes a context, a model and an io.Writer and serializes
the model as JSON onto the writer. An error is returned if the model
cannot be traversed or written.
*/
func WriteModel(ctx context.Context, m *tree.Model, w io.Writer) error {
	jm := &jsonModel{
		XIndices:      m.XIndices,
		YIndex:        m.YIndex,
		MinSplit:      m.MinSplit,
		CVThreshold:   m.CVThreshold,
		MaxDepth:      m.MaxDepth,
		MaxComplexity: m.MaxComplexity,
		Delimiter:     m.Delimiter,
		Complete:      m.Complete,
	}
	if m.Catalog != nil {
		for _, f := range m.Catalog.Features() {
			jm.Features = append(jm.Features, jsonFeature{Name: f.Name(), Type: f.Type().String()})
		}
	}
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		if n == nil {
			return
		}
		jm.Nodes = append(jm.Nodes, encodeNode(n))
		walk(n.Left)
		walk(n.Right)
	}
	walk(m.Root)
	sort.Slice(jm.Nodes, func(i, j int) bool { return jm.Nodes[i].ID < jm.Nodes[j].ID })
	if err := ctx.Err(); err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(jm)
}

/*
ReadModel takes a context and an io.Reader and returns the model
decoded from the JSON document on the reader. An error is returned if
the document cannot be decoded or describes a malformed tree.
*/
func ReadModel(ctx context.Context, r io.Reader) (*tree.Model, error) {
	jm := &jsonModel{}
	if err := json.NewDecoder(r).Decode(jm); err != nil {
		return nil, fmt.Errorf("decoding model: %v", err)
	}
	return decodeModel(ctx, jm)
}

func readRawModel(ctx context.Context, data []byte) (*tree.Model, error) {
	jm := &jsonModel{}
	if err := json.Unmarshal(data, jm); err != nil {
		return nil, fmt.Errorf("decoding model: %v", err)
	}
	return decodeModel(ctx, jm)
}

func decodeModel(ctx context.Context, jm *jsonModel) (*tree.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := &tree.Model{
		XIndices:      jm.XIndices,
		YIndex:        jm.YIndex,
		MinSplit:      jm.MinSplit,
		CVThreshold:   jm.CVThreshold,
		MaxDepth:      jm.MaxDepth,
		MaxComplexity: jm.MaxComplexity,
		Delimiter:     jm.Delimiter,
		Complete:      jm.Complete,
	}
	if len(jm.Features) > 0 {
		features := make([]*feature.Feature, 0, len(jm.Features))
		for i, jf := range jm.Features {
			typ := feature.Categorical
			if jf.Type == feature.Numerical.String() {
				typ = feature.Numerical
			}
			features = append(features, feature.New(jf.Name, typ, i))
		}
		catalog, err := feature.NewCatalog(features)
		if err != nil {
			return nil, fmt.Errorf("decoding model catalog: %v", err)
		}
		m.Catalog = catalog
	}
	sort.Slice(jm.Nodes, func(i, j int) bool { return jm.Nodes[i].ID < jm.Nodes[j].ID })
	for _, jn := range jm.Nodes {
		if err := m.Attach(tree.ID(jn.ID), decodeNode(jn)); err != nil {
			return nil, fmt.Errorf("decoding model: %v", err)
		}
	}
	return m, nil
}

func encodeNode(n *tree.Node) *jsonNode {
	jn := &jsonNode{ID: int64(n.ID), Value: n.Value}
	if n.Stats != nil {
		jn.Stats = &jsonStats{
			Numeric:     n.Stats.Numeric,
			Count:       n.Stats.Count,
			Sum:         n.Stats.Sum,
			SquareSum:   n.Stats.SquareSum,
			ClassCounts: n.Stats.ClassCounts,
		}
	}
	if n.Split != nil {
		jn.Split = &jsonSplit{
			FeatureIndex: n.Split.FeatureIndex,
			Threshold:    n.Split.Threshold,
			Category:     n.Split.Category,
		}
	}
	return jn
}

func decodeNode(jn *jsonNode) *tree.Node {
	n := &tree.Node{ID: tree.ID(jn.ID), Value: jn.Value}
	if jn.Stats != nil {
		n.Stats = &tree.Stats{
			Numeric:     jn.Stats.Numeric,
			Count:       jn.Stats.Count,
			Sum:         jn.Stats.Sum,
			SquareSum:   jn.Stats.SquareSum,
			ClassCounts: jn.Stats.ClassCounts,
		}
		if n.Stats.ClassCounts == nil && !n.Stats.Numeric {
			n.Stats.ClassCounts = make(map[string]int)
		}
	}
	if jn.Split != nil {
		n.Split = &tree.SplitPoint{
			FeatureIndex: jn.Split.FeatureIndex,
			Threshold:    jn.Split.Threshold,
			Category:     jn.Split.Category,
		}
	}
	return n
}
