package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dilo00o/spark-dectree/tree"
)

/*
WriteModels takes a context, a slice of models and an io.Writer and
serializes the models as a JSON array onto the writer, in order. It is
used to persist the member trees of a forest.
*/
func WriteModels(ctx context.Context, models []*tree.Model, w io.Writer) error {
	if _, err := w.Write([]byte("[")); err != nil {
		return err
	}
	for i, m := range models {
		if i != 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		if err := WriteModel(ctx, m, w); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("]\n"))
	return err
}

/*
ReadModels takes a context and an io.Reader and returns the models
decoded from the JSON array on the reader, in order.
*/
func ReadModels(ctx context.Context, r io.Reader) ([]*tree.Model, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding models: %v", err)
	}
	models := make([]*tree.Model, 0, len(raw))
	for i, rm := range raw {
		m, err := readRawModel(ctx, rm)
		if err != nil {
			return nil, fmt.Errorf("decoding model %d: %v", i, err)
		}
		models = append(models, m)
	}
	return models, nil
}
