package json

import (
	"context"
	"fmt"
	"os"

	"github.com/dilo00o/spark-dectree/tree"
)

type fileStore struct{}

/*
NewFileStore returns an implementation of tree.ModelStore with the
filesystem as underlying backend: keys are file paths and each model
is stored as one JSON document.
*/
func NewFileStore() tree.ModelStore {
	return &fileStore{}
}

func (fs *fileStore) Save(ctx context.Context, key string, m *tree.Model) error {
	f, err := os.Create(key)
	if err != nil {
		return fmt.Errorf("saving model to %s: %v", key, err)
	}
	defer f.Close()
	err = WriteModel(ctx, m, f)
	if err != nil {
		return fmt.Errorf("saving model to %s: %v", key, err)
	}
	return nil
}

func (fs *fileStore) Load(ctx context.Context, key string) (*tree.Model, error) {
	f, err := os.Open(key)
	if err != nil {
		return nil, fmt.Errorf("loading model from %s: %v", key, err)
	}
	defer f.Close()
	m, err := ReadModel(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("loading model from %s: %v", key, err)
	}
	return m, nil
}
