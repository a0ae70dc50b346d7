/*
Package redisstore provides an implementation of tree.ModelStore with a
redis DB as underlying backend, useful to checkpoint long-running
builds somewhere workers and drivers on other machines can reach.
*/
package redisstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dilo00o/spark-dectree/tree"
	treejson "github.com/dilo00o/spark-dectree/tree/json"
	"gopkg.in/redis.v5"
)

type redisStore struct {
	rc     *redis.Client
	prefix string
}

// New builds a tree.ModelStore backed by a redis DB. Models are stored
// as JSON documents under keys prefixed with the given prefix.
func New(rc *redis.Client, prefix string) tree.ModelStore {
	return &redisStore{rc: rc, prefix: prefix}
}

func (rs *redisStore) Save(ctx context.Context, key string, m *tree.Model) error {
	var buf bytes.Buffer
	err := treejson.WriteModel(ctx, m, &buf)
	if err != nil {
		return fmt.Errorf("saving model %q: encoding model: %v", key, err)
	}
	_, err = rs.rc.Set(rs.keyFor(key), buf.Bytes(), 0).Result()
	if err != nil {
		return fmt.Errorf("saving model %q in redis: %v", key, err)
	}
	return nil
}

func (rs *redisStore) Load(ctx context.Context, key string) (*tree.Model, error) {
	data, err := rs.rc.Get(rs.keyFor(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("loading model %q from redis: %v", key, err)
	}
	m, err := treejson.ReadModel(ctx, strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loading model %q: %v", key, err)
	}
	return m, nil
}

func (rs *redisStore) keyFor(key string) string {
	return fmt.Sprintf("%s:model:%s", rs.prefix, key)
}
