package engine

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
)

type localEngine struct {
	partitions int
}

/*
NewLocal returns an implementation of Engine with the process memory
space as underlying backend. Datasets are split into the given number
of contiguous partitions and every AggregateByKey or Map pass fans out
one goroutine per partition.
*/
func NewLocal(partitions int) Engine {
	if partitions < 1 {
		partitions = 1
	}
	return &localEngine{partitions: partitions}
}

type localDataset struct {
	engine *localEngine
	parts  [][]string
}

func (e *localEngine) Load(ctx context.Context, path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading dataset from %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loading dataset from %s: %v", path, err)
	}
	return e.FromLines(ctx, lines)
}

func (e *localEngine) FromLines(ctx context.Context, lines []string) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &localDataset{engine: e, parts: e.partition(lines)}, nil
}

func (e *localEngine) FromSource(ctx context.Context, src Source) (Dataset, error) {
	lines, err := src.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dataset from source: %v", err)
	}
	return e.FromLines(ctx, lines)
}

// partition splits records into contiguous chunks so that
// concatenating the partitions in order preserves the record order of
// the input.
func (e *localEngine) partition(lines []string) [][]string {
	n := e.partitions
	if n > len(lines) && len(lines) > 0 {
		n = len(lines)
	}
	parts := make([][]string, 0, n)
	if len(lines) == 0 {
		return append(parts, nil)
	}
	size := (len(lines) + n - 1) / n
	for start := 0; start < len(lines); start += size {
		end := start + size
		if end > len(lines) {
			end = len(lines)
		}
		parts = append(parts, lines[start:end])
	}
	return parts
}

func (d *localDataset) First(ctx context.Context) (string, error) {
	for _, part := range d.parts {
		if len(part) > 0 {
			return part[0], nil
		}
	}
	return "", ErrEmptyDataset
}

func (d *localDataset) Count(ctx context.Context) (int, error) {
	var count int
	for _, part := range d.parts {
		count += len(part)
	}
	return count, nil
}

func (d *localDataset) Collect(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var lines []string
	for _, part := range d.parts {
		lines = append(lines, part...)
	}
	return lines, nil
}

func (d *localDataset) Map(ctx context.Context, fn func(string) (string, error)) (Dataset, error) {
	mapped := make([][]string, len(d.parts))
	errs := make(chan error, len(d.parts))
	wg := &sync.WaitGroup{}
	for i, part := range d.parts {
		wg.Add(1)
		go func(i int, part []string) {
			defer wg.Done()
			out := make([]string, len(part))
			for j, record := range part {
				if err := ctx.Err(); err != nil {
					errs <- err
					return
				}
				result, err := fn(record)
				if err != nil {
					errs <- err
					return
				}
				out[j] = result
			}
			mapped[i] = out
		}(i, part)
	}
	wg.Wait()
	select {
	case err := <-errs:
		return nil, err
	default:
	}
	return &localDataset{engine: d.engine, parts: mapped}, nil
}

func (d *localDataset) AggregateByKey(ctx context.Context, key KeyFunc, newAcc func() Accumulator) (map[int64]Accumulator, error) {
	partial := make([]map[int64]Accumulator, len(d.parts))
	errs := make(chan error, len(d.parts))
	wg := &sync.WaitGroup{}
	for i, part := range d.parts {
		wg.Add(1)
		go func(i int, part []string) {
			defer wg.Done()
			accs := make(map[int64]Accumulator)
			for _, record := range part {
				if err := ctx.Err(); err != nil {
					errs <- err
					return
				}
				k, ok := key(record)
				if !ok {
					continue
				}
				acc := accs[k]
				if acc == nil {
					acc = newAcc()
					accs[k] = acc
				}
				if err := acc.Add(record); err != nil {
					errs <- err
					return
				}
			}
			partial[i] = accs
		}(i, part)
	}
	wg.Wait()
	select {
	case err := <-errs:
		return nil, err
	default:
	}
	result := make(map[int64]Accumulator)
	for _, accs := range partial {
		for k, acc := range accs {
			if merged, ok := result[k]; ok {
				if err := merged.Merge(acc); err != nil {
					return nil, err
				}
			} else {
				result[k] = acc
			}
		}
	}
	return result, nil
}

func (d *localDataset) Sample(ctx context.Context, n int, seed int64) (Dataset, error) {
	lines, err := d.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyDataset
	}
	r := rand.New(rand.NewSource(seed))
	sampled := make([]string, 0, n)
	for i := 0; i < n; i++ {
		sampled = append(sampled, lines[r.Intn(len(lines))])
	}
	return d.engine.FromLines(ctx, sampled)
}

// Local datasets live in process memory and are always materialized,
// so pinning and releasing them needs no work.
func (d *localDataset) Cache(ctx context.Context) error {
	return nil
}

func (d *localDataset) Uncache(ctx context.Context) error {
	return nil
}
