/*
Package engine defines the interface of the distributed execution
engine the tree builders delegate their data-parallel passes to, and
provides an in-process implementation of it.

Datasets are partitioned collections of raw delimited records, one
record per line. All heavy computation is expressed as transformations
over datasets: mapping records, sampling them and, once per growth
level, grouping every record by the tree position it is currently
routed to and aggregating per-position statistics. Callers see each
pass as an opaque synchronous call; whatever parallelism an engine
implementation has happens across its partitions.
*/
package engine

import "context"

// EngineError is the kind of error returned for dataset-level faults,
// such as asking for the first record of an empty dataset.
type EngineError string

func (e EngineError) Error() string {
	return string(e)
}

// ErrEmptyDataset is returned when an operation requires at least one
// record and the dataset has none.
const ErrEmptyDataset = EngineError("dataset is empty")

/*
Engine represents the execution engine datasets are loaded into.
*/
type Engine interface {
	// Load reads the file at the given path and returns a dataset
	// with one record per line.
	Load(ctx context.Context, path string) (Dataset, error)
	// FromLines returns a dataset with the given records.
	FromLines(ctx context.Context, lines []string) (Dataset, error)
	// FromSource drains the given source and returns a dataset with
	// its records.
	FromSource(ctx context.Context, src Source) (Dataset, error)
}

/*
Source is an interface for collaborators that can produce raw
delimited records from some external backend, such as a database
table or collection.
*/
type Source interface {
	Records(ctx context.Context) ([]string, error)
}

// KeyFunc maps a record to the int64 key it is grouped under during
// an AggregateByKey pass. A false boolean excludes the record from
// the pass.
type KeyFunc func(record string) (int64, bool)

/*
Accumulator is the per-key aggregate contract of AggregateByKey:
records of a key are fed to an accumulator with Add, and accumulators
of the same key built on different partitions are combined with Merge.
Implementations do not need to be safe for concurrent use; the engine
never shares one accumulator between partitions.
*/
type Accumulator interface {
	Add(record string) error
	Merge(o Accumulator) error
}

/*
Dataset represents a partitioned collection of records held by an
engine.
*/
type Dataset interface {
	// First returns the first record of the dataset or
	// ErrEmptyDataset.
	First(ctx context.Context) (string, error)
	// Count returns the number of records in the dataset.
	Count(ctx context.Context) (int, error)
	// Collect returns all records, preserving order within
	// partitions.
	Collect(ctx context.Context) ([]string, error)
	// Map returns a dataset with fn applied to every record, one
	// output record per input record, preserving order within
	// partitions.
	Map(ctx context.Context, fn func(record string) (string, error)) (Dataset, error)
	// AggregateByKey groups records by the key function and folds
	// the records of each key into one accumulator built by newAcc.
	// Records the key function excludes take no part in the pass.
	AggregateByKey(ctx context.Context, key KeyFunc, newAcc func() Accumulator) (map[int64]Accumulator, error)
	// Sample returns a dataset of n records drawn from this one with
	// replacement, deterministically for a given seed.
	Sample(ctx context.Context, n int, seed int64) (Dataset, error)
	// Cache pins the dataset on the engine's memory or storage tier
	// to amortize repeated passes over it.
	Cache(ctx context.Context) error
	// Uncache releases a pinned dataset.
	Uncache(ctx context.Context) error
}
