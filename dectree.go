/*
Package dectree grows decision trees, and random forests of them, from
tabular training records partitioned across an execution engine, and
uses the resulting trees to classify or regress unseen records.

A tree is grown level by level: the grower asks a splitting strategy to
compute, in one data-parallel pass over all records grouped by the tree
position each record is currently routed to, the best split or stop
decision for every open position, then assembles the resulting nodes
into the model by their integer IDs. The loop ends when no position
remains open. Models can be checkpointed mid-build and resumed later.
*/
package dectree

import "fmt"

/*
Logger is an interface wrapping the Logf method, used by growers to
report per-node incidents and progress. The default logger discards
everything; commands wire a verbose stderr logger.
*/
type Logger interface {
	Logf(format string, a ...interface{})
}

type noopLogger struct{}

func (noopLogger) Logf(string, ...interface{}) {}

/*
BuildError is the kind of error returned when a build is invoked
before its training data is set, or when the target feature cannot be
resolved.
*/
type BuildError string

func (e BuildError) Error() string {
	return string(e)
}

func buildErrorf(format string, a ...interface{}) BuildError {
	return BuildError(fmt.Sprintf(format, a...))
}

/*
DataError is the kind of error returned when the supplied training
dataset is empty or absent.
*/
type DataError string

func (e DataError) Error() string {
	return string(e)
}
