package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

/*
Stats is the aggregate of target values observed on the records routed
to one node. It is sufficient to compute the node's predicted value, to
evaluate the stopping criteria and to resume an interrupted build
without re-scanning the records of the node's ancestry.

For numerical targets it accumulates count, sum and sum of squares; for
categorical targets it accumulates the per-class record counts.
*/
type Stats struct {
	Numeric     bool
	Count       int
	Sum         float64
	SquareSum   float64
	ClassCounts map[string]int
}

// NewStats returns empty statistics for a numerical or categorical
// target.
func NewStats(numeric bool) *Stats {
	s := &Stats{Numeric: numeric}
	if !numeric {
		s.ClassCounts = make(map[string]int)
	}
	return s
}

/*
Add accumulates one target value. It returns an error if the target is
numerical and the value cannot be parsed.
*/
func (s *Stats) Add(value string) error {
	if s.Numeric {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("accumulating target value: %v", err)
		}
		s.Count++
		s.Sum += v
		s.SquareSum += v * v
		return nil
	}
	s.Count++
	s.ClassCounts[value]++
	return nil
}

// Merge accumulates another aggregate into this one.
func (s *Stats) Merge(o *Stats) {
	if o == nil {
		return
	}
	s.Count += o.Count
	s.Sum += o.Sum
	s.SquareSum += o.SquareSum
	for class, count := range o.ClassCounts {
		s.ClassCounts[class] += count
	}
}

// Mean returns the mean of the accumulated numerical target values.
func (s *Stats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Variance returns the variance of the accumulated numerical target
// values.
func (s *Stats) Variance() float64 {
	if s.Count == 0 {
		return 0
	}
	mean := s.Mean()
	v := s.SquareSum/float64(s.Count) - mean*mean
	if v < 0 {
		v = 0
	}
	return v
}

/*
CV returns the coefficient of variation of the accumulated numerical
target values, the ratio of their standard deviation to their mean. A
zero mean with spread values yields +Inf; a zero mean without spread
yields 0.
*/
func (s *Stats) CV() float64 {
	sd := math.Sqrt(s.Variance())
	if sd == 0 {
		return 0
	}
	mean := s.Mean()
	if mean == 0 {
		return math.Inf(1)
	}
	return sd / math.Abs(mean)
}

/*
Majority returns the most frequent class among the accumulated
categorical target values and its count. Ties resolve to the
lexicographically smallest class so the result is deterministic.
*/
func (s *Stats) Majority() (string, int) {
	var class string
	var count int
	for c, n := range s.ClassCounts {
		if n > count || (n == count && (class == "" || c < class)) {
			class = c
			count = n
		}
	}
	return class, count
}

// Entropy returns the entropy of the accumulated class distribution.
func (s *Stats) Entropy() float64 {
	if s.Count == 0 {
		return 0
	}
	var result float64
	total := float64(s.Count)
	for _, n := range s.ClassCounts {
		if n == 0 {
			continue
		}
		p := float64(n) / total
		result -= p * math.Log2(p)
	}
	return result
}

// Gini returns the Gini impurity of the accumulated class
// distribution.
func (s *Stats) Gini() float64 {
	if s.Count == 0 {
		return 0
	}
	result := 1.0
	total := float64(s.Count)
	for _, n := range s.ClassCounts {
		p := float64(n) / total
		result -= p * p
	}
	return result
}

/*
Predicted returns the value a leaf with these statistics predicts: the
mean for numerical targets, the majority class for categorical ones.
*/
func (s *Stats) Predicted() string {
	if s.Numeric {
		return strconv.FormatFloat(s.Mean(), 'g', -1, 64)
	}
	class, _ := s.Majority()
	return class
}

func (s *Stats) String() string {
	if s.Numeric {
		return fmt.Sprintf("{n: %d mean: %g var: %g}", s.Count, s.Mean(), s.Variance())
	}
	return fmt.Sprintf("{n: %d classes: %v}", s.Count, s.ClassCounts)
}
