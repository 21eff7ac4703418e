// Package metrics implements the step-indexed metric store.
//
// A Log maps metric names to series where the slice index is the training
// step. Writes are sparse: writing step 3 to an empty series pads steps 0..2
// with the absent marker, so a step that was never written always reads back
// as absent rather than zero.
package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	// ErrNegativeStep is returned when a write targets a step below zero.
	ErrNegativeStep = errors.New("step must be non-negative")

	// ErrNonFinite is returned for NaN or infinite values, which logs.json cannot hold.
	ErrNonFinite = errors.New("value must be finite")
)

// UncategorizedGroup holds metrics whose names have no "/" separator.
const UncategorizedGroup = "uncategorized"

// Log is the in-memory metric store. It is not safe for concurrent use.
type Log struct {
	series map[string]Series
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{series: make(map[string]Series)}
}

// Set writes every value in data at step, overwriting whatever the step held.
// The call is all-or-nothing: on error the log is unchanged.
func (l *Log) Set(data map[string]float64, step int) error {
	if step < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeStep, step)
	}
	for key, value := range data {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: %s=%v", ErrNonFinite, key, value)
		}
	}

	if l.series == nil {
		l.series = make(map[string]Series)
	}
	for key, value := range data {
		s := l.series[key]
		if len(s) <= step {
			s = append(s, make(Series, step-len(s)+1)...)
		}
		s[step] = Of(value)
		l.series[key] = s
	}
	return nil
}

// NextStep is the legacy implicit step: the length of the longest series.
// It is only meaningful when every metric is logged in lockstep; with sparse
// metrics callers must pass explicit steps instead.
func (l *Log) NextStep() int {
	return l.MaxLen()
}

// At returns the value of a metric at step. ok is false for unknown metrics,
// steps past the end of the series, and absent entries.
func (l *Log) At(name string, step int) (value float64, ok bool) {
	s, found := l.series[name]
	if !found || step < 0 || step >= len(s) {
		return 0, false
	}
	v := s[step]
	return v.Float, v.Valid
}

// Series returns a copy of the named series, or nil if it does not exist.
func (l *Log) Series(name string) Series {
	s, ok := l.series[name]
	if !ok {
		return nil
	}
	return append(Series(nil), s...)
}

// Has reports whether the metric exists.
func (l *Log) Has(name string) bool {
	_, ok := l.series[name]
	return ok
}

// Names returns all metric names, sorted.
func (l *Log) Names() []string {
	names := make([]string, 0, len(l.series))
	for name := range l.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of metrics.
func (l *Log) Len() int {
	return len(l.series)
}

// MaxLen returns the length of the longest series.
func (l *Log) MaxLen() int {
	n := 0
	for _, s := range l.series {
		if len(s) > n {
			n = len(s)
		}
	}
	return n
}

// Points returns the present (step, value) pairs of a metric.
func (l *Log) Points(name string) ([]int, []float64) {
	return l.series[name].Points()
}

// StepRecord returns the metrics that hold a present value at step.
// Absent metrics are left out entirely.
func (l *Log) StepRecord(step int) map[string]float64 {
	record := make(map[string]float64)
	for name, s := range l.series {
		if step >= 0 && step < len(s) && s[step].Valid {
			record[name] = s[step].Float
		}
	}
	return record
}

// Clone returns a deep copy.
func (l *Log) Clone() *Log {
	c := NewLog()
	for name, s := range l.series {
		c.series[name] = append(Series(nil), s...)
	}
	return c
}

// Group is a set of metrics sharing the prefix before their first "/".
type Group struct {
	Name    string
	Metrics []string
}

// GroupOf returns the group a metric name belongs to.
func GroupOf(name string) string {
	prefix, _, found := strings.Cut(name, "/")
	if !found {
		return UncategorizedGroup
	}
	return prefix
}

// Groups buckets metric names by prefix. Groups and their members are sorted.
func (l *Log) Groups() []Group {
	byName := make(map[string][]string)
	for _, name := range l.Names() {
		g := GroupOf(name)
		byName[g] = append(byName[g], name)
	}

	groups := make([]Group, 0, len(byName))
	for name, members := range byName {
		groups = append(groups, Group{Name: name, Metrics: members})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// MarshalJSON encodes the log as {"name": [value|null, ...]}.
func (l *Log) MarshalJSON() ([]byte, error) {
	if l.series == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(l.series)
}

// UnmarshalJSON replaces the log contents. null entries become absent.
func (l *Log) UnmarshalJSON(data []byte) error {
	series := make(map[string]Series)
	if err := json.Unmarshal(data, &series); err != nil {
		return err
	}
	for name, s := range series {
		if s == nil {
			series[name] = Series{}
		}
	}
	l.series = series
	return nil
}
