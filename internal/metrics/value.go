package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is one slot of a series: either a logged scalar or the absent marker.
// The zero Value is absent, so a logged 0 is never confused with a gap.
type Value struct {
	Float float64
	Valid bool
}

// Absent marks a step that was never written for a metric.
var Absent = Value{}

// Of returns a present value.
func Of(f float64) Value {
	return Value{Float: f, Valid: true}
}

// IsAbsent reports whether v is the absent marker.
func (v Value) IsAbsent() bool {
	return !v.Valid
}

// String renders the value the way it appears in logs.json.
func (v Value) String() string {
	if !v.Valid {
		return "null"
	}
	return strconv.FormatFloat(v.Float, 'g', -1, 64)
}

// MarshalJSON encodes absent as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
		return nil, fmt.Errorf("%w: %v", ErrNonFinite, v.Float)
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON decodes null as absent.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Absent
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}

// Series is the step-indexed sequence of one metric.
type Series []Value

// Points returns the steps and values of all present entries, in step order.
func (s Series) Points() ([]int, []float64) {
	var steps []int
	var values []float64
	for i, v := range s {
		if v.Valid {
			steps = append(steps, i)
			values = append(values, v.Float)
		}
	}
	return steps, values
}

// Count returns the number of present entries.
func (s Series) Count() int {
	n := 0
	for _, v := range s {
		if v.Valid {
			n++
		}
	}
	return n
}

// Latest returns the last present entry and its step.
func (s Series) Latest() (step int, value float64, ok bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Valid {
			return i, s[i].Float, true
		}
	}
	return 0, 0, false
}
