package model

import (
	"encoding/json"
	"math"
)

// Metric is a numeric statistic that may be undefined.
// Undefined is distinct from zero and is encoded as JSON null.
type Metric float64

// Undefined marks a statistic that has no data behind it
var Undefined = Metric(math.NaN())

// Defined reports whether the metric carries a value
func (m Metric) Defined() bool {
	return !math.IsNaN(float64(m)) && !math.IsInf(float64(m), 0)
}

// Float returns the raw value (NaN when undefined)
func (m Metric) Float() float64 {
	return float64(m)
}

// MarshalJSON encodes undefined metrics as null
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(m))
}

// UnmarshalJSON decodes null as Undefined
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Undefined
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Metric(f)
	return nil
}
