package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultTopN is the sample size requested when the dashboard starts.
const DefaultTopN = 5

// DataPoint is one ranked entity and its metric.
type DataPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// CloneDataset returns a copy of data that shares no backing array with it.
func CloneDataset(data []DataPoint) []DataPoint {
	out := make([]DataPoint, len(data))
	copy(out, data)
	return out
}

// TopN is the user-tunable sample size. It keeps the raw text the user
// typed; numeric text is sent to the data source as a JSON number and
// anything else is passed through untouched.
type TopN struct {
	raw string
}

// NewTopN returns a TopN holding n.
func NewTopN(n int) TopN {
	return TopN{raw: strconv.Itoa(n)}
}

// ParseTopN wraps raw input from the N field. No floor is enforced.
func ParseTopN(raw string) TopN {
	return TopN{raw: raw}
}

func (t TopN) String() string {
	return t.raw
}

// Int returns N as an integer when the raw text is a whole number.
func (t TopN) Int() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(t.raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float returns N as a number when the raw text is numeric.
func (t TopN) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(t.raw), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// MarshalJSON coerces numeric text to a JSON number.
func (t TopN) MarshalJSON() ([]byte, error) {
	if f, ok := t.Float(); ok {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return json.Marshal(t.raw)
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (t *TopN) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	t.raw = n.String()
	return nil
}

// TopUsersRequest is the body of POST /top-users.
type TopUsersRequest struct {
	TopN TopN `json:"topN"`
}
