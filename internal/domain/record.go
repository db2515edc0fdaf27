// Package domain holds the ATIP record types, ranking metrics and the error
// taxonomy shared by every layer.
package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Record is a JSON object exactly as the ATIP API returned it. Records are
// never mutated; fields are read through Lookup so that renamed or unexpected
// keys survive untouched.
type Record struct {
	raw []byte
}

// NewRecord wraps raw JSON in a Record. The bytes are copied.
func NewRecord(raw []byte) Record {
	return Record{raw: bytes.Clone(raw)}
}

// RecordFromMap builds a Record from a Go map. It is mostly useful in tests.
func RecordFromMap(m map[string]any) Record {
	b, err := json.Marshal(m)
	if err != nil {
		return Record{}
	}
	return Record{raw: b}
}

// Raw returns the underlying JSON.
func (r Record) Raw() json.RawMessage {
	if len(r.raw) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(r.raw)
}

// IsZero reports whether the record is empty, null or not an object.
func (r Record) IsZero() bool {
	if len(r.raw) == 0 {
		return true
	}
	res := gjson.ParseBytes(r.raw)
	return !res.IsObject() || len(res.Map()) == 0
}

// Lookup returns the first key that holds a present value. When none of the
// keys are present the returned Value reports Present() == false.
func (r Record) Lookup(keys ...string) Value {
	if len(r.raw) == 0 {
		return Value{}
	}
	for _, key := range keys {
		v := Value{res: gjson.GetBytes(r.raw, key)}
		if v.Present() {
			return v
		}
	}
	return Value{}
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.Raw(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(b []byte) error {
	r.raw = bytes.Clone(b)
	return nil
}

// AuthorRecord is an author as served by /authors endpoints.
type AuthorRecord struct{ Record }

// PaperRecord is a paper as served by /papers and /authors/{id}/papers.
type PaperRecord struct{ Record }

// RankingEntry is an author record carrying a metric-specific score. Its
// position is the index within the fetched page.
type RankingEntry struct{ Record }

// CoauthorEdge pairs a co-author with the number of papers written together.
type CoauthorEdge struct{ Record }

// StatsOverview holds aggregate counts from /stats/overview.
type StatsOverview struct{ Record }

// Value is a single field read from a Record.
type Value struct {
	res gjson.Result
}

// StringValue returns a present Value holding s. It is mostly useful in tests.
func StringValue(s string) Value {
	return Value{res: gjson.Result{Type: gjson.String, Str: s, Raw: strconv.Quote(s)}}
}

// NumberValue returns a present Value holding f.
func NumberValue(f float64) Value {
	raw := strconv.FormatFloat(f, 'f', -1, 64)
	return Value{res: gjson.Result{Type: gjson.Number, Num: f, Raw: raw}}
}

// Present reports whether the value exists and is neither null nor an empty
// string.
func (v Value) Present() bool {
	if !v.res.Exists() {
		return false
	}
	switch v.res.Type {
	case gjson.Null:
		return false
	case gjson.String:
		return strings.TrimSpace(v.res.Str) != ""
	}
	return true
}

// String returns the value as text. Whole numbers are printed without a
// fractional part.
func (v Value) String() string {
	if !v.Present() {
		return ""
	}
	switch v.res.Type {
	case gjson.Number:
		return FormatNumber(v.res.Num)
	case gjson.String:
		return strings.TrimSpace(v.res.Str)
	}
	return v.res.String()
}

// IsNumber reports whether the value is a JSON number.
func (v Value) IsNumber() bool {
	return v.res.Type == gjson.Number
}

var leadingNumber = regexp.MustCompile(`^\s*[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?`)

// Float returns the numeric content of the value. Strings are parsed by their
// leading number, so "12 years" yields 12. The boolean is false when no
// number can be read.
func (v Value) Float() (float64, bool) {
	if !v.Present() {
		return 0, false
	}
	switch v.res.Type {
	case gjson.Number:
		return v.res.Num, true
	case gjson.String:
		m := leadingNumber.FindString(v.res.Str)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Array returns the elements of an array value, or nil.
func (v Value) Array() []Value {
	if !v.res.IsArray() {
		return nil
	}
	items := v.res.Array()
	out := make([]Value, 0, len(items))
	for _, it := range items {
		out = append(out, Value{res: it})
	}
	return out
}

// Record returns an object value as a Record.
func (v Value) Record() Record {
	if !v.res.IsObject() {
		return Record{}
	}
	return NewRecord([]byte(v.res.Raw))
}

// FormatNumber prints whole numbers without decimals and others with at most
// two decimals.
func FormatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
