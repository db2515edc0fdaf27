package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Lookup(t *testing.T) {
	r := NewRecord([]byte(`{"citations": 12, "citation_count": null, "name": "", "affiliation": "MIT"}`))

	t.Run("skips null and empty keys", func(t *testing.T) {
		v := r.Lookup("citation_count", "citations")
		require.True(t, v.Present())
		f, ok := v.Float()
		require.True(t, ok)
		assert.Equal(t, 12.0, f)
	})

	t.Run("empty string is absent", func(t *testing.T) {
		assert.False(t, r.Lookup("name").Present())
	})

	t.Run("missing key is absent", func(t *testing.T) {
		assert.False(t, r.Lookup("h_index").Present())
	})

	t.Run("zero record", func(t *testing.T) {
		var empty Record
		assert.False(t, empty.Lookup("anything").Present())
		assert.True(t, empty.IsZero())
		assert.JSONEq(t, "null", string(empty.Raw()))
	})
}

func TestRecord_IsZero(t *testing.T) {
	assert.True(t, NewRecord([]byte(`null`)).IsZero())
	assert.True(t, NewRecord([]byte(`{}`)).IsZero())
	assert.True(t, NewRecord([]byte(`[1,2]`)).IsZero())
	assert.False(t, NewRecord([]byte(`{"id": 1}`)).IsZero())
}

func TestValue_Float(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{name: "number", raw: `{"v": 4}`, want: 4, wantOK: true},
		{name: "decimal", raw: `{"v": 95.8}`, want: 95.8, wantOK: true},
		{name: "numeric string", raw: `{"v": "15"}`, want: 15, wantOK: true},
		{name: "leading number", raw: `{"v": "12 years"}`, want: 12, wantOK: true},
		{name: "text", raw: `{"v": "unknown"}`, wantOK: false},
		{name: "null", raw: `{"v": null}`, wantOK: false},
		{name: "bool", raw: `{"v": true}`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NewRecord([]byte(tt.raw)).Lookup("v").Float()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	r := NewRecord([]byte(`{"whole": 15420, "frac": 95.8123, "text": "  MIT "}`))
	assert.Equal(t, "15420", r.Lookup("whole").String())
	assert.Equal(t, "95.81", r.Lookup("frac").String())
	assert.Equal(t, "MIT", r.Lookup("text").String())
	assert.Equal(t, "", r.Lookup("missing").String())
}

func TestValue_ArrayAndRecord(t *testing.T) {
	r := NewRecord([]byte(`{"authors": [{"name": "A"}, "B"], "venue": {"name": "ICML"}}`))

	items := r.Lookup("authors").Array()
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Record().Lookup("name").String())
	assert.True(t, items[1].Record().IsZero())
	assert.Equal(t, "B", items[1].String())

	assert.Equal(t, "ICML", r.Lookup("venue").Record().Lookup("name").String())
	assert.Nil(t, r.Lookup("venue").Array())
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	var rec AuthorRecord
	require.NoError(t, rec.UnmarshalJSON([]byte(`{"id": 7, "first_name": "Ada"}`)))
	b, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 7, "first_name": "Ada"}`, string(b))
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in   string
		want Metric
		ok   bool
	}{
		{"anci", MetricANCI, true},
		{"PQI", MetricPQI, true},
		{"cagr", MetricCAGR, true},
		{"accel", MetricCAGR, true},
		{" anci ", MetricANCI, true},
		{"hindex", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseMetric(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "CAGR", MetricCAGR.Label())
	assert.NotEmpty(t, MetricPQI.Description())
}

func TestAPIError_Is(t *testing.T) {
	notFound := NewAPIError("/authors/1", http.StatusNotFound, "missing", nil)
	assert.True(t, errors.Is(notFound, ErrNotFound))
	assert.True(t, errors.Is(notFound, ErrUpstream))
	assert.False(t, errors.Is(notFound, ErrServiceUnavailable))

	unavailable := NewAPIError("/stats/overview", http.StatusServiceUnavailable, "down", nil)
	assert.True(t, errors.Is(unavailable, ErrServiceUnavailable))
	assert.False(t, errors.Is(unavailable, ErrNotFound))

	cause := errors.New("connection refused")
	transport := NewAPIError("/papers/", 0, "request failed", cause)
	assert.True(t, errors.Is(transport, cause))
	assert.Contains(t, transport.Error(), "request failed")
	assert.NotContains(t, transport.Error(), "status")

	wrapped := fmt.Errorf("fetch author: %w", notFound)
	var apiErr *APIError
	require.True(t, errors.As(wrapped, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestTypedErrors(t *testing.T) {
	nf := NewNotFoundError("author", "42")
	assert.Equal(t, "author not found: 42", nf.Error())
	assert.True(t, errors.Is(nf, ErrNotFound))

	ve := NewValidationError("career", "must be one of all early mid senior")
	assert.True(t, errors.Is(ve, ErrInvalidInput))
	assert.Contains(t, ve.Error(), "career")
}
