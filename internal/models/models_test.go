package models

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		want  float64
		valid bool
	}{
		{name: "number", data: `35.8`, want: 35.8, valid: true},
		{name: "integer", data: `2`, want: 2, valid: true},
		{name: "numeric string", data: `"51.4706"`, want: 51.4706, valid: true},
		{name: "padded string", data: `" -0.461941 "`, want: -0.461941, valid: true},
		{name: "null", data: `null`},
		{name: "empty string", data: `""`},
		{name: "unit suffix", data: `"6300 km"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.data), &n))
			assert.Equal(t, tt.valid, n.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, n.Value, 1e-9)
			}
		})
	}
}

func TestNumber_LogsUnparseableValue(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	var n Number
	require.NoError(t, json.Unmarshal([]byte(`"6300 km"`), &n))
	assert.False(t, n.Valid)
	assert.Contains(t, buf.String(), "Ignoring unparseable number")
	assert.Contains(t, buf.String(), `raw="6300 km"`)

	buf.Reset()
	require.NoError(t, json.Unmarshal([]byte(`""`), &n))
	assert.Empty(t, buf.String(), "blank values are absent, not malformed")
}

func TestNumber_String(t *testing.T) {
	assert.Equal(t, "N/A", Number{}.String())
	assert.Equal(t, "78000", NewNumber(78000).String())
	assert.Equal(t, "0.78", NewNumber(0.78).String())
	assert.Equal(t, "35.8 meters", NewNumber(35.8).WithUnit("meters"))
	assert.Equal(t, "N/A", Number{}.WithUnit("kg"))
}

func TestAirport_DecodesMixedSchema(t *testing.T) {
	data := `{"icaoCode":"EGLL","name":"Heathrow","latitude":"51.4706","longitude":-0.461941,"elevation":null}`

	var airport Airport
	require.NoError(t, json.Unmarshal([]byte(data), &airport))

	assert.Equal(t, "EGLL", airport.Code())
	assert.True(t, airport.HasCoordinates())
	assert.False(t, airport.Elevation.Valid)
	assert.NoError(t, airport.Validate())
}

func TestAirport_HasCoordinates(t *testing.T) {
	assert.False(t, Airport{Latitude: NewNumber(10)}.HasCoordinates())
	assert.False(t, Airport{Latitude: NewNumber(95), Longitude: NewNumber(0)}.HasCoordinates())
	assert.True(t, Airport{Latitude: NewNumber(0), Longitude: NewNumber(0)}.HasCoordinates())
}

func TestAirline_Status(t *testing.T) {
	assert.Equal(t, "Active", Airline{Active: "Y"}.Status())
	assert.Equal(t, "Inactive", Airline{Active: "N"}.Status())
	assert.Equal(t, "Unknown", Airline{}.Status())
}

func TestValidate_MissingCode(t *testing.T) {
	assert.Error(t, AircraftType{Name: "A320"}.Validate())
	assert.Error(t, Airport{Name: "Heathrow"}.Validate())
	assert.Error(t, Airline{Name: "KLM"}.Validate())
}

func TestPage_UnmarshalJSON(t *testing.T) {
	t.Run("envelope", func(t *testing.T) {
		data := `{"content":[{"icaoCode":"KLM"},{"icaoCode":"BAW"}],"totalElements":250,"totalPages":3,"size":100,"number":0}`
		var page Page[Airline]
		require.NoError(t, json.Unmarshal([]byte(data), &page))
		assert.Len(t, page.Content, 2)
		assert.Equal(t, 250, page.TotalElements)
		assert.Equal(t, 3, page.TotalPages)
	})

	t.Run("bare array", func(t *testing.T) {
		data := `[{"icaoCode":"A320"},{"icaoCode":"B738"}]`
		var page Page[AircraftType]
		require.NoError(t, json.Unmarshal([]byte(data), &page))
		assert.Len(t, page.Content, 2)
		assert.Equal(t, 2, page.TotalElements)
		assert.Equal(t, "B738", page.Content[1].Code())
	})

	t.Run("envelope without total", func(t *testing.T) {
		var page Page[Airline]
		require.NoError(t, json.Unmarshal([]byte(`{"content":[{"icaoCode":"KLM"}]}`), &page))
		assert.Equal(t, 1, page.TotalElements)
	})

	t.Run("malformed", func(t *testing.T) {
		var page Page[Airline]
		assert.Error(t, json.Unmarshal([]byte(`{"content":"nope"}`), &page))
	})
}

func TestSinglePage(t *testing.T) {
	page := SinglePage(Airline{ICAOCode: "KLM"})
	assert.Len(t, page.Content, 1)
	assert.Equal(t, 1, page.TotalElements)
	assert.Equal(t, 1, page.Size)
}

func TestDistance_NauticalMiles(t *testing.T) {
	d := Distance{DistanceKm: NewNumber(100)}
	assert.InDelta(t, 53.9957, d.NauticalMiles(), 1e-6)
}

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind("airlines")
	assert.True(t, ok)
	assert.Equal(t, KindAirline, kind)

	_, ok = ParseKind("helicopters")
	assert.False(t, ok)
}
