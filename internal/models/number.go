package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Number is a numeric field whose wire representation varies between
// backend schema versions: a JSON number, a numeric string, an empty
// string, or null. Values that cannot be parsed decode as absent and are
// logged at debug level.
type Number struct {
	Value float64
	Valid bool
}

// NewNumber returns a present Number.
func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode numeric string: %w", err)
		}
		return n.parse(s)
	}

	return n.parse(string(data))
}

func (n *Number) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unknown unit suffixes and free text are treated as absent.
		slog.Debug("Ignoring unparseable number", "raw", s)
		return nil
	}
	*n = NewNumber(v)
	return nil
}

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// String renders the value without trailing zeros, or "N/A" when absent.
func (n Number) String() string {
	if !n.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// WithUnit renders the value followed by unit, or "N/A" when absent.
func (n Number) WithUnit(unit string) string {
	if !n.Valid {
		return "N/A"
	}
	return n.String() + " " + unit
}
