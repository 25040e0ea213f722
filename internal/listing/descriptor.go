package listing

import (
	"strings"

	"flight_atlas/internal/models"
)

// Mode selects where the search term is applied
type Mode int

const (
	// ClientFilter fetches the collection once and filters it in memory
	ClientFilter Mode = iota
	// ServerSearch sends the debounced search term to the backend
	ServerSearch
)

// Descriptor carries everything entity specific about a list view
type Descriptor[T models.Entity] struct {
	// Name is the plural label used in messages ("airlines")
	Name string
	Mode Mode
	// CodeLength enables the direct by-code lookup for search terms of
	// exactly this length. Zero disables it.
	CodeLength int
	// Fields returns the values the search term is matched against
	Fields func(T) []string
}

// Aircraft lists aircraft types, filtered client side
var Aircraft = Descriptor[models.AircraftType]{
	Name: "aircraft",
	Mode: ClientFilter,
	Fields: func(a models.AircraftType) []string {
		return []string{a.Name, a.Manufacturer, a.ICAOCode, a.EngineType}
	},
}

// Airports lists airports through the backend search
var Airports = Descriptor[models.Airport]{
	Name:       "airports",
	Mode:       ServerSearch,
	CodeLength: 4,
	Fields: func(a models.Airport) []string {
		return []string{a.Name, a.ICAOCode, a.IATACode, a.City, a.Country}
	},
}

// Airlines lists airlines through the backend search
var Airlines = Descriptor[models.Airline]{
	Name:       "airlines",
	Mode:       ServerSearch,
	CodeLength: 3,
	Fields: func(a models.Airline) []string {
		return []string{a.Name, a.ICAOCode, a.IATA, a.Callsign, a.Country}
	},
}

// Match reports whether any of the item's fields contains term,
// case-insensitively. A blank term matches everything.
func (d Descriptor[T]) Match(item T, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range d.Fields(item) {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Apply returns the matching items in a new slice; items is not modified
func (d Descriptor[T]) Apply(items []T, term string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if d.Match(item, term) {
			out = append(out, item)
		}
	}
	return out
}

// lookupCode returns the normalized code when term qualifies for the direct
// by-code lookup
func (d Descriptor[T]) lookupCode(term string) (string, bool) {
	term = strings.TrimSpace(term)
	if d.CodeLength == 0 || len(term) != d.CodeLength {
		return "", false
	}
	for _, r := range term {
		isAlnum := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isAlnum {
			return "", false
		}
	}
	return strings.ToUpper(term), true
}
