package models

import "time"

// Kind names an entity type
type Kind string

const (
	KindAircraft Kind = "aircraft"
	KindAirport  Kind = "airport"
	KindAirline  Kind = "airline"
)

// ParseKind accepts singular and plural spellings
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "aircraft", "aircraft-type", "aircraft-types":
		return KindAircraft, true
	case "airport", "airports":
		return KindAirport, true
	case "airline", "airlines":
		return KindAirline, true
	}
	return "", false
}

// Visit records a detail view being opened
type Visit struct {
	Kind      Kind
	Code      string
	Name      string
	Timestamp time.Time
}
