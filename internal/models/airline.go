package models

import "fmt"

// Airline represents an airline operator
type Airline struct {
	AirlineID Number `json:"airlineId"`
	ICAOCode  string `json:"icaoCode"` // 3 letter ICAO designator
	IATA      string `json:"iata"`
	Name      string `json:"name"`
	Callsign  string `json:"callsign"`
	Country   string `json:"country"`
	Active    string `json:"active"` // "Y" or "N"
	Website   string `json:"website"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Code returns the ICAO airline designator
func (a Airline) Code() string { return a.ICAOCode }

// Status renders the active flag
func (a Airline) Status() string {
	switch a.Active {
	case "Y":
		return "Active"
	case "N":
		return "Inactive"
	default:
		return "Unknown"
	}
}

// Validate checks the fields the client relies on
func (a Airline) Validate() error {
	if a.ICAOCode == "" {
		return fmt.Errorf("airline has no icaoCode")
	}
	return nil
}
