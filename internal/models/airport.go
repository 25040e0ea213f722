package models

import "fmt"

// Airport represents an airport record with geographic coordinates
type Airport struct {
	ICAOCode      string `json:"icaoCode"` // Primary key - 4 character ICAO location indicator
	IATACode      string `json:"iataCode"`
	Name          string `json:"name"`
	City          string `json:"city"`
	Country       string `json:"country"`
	Location      string `json:"location"`
	ICAORegion    string `json:"icaoRegion"`
	ICAOTerritory string `json:"icaoTerritory"`
	KCCode        string `json:"kccode"`
	Elevation     Number `json:"elevation"`
	Latitude      Number `json:"latitude"`
	Longitude     Number `json:"longitude"`
	AirportBS     string `json:"airportBS"`
	AirportLOS    string `json:"airportLOS"`
	AirportRE     string `json:"airportRE"`
}

// Code returns the ICAO location indicator
func (a Airport) Code() string { return a.ICAOCode }

// HasCoordinates reports whether the airport can be placed on the globe
func (a Airport) HasCoordinates() bool {
	if !a.Latitude.Valid || !a.Longitude.Valid {
		return false
	}
	return a.Latitude.Value >= -90 && a.Latitude.Value <= 90 &&
		a.Longitude.Value >= -180 && a.Longitude.Value <= 180
}

// Validate checks the fields the client relies on
func (a Airport) Validate() error {
	if a.ICAOCode == "" {
		return fmt.Errorf("airport has no icaoCode")
	}
	return nil
}
