package models

import "fmt"

// AircraftType represents an aircraft type from the reference database.
// Performance figures are Numbers because their encoding changed between
// backend schema versions.
type AircraftType struct {
	ICAOCode                    string   `json:"icaoCode"`       // Primary key - ICAO type designator (e.g. A320)
	Name                        string   `json:"name"`           // Display name
	ModelName                   string   `json:"modelName"`      // Full model name
	Manufacturer                string   `json:"manufacturer"`   // Manufacturer name
	TypeCode                    string   `json:"typeCode"`       // ICAO aircraft description (e.g. L2J)
	BodyType                    string   `json:"bodyType"`       // Narrow or wide body
	WingType                    string   `json:"wingType"`       // Fixed or rotary wing
	WingPosition                string   `json:"wingPosition"`   // Low, mid or high wing
	TailType                    string   `json:"tailType"`       // Regular or T-tail
	WeightCategory              string   `json:"weightCategory"` // Wake turbulence category
	AircraftPerformanceCategory string   `json:"aircraftPerformanceCategory"`
	WingspanMeters              Number   `json:"wingspanMeters"`
	LengthMeters                Number   `json:"lengthMeters"`
	HeightMeters                Number   `json:"heightMeters"`
	EngineType                  string   `json:"engineType"` // Jet, turboprop, piston
	EngineCount                 Number   `json:"engineCount"`
	EnginePosition              string   `json:"enginePosition"`
	Powerplant                  string   `json:"powerplant"`
	EngineModels                []string `json:"engineModels"`
	MaxTakeOffWeightKg          Number   `json:"maxTakeOffWeightKg"`
	MaxLandingWeightKg          Number   `json:"maxLandingWeightKg"`
	TakeOffV2Kts                Number   `json:"takeOffV2Kts"`
	TakeOffDistanceMeters       Number   `json:"takeOffDistanceMeters"`
	InitialClimbIasKts          Number   `json:"initialClimbIasKts"`
	InitialClimbRocFtMin        Number   `json:"initialClimbRocFtMin"`
	ClimbToFL150IasKts          Number   `json:"climbToFL150IasKts"`
	ClimbToFL150RocFtMin        Number   `json:"climbToFL150RocFtMin"`
	CruiseIasKts                Number   `json:"cruiseIasKts"`
	CruiseMach                  Number   `json:"cruiseMach"`
	CruiseAltitudeFt            Number   `json:"cruiseAltitudeFt"`
	AerodromeReferenceCode      string   `json:"aerodromeReferenceCode"`
	RFFCategory                 string   `json:"rffCategory"`
	LandingGearType             string   `json:"landingGearType"`
}

// Code returns the ICAO type designator
func (a AircraftType) Code() string { return a.ICAOCode }

// Validate checks the fields the client relies on
func (a AircraftType) Validate() error {
	if a.ICAOCode == "" {
		return fmt.Errorf("aircraft type has no icaoCode")
	}
	return nil
}
