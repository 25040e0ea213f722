package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"flight_atlas/internal/models"
)

// Query parameterizes the paginated list endpoints
type Query struct {
	Page    int
	Size    int
	Search  string
	Country string
	Active  string // "Y", "N" or empty for all
}

// AircraftTypes reads and creates aircraft types
type AircraftTypes struct {
	client *Client
}

// NewAircraftTypes creates the aircraft type service
func NewAircraftTypes(client *Client) *AircraftTypes {
	return &AircraftTypes{client: client}
}

// List fetches the whole collection. The endpoint is not paginated, so the
// page fields of q are ignored.
func (s *AircraftTypes) List(ctx context.Context, q Query) (models.Page[models.AircraftType], error) {
	var query url.Values
	if q.Search != "" {
		query = url.Values{"search": []string{q.Search}}
	}

	var page models.Page[models.AircraftType]
	if err := s.client.Get(ctx, "/aircraft", query, &page); err != nil {
		return page, fmt.Errorf("error fetching aircraft: %w", err)
	}
	validOnly(&page, "aircraft")
	return page, nil
}

// Get fetches one aircraft type by ICAO designator
func (s *AircraftTypes) Get(ctx context.Context, code string) (models.AircraftType, error) {
	var aircraft models.AircraftType
	if err := s.client.Get(ctx, "/aircraft/"+escape(code), nil, &aircraft); err != nil {
		return aircraft, fmt.Errorf("error fetching aircraft %s: %w", code, err)
	}
	return aircraft, nil
}

// Create registers a new aircraft type. The backend's response is the only
// confirmation.
func (s *AircraftTypes) Create(ctx context.Context, aircraft models.AircraftType) (models.AircraftType, error) {
	var created models.AircraftType
	if err := s.client.Post(ctx, "/aircraft", aircraft, &created); err != nil {
		return created, fmt.Errorf("error creating aircraft: %w", err)
	}
	return created, nil
}

// Airports reads airports
type Airports struct {
	client *Client
}

// NewAirports creates the airport service
func NewAirports(client *Client) *Airports {
	return &Airports{client: client}
}

// List fetches a page of airports, routed to the country endpoint when q
// carries a country filter.
func (s *Airports) List(ctx context.Context, q Query) (models.Page[models.Airport], error) {
	if q.Country != "" {
		return s.ByCountry(ctx, q.Country, q.Page, q.Size)
	}

	query := pageQuery(q.Page, q.Size)
	if q.Search != "" {
		query.Set("search", q.Search)
	}

	var page models.Page[models.Airport]
	if err := s.client.Get(ctx, "/airportsnew", query, &page); err != nil {
		return page, fmt.Errorf("error fetching airports: %w", err)
	}
	validOnly(&page, "airport")
	return page, nil
}

// ByCountry fetches a page of airports located in country
func (s *Airports) ByCountry(ctx context.Context, country string, page, size int) (models.Page[models.Airport], error) {
	var result models.Page[models.Airport]
	if err := s.client.Get(ctx, "/airportsnew/country/"+escape(country), pageQuery(page, size), &result); err != nil {
		return result, fmt.Errorf("error fetching airports by country: %w", err)
	}
	validOnly(&result, "airport")
	return result, nil
}

// Get fetches one airport by ICAO code
func (s *Airports) Get(ctx context.Context, code string) (models.Airport, error) {
	var airport models.Airport
	if err := s.client.Get(ctx, "/airportsnew/"+escape(code), nil, &airport); err != nil {
		return airport, fmt.Errorf("error fetching airport %s: %w", code, err)
	}
	return airport, nil
}

// Distance asks the backend for the distance between two airports
func (s *Airports) Distance(ctx context.Context, from, to string) (models.Distance, error) {
	query := url.Values{}
	query.Set("from", from)
	query.Set("to", to)

	var distance models.Distance
	if err := s.client.Get(ctx, "/airportsnew/distance", query, &distance); err != nil {
		return distance, fmt.Errorf("error calculating distance %s-%s: %w", from, to, err)
	}
	if distance.From == "" {
		distance.From = from
	}
	if distance.To == "" {
		distance.To = to
	}
	return distance, nil
}

// Countries lists the countries known to the backend
func (s *Airports) Countries(ctx context.Context) []string {
	return countries(ctx, s.client)
}

// Airlines reads airlines
type Airlines struct {
	client *Client
}

// NewAirlines creates the airline service
func NewAirlines(client *Client) *Airlines {
	return &Airlines{client: client}
}

// List fetches a page of airlines. Country takes precedence over the active
// filter, which takes precedence over search.
func (s *Airlines) List(ctx context.Context, q Query) (models.Page[models.Airline], error) {
	switch {
	case q.Country != "":
		return s.ByCountry(ctx, q.Country, q.Page, q.Size)
	case q.Active != "":
		return s.ByActive(ctx, q.Active, q.Page, q.Size)
	}

	query := pageQuery(q.Page, q.Size)
	if q.Search != "" {
		query.Set("search", q.Search)
	}

	var page models.Page[models.Airline]
	if err := s.client.Get(ctx, "/airlinesnew", query, &page); err != nil {
		return page, fmt.Errorf("error fetching airlines: %w", err)
	}
	validOnly(&page, "airline")
	return page, nil
}

// ByCountry fetches a page of airlines registered in country
func (s *Airlines) ByCountry(ctx context.Context, country string, page, size int) (models.Page[models.Airline], error) {
	var result models.Page[models.Airline]
	if err := s.client.Get(ctx, "/airlinesnew/country/"+escape(country), pageQuery(page, size), &result); err != nil {
		return result, fmt.Errorf("error fetching airlines by country: %w", err)
	}
	validOnly(&result, "airline")
	return result, nil
}

// ByActive fetches a page of airlines with the given active flag ("Y" or "N")
func (s *Airlines) ByActive(ctx context.Context, active string, page, size int) (models.Page[models.Airline], error) {
	var result models.Page[models.Airline]
	if err := s.client.Get(ctx, "/airlinesnew/active/"+escape(active), pageQuery(page, size), &result); err != nil {
		return result, fmt.Errorf("error fetching airlines by active status: %w", err)
	}
	validOnly(&result, "airline")
	return result, nil
}

// ByName fetches a page of airlines whose name contains name
func (s *Airlines) ByName(ctx context.Context, name string, page, size int) (models.Page[models.Airline], error) {
	var result models.Page[models.Airline]
	if err := s.client.Get(ctx, "/airlinesnew/name/"+escape(name), pageQuery(page, size), &result); err != nil {
		return result, fmt.Errorf("error fetching airlines by name: %w", err)
	}
	validOnly(&result, "airline")
	return result, nil
}

// Get fetches one airline by ICAO designator
func (s *Airlines) Get(ctx context.Context, code string) (models.Airline, error) {
	var airline models.Airline
	if err := s.client.Get(ctx, "/airlinesnew/icao/"+escape(code), nil, &airline); err != nil {
		return airline, fmt.Errorf("error fetching airline %s: %w", code, err)
	}
	return airline, nil
}

// Countries lists the countries known to the backend
func (s *Airlines) Countries(ctx context.Context) []string {
	return countries(ctx, s.client)
}

// countries falls back to an empty list so the filter UI stays usable
func countries(ctx context.Context, client *Client) []string {
	var list []string
	if err := client.Get(ctx, "/gds/countries", nil, &list); err != nil {
		slog.Warn("Failed to fetch countries", "error", err)
		return []string{}
	}
	return list
}

// validOnly drops records the client cannot key and lowers the reported
// total to match
func validOnly[T models.Entity](page *models.Page[T], kind string) {
	out := page.Content[:0]
	for _, item := range page.Content {
		if err := item.Validate(); err != nil {
			slog.Warn("Skipping invalid record", "kind", kind, "error", err)
			continue
		}
		out = append(out, item)
	}
	dropped := len(page.Content) - len(out)
	page.Content = out
	page.TotalElements = max(page.TotalElements-dropped, len(out))
}
