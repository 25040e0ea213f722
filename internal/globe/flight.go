package globe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"flight_atlas/internal/models"
)

// DefaultStep is the progress added per animation frame
const DefaultStep = 0.005

// ErrAirportNotFound is returned when a route endpoint cannot be resolved
var ErrAirportNotFound = errors.New("airport not found")

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64
	Lng float64
}

// PointOf returns the airport's coordinates
func PointOf(a models.Airport) Point {
	return Point{Lat: a.Latitude.Value, Lng: a.Longitude.Value}
}

// Position is the marker location at a given progress
type Position struct {
	Point
	Progress float64
}

// Flight animates a marker from one airport to another. The path is a
// straight line in latitude/longitude space.
type Flight struct {
	From     models.Airport
	To       models.Airport
	step     float64
	progress float64
	done     bool
}

// NewFlight creates a flight at progress 0. A non-positive step uses
// DefaultStep.
func NewFlight(from, to models.Airport, step float64) *Flight {
	if step <= 0 || step > 1 {
		step = DefaultStep
	}
	return &Flight{From: from, To: to, step: step}
}

// Interpolate returns the point at fraction t of the way from a to b
func Interpolate(a, b Point, t float64) Point {
	return Point{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}

// Step advances one frame. It returns the marker position and true while
// the flight is under way; once progress reaches 1 the marker is cleared
// and ok is false.
func (f *Flight) Step() (Position, bool) {
	if f.done {
		return Position{}, false
	}
	f.progress += f.step
	if f.progress >= 1 {
		f.progress = 1
		f.done = true
		return Position{}, false
	}
	p := Interpolate(PointOf(f.From), PointOf(f.To), f.progress)
	return Position{Point: p, Progress: f.progress}, true
}

// Progress returns the fraction flown so far
func (f *Flight) Progress() float64 { return f.progress }

// Done reports whether the flight has landed
func (f *Flight) Done() bool { return f.done }

// Path samples n+1 evenly spaced points along the route
func (f *Flight) Path(n int) []Point {
	if n < 1 {
		n = 1
	}
	from, to := PointOf(f.From), PointOf(f.To)
	points := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		points = append(points, Interpolate(from, to, float64(i)/float64(n)))
	}
	return points
}

// AirportFetcher loads one airport by code
type AirportFetcher interface {
	Get(ctx context.Context, code string) (models.Airport, error)
}

// Resolve finds both route endpoints, first among the loaded airports and
// then through the backend.
func Resolve(ctx context.Context, loaded []models.Airport, fetcher AirportFetcher, from, to string) (models.Airport, models.Airport, error) {
	dep, depErr := resolveOne(ctx, loaded, fetcher, from)
	dest, destErr := resolveOne(ctx, loaded, fetcher, to)
	if err := errors.Join(depErr, destErr); err != nil {
		return models.Airport{}, models.Airport{}, err
	}
	return dep, dest, nil
}

func resolveOne(ctx context.Context, loaded []models.Airport, fetcher AirportFetcher, code string) (models.Airport, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return models.Airport{}, fmt.Errorf("%w: empty code", ErrAirportNotFound)
	}
	for _, a := range loaded {
		if strings.EqualFold(a.ICAOCode, code) {
			return a, nil
		}
	}

	a, err := fetcher.Get(ctx, code)
	if err != nil {
		slog.Warn("Could not resolve airport", "code", code, "error", err)
		return models.Airport{}, fmt.Errorf("%w: %s", ErrAirportNotFound, code)
	}
	if !a.HasCoordinates() {
		return models.Airport{}, fmt.Errorf("%w: %s has no coordinates", ErrAirportNotFound, code)
	}
	return a, nil
}

// WithCoordinates keeps the airports that can be placed on the globe
func WithCoordinates(airports []models.Airport) []models.Airport {
	out := make([]models.Airport, 0, len(airports))
	for _, a := range airports {
		if a.HasCoordinates() {
			out = append(out, a)
		}
	}
	return out
}
