package globe

import (
	"math"
	"strings"

	"flight_atlas/internal/models"
)

// Glyphs used on the map
const (
	GlyphEmpty     = ' '
	GlyphAirport   = '·'
	GlyphPath      = '*'
	GlyphDeparture = 'D'
	GlyphArrival   = 'A'
	GlyphMarker    = '✈'
)

// Map is an equirectangular projection onto a character grid
type Map struct {
	Width  int
	Height int
	cells  [][]rune
}

// NewMap allocates an empty map; dimensions below 2 are raised to 2
func NewMap(width, height int) *Map {
	width = max(width, 2)
	height = max(height, 2)
	cells := make([][]rune, height)
	for y := range cells {
		cells[y] = []rune(strings.Repeat(string(GlyphEmpty), width))
	}
	return &Map{Width: width, Height: height, cells: cells}
}

// Project converts a point to a cell, clamped to the grid
func (m *Map) Project(p Point) (int, int) {
	x := int(math.Round((p.Lng + 180) / 360 * float64(m.Width-1)))
	y := int(math.Round((90 - p.Lat) / 180 * float64(m.Height-1)))
	x = min(max(x, 0), m.Width-1)
	y = min(max(y, 0), m.Height-1)
	return x, y
}

// Plot draws glyph at p
func (m *Map) Plot(p Point, glyph rune) {
	x, y := m.Project(p)
	m.cells[y][x] = glyph
}

// At returns the glyph in a cell
func (m *Map) At(x, y int) rune {
	return m.cells[y][x]
}

// Rows returns the grid as strings, top row first
func (m *Map) Rows() []string {
	rows := make([]string, m.Height)
	for y, row := range m.cells {
		rows[y] = string(row)
	}
	return rows
}

// Draw renders airports, the flight path and the marker onto a new map
func Draw(width, height int, airports []models.Airport, flight *Flight, marker *Position) *Map {
	m := NewMap(width, height)
	for _, a := range airports {
		if a.HasCoordinates() {
			m.Plot(PointOf(a), GlyphAirport)
		}
	}
	if flight != nil {
		for _, p := range flight.Path(width) {
			m.Plot(p, GlyphPath)
		}
		m.Plot(PointOf(flight.From), GlyphDeparture)
		m.Plot(PointOf(flight.To), GlyphArrival)
	}
	if marker != nil {
		m.Plot(marker.Point, GlyphMarker)
	}
	return m
}
