package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"flight_atlas/internal/api"
	"flight_atlas/internal/config"
	"flight_atlas/internal/globe"
	"flight_atlas/internal/models"
)

// frameInterval paces the flight animation at roughly 60 frames per second
const frameInterval = 16 * time.Millisecond

type globeAirportsMsg struct {
	airports []models.Airport
	err      error
}

type flightMsg struct {
	flight   *globe.Flight
	distance *models.Distance
	err      error
}

type frameMsg struct {
	flight int
}

// globeScreen plots every airport with coordinates and animates a marker
// between two of them
type globeScreen struct {
	ctx      context.Context
	chrome   *chrome
	airports AirportService
	settings config.GlobeConfig

	started  bool
	loading  bool
	loadErr  error
	loaded   []models.Airport
	inputs   [2]textinput.Model
	focus    int
	flightID int
	flight   *globe.Flight
	marker   *globe.Position
	distance *models.Distance
	status   string
	failed   bool
}

func newGlobeScreen(ctx context.Context, ch *chrome, airports AirportService, settings config.GlobeConfig) *globeScreen {
	s := &globeScreen{ctx: ctx, chrome: ch, airports: airports, settings: settings}
	for i, label := range []string{"From: ", "To: "} {
		input := textinput.New()
		input.Prompt = label
		input.Placeholder = "ICAO"
		input.CharLimit = 4
		input.Width = 6
		s.inputs[i] = input
	}
	return s
}

func (s *globeScreen) Activate() tea.Cmd {
	if s.started {
		return nil
	}
	s.started = true
	s.loading = true
	ctx, airports, size := s.ctx, s.airports, s.settings.FetchSize
	return func() tea.Msg {
		page, err := airports.List(ctx, api.Query{Size: size})
		if err != nil {
			slog.Error("Failed to fetch airports for globe", "error", err)
			return globeAirportsMsg{err: err}
		}
		return globeAirportsMsg{airports: globe.WithCoordinates(page.Content)}
	}
}

func (s *globeScreen) Capturing() bool {
	return s.inputs[0].Focused() || s.inputs[1].Focused()
}

func (s *globeScreen) Help() string {
	keys := s.chrome.keys
	if s.Capturing() {
		return helpLine(keys.NextField, keys.Blur) + "  Enter fly"
	}
	return helpLine(keys.Search, keys.Retry)
}

func (s *globeScreen) Update(msg tea.Msg) tea.Cmd {
	keys := s.chrome.keys
	switch msg := msg.(type) {
	case globeAirportsMsg:
		s.loading = false
		s.loadErr = msg.err
		s.loaded = msg.airports
		if msg.err == nil {
			return s.inputs[0].Focus()
		}
		return nil

	case flightMsg:
		return s.startFlight(msg)

	case frameMsg:
		if msg.flight != s.flightID || s.flight == nil {
			return nil
		}
		pos, ok := s.flight.Step()
		if !ok {
			s.marker = nil
			s.status = fmt.Sprintf("Landed at %s.", s.flight.To.ICAOCode)
			return nil
		}
		s.marker = &pos
		return frameTick(s.flightID)

	case tea.KeyMsg:
		if !s.Capturing() {
			switch {
			case key.Matches(msg, keys.Search), key.Matches(msg, keys.Select):
				return s.focusInput(0)
			case key.Matches(msg, keys.Retry):
				if s.loadErr != nil {
					s.started = false
					return s.Activate()
				}
			}
			return nil
		}

		switch {
		case key.Matches(msg, keys.Blur):
			s.inputs[s.focus].Blur()
			return nil
		case msg.Type == tea.KeyTab || msg.Type == tea.KeyShiftTab:
			return s.focusInput(1 - s.focus)
		case key.Matches(msg, keys.Select):
			if s.focus == 0 {
				return s.focusInput(1)
			}
			s.inputs[s.focus].Blur()
			return s.launch()
		}

		var cmd tea.Cmd
		s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
		s.inputs[s.focus].SetValue(strings.ToUpper(s.inputs[s.focus].Value()))
		return cmd
	}
	return nil
}

func (s *globeScreen) focusInput(i int) tea.Cmd {
	s.inputs[1-i].Blur()
	s.focus = i
	return s.inputs[i].Focus()
}

// launch resolves both airports and the backend distance off the UI
// goroutine
func (s *globeScreen) launch() tea.Cmd {
	from, to := s.inputs[0].Value(), s.inputs[1].Value()
	ctx, loaded, airports, step := s.ctx, s.loaded, s.airports, s.settings.Step
	s.status = fmt.Sprintf("Resolving %s to %s...", from, to)
	s.failed = false
	return func() tea.Msg {
		dep, dest, err := globe.Resolve(ctx, loaded, airports, from, to)
		if err != nil {
			return flightMsg{err: err}
		}
		msg := flightMsg{flight: globe.NewFlight(dep, dest, step)}
		distance, err := airports.Distance(ctx, dep.ICAOCode, dest.ICAOCode)
		if err != nil {
			slog.Warn("Distance lookup failed", "from", dep.ICAOCode, "to", dest.ICAOCode, "error", err)
		} else {
			msg.distance = &distance
		}
		return msg
	}
}

func (s *globeScreen) startFlight(msg flightMsg) tea.Cmd {
	if msg.err != nil {
		s.failed = true
		if errors.Is(msg.err, globe.ErrAirportNotFound) {
			s.status = "Airport not found. Check both ICAO codes."
		} else {
			s.status = "Failed to start flight. Please try again later."
		}
		return nil
	}
	s.flightID++
	s.flight = msg.flight
	s.marker = nil
	s.distance = msg.distance
	s.status = fmt.Sprintf("Flying %s to %s", msg.flight.From.ICAOCode, msg.flight.To.ICAOCode)
	return frameTick(s.flightID)
}

func frameTick(id int) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{flight: id}
	})
}

// distanceText renders the backend distance in km and nautical miles
func distanceText(d *models.Distance) string {
	if d == nil || !d.DistanceKm.Valid {
		return "Distance: N/A"
	}
	return fmt.Sprintf("Distance: %s km (%s NM)",
		humanize.FormatFloat("#,###.", d.DistanceKm.Value),
		humanize.FormatFloat("#,###.", d.NauticalMiles()))
}

func (s *globeScreen) View(width, height int) string {
	theme := s.chrome.theme

	var b strings.Builder
	b.WriteString(theme.title().Render("Globe"))
	b.WriteString("\n")
	b.WriteString(s.inputs[0].View() + "   " + s.inputs[1].View())
	b.WriteString("\n")

	switch {
	case s.loading:
		b.WriteString(s.chrome.spinner.View() + " " + theme.faint().Render("Loading airports..."))
		return b.String()
	case s.loadErr != nil:
		b.WriteString(errNotice(theme, "Failed to fetch airports. Please try again later.", s.chrome.keys.Retry))
		return b.String()
	}

	status := theme.faint().Render(fmt.Sprintf("%s airports", humanize.Comma(int64(len(s.loaded)))))
	if s.status != "" {
		style := theme.text()
		if s.failed {
			style = theme.errorText()
		}
		status += "  " + style.Render(s.status)
	}
	if s.flight != nil {
		status += "  " + theme.accent().Render(distanceText(s.distance))
		if s.marker != nil {
			status += theme.faint().Render(fmt.Sprintf("  %3.0f%%", s.marker.Progress*100))
		}
	}
	b.WriteString(status)
	b.WriteString("\n")

	mapHeight := max(height-5, 4)
	m := globe.Draw(max(width, 20), mapHeight, s.loaded, s.flight, s.marker)
	for _, row := range m.Rows() {
		b.WriteString(s.colorize(row))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (s *globeScreen) colorize(row string) string {
	theme := s.chrome.theme
	styles := map[rune]lipgloss.Style{
		globe.GlyphAirport:   lipgloss.NewStyle().Foreground(theme.MapAirport),
		globe.GlyphPath:      lipgloss.NewStyle().Foreground(theme.MapPath),
		globe.GlyphDeparture: lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		globe.GlyphArrival:   lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		globe.GlyphMarker:    lipgloss.NewStyle().Foreground(theme.MapMarker).Bold(true),
	}

	var b strings.Builder
	var run []rune
	var current rune = -1
	flush := func() {
		if len(run) == 0 {
			return
		}
		if style, ok := styles[current]; ok {
			b.WriteString(style.Render(string(run)))
		} else {
			b.WriteString(string(run))
		}
		run = run[:0]
	}
	for _, r := range row {
		if r != current {
			flush()
			current = r
		}
		run = append(run, r)
	}
	flush()
	return b.String()
}
