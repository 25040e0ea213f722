package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"flight_atlas/internal/models"
)

const recentLimit = 10

type visitsMsg struct {
	visits []*models.Visit
	err    error
}

var homeMenu = []struct {
	screen ScreenID
	desc   string
}{
	{ScreenAircraft, "Browse aircraft types by name, manufacturer or engine"},
	{ScreenAirports, "Search airports by name or ICAO code, filter by country"},
	{ScreenAirlines, "Search airlines, filter by country or active status"},
	{ScreenGlobe, "Plot airports and fly between two of them"},
	{ScreenContact, "Send us a message"},
	{ScreenAbout, "About this client"},
}

// homeScreen is the landing view: navigation plus recently viewed records
type homeScreen struct {
	chrome *chrome
	store  VisitStore
	visits []*models.Visit
	err    error
	cursor int
	now    func() time.Time
}

func newHomeScreen(ch *chrome, store VisitStore) *homeScreen {
	return &homeScreen{chrome: ch, store: store, now: time.Now}
}

// Activate reloads the recent visits every time home is shown
func (s *homeScreen) Activate() tea.Cmd {
	if s.store == nil {
		return nil
	}
	store := s.store
	return func() tea.Msg {
		visits, err := store.Recent(recentLimit)
		if err != nil {
			slog.Error("Failed to load recent visits", "error", err)
		}
		return visitsMsg{visits: visits, err: err}
	}
}

func (s *homeScreen) Capturing() bool { return false }

func (s *homeScreen) Help() string {
	keys := s.chrome.keys
	return helpLine(keys.Up, keys.Down, keys.Select)
}

func (s *homeScreen) entries() int {
	return len(homeMenu) + len(s.visits)
}

func (s *homeScreen) Update(msg tea.Msg) tea.Cmd {
	keys := s.chrome.keys
	switch msg := msg.(type) {
	case visitsMsg:
		s.visits, s.err = msg.visits, msg.err
		s.cursor = min(s.cursor, max(s.entries()-1, 0))
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			s.cursor = max(s.cursor-1, 0)
		case key.Matches(msg, keys.Down):
			s.cursor = min(s.cursor+1, s.entries()-1)
		case key.Matches(msg, keys.Select):
			if s.cursor < len(homeMenu) {
				target := homeMenu[s.cursor].screen
				return func() tea.Msg { return navigateMsg{screen: target} }
			}
			v := s.visits[s.cursor-len(homeMenu)]
			kind, code := v.Kind, v.Code
			return func() tea.Msg { return openDetailMsg{kind: kind, code: code} }
		}
	}
	return nil
}

func (s *homeScreen) View(width, height int) string {
	theme := s.chrome.theme

	var b strings.Builder
	b.WriteString(theme.title().Render("Flight Atlas"))
	b.WriteString("\n")
	b.WriteString(theme.faint().Render("Reference data for aircraft types, airports and airlines."))
	b.WriteString("\n\n")

	for i, item := range homeMenu {
		line := cell(item.screen.String(), 10) + " " + item.desc
		b.WriteString(s.row(line, i == s.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.header().Render("Recently viewed"))
	b.WriteString("\n")
	switch {
	case s.err != nil:
		b.WriteString(theme.errorText().Render("Recently viewed records are unavailable."))
	case len(s.visits) == 0:
		b.WriteString(theme.faint().Render("Nothing yet. Open an aircraft, airport or airline to see it here."))
	}
	for i, v := range s.visits {
		line := fmt.Sprintf("%s %s %s  %s",
			cell(string(v.Kind), 9), cell(v.Code, 5), cell(v.Name, 36), humanize.RelTime(v.Timestamp, s.now(), "ago", "from now"))
		b.WriteString(s.row(line, len(homeMenu)+i == s.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *homeScreen) row(line string, selected bool) string {
	if selected {
		return s.chrome.theme.selected().Render(line)
	}
	return s.chrome.theme.text().Render(line)
}

// aboutScreen is static text
type aboutScreen struct {
	chrome *chrome
}

func newAboutScreen(ch *chrome) *aboutScreen {
	return &aboutScreen{chrome: ch}
}

func (s *aboutScreen) Activate() tea.Cmd          { return nil }
func (s *aboutScreen) Update(msg tea.Msg) tea.Cmd { return nil }
func (s *aboutScreen) Capturing() bool            { return false }
func (s *aboutScreen) Help() string               { return "" }

func (s *aboutScreen) View(width, height int) string {
	theme := s.chrome.theme
	lines := []string{
		theme.title().Render("About"),
		theme.text().Render("Flight Atlas browses a reference database of aircraft types, airports and airlines."),
		"",
		theme.text().Render("Aircraft types are filtered locally; airports and airlines are searched on the server."),
		theme.text().Render("Typing a full ICAO code jumps straight to that record."),
		theme.text().Render("The globe plots every airport with coordinates and animates a flight between two of them."),
		"",
		theme.faint().Render("Data is read-only apart from new aircraft types created from the command line."),
	}
	return strings.Join(lines, "\n")
}
