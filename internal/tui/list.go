package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"flight_atlas/internal/listing"
	"flight_atlas/internal/models"
)

// column renders one field of a list row
type column[T any] struct {
	title string
	width int
	value func(T) string
}

var aircraftColumns = []column[models.AircraftType]{
	{title: "ICAO", width: 6, value: func(a models.AircraftType) string { return a.ICAOCode }},
	{title: "Name", width: 32, value: func(a models.AircraftType) string { return a.Name }},
	{title: "Manufacturer", width: 24, value: func(a models.AircraftType) string { return a.Manufacturer }},
	{title: "Engine", width: 12, value: func(a models.AircraftType) string { return a.EngineType }},
	{title: "Engines", width: 8, value: func(a models.AircraftType) string { return a.EngineCount.String() }},
}

var airportColumns = []column[models.Airport]{
	{title: "ICAO", width: 6, value: func(a models.Airport) string { return a.ICAOCode }},
	{title: "IATA", width: 5, value: func(a models.Airport) string { return a.IATACode }},
	{title: "Name", width: 36, value: func(a models.Airport) string { return a.Name }},
	{title: "City", width: 18, value: func(a models.Airport) string { return a.City }},
	{title: "Country", width: 18, value: func(a models.Airport) string { return a.Country }},
}

var airlineColumns = []column[models.Airline]{
	{title: "ICAO", width: 5, value: func(a models.Airline) string { return a.ICAOCode }},
	{title: "IATA", width: 5, value: func(a models.Airline) string { return a.IATA }},
	{title: "Name", width: 32, value: func(a models.Airline) string { return a.Name }},
	{title: "Callsign", width: 16, value: func(a models.Airline) string { return a.Callsign }},
	{title: "Country", width: 18, value: func(a models.Airline) string { return a.Country }},
	{title: "Status", width: 9, value: func(a models.Airline) string { return a.Status() }},
}

// countriesMsg delivers the country filter options of one list
type countriesMsg struct {
	kind      models.Kind
	countries []string
}

// activeOptions is the cycle order of the active-status filter
var activeOptions = []string{"", "Y", "N"}

// listScreen renders a listing.Controller with a search box, filters and
// lazy loading driven by the cursor position
type listScreen[T models.Entity] struct {
	ctx     context.Context
	chrome  *chrome
	kind    models.Kind
	title   string
	ctrl    *listing.Controller[T]
	columns []column[T]

	input   textinput.Model
	cursor  int
	offset  int
	rows    int
	started bool

	loadCountries  func(context.Context) []string
	countries      []string
	countryIndex   int // -1 means every country
	supportsActive bool
	activeIndex    int
}

func newListScreen[T models.Entity](ctx context.Context, ch *chrome, kind models.Kind, title string, ctrl *listing.Controller[T], columns []column[T], loadCountries func(context.Context) []string, supportsActive bool) *listScreen[T] {
	input := textinput.New()
	input.Prompt = "Search: "
	input.Placeholder = searchPlaceholder(ctrl.Descriptor())
	input.CharLimit = 64

	return &listScreen[T]{
		ctx:            ctx,
		chrome:         ch,
		kind:           kind,
		title:          title,
		ctrl:           ctrl,
		columns:        columns,
		input:          input,
		rows:           10,
		loadCountries:  loadCountries,
		countryIndex:   -1,
		supportsActive: supportsActive,
	}
}

func searchPlaceholder[T models.Entity](desc listing.Descriptor[T]) string {
	if desc.Mode == listing.ServerSearch {
		return fmt.Sprintf("name or %d letter ICAO code", desc.CodeLength)
	}
	return "name, manufacturer, ICAO code or engine"
}

// Activate fetches the collection the first time the list is shown
func (s *listScreen[T]) Activate() tea.Cmd {
	if s.started {
		return nil
	}
	s.started = true
	cmds := []tea.Cmd{fetchCmd(func() error { return s.ctrl.FetchAll(s.ctx) })}
	if s.loadCountries != nil {
		ctx, load, kind := s.ctx, s.loadCountries, s.kind
		cmds = append(cmds, func() tea.Msg {
			return countriesMsg{kind: kind, countries: load(ctx)}
		})
	}
	return tea.Batch(cmds...)
}

func (s *listScreen[T]) Capturing() bool {
	return s.input.Focused()
}

func (s *listScreen[T]) Help() string {
	keys := s.chrome.keys
	if s.input.Focused() {
		return helpLine(keys.Blur, keys.Select)
	}
	bindings := []key.Binding{keys.Up, keys.Down, keys.Select, keys.Search}
	if s.loadCountries != nil {
		bindings = append(bindings, keys.CycleCountry)
	}
	if s.supportsActive {
		bindings = append(bindings, keys.CycleActive)
	}
	bindings = append(bindings, keys.ClearFilters, keys.Retry)
	return helpLine(bindings...)
}

func (s *listScreen[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case countriesMsg:
		if msg.kind == s.kind {
			s.countries = msg.countries
		}
		return nil

	case tea.KeyMsg:
		if s.input.Focused() {
			return s.updateInput(msg)
		}
		return s.handleKey(msg)
	}
	return nil
}

func (s *listScreen[T]) updateInput(msg tea.KeyMsg) tea.Cmd {
	keys := s.chrome.keys
	if key.Matches(msg, keys.Blur) || key.Matches(msg, keys.Select) {
		s.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() != s.ctrl.Snapshot().SearchTerm {
		s.cursor, s.offset = 0, 0
		s.ctrl.SetSearchTerm(s.input.Value())
	}
	return cmd
}

func (s *listScreen[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	keys := s.chrome.keys
	snapshot := s.ctrl.Snapshot()

	switch {
	case key.Matches(msg, keys.Search):
		return s.input.Focus()

	case key.Matches(msg, keys.Retry):
		if snapshot.State == listing.Error {
			return fetchCmd(func() error { return s.ctrl.Retry(s.ctx) })
		}

	case key.Matches(msg, keys.CycleCountry):
		if s.loadCountries == nil || len(s.countries) == 0 {
			return nil
		}
		s.countryIndex++
		if s.countryIndex >= len(s.countries) {
			s.countryIndex = -1
		}
		s.activeIndex = 0
		return s.applyFilter(listing.Filter{Country: s.country()})

	case key.Matches(msg, keys.CycleActive):
		if !s.supportsActive {
			return nil
		}
		s.activeIndex = (s.activeIndex + 1) % len(activeOptions)
		s.countryIndex = -1
		return s.applyFilter(listing.Filter{Active: activeOptions[s.activeIndex]})

	case key.Matches(msg, keys.ClearFilters):
		s.countryIndex, s.activeIndex = -1, 0
		return s.applyFilter(listing.Filter{})

	case key.Matches(msg, keys.Up):
		s.moveCursor(-1, len(snapshot.Items))
	case key.Matches(msg, keys.Down):
		s.moveCursor(1, len(snapshot.Items))
	case key.Matches(msg, keys.PageUp):
		s.moveCursor(-s.rows, len(snapshot.Items))
	case key.Matches(msg, keys.PageDown):
		s.moveCursor(s.rows, len(snapshot.Items))
	case key.Matches(msg, keys.Home):
		s.moveCursor(-len(snapshot.Items), len(snapshot.Items))
	case key.Matches(msg, keys.End):
		s.moveCursor(len(snapshot.Items), len(snapshot.Items))

	case key.Matches(msg, keys.Select):
		if s.cursor < len(snapshot.Items) {
			code := snapshot.Items[s.cursor].Code()
			kind := s.kind
			return func() tea.Msg { return openDetailMsg{kind: kind, code: code} }
		}
	}
	return nil
}

// applyFilter resets the search box and refetches through the filter
// endpoint
func (s *listScreen[T]) applyFilter(filter listing.Filter) tea.Cmd {
	s.input.SetValue("")
	s.cursor, s.offset = 0, 0
	return fetchCmd(func() error { return s.ctrl.SetFilter(s.ctx, filter) })
}

func (s *listScreen[T]) country() string {
	if s.countryIndex < 0 || s.countryIndex >= len(s.countries) {
		return ""
	}
	return s.countries[s.countryIndex]
}

// moveCursor keeps the cursor on screen and reports the last row shown to
// the controller, which grows the window once the last loaded row is
// reached
func (s *listScreen[T]) moveCursor(delta, count int) {
	if count == 0 {
		s.cursor, s.offset = 0, 0
		return
	}
	s.cursor = min(max(s.cursor+delta, 0), count-1)
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+s.rows {
		s.offset = s.cursor - s.rows + 1
	}
	lastVisible := min(s.offset+s.rows, count) - 1
	s.ctrl.Reveal(lastVisible)
}

func (s *listScreen[T]) View(width, height int) string {
	theme := s.chrome.theme
	snapshot := s.ctrl.Snapshot()

	var b strings.Builder
	b.WriteString(theme.title().Render(s.title))
	b.WriteString("\n")
	b.WriteString(s.input.View())
	b.WriteString("\n")
	b.WriteString(s.statusLine(snapshot))
	b.WriteString("\n")

	// title (2 lines with border), search, status, header, footer
	s.rows = max(height-6, 1)

	switch snapshot.State {
	case listing.Idle, listing.Loading:
		if !snapshot.Searching || len(snapshot.Items) == 0 {
			b.WriteString(s.chrome.spinner.View() + " " + theme.faint().Render("Loading "+s.ctrl.Descriptor().Name+"..."))
			return b.String()
		}
	case listing.Error:
		b.WriteString(errNotice(theme, s.ctrl.ErrorMessage(), s.chrome.keys.Retry))
		return b.String()
	}
	if snapshot.Empty() {
		b.WriteString(theme.faint().Render("No results found."))
		return b.String()
	}

	b.WriteString(s.renderHeader(width))
	b.WriteString("\n")
	end := min(s.offset+s.rows, len(snapshot.Items))
	for i := s.offset; i < end; i++ {
		b.WriteString(s.renderRow(snapshot.Items[i], i == s.cursor, width))
		b.WriteString("\n")
	}

	switch {
	case snapshot.State == listing.LoadingMore:
		b.WriteString(s.chrome.spinner.View() + " " + theme.faint().Render("Loading more..."))
	case snapshot.HasMore:
		b.WriteString(theme.faint().Render(fmt.Sprintf("Showing %s of %s, scroll down for more",
			humanize.Comma(int64(snapshot.VisibleCount)), humanize.Comma(int64(snapshot.Filtered)))))
	}
	return b.String()
}

func (s *listScreen[T]) statusLine(snapshot listing.Snapshot[T]) string {
	theme := s.chrome.theme
	parts := []string{fmt.Sprintf("%s results", humanize.Comma(int64(snapshot.Filtered)))}
	if snapshot.Total > snapshot.Filtered && snapshot.SearchTerm == "" {
		parts[0] = fmt.Sprintf("%s of %s results", humanize.Comma(int64(snapshot.Filtered)), humanize.Comma(int64(snapshot.Total)))
	}
	if snapshot.Filter.Country != "" {
		parts = append(parts, "country: "+snapshot.Filter.Country)
	}
	if snapshot.Filter.Active != "" {
		parts = append(parts, "active: "+snapshot.Filter.Active)
	}
	line := theme.faint().Render(strings.Join(parts, "  |  "))
	if snapshot.Searching {
		line += "  " + s.chrome.spinner.View() + theme.faint().Render(" Searching...")
	}
	return line
}

func (s *listScreen[T]) renderHeader(width int) string {
	cells := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		cells = append(cells, cell(c.title, c.width))
	}
	return s.chrome.theme.header().MaxWidth(width).Render(strings.Join(cells, " "))
}

func (s *listScreen[T]) renderRow(item T, selected bool, width int) string {
	cells := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		cells = append(cells, cell(c.value(item), c.width))
	}
	style := s.chrome.theme.text()
	if selected {
		style = s.chrome.theme.selected()
	}
	return style.MaxWidth(width).Render(strings.Join(cells, " "))
}

// cell pads or truncates text to a fixed display width
func cell(text string, width int) string {
	text = ansi.Truncate(strings.ReplaceAll(text, "\n", " "), width, "…")
	return text + strings.Repeat(" ", max(width-ansi.StringWidth(text), 0))
}
