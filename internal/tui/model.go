package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"flight_atlas/internal/clock"
	"flight_atlas/internal/config"
	"flight_atlas/internal/contact"
	"flight_atlas/internal/detail"
	"flight_atlas/internal/listing"
	"flight_atlas/internal/models"
)

// ScreenID identifies a view. Views replace the routes of a web client.
type ScreenID int

const (
	ScreenHome ScreenID = iota
	ScreenAircraft
	ScreenAirports
	ScreenAirlines
	ScreenGlobe
	ScreenContact
	ScreenAbout
	ScreenAircraftDetail
	ScreenAirportDetail
	ScreenAirlineDetail
)

func (id ScreenID) String() string {
	switch id {
	case ScreenHome:
		return "Home"
	case ScreenAircraft:
		return "Aircraft"
	case ScreenAirports:
		return "Airports"
	case ScreenAirlines:
		return "Airlines"
	case ScreenGlobe:
		return "Globe"
	case ScreenContact:
		return "Contact"
	case ScreenAbout:
		return "About"
	case ScreenAircraftDetail:
		return "Aircraft details"
	case ScreenAirportDetail:
		return "Airport details"
	case ScreenAirlineDetail:
		return "Airline details"
	}
	return "Unknown"
}

// screen is one view of the client. Screens are pointers owned by the
// Model; Update mutates them in place.
type screen interface {
	// Activate is called every time the screen becomes visible
	Activate() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
	// Capturing reports whether a text input has focus, in which case
	// global keys are not interpreted
	Capturing() bool
	Help() string
}

// AirportService is the airport backend used by lists, details and the globe
type AirportService interface {
	listing.Source[models.Airport]
	Distance(ctx context.Context, from, to string) (models.Distance, error)
	Countries(ctx context.Context) []string
}

// AirlineService is the airline backend
type AirlineService interface {
	listing.Source[models.Airline]
	Countries(ctx context.Context) []string
}

// VisitStore lists recently viewed records
type VisitStore interface {
	Recent(limit int) ([]*models.Visit, error)
}

// Options wires the model to its collaborators
type Options struct {
	Aircraft listing.Source[models.AircraftType]
	Airports AirportService
	Airlines AirlineService
	Visits   VisitStore
	Record   func(models.Visit)
	Contact  *contact.Submitter
	Clock    clock.Clock
	List     listing.Settings
	Globe    config.GlobeConfig
	Dark     bool
}

// chrome is the state shared by every screen
type chrome struct {
	theme   Theme
	dark    bool
	keys    KeyMap
	spinner spinner.Model
}

// refreshMsg is sent when a controller changed state on another goroutine
type refreshMsg struct{}

// navigateMsg switches to a top-level screen
type navigateMsg struct {
	screen ScreenID
}

// openDetailMsg opens the detail screen of a record
type openDetailMsg struct {
	kind models.Kind
	code string
}

// Model is the top-level bubbletea model
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	chrome  *chrome
	screens map[ScreenID]screen
	active  ScreenID
	history []ScreenID
	events  chan tea.Msg
	closers []func()

	aircraftDetail *detailScreen[models.AircraftType]
	airportDetail  *detailScreen[models.Airport]
	airlineDetail  *detailScreen[models.Airline]

	width  int
	height int
}

// NewModel builds every screen. Close must be called after the program
// exits to stop pending timers.
func NewModel(ctx context.Context, opts Options) Model {
	ctx, cancel := context.WithCancel(ctx)
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Record == nil {
		opts.Record = func(models.Visit) {}
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	ch := &chrome{theme: ThemeFor(opts.Dark), dark: opts.Dark, keys: DefaultKeyMap, spinner: spin}

	m := Model{
		ctx:    ctx,
		cancel: cancel,
		chrome: ch,
		active: ScreenHome,
		events: make(chan tea.Msg, 64),
	}

	aircraft := listing.NewController(ctx, listing.Aircraft, opts.Aircraft, opts.Clock, opts.List)
	airports := listing.NewController(ctx, listing.Airports, listing.Source[models.Airport](opts.Airports), opts.Clock, opts.List)
	airlines := listing.NewController(ctx, listing.Airlines, listing.Source[models.Airline](opts.Airlines), opts.Clock, opts.List)
	for _, c := range []interface {
		OnChange(func())
		Close()
	}{aircraft, airports, airlines} {
		c.OnChange(m.notify)
		m.closers = append(m.closers, c.Close)
	}

	m.aircraftDetail = newDetailScreen(ctx, ch, models.KindAircraft,
		detail.NewController[models.AircraftType]("aircraft", opts.Aircraft),
		func(a models.AircraftType) string { return a.Name }, aircraftSections, opts.Record)
	m.airportDetail = newDetailScreen(ctx, ch, models.KindAirport,
		detail.NewController[models.Airport]("airport", opts.Airports),
		func(a models.Airport) string { return a.Name }, airportSections, opts.Record)
	m.airlineDetail = newDetailScreen(ctx, ch, models.KindAirline,
		detail.NewController[models.Airline]("airline", opts.Airlines),
		func(a models.Airline) string { return a.Name }, airlineSections, opts.Record)

	m.screens = map[ScreenID]screen{
		ScreenHome:           newHomeScreen(ch, opts.Visits),
		ScreenAircraft:       newListScreen(ctx, ch, models.KindAircraft, "Aircraft types", aircraft, aircraftColumns, nil, false),
		ScreenAirports:       newListScreen(ctx, ch, models.KindAirport, "Airports", airports, airportColumns, opts.Airports.Countries, false),
		ScreenAirlines:       newListScreen(ctx, ch, models.KindAirline, "Airlines", airlines, airlineColumns, opts.Airlines.Countries, true),
		ScreenGlobe:          newGlobeScreen(ctx, ch, opts.Airports, opts.Globe),
		ScreenContact:        newContactScreen(ch, opts.Contact),
		ScreenAbout:          newAboutScreen(ch),
		ScreenAircraftDetail: m.aircraftDetail,
		ScreenAirportDetail:  m.airportDetail,
		ScreenAirlineDetail:  m.airlineDetail,
	}
	return m
}

// Close stops controller timers and cancels in-flight requests
func (m Model) Close() {
	for _, c := range m.closers {
		c()
	}
	m.cancel()
}

// Active returns the visible screen
func (m Model) Active() ScreenID {
	return m.active
}

// Dark reports whether the dark palette is in use
func (m Model) Dark() bool {
	return m.chrome.dark
}

// notify is the controllers' change hook. It never blocks: when the
// buffer is full a refresh is already queued.
func (m Model) notify() {
	select {
	case m.events <- refreshMsg{}:
	default:
	}
}

// listenForEvent returns a tea.Cmd that blocks until a controller reports
// a change, then delivers it to Update.
func listenForEvent(channel <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-channel
		if !ok {
			return nil
		}
		return msg
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenForEvent(m.events),
		m.chrome.spinner.Tick,
		m.screens[m.active].Activate(),
	)
}

// Update implements tea.Model. Global keys are interpreted only when the
// active screen has no focused text input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		return m, listenForEvent(m.events)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.chrome.spinner, cmd = m.chrome.spinner.Update(msg)
		return m, cmd

	case navigateMsg:
		return m, m.switchTo(msg.screen, false)

	case openDetailMsg:
		return m, m.openDetail(msg.kind, msg.code)

	case tea.KeyMsg:
		keys := m.chrome.keys
		if key.Matches(msg, keys.ForceQuit) {
			return m, tea.Quit
		}
		if !m.screens[m.active].Capturing() {
			switch {
			case key.Matches(msg, keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, keys.ToggleTheme):
				m.chrome.dark = !m.chrome.dark
				m.chrome.theme = ThemeFor(m.chrome.dark)
				return m, nil
			case key.Matches(msg, keys.Back) && len(m.history) > 0:
				previous := m.history[len(m.history)-1]
				m.history = m.history[:len(m.history)-1]
				m.active = previous
				return m, nil
			case key.Matches(msg, keys.GoHome):
				return m, m.switchTo(ScreenHome, false)
			case key.Matches(msg, keys.GoAircraft):
				return m, m.switchTo(ScreenAircraft, false)
			case key.Matches(msg, keys.GoAirports):
				return m, m.switchTo(ScreenAirports, false)
			case key.Matches(msg, keys.GoAirlines):
				return m, m.switchTo(ScreenAirlines, false)
			case key.Matches(msg, keys.GoGlobe):
				return m, m.switchTo(ScreenGlobe, false)
			case key.Matches(msg, keys.GoContact):
				return m, m.switchTo(ScreenContact, false)
			case key.Matches(msg, keys.GoAbout):
				return m, m.switchTo(ScreenAbout, false)
			}
		}
	}

	return m, m.screens[m.active].Update(msg)
}

// switchTo activates a screen. Detail screens push the current screen so
// Back returns to it; top-level switches reset the history.
func (m *Model) switchTo(id ScreenID, push bool) tea.Cmd {
	if push {
		m.history = append(m.history, m.active)
	} else {
		m.history = m.history[:0]
	}
	m.active = id
	return m.screens[id].Activate()
}

func (m *Model) openDetail(kind models.Kind, code string) tea.Cmd {
	switch kind {
	case models.KindAircraft:
		m.aircraftDetail.code = code
		return m.switchTo(ScreenAircraftDetail, true)
	case models.KindAirport:
		m.airportDetail.code = code
		return m.switchTo(ScreenAirportDetail, true)
	case models.KindAirline:
		m.airlineDetail.code = code
		return m.switchTo(ScreenAirlineDetail, true)
	}
	return nil
}

var navOrder = []ScreenID{ScreenHome, ScreenAircraft, ScreenAirports, ScreenAirlines, ScreenGlobe, ScreenContact, ScreenAbout}

// View implements tea.Model
func (m Model) View() string {
	width, height := m.width, m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 30
	}
	theme := m.chrome.theme

	tabs := make([]string, 0, len(navOrder))
	for i, id := range navOrder {
		label := string(rune('1'+i)) + " " + id.String()
		if id == m.active || (m.active > ScreenAbout && id == m.parentOf(m.active)) {
			tabs = append(tabs, theme.selected().Padding(0, 1).Render(label))
		} else {
			tabs = append(tabs, theme.faint().Padding(0, 1).Render(label))
		}
	}
	nav := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	current := m.screens[m.active]
	help := theme.help().Render(current.Help() + "  " + helpLine(m.chrome.keys.ToggleTheme, m.chrome.keys.Quit))

	bodyHeight := max(height-3, 1)
	body := lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(current.View(width, bodyHeight))

	return strings.Join([]string{nav, body, help}, "\n")
}

func (m Model) parentOf(id ScreenID) ScreenID {
	switch id {
	case ScreenAircraftDetail:
		return ScreenAircraft
	case ScreenAirportDetail:
		return ScreenAirports
	case ScreenAirlineDetail:
		return ScreenAirlines
	}
	return id
}

// fetchCmd runs a blocking controller call; the result arrives through
// the controller's change hook
func fetchCmd(fn func() error) tea.Cmd {
	return func() tea.Msg {
		_ = fn()
		return nil
	}
}

// errNotice formats an error line with a retry hint
func errNotice(theme Theme, text string, retry key.Binding) string {
	return theme.errorText().Render(text) + "  " + theme.help().Render(helpLine(retry))
}
