package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight_atlas/internal/api"
	"flight_atlas/internal/clock"
	"flight_atlas/internal/config"
	"flight_atlas/internal/contact"
	"flight_atlas/internal/database"
	"flight_atlas/internal/listing"
	"flight_atlas/internal/models"
)

// fakeSource serves a fixed collection
type fakeSource[T models.Entity] struct {
	mu      sync.Mutex
	items   []T
	lookups []string
}

func (f *fakeSource[T]) List(ctx context.Context, q api.Query) (models.Page[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := append([]T(nil), f.items...)
	return models.Page[T]{Content: items, TotalElements: len(items)}, nil
}

func (f *fakeSource[T]) Get(ctx context.Context, code string) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, code)
	for _, item := range f.items {
		if item.Code() == code {
			return item, nil
		}
	}
	var zero T
	return zero, &api.HTTPError{StatusCode: 404, Status: "Not Found"}
}

type fakeAirports struct {
	fakeSource[models.Airport]
}

func (f *fakeAirports) Distance(ctx context.Context, from, to string) (models.Distance, error) {
	return models.Distance{From: from, To: to, DistanceKm: models.NewNumber(5555)}, nil
}

func (f *fakeAirports) Countries(ctx context.Context) []string {
	return []string{"Netherlands", "United Kingdom"}
}

type fakeAirlines struct {
	fakeSource[models.Airline]
}

func (f *fakeAirlines) Countries(ctx context.Context) []string {
	return []string{"Netherlands"}
}

type fakeVisits struct {
	visits []*models.Visit
}

func (f *fakeVisits) Recent(limit int) ([]*models.Visit, error) {
	return f.visits, nil
}

type fakeOutbox struct {
	mu   sync.Mutex
	msgs []*database.ContactMessage
}

func (f *fakeOutbox) Insert(msg *database.ContactMessage) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return int64(len(f.msgs)), nil
}

func (f *fakeOutbox) Count() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs), nil
}

type recorder struct {
	mu     sync.Mutex
	visits []models.Visit
}

func (r *recorder) record(v models.Visit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, v)
}

func (r *recorder) all() []models.Visit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Visit(nil), r.visits...)
}

type fixture struct {
	model    Model
	clock    *clock.Fake
	aircraft *fakeSource[models.AircraftType]
	airports *fakeAirports
	airlines *fakeAirlines
	visits   *fakeVisits
	outbox   *fakeOutbox
	recorder *recorder
}

func newFixture(t *testing.T, aircraftCount int) *fixture {
	f := &fixture{
		clock:    clock.NewFake(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)),
		aircraft: &fakeSource[models.AircraftType]{},
		airports: &fakeAirports{},
		airlines: &fakeAirlines{},
		visits:   &fakeVisits{},
		outbox:   &fakeOutbox{},
		recorder: &recorder{},
	}
	for i := 0; i < aircraftCount; i++ {
		f.aircraft.items = append(f.aircraft.items, models.AircraftType{
			ICAOCode:     fmt.Sprintf("T%03d", i),
			Name:         fmt.Sprintf("Type %d", i),
			Manufacturer: "Boeing",
		})
	}
	f.airports.items = []models.Airport{
		{ICAOCode: "EGLL", Name: "Heathrow", Latitude: models.NewNumber(51.47), Longitude: models.NewNumber(-0.46)},
		{ICAOCode: "EHAM", Name: "Schiphol", Latitude: models.NewNumber(52.31), Longitude: models.NewNumber(4.76)},
		{ICAOCode: "KJFK", Name: "John F Kennedy", Latitude: models.NewNumber(40.64), Longitude: models.NewNumber(-73.78)},
	}
	f.airlines.items = []models.Airline{{ICAOCode: "KLM", Name: "KLM Royal Dutch Airlines", Active: "Y"}}

	f.model = NewModel(context.Background(), Options{
		Aircraft: f.aircraft,
		Airports: f.airports,
		Airlines: f.airlines,
		Visits:   f.visits,
		Record:   f.recorder.record,
		Contact:  contact.NewSubmitter(f.outbox),
		Clock:    f.clock,
		List:     listing.DefaultSettings(),
		Globe:    config.GlobeConfig{FetchSize: 4600, Step: 0.25},
		Dark:     true,
	})
	t.Cleanup(f.model.Close)
	return f
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and every command it produces, feeding the messages to
// the model. Commands that do not finish promptly (cursor blink, spinner
// and animation ticks) are dropped.
func run(f *fixture, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 100; steps++ {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		result := make(chan tea.Msg, 1)
		go func() { result <- next() }()
		var msg tea.Msg
		select {
		case msg = <-result:
		case <-time.After(200 * time.Millisecond):
			continue
		}

		switch msg := msg.(type) {
		case nil, refreshMsg, frameMsg, spinner.TickMsg, tea.QuitMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		updated, produced := f.model.Update(msg)
		f.model = updated.(Model)
		queue = append(queue, produced)
	}
}

func (f *fixture) press(keys ...string) tea.Cmd {
	var last tea.Cmd
	for _, k := range keys {
		updated, cmd := f.model.Update(keyPress(k))
		f.model = updated.(Model)
		run(f, cmd)
		last = cmd
	}
	return last
}

func (f *fixture) view() string {
	updated, _ := f.model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	f.model = updated.(Model)
	return f.model.View()
}

func aircraftList(f *fixture) *listScreen[models.AircraftType] {
	return f.model.screens[ScreenAircraft].(*listScreen[models.AircraftType])
}

func TestNewModel(t *testing.T) {
	f := newFixture(t, 3)

	assert.Equal(t, ScreenHome, f.model.Active())
	assert.True(t, f.model.Dark())
	assert.Contains(t, f.view(), "Flight Atlas")
}

func TestNavigateToListAndDetail(t *testing.T) {
	f := newFixture(t, 3)

	f.press("2")
	assert.Equal(t, ScreenAircraft, f.model.Active())
	assert.Contains(t, f.view(), "Type 0")

	f.press("j", "enter")
	assert.Equal(t, ScreenAircraftDetail, f.model.Active())
	view := f.view()
	assert.Contains(t, view, "T001")
	assert.Contains(t, view, "Type 1")
	assert.Contains(t, view, "Boeing")

	visits := f.recorder.all()
	require.Len(t, visits, 1)
	assert.Equal(t, models.KindAircraft, visits[0].Kind)
	assert.Equal(t, "T001", visits[0].Code)
	assert.Equal(t, "Type 1", visits[0].Name)

	f.press("esc")
	assert.Equal(t, ScreenAircraft, f.model.Active())
}

func TestDetailNotFound(t *testing.T) {
	f := newFixture(t, 0)

	run(f, func() tea.Msg { return openDetailMsg{kind: models.KindAirline, code: "XXX"} })

	assert.Equal(t, ScreenAirlineDetail, f.model.Active())
	assert.Contains(t, f.view(), "The airline with ICAO code XXX could not be found.")
	assert.Empty(t, f.recorder.all())
}

func TestSearchInputCapturesGlobalKeys(t *testing.T) {
	f := newFixture(t, 3)
	f.press("2", "/")
	require.True(t, f.model.screens[ScreenAircraft].Capturing())

	cmd := f.press("q", "2")
	assert.Equal(t, ScreenAircraft, f.model.Active())
	if cmd != nil {
		_, isQuit := cmd().(tea.QuitMsg)
		assert.False(t, isQuit)
	}

	// Client-side filter: "q2" matches nothing
	snapshot := aircraftList(f).ctrl.Snapshot()
	assert.Equal(t, "q2", snapshot.SearchTerm)
	assert.True(t, snapshot.Empty())
	assert.Contains(t, f.view(), "No results found.")

	f.press("esc")
	assert.False(t, f.model.screens[ScreenAircraft].Capturing())
}

func TestListLazyLoad(t *testing.T) {
	f := newFixture(t, 45)
	f.press("2")

	list := aircraftList(f)
	assert.Equal(t, 20, list.ctrl.Snapshot().VisibleCount)

	f.press("G")
	assert.Equal(t, listing.LoadingMore, list.ctrl.Snapshot().State)
	assert.Contains(t, f.view(), "Loading more...")

	f.clock.Advance(500 * time.Millisecond)
	snapshot := list.ctrl.Snapshot()
	assert.Equal(t, listing.Ready, snapshot.State)
	assert.Equal(t, 40, snapshot.VisibleCount)
	assert.True(t, snapshot.HasMore)
}

func TestServerSearchCodeLookup(t *testing.T) {
	f := newFixture(t, 0)
	f.press("3", "/", "E", "G", "L", "L")

	list := f.model.screens[ScreenAirports].(*listScreen[models.Airport])
	assert.True(t, list.ctrl.Snapshot().Searching)

	f.clock.Advance(500 * time.Millisecond)

	snapshot := list.ctrl.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, "EGLL", snapshot.Items[0].ICAOCode)
	assert.Equal(t, []string{"EGLL"}, f.airports.lookups)
}

func TestCountryFilterCycles(t *testing.T) {
	f := newFixture(t, 0)
	f.press("3", "c")

	list := f.model.screens[ScreenAirports].(*listScreen[models.Airport])
	assert.Equal(t, "Netherlands", list.ctrl.Snapshot().Filter.Country)

	f.press("c", "c")
	assert.Empty(t, list.ctrl.Snapshot().Filter.Country)
}

func TestToggleTheme(t *testing.T) {
	f := newFixture(t, 0)

	f.press("t")
	assert.False(t, f.model.Dark())
	assert.Equal(t, LightTheme, f.model.chrome.theme)

	f.press("t")
	assert.True(t, f.model.Dark())
}

func TestQuit(t *testing.T) {
	f := newFixture(t, 0)

	_, cmd := f.model.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestContactForm(t *testing.T) {
	f := newFixture(t, 0)
	f.press("6")

	form := f.model.screens[ScreenContact].(*contactScreen)
	require.True(t, form.Capturing())

	f.press("ctrl+s")
	assert.Len(t, form.errs, 4)
	assert.Contains(t, f.view(), "Name is required")
	assert.Empty(t, f.outbox.msgs)

	form.inputs[0].SetValue("Ada")
	form.inputs[1].SetValue("ada@example")
	form.inputs[2].SetValue("Hello")
	form.inputs[3].SetValue("Great data")
	f.press("ctrl+s")
	assert.Equal(t, "Email is invalid", form.errs[contact.FieldEmail])
	assert.Empty(t, f.outbox.msgs)

	form.inputs[1].SetValue("ada@example.com")
	f.press("ctrl+s")
	assert.Empty(t, form.errs)
	require.Len(t, f.outbox.msgs, 1)
	assert.Equal(t, "ada@example.com", f.outbox.msgs[0].Email)
	assert.Contains(t, f.view(), "Thank you!")
	assert.Equal(t, 1, form.queued)
	assert.Contains(t, f.view(), "Outbox: 1 queued")
	for _, in := range form.inputs {
		assert.Empty(t, in.Value())
	}
}

func TestGlobeFlight(t *testing.T) {
	f := newFixture(t, 0)
	f.press("5")

	g := f.model.screens[ScreenGlobe].(*globeScreen)
	require.Len(t, g.loaded, 3)
	require.True(t, g.Capturing())

	f.press("E", "G", "L", "L", "enter", "K", "J", "F", "K", "enter")

	require.NotNil(t, g.flight)
	assert.Equal(t, "EGLL", g.flight.From.ICAOCode)
	assert.Equal(t, "KJFK", g.flight.To.ICAOCode)
	assert.Empty(t, f.airports.lookups)
	assert.Contains(t, f.view(), "Distance: 5,555 km (2,999 NM)")

	for i := 0; i < 3; i++ {
		g.Update(frameMsg{flight: g.flightID})
		require.NotNil(t, g.marker)
	}
	assert.Contains(t, f.view(), string(rune(0x2708)))

	g.Update(frameMsg{flight: g.flightID})
	assert.Nil(t, g.marker)
	assert.True(t, g.flight.Done())
	assert.Contains(t, f.view(), "Landed at KJFK.")
}

func TestGlobeUnknownAirport(t *testing.T) {
	f := newFixture(t, 0)
	f.press("5", "Z", "Z", "Z", "Z", "enter", "E", "G", "L", "L", "enter")

	g := f.model.screens[ScreenGlobe].(*globeScreen)
	assert.Nil(t, g.flight)
	assert.Contains(t, f.view(), "Airport not found.")
}

func TestHomeRecentVisits(t *testing.T) {
	f := newFixture(t, 0)
	f.visits.visits = []*models.Visit{
		{Kind: models.KindAirport, Code: "EHAM", Name: "Schiphol", Timestamp: time.Now().Add(-time.Hour)},
	}
	run(f, f.model.screens[ScreenHome].Activate())

	view := f.view()
	assert.Contains(t, view, "Recently viewed")
	assert.Contains(t, view, "Schiphol")

	keys := make([]string, len(homeMenu))
	for i := range keys {
		keys[i] = "j"
	}
	f.press(keys...)
	f.press("enter")
	assert.Equal(t, ScreenAirportDetail, f.model.Active())
	assert.True(t, strings.Contains(f.view(), "Schiphol"))

	f.press("esc")
	assert.Equal(t, ScreenHome, f.model.Active())
}
