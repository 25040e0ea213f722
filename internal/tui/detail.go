package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"flight_atlas/internal/detail"
	"flight_atlas/internal/models"
)

// section is a titled group of fields on a detail page
type section struct {
	title  string
	fields []field
}

type field struct {
	label string
	value string
}

func text(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func aircraftSections(a models.AircraftType) []section {
	engines := "N/A"
	if len(a.EngineModels) > 0 {
		engines = strings.Join(a.EngineModels, ", ")
	}
	return []section{
		{title: "General", fields: []field{
			{"ICAO code", text(a.ICAOCode)},
			{"Name", text(a.Name)},
			{"Model", text(a.ModelName)},
			{"Manufacturer", text(a.Manufacturer)},
			{"Type code", text(a.TypeCode)},
			{"Body", text(a.BodyType)},
			{"Wing", text(a.WingType)},
			{"Wing position", text(a.WingPosition)},
			{"Tail", text(a.TailType)},
			{"Weight category", text(a.WeightCategory)},
			{"Performance category", text(a.AircraftPerformanceCategory)},
		}},
		{title: "Dimensions", fields: []field{
			{"Wingspan", a.WingspanMeters.WithUnit("m")},
			{"Length", a.LengthMeters.WithUnit("m")},
			{"Height", a.HeightMeters.WithUnit("m")},
		}},
		{title: "Engines", fields: []field{
			{"Type", text(a.EngineType)},
			{"Count", a.EngineCount.String()},
			{"Position", text(a.EnginePosition)},
			{"Powerplant", text(a.Powerplant)},
			{"Models", engines},
		}},
		{title: "Performance", fields: []field{
			{"MTOW", a.MaxTakeOffWeightKg.WithUnit("kg")},
			{"MLW", a.MaxLandingWeightKg.WithUnit("kg")},
			{"Take-off V2", a.TakeOffV2Kts.WithUnit("kts")},
			{"Take-off distance", a.TakeOffDistanceMeters.WithUnit("m")},
			{"Initial climb IAS", a.InitialClimbIasKts.WithUnit("kts")},
			{"Initial climb ROC", a.InitialClimbRocFtMin.WithUnit("ft/min")},
			{"Climb to FL150 IAS", a.ClimbToFL150IasKts.WithUnit("kts")},
			{"Climb to FL150 ROC", a.ClimbToFL150RocFtMin.WithUnit("ft/min")},
			{"Cruise IAS", a.CruiseIasKts.WithUnit("kts")},
			{"Cruise Mach", a.CruiseMach.String()},
			{"Cruise altitude", a.CruiseAltitudeFt.WithUnit("ft")},
		}},
		{title: "Airport requirements", fields: []field{
			{"Aerodrome reference code", text(a.AerodromeReferenceCode)},
			{"RFF category", text(a.RFFCategory)},
			{"Landing gear", text(a.LandingGearType)},
		}},
	}
}

func airportSections(a models.Airport) []section {
	return []section{
		{title: "General", fields: []field{
			{"ICAO code", text(a.ICAOCode)},
			{"IATA code", text(a.IATACode)},
			{"Name", text(a.Name)},
			{"City", text(a.City)},
			{"Country", text(a.Country)},
			{"Location", text(a.Location)},
		}},
		{title: "Position", fields: []field{
			{"Latitude", a.Latitude.String()},
			{"Longitude", a.Longitude.String()},
			{"Elevation", a.Elevation.WithUnit("ft")},
		}},
		{title: "ICAO", fields: []field{
			{"Region", text(a.ICAORegion)},
			{"Territory", text(a.ICAOTerritory)},
			{"KC code", text(a.KCCode)},
		}},
		{title: "Facilities", fields: []field{
			{"Basic services", text(a.AirportBS)},
			{"Line of sight", text(a.AirportLOS)},
			{"Rescue equipment", text(a.AirportRE)},
		}},
	}
}

func airlineSections(a models.Airline) []section {
	return []section{
		{title: "General", fields: []field{
			{"ICAO code", text(a.ICAOCode)},
			{"IATA code", text(a.IATA)},
			{"Name", text(a.Name)},
			{"Callsign", text(a.Callsign)},
			{"Country", text(a.Country)},
			{"Status", a.Status()},
		}},
		{title: "Contact", fields: []field{
			{"Website", text(a.Website)},
			{"Email", text(a.Email)},
			{"Phone", text(a.Phone)},
		}},
	}
}

// detailScreen renders one record of a detail.Controller in a scrollable
// viewport. A successful load is recorded as a visit.
type detailScreen[T models.Entity] struct {
	ctx      context.Context
	chrome   *chrome
	kind     models.Kind
	ctrl     *detail.Controller[T]
	name     func(T) string
	sections func(T) []section
	record   func(models.Visit)

	code     string
	viewport viewport.Model
}

func newDetailScreen[T models.Entity](ctx context.Context, ch *chrome, kind models.Kind, ctrl *detail.Controller[T], name func(T) string, sections func(T) []section, record func(models.Visit)) *detailScreen[T] {
	return &detailScreen[T]{
		ctx:      ctx,
		chrome:   ch,
		kind:     kind,
		ctrl:     ctrl,
		name:     name,
		sections: sections,
		record:   record,
		viewport: viewport.New(80, 20),
	}
}

// Activate loads the code set by the model before switching here
func (s *detailScreen[T]) Activate() tea.Cmd {
	s.viewport.GotoTop()
	return s.load(func() error { return s.ctrl.Load(s.ctx, s.code) })
}

func (s *detailScreen[T]) load(fn func() error) tea.Cmd {
	return func() tea.Msg {
		_ = fn()
		view := s.ctrl.View()
		if view.State == detail.Ready {
			s.record(models.Visit{Kind: s.kind, Code: view.Record.Code(), Name: s.name(view.Record)})
		}
		return refreshMsg{}
	}
}

func (s *detailScreen[T]) Capturing() bool { return false }

func (s *detailScreen[T]) Help() string {
	keys := s.chrome.keys
	return helpLine(keys.Up, keys.Down, keys.Back, keys.Retry)
}

func (s *detailScreen[T]) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	keys := s.chrome.keys
	switch {
	case key.Matches(keyMsg, keys.Retry):
		if s.ctrl.View().State == detail.Error {
			return s.load(func() error { return s.ctrl.Reload(s.ctx) })
		}
	case key.Matches(keyMsg, keys.Up):
		s.viewport.LineUp(1)
	case key.Matches(keyMsg, keys.Down):
		s.viewport.LineDown(1)
	case key.Matches(keyMsg, keys.PageUp):
		s.viewport.LineUp(max(s.viewport.Height/2, 1))
	case key.Matches(keyMsg, keys.PageDown):
		s.viewport.LineDown(max(s.viewport.Height/2, 1))
	case key.Matches(keyMsg, keys.Home):
		s.viewport.GotoTop()
	case key.Matches(keyMsg, keys.End):
		s.viewport.GotoBottom()
	}
	return nil
}

func (s *detailScreen[T]) View(width, height int) string {
	theme := s.chrome.theme
	view := s.ctrl.View()

	switch view.State {
	case detail.Idle, detail.Loading:
		return s.chrome.spinner.View() + " " + theme.faint().Render("Loading "+string(s.kind)+" "+s.code+"...")
	case detail.NotFound:
		return theme.errorText().Render(s.ctrl.Message())
	case detail.Error:
		return errNotice(theme, s.ctrl.Message(), s.chrome.keys.Retry)
	}

	record := view.Record
	heading := theme.title().Render(record.Code() + "  " + s.name(record))

	labelWidth := 0
	groups := s.sections(record)
	for _, g := range groups {
		for _, f := range g.fields {
			labelWidth = max(labelWidth, len(f.label))
		}
	}

	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(theme.accent().Bold(true).Render(g.title))
		b.WriteString("\n")
		for _, f := range g.fields {
			b.WriteString(theme.faint().Render(cell(f.label, labelWidth)))
			b.WriteString("  ")
			b.WriteString(theme.text().Render(f.value))
			b.WriteString("\n")
		}
	}

	s.viewport.Width = width
	s.viewport.Height = max(height-2, 1)
	s.viewport.SetContent(b.String())
	return heading + "\n" + s.viewport.View()
}
