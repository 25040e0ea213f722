package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"flight_atlas/internal/api"
	"flight_atlas/internal/database"
	"flight_atlas/internal/listing"
	"flight_atlas/internal/models"
)

// Exit codes for one-shot commands
const (
	exitFailure  = 1
	exitUsage    = 2
	exitNotFound = 3
)

// exitError carries the process exit code out of run
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usage(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

// classify maps a backend 404 to its own exit code
func classify(err error) error {
	if api.IsNotFound(err) {
		return &exitError{code: exitNotFound, err: err}
	}
	return &exitError{code: exitFailure, err: err}
}

// cli runs the one-shot commands against the backend. Tables are aligned
// and styled on a terminal and tab separated otherwise.
type cli struct {
	aircraft *api.AircraftTypes
	airports *api.Airports
	airlines *api.Airlines
	out      io.Writer
	tty      bool
}

func newCLI(client *api.Client, out io.Writer, tty bool) *cli {
	return &cli{
		aircraft: api.NewAircraftTypes(client),
		airports: api.NewAirports(client),
		airlines: api.NewAirlines(client),
		out:      out,
		tty:      tty,
	}
}

func (c *cli) list(ctx context.Context, args []string) error {
	var search, country, active, name string
	var limit int

	flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&search, "search", "", "Search term")
	flagSet.StringVar(&country, "country", "", "Country filter (airports, airlines)")
	flagSet.StringVar(&active, "active", "", "Active filter Y or N (airlines)")
	flagSet.StringVar(&name, "name", "", "Airline name contains (airlines)")
	flagSet.IntVar(&limit, "limit", 20, "Maximum rows to print")
	if err := flagSet.Parse(args); err != nil {
		return usage("list: %v", err)
	}
	if flagSet.NArg() != 1 {
		return usage("list: expected exactly one kind")
	}
	kind, ok := models.ParseKind(flagSet.Arg(0))
	if !ok {
		return usage("list: unknown kind %q", flagSet.Arg(0))
	}
	if limit <= 0 {
		return usage("list: --limit must be greater than 0")
	}
	active = strings.ToUpper(active)
	if active != "" && active != "Y" && active != "N" {
		return usage("list: --active must be Y or N")
	}

	if name != "" && (kind != models.KindAirline || search != "" || country != "" || active != "") {
		return usage("list: --name only applies to airlines and cannot be combined with other filters")
	}

	q := api.Query{Size: limit, Search: search, Country: country, Active: active}
	switch kind {
	case models.KindAircraft:
		if country != "" || active != "" {
			return usage("list: aircraft only support --search")
		}
		page, err := c.aircraft.List(ctx, api.Query{})
		if err != nil {
			return classify(err)
		}
		items := listing.Aircraft.Apply(page.Content, search)
		rows := make([][]string, 0, min(len(items), limit))
		for _, a := range items[:min(len(items), limit)] {
			rows = append(rows, []string{a.ICAOCode, a.Name, a.Manufacturer, a.EngineType})
		}
		c.table([]string{"ICAO", "Name", "Manufacturer", "Engine"}, rows)
		c.total(len(rows), len(items))

	case models.KindAirport:
		if active != "" {
			return usage("list: airports do not support --active")
		}
		page, err := listing.Query(ctx, listing.Airports, listing.Source[models.Airport](c.airports), q)
		if err != nil {
			return classify(err)
		}
		items := page.Content[:min(len(page.Content), limit)]
		rows := make([][]string, 0, len(items))
		for _, a := range items {
			rows = append(rows, []string{a.ICAOCode, a.IATACode, a.Name, a.City, a.Country})
		}
		c.table([]string{"ICAO", "IATA", "Name", "City", "Country"}, rows)
		c.total(len(rows), max(page.TotalElements, len(page.Content)))

	case models.KindAirline:
		var page models.Page[models.Airline]
		var err error
		if name != "" {
			page, err = c.airlines.ByName(ctx, name, 0, limit)
		} else {
			page, err = listing.Query(ctx, listing.Airlines, listing.Source[models.Airline](c.airlines), q)
		}
		if err != nil {
			return classify(err)
		}
		items := page.Content[:min(len(page.Content), limit)]
		rows := make([][]string, 0, len(items))
		for _, a := range items {
			rows = append(rows, []string{a.ICAOCode, a.IATA, a.Name, a.Country, a.Status()})
		}
		c.table([]string{"ICAO", "IATA", "Name", "Country", "Status"}, rows)
		c.total(len(rows), max(page.TotalElements, len(page.Content)))
	}
	return nil
}

// show prints one record as indented JSON
func (c *cli) show(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("show: expected <kind> <code>")
	}
	kind, ok := models.ParseKind(args[0])
	if !ok {
		return usage("show: unknown kind %q", args[0])
	}
	code := strings.ToUpper(strings.TrimSpace(args[1]))
	if code == "" {
		return usage("show: code must not be empty")
	}

	var record any
	var err error
	switch kind {
	case models.KindAircraft:
		record, err = c.aircraft.Get(ctx, code)
	case models.KindAirport:
		record, err = c.airports.Get(ctx, code)
	case models.KindAirline:
		record, err = c.airlines.Get(ctx, code)
	}
	if err != nil {
		slog.Debug("Lookup failed", "kind", kind, "code", code, "error", err)
		return classify(err)
	}
	return c.json(record)
}

// createAircraft posts the aircraft type described by a JSON (comments
// allowed) or YAML file
func (c *cli) createAircraft(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("create-aircraft: expected <file.json|file.yaml>")
	}
	aircraft, err := readAircraft(args[0])
	if err != nil {
		return usage("create-aircraft: %v", err)
	}
	if err := aircraft.Validate(); err != nil {
		return usage("create-aircraft: %v", err)
	}

	created, err := c.aircraft.Create(ctx, aircraft)
	if err != nil {
		return classify(err)
	}
	slog.Info("Created aircraft type", "code", created.ICAOCode)
	return c.json(created)
}

func readAircraft(path string) (models.AircraftType, error) {
	var aircraft models.AircraftType
	data, err := os.ReadFile(path)
	if err != nil {
		return aircraft, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// YAML goes through JSON so the field names and Number decoding
		// stay in one place
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return aircraft, fmt.Errorf("invalid YAML: %w", err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return aircraft, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		data = jsonc.ToJSON(data)
	}

	if err := json.Unmarshal(data, &aircraft); err != nil {
		return aircraft, fmt.Errorf("invalid JSON: %w", err)
	}
	return aircraft, nil
}

func (c *cli) distance(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("distance: expected <from> <to>")
	}
	from, to := strings.ToUpper(args[0]), strings.ToUpper(args[1])
	d, err := c.airports.Distance(ctx, from, to)
	if err != nil {
		return classify(err)
	}
	if !d.DistanceKm.Valid {
		return classify(errors.New("backend returned no distance"))
	}
	fmt.Fprintf(c.out, "%s to %s: %s km (%s NM)\n", d.From, d.To,
		humanize.FormatFloat("#,###.", d.DistanceKm.Value),
		humanize.FormatFloat("#,###.", d.NauticalMiles()))
	return nil
}

// outbox lists the contact messages queued from the TUI, oldest first
func (c *cli) outbox(repo database.ContactRepository) error {
	msgs, err := repo.List()
	if err != nil {
		return classify(err)
	}
	rows := make([][]string, 0, len(msgs))
	for _, m := range msgs {
		created := m.CreatedAt.Format(time.RFC3339)
		if c.tty {
			created = humanize.Time(m.CreatedAt)
		}
		rows = append(rows, []string{strconv.FormatInt(m.ID, 10), created, m.Name, m.Email, m.Subject})
	}
	c.table([]string{"ID", "Queued", "Name", "Email", "Subject"}, rows)
	if c.tty {
		fmt.Fprintf(c.out, "\n%s queued\n", humanize.Comma(int64(len(msgs))))
	}
	return nil
}

func (c *cli) json(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func (c *cli) total(shown, total int) {
	if !c.tty {
		return
	}
	fmt.Fprintf(c.out, "\nShowing %s of %s\n", humanize.Comma(int64(shown)), humanize.Comma(int64(total)))
}

func (c *cli) table(headers []string, rows [][]string) {
	if !c.tty {
		for _, row := range rows {
			fmt.Fprintln(c.out, strings.Join(row, "\t"))
		}
		return
	}
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "No results found.")
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = ansi.StringWidth(h)
	}
	for _, row := range rows {
		for i, v := range row {
			widths[i] = min(max(widths[i], ansi.StringWidth(v)), 40)
		}
	}

	header := lipgloss.NewStyle().Bold(true)
	line := func(cells []string, style *lipgloss.Style) {
		parts := make([]string, len(cells))
		for i, v := range cells {
			v = ansi.Truncate(v, widths[i], "…")
			v += strings.Repeat(" ", widths[i]-ansi.StringWidth(v))
			if style != nil {
				v = style.Render(v)
			}
			parts[i] = v
		}
		fmt.Fprintln(c.out, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	line(headers, &header)
	for _, row := range rows {
		line(row, nil)
	}
}
