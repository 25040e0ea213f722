package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"flight_atlas/internal/api"
	"flight_atlas/internal/clock"
	"flight_atlas/internal/config"
	"flight_atlas/internal/contact"
	"flight_atlas/internal/daemon"
	"flight_atlas/internal/database"
	"flight_atlas/internal/listing"
	"flight_atlas/internal/tui"
)

func initLogger(cfg *config.Config, out io.Writer) {
	var logLevel slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		var coded *exitError
		if errors.As(err, &coded) {
			fmt.Fprintf(os.Stderr, "error: %v\n", coded.err)
			os.Exit(coded.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var configPath string

	flagSet := pflag.NewFlagSet("flight_atlas", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "Path to config file (YAML)")
	flagSet.SetInterspersed(false)
	flagSet.Usage = func() { printUsage(os.Stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return usage("%v", err)
	}

	if configPath != "" {
		os.Setenv("FLIGHT_ATLAS_CONFIG_PATH", configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		// The logger isn't initialized yet
		basicLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		basicLogger.Error("Failed to load configuration", "error", err)
		return err
	}

	client := api.NewClient(cfg.APIURL,
		api.WithHeader(cfg.ProxyHeader.Name, cfg.ProxyHeader.Value),
		api.WithTimeout(cfg.RequestTimeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rest := flagSet.Args()
	command := "tui"
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	if command == "tui" {
		return runTUI(ctx, cfg, client)
	}

	initLogger(cfg, os.Stderr)
	cli := newCLI(client, os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
	switch command {
	case "list":
		return cli.list(ctx, rest)
	case "show":
		return cli.show(ctx, rest)
	case "create-aircraft":
		return cli.createAircraft(ctx, rest)
	case "distance":
		return cli.distance(ctx, rest)
	case "outbox":
		db, err := database.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		return cli.outbox(db.ContactRepository())
	case "help":
		printUsage(os.Stdout, flagSet)
		return nil
	}
	return usage("unknown command %q", command)
}

// runTUI owns the terminal until the user quits. Logs go to the configured
// file because the program draws on stdout.
func runTUI(ctx context.Context, cfg *config.Config, client *api.Client) error {
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	initLogger(cfg, logFile)

	d, err := daemon.New(daemon.Config{
		DBPath:        cfg.DBPath,
		BatchSize:     cfg.Visits.BatchSize,
		FlushInterval: cfg.Visits.FlushInterval,
		Keep:          cfg.Visits.Keep,
		PruneInterval: cfg.Visits.PruneInterval,
	})
	if err != nil {
		slog.Error("Failed to create daemon", "error", err)
		return err
	}
	if err := d.Start(); err != nil {
		return err
	}
	defer d.Stop()

	model := tui.NewModel(ctx, tui.Options{
		Aircraft: api.NewAircraftTypes(client),
		Airports: api.NewAirports(client),
		Airlines: api.NewAirlines(client),
		Visits:   d.Visits(),
		Record:   d.Record,
		Contact:  contact.NewSubmitter(d.Contacts()),
		Clock:    clock.Real(),
		List: listing.Settings{
			PageSize:   cfg.List.PageSize,
			LoadStep:   cfg.List.LoadStep,
			LoadDelay:  cfg.List.LoadDelay,
			Debounce:   cfg.List.Debounce,
			SearchSize: cfg.List.SearchSize,
		},
		Globe: cfg.Globe,
		Dark:  cfg.Theme.Dark,
	})
	defer model.Close()

	slog.Info("Starting TUI", "api_url", cfg.APIURL)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		slog.Error("TUI stopped", "error", err)
		return err
	}
	slog.Info("Shutdown complete")
	return nil
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprint(w, `flight_atlas browses aircraft types, airports and airlines.

Usage:
  flight_atlas [--config file] [tui]
  flight_atlas [--config file] list <aircraft|airports|airlines> [--search s] [--country c] [--active Y|N] [--name n] [--limit n]
  flight_atlas [--config file] show <aircraft|airport|airline> <code>
  flight_atlas [--config file] create-aircraft <file.json>
  flight_atlas [--config file] distance <from> <to>
  flight_atlas [--config file] outbox

Flags:
`)
	fmt.Fprint(w, flagSet.FlagUsages())
}
