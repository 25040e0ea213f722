package detail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"flight_atlas/internal/api"
	"flight_atlas/internal/models"
)

// State is the lifecycle of a detail view
type State int

const (
	Idle State = iota
	Loading
	Ready
	NotFound
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case NotFound:
		return "not_found"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidCode is returned for codes that cannot be ICAO codes. They are
// never sent to the backend.
var ErrInvalidCode = errors.New("invalid ICAO code")

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{2,4}$`)

// ValidCode reports whether code looks like an ICAO code
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Fetcher loads one record by code
type Fetcher[T any] interface {
	Get(ctx context.Context, code string) (T, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc[T any] func(ctx context.Context, code string) (T, error)

// Get implements Fetcher
func (f FetcherFunc[T]) Get(ctx context.Context, code string) (T, error) { return f(ctx, code) }

// Controller loads and holds a single record
type Controller[T models.Entity] struct {
	name    string
	fetcher Fetcher[T]

	mu       sync.Mutex
	state    State
	code     string
	record   T
	err      error
	loads    uint64
	onChange func()
}

// NewController creates an idle controller; name is the singular entity
// label used in messages ("airport")
func NewController[T models.Entity](name string, fetcher Fetcher[T]) *Controller[T] {
	return &Controller[T]{name: name, fetcher: fetcher}
}

// OnChange registers a hook invoked after every state transition
func (c *Controller[T]) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Load fetches code. Calling Load with a new code replaces the previous
// record; a response for an older code is discarded.
func (c *Controller[T]) Load(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)

	c.mu.Lock()
	c.loads++
	load := c.loads
	c.code = code
	var zero T
	c.record = zero
	c.err = nil

	if !ValidCode(code) {
		c.state = NotFound
		c.err = fmt.Errorf("%w: %q", ErrInvalidCode, code)
		c.mu.Unlock()
		slog.Info("Rejected detail code", "kind", c.name, "code", code)
		c.notify()
		return nil
	}

	c.state = Loading
	c.mu.Unlock()
	c.notify()

	record, err := c.fetcher.Get(ctx, code)

	c.mu.Lock()
	if load != c.loads {
		c.mu.Unlock()
		return nil
	}
	switch {
	case err == nil && record.Validate() == nil:
		c.state = Ready
		c.record = record
	case err == nil, api.IsNotFound(err), errors.Is(err, api.ErrEmptyBody):
		c.state = NotFound
		err = nil
	default:
		c.state = Error
		c.err = err
	}
	state := c.state
	c.mu.Unlock()

	switch state {
	case Error:
		slog.Error("Failed to fetch details", "kind", c.name, "code", code, "error", err)
	case NotFound:
		slog.Info("Record not found", "kind", c.name, "code", code)
	}
	c.notify()
	return err
}

// Reload fetches the current code again
func (c *Controller[T]) Reload(ctx context.Context) error {
	c.mu.Lock()
	code := c.code
	c.mu.Unlock()
	return c.Load(ctx, code)
}

// View is a consistent copy of the detail state
type View[T any] struct {
	State  State
	Code   string
	Record T
	Err    error
}

// View returns the current state
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View[T]{State: c.state, Code: c.code, Record: c.record, Err: c.err}
}

// Message is the user facing text for the error and not-found states
func (c *Controller[T]) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Error:
		return fmt.Sprintf("Failed to fetch %s details. Please try again later.", c.name)
	case NotFound:
		return fmt.Sprintf("The %s with ICAO code %s could not be found.", c.name, c.code)
	}
	return ""
}

func (c *Controller[T]) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
