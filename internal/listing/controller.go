package listing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"flight_atlas/internal/api"
	"flight_atlas/internal/clock"
	"flight_atlas/internal/models"
)

// State is the lifecycle of a list view
type State int

const (
	Idle State = iota
	Loading
	Ready
	LoadingMore
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
	case LoadingMore:
		return "loading_more"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Source is the backend a list view reads from
type Source[T any] interface {
	List(ctx context.Context, q api.Query) (models.Page[T], error)
	Get(ctx context.Context, code string) (T, error)
}

// Settings holds the paging and timing knobs
type Settings struct {
	PageSize   int           // initial visible window
	LoadStep   int           // rows added per LoadMore
	LoadDelay  time.Duration // artificial delay before the window grows
	Debounce   time.Duration // quiet period before a server search
	SearchSize int           // page size requested from the backend
}

// DefaultSettings returns 20 row pages, 500ms delays and 100 row fetches
func DefaultSettings() Settings {
	return Settings{
		PageSize:   20,
		LoadStep:   20,
		LoadDelay:  500 * time.Millisecond,
		Debounce:   500 * time.Millisecond,
		SearchSize: 100,
	}
}

// Filter narrows server-search lists through the dedicated endpoints
type Filter struct {
	Country string
	Active  string // "Y", "N" or empty
}

// Controller owns the state of one list view. It is safe for concurrent
// use: fetches complete and timers fire on other goroutines.
type Controller[T models.Entity] struct {
	desc     Descriptor[T]
	source   Source[T]
	clock    clock.Clock
	settings Settings

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	items      []T
	filtered   []T
	total      int
	search     string
	filter     Filter
	visible    int
	hasMore    bool
	err        error
	searching  bool
	debounce   clock.Timer
	loadTimer  clock.Timer
	generation uint64 // bumped per issued query; stale responses are dropped
	loadSeq    uint64 // identifies the pending LoadMore; bumped when it is cancelled
	onChange   func()
}

// NewController creates an idle controller. ctx bounds the fetches started
// by debounce timers; Close cancels it.
func NewController[T models.Entity](ctx context.Context, desc Descriptor[T], source Source[T], clk clock.Clock, settings Settings) *Controller[T] {
	ctx, cancel := context.WithCancel(ctx)
	if clk == nil {
		clk = clock.Real()
	}
	return &Controller[T]{
		desc:     desc,
		source:   source,
		clock:    clk,
		settings: settings,
		ctx:      ctx,
		cancel:   cancel,
		state:    Idle,
	}
}

// OnChange registers a hook invoked after every state transition
func (c *Controller[T]) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Close stops pending timers and cancels in-flight debounced fetches
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.debounce != nil {
		c.debounce.Stop()
	}
	if c.loadTimer != nil {
		c.loadTimer.Stop()
	}
	c.mu.Unlock()
	c.cancel()
}

// FetchAll requests the collection for the current search and filter
func (c *Controller[T]) FetchAll(ctx context.Context) error {
	c.mu.Lock()
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	return c.fetch(ctx, gen)
}

// Retry re-runs the last query, typically after an error
func (c *Controller[T]) Retry(ctx context.Context) error {
	return c.FetchAll(ctx)
}

// SetSearchTerm updates the search. Client-filter lists recompute the
// visible rows immediately; server-search lists wait for the debounce
// period and only the latest term is sent.
func (c *Controller[T]) SetSearchTerm(text string) {
	c.mu.Lock()
	if text == c.search {
		c.mu.Unlock()
		return
	}
	c.search = text

	if c.desc.Mode == ClientFilter {
		c.refilterLocked()
		c.mu.Unlock()
		c.notify()
		return
	}

	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.generation++
	gen := c.generation
	c.searching = true
	c.mu.Unlock()
	c.notify()

	// Scheduled without the lock held: a fake clock may run the callback
	// synchronously.
	timer := c.clock.AfterFunc(c.settings.Debounce, func() {
		c.mu.Lock()
		current := gen == c.generation
		c.mu.Unlock()
		if !current {
			return
		}
		if err := c.fetch(c.ctx, gen); err != nil {
			slog.Debug("Debounced search failed", "list", c.desc.Name, "error", err)
		}
	})

	c.mu.Lock()
	if gen == c.generation {
		c.debounce = timer
	} else {
		timer.Stop()
	}
	c.mu.Unlock()
}

// SetFilter switches to the country or active-status endpoint and fetches
// right away. Setting one filter clears the search term and the other
// filter.
func (c *Controller[T]) SetFilter(ctx context.Context, filter Filter) error {
	c.mu.Lock()
	if filter.Country != "" {
		filter.Active = ""
	}
	c.filter = filter
	c.search = ""
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	return c.fetch(ctx, gen)
}

// LoadMore grows the visible window by one step after the load delay.
// Returns false when nothing was scheduled: a load is already pending, the
// list is not ready, or every row is visible.
func (c *Controller[T]) LoadMore() bool {
	c.mu.Lock()
	if c.state != Ready || !c.hasMore {
		c.mu.Unlock()
		return false
	}
	c.state = LoadingMore
	c.loadSeq++
	seq := c.loadSeq
	c.mu.Unlock()
	c.notify()

	timer := c.clock.AfterFunc(c.settings.LoadDelay, func() {
		c.finishLoadMore(seq)
	})

	c.mu.Lock()
	if seq == c.loadSeq && c.state == LoadingMore {
		c.loadTimer = timer
	} else {
		timer.Stop()
	}
	c.mu.Unlock()
	return true
}

func (c *Controller[T]) finishLoadMore(seq uint64) {
	c.mu.Lock()
	if seq != c.loadSeq || c.state != LoadingMore {
		// cancelled by a fetch or a new search
		c.mu.Unlock()
		return
	}
	c.loadTimer = nil
	c.state = Ready
	c.visible = min(c.visible+c.settings.LoadStep, len(c.filtered))
	c.hasMore = c.visible < len(c.filtered)
	c.mu.Unlock()
	c.notify()
}

// cancelLoadLocked drops a pending LoadMore so its timer cannot touch the
// next window
func (c *Controller[T]) cancelLoadLocked() {
	if c.loadTimer != nil {
		c.loadTimer.Stop()
		c.loadTimer = nil
	}
	c.loadSeq++
	if c.state == LoadingMore {
		c.state = Ready
	}
}

// Reveal tells the controller the index of the last row the renderer has
// on screen. When that row is the sentinel (the last visible row) the
// window grows.
func (c *Controller[T]) Reveal(lastVisibleIndex int) bool {
	c.mu.Lock()
	sentinel := c.visible - 1
	c.mu.Unlock()
	if lastVisibleIndex < sentinel {
		return false
	}
	return c.LoadMore()
}

func (c *Controller[T]) fetch(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	c.cancelLoadLocked()
	c.state = Loading
	c.err = nil
	q := api.Query{
		Page:    0,
		Size:    c.settings.SearchSize,
		Country: c.filter.Country,
		Active:  c.filter.Active,
	}
	if c.desc.Mode == ServerSearch {
		q.Search = c.search
	}
	c.mu.Unlock()
	c.notify()

	page, err := c.query(ctx, q)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		slog.Debug("Dropping stale response", "list", c.desc.Name, "search", q.Search)
		return nil
	}
	c.searching = false
	if err != nil {
		c.state = Error
		c.err = err
		c.mu.Unlock()
		slog.Error("Failed to fetch list", "list", c.desc.Name, "search", q.Search, "error", err)
		c.notify()
		return err
	}

	c.items = page.Content
	c.total = page.TotalElements
	c.refilterLocked()
	c.state = Ready
	c.mu.Unlock()

	slog.Debug("Fetched list", "list", c.desc.Name, "count", len(page.Content), "total", page.TotalElements)
	c.notify()
	return nil
}

func (c *Controller[T]) query(ctx context.Context, q api.Query) (models.Page[T], error) {
	return Query(ctx, c.desc, c.source, q)
}

// Query runs the direct code lookup when the search term qualifies for
// desc, falling back to the regular list request. Filters skip the lookup.
func Query[T models.Entity](ctx context.Context, desc Descriptor[T], source Source[T], q api.Query) (models.Page[T], error) {
	if q.Country == "" && q.Active == "" && desc.Mode == ServerSearch {
		if code, ok := desc.lookupCode(q.Search); ok {
			item, err := source.Get(ctx, code)
			if err == nil {
				err = item.Validate()
			}
			if err == nil {
				return models.SinglePage(item), nil
			}
			slog.Info("No direct match, continuing with regular search", "list", desc.Name, "code", code, "error", err)
		}
	}
	return source.List(ctx, q)
}

// refilterLocked recomputes the filtered rows and resets the window
func (c *Controller[T]) refilterLocked() {
	c.cancelLoadLocked()
	if c.desc.Mode == ClientFilter {
		c.filtered = c.desc.Apply(c.items, c.search)
	} else {
		c.filtered = c.items
	}
	c.visible = min(c.settings.PageSize, len(c.filtered))
	c.hasMore = c.visible < len(c.filtered)
}

func (c *Controller[T]) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Snapshot is a consistent copy of the view state
type Snapshot[T any] struct {
	State        State
	Items        []T // the visible window
	Filtered     int // rows matching the current search
	Total        int // rows the backend reports for the query
	SearchTerm   string
	Filter       Filter
	VisibleCount int
	HasMore      bool
	Searching    bool
	Err          error
}

// Empty reports the "no results" state, which is not an error
func (s Snapshot[T]) Empty() bool {
	return s.State == Ready && s.Filtered == 0
}

// Snapshot returns a copy of the current state
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]T, c.visible)
	copy(items, c.filtered[:c.visible])

	return Snapshot[T]{
		State:        c.state,
		Items:        items,
		Filtered:     len(c.filtered),
		Total:        c.total,
		SearchTerm:   c.search,
		Filter:       c.filter,
		VisibleCount: c.visible,
		HasMore:      c.hasMore,
		Searching:    c.searching,
		Err:          c.err,
	}
}

// Filtered returns a copy of every row matching the current search
func (c *Controller[T]) Filtered() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.filtered...)
}

// Descriptor returns the entity descriptor
func (c *Controller[T]) Descriptor() Descriptor[T] {
	return c.desc
}

// ErrorMessage is the user facing text for a failed fetch
func (c *Controller[T]) ErrorMessage() string {
	return fmt.Sprintf("Failed to fetch %s. Please try again later.", c.desc.Name)
}
