package listing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight_atlas/internal/api"
	"flight_atlas/internal/clock"
	"flight_atlas/internal/models"
)

// mockSource is a hand-written Source that records the queries it served
type mockSource[T models.Entity] struct {
	mu      sync.Mutex
	items   []T
	byCode  map[string]T
	listErr error
	queries []api.Query
	lookups []string
}

func (m *mockSource[T]) List(ctx context.Context, q api.Query) (models.Page[T], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.listErr != nil {
		return models.Page[T]{}, m.listErr
	}
	items := append([]T(nil), m.items...)
	return models.Page[T]{Content: items, TotalElements: len(items)}, nil
}

func (m *mockSource[T]) Get(ctx context.Context, code string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, code)
	item, ok := m.byCode[code]
	if !ok {
		var zero T
		return zero, &api.HTTPError{StatusCode: 404, Status: "Not Found"}
	}
	return item, nil
}

func (m *mockSource[T]) listCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

func (m *mockSource[T]) lastQuery() api.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[len(m.queries)-1]
}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func makeAircraft(n int) []models.AircraftType {
	out := make([]models.AircraftType, n)
	for i := range out {
		out[i] = models.AircraftType{
			ICAOCode:     fmt.Sprintf("T%03d", i),
			Name:         fmt.Sprintf("Type %d", i),
			Manufacturer: "Generic",
		}
	}
	return out
}

func makeAirlines(n int) []models.Airline {
	out := make([]models.Airline, n)
	for i := range out {
		out[i] = models.Airline{ICAOCode: fmt.Sprintf("A%02d", i), Name: fmt.Sprintf("Airline %d", i)}
	}
	return out
}

func newAircraftController(t *testing.T, items []models.AircraftType) (*Controller[models.AircraftType], *mockSource[models.AircraftType], *clock.Fake) {
	source := &mockSource[models.AircraftType]{items: items}
	clk := clock.NewFake(epoch)
	c := NewController(context.Background(), Aircraft, Source[models.AircraftType](source), clk, DefaultSettings())
	t.Cleanup(c.Close)
	return c, source, clk
}

func newAirlineController(t *testing.T, source *mockSource[models.Airline]) (*Controller[models.Airline], *clock.Fake) {
	clk := clock.NewFake(epoch)
	c := NewController(context.Background(), Airlines, Source[models.Airline](source), clk, DefaultSettings())
	t.Cleanup(c.Close)
	return c, clk
}

func TestFetchAll_ResetsVisibleCount(t *testing.T) {
	for _, n := range []int{0, 1, 19, 20, 21, 75} {
		t.Run(fmt.Sprintf("%d items", n), func(t *testing.T) {
			c, _, _ := newAircraftController(t, makeAircraft(n))

			require.NoError(t, c.FetchAll(context.Background()))

			snap := c.Snapshot()
			assert.Equal(t, Ready, snap.State)
			assert.Equal(t, min(20, n), snap.VisibleCount)
			assert.Len(t, snap.Items, min(20, n))
			assert.Equal(t, n > 20, snap.HasMore)
			assert.Equal(t, n == 0, snap.Empty())
		})
	}
}

func TestFetchAll_Error(t *testing.T) {
	c, source, _ := newAircraftController(t, makeAircraft(5))
	source.listErr = fmt.Errorf("connection refused")

	err := c.FetchAll(context.Background())
	require.Error(t, err)

	snap := c.Snapshot()
	assert.Equal(t, Error, snap.State)
	assert.Error(t, snap.Err)
	assert.False(t, snap.Empty())
	assert.Equal(t, "Failed to fetch aircraft. Please try again later.", c.ErrorMessage())

	source.listErr = nil
	require.NoError(t, c.Retry(context.Background()))
	assert.Equal(t, Ready, c.Snapshot().State)
}

func TestClientFilter_Scenario(t *testing.T) {
	items := []models.AircraftType{
		{ICAOCode: "A320", Name: "A320", Manufacturer: "Airbus"},
		{ICAOCode: "B738", Name: "737-800", Manufacturer: "Boeing"},
	}
	c, source, _ := newAircraftController(t, items)
	require.NoError(t, c.FetchAll(context.Background()))

	c.SetSearchTerm("738")

	snap := c.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "B738", snap.Items[0].ICAOCode)
	assert.Equal(t, 1, source.listCalls(), "client filtering must not hit the network")
}

func TestClientFilter_SubsetAndCaseInsensitive(t *testing.T) {
	items := makeAircraft(60)
	items[7].Manufacturer = "Embraer"
	items[42].EngineType = "EMB jet"
	c, _, _ := newAircraftController(t, items)
	require.NoError(t, c.FetchAll(context.Background()))

	for _, term := range []string{"emb", "TYPE 1", "t00", "zzz", "  generic "} {
		c.SetSearchTerm(term)
		filtered := c.Filtered()
		needle := strings.ToLower(strings.TrimSpace(term))
		for _, item := range filtered {
			assert.True(t, Aircraft.Match(item, term))
			found := false
			for _, field := range Aircraft.Fields(item) {
				if strings.Contains(strings.ToLower(field), needle) {
					found = true
				}
			}
			assert.True(t, found, "item %s does not contain %q", item.ICAOCode, term)
			assert.Contains(t, items, item)
		}
	}

	c.SetSearchTerm("emb")
	assert.Len(t, c.Filtered(), 2)
}

func TestClientFilter_DoesNotMutateSource(t *testing.T) {
	items := makeAircraft(30)
	original := append([]models.AircraftType(nil), items...)
	c, _, _ := newAircraftController(t, items)
	require.NoError(t, c.FetchAll(context.Background()))

	c.SetSearchTerm("Type 2")
	c.SetSearchTerm("")

	assert.Equal(t, original, items)
	assert.Len(t, c.Filtered(), 30)
}

func TestClientFilter_ResetsWindow(t *testing.T) {
	c, _, clk := newAircraftController(t, makeAircraft(100))
	require.NoError(t, c.FetchAll(context.Background()))

	require.True(t, c.LoadMore())
	clk.Advance(500 * time.Millisecond)
	assert.Equal(t, 40, c.Snapshot().VisibleCount)

	c.SetSearchTerm("Type")
	assert.Equal(t, 20, c.Snapshot().VisibleCount)
	assert.True(t, c.Snapshot().HasMore)

	c.SetSearchTerm("Type 99")
	snap := c.Snapshot()
	assert.Equal(t, 1, snap.VisibleCount)
	assert.False(t, snap.HasMore)
}

func TestClientFilter_NoResults(t *testing.T) {
	c, _, _ := newAircraftController(t, makeAircraft(10))
	require.NoError(t, c.FetchAll(context.Background()))

	c.SetSearchTerm("concorde")

	snap := c.Snapshot()
	assert.True(t, snap.Empty())
	assert.Equal(t, Ready, snap.State)
	assert.NoError(t, snap.Err)
}

func TestLoadMore_ConvergesAndStops(t *testing.T) {
	c, _, clk := newAircraftController(t, makeAircraft(55))
	require.NoError(t, c.FetchAll(context.Background()))

	previous := c.Snapshot().VisibleCount
	for i := 0; i < 10; i++ {
		c.LoadMore()
		clk.Advance(500 * time.Millisecond)
		snap := c.Snapshot()
		assert.GreaterOrEqual(t, snap.VisibleCount, previous)
		assert.LessOrEqual(t, snap.VisibleCount, 55)
		previous = snap.VisibleCount
	}

	snap := c.Snapshot()
	assert.Equal(t, 55, snap.VisibleCount)
	assert.False(t, snap.HasMore)
	assert.False(t, c.LoadMore())
	assert.False(t, c.Snapshot().HasMore)
}

func TestLoadMore_DelayAndBusyGuard(t *testing.T) {
	c, _, clk := newAircraftController(t, makeAircraft(100))
	require.NoError(t, c.FetchAll(context.Background()))

	require.True(t, c.LoadMore())
	assert.Equal(t, LoadingMore, c.Snapshot().State)
	assert.False(t, c.LoadMore(), "second trigger while pending must be ignored")

	clk.Advance(499 * time.Millisecond)
	assert.Equal(t, 20, c.Snapshot().VisibleCount)

	clk.Advance(time.Millisecond)
	snap := c.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, 40, snap.VisibleCount)
}

func TestLoadMore_NotReady(t *testing.T) {
	c, _, _ := newAircraftController(t, makeAircraft(100))
	assert.False(t, c.LoadMore())
}

func TestLoadMore_FilterChangeWhilePending(t *testing.T) {
	c, _, clk := newAircraftController(t, makeAircraft(100))
	require.NoError(t, c.FetchAll(context.Background()))

	require.True(t, c.LoadMore())
	c.SetSearchTerm("Type")
	clk.Advance(time.Second)

	snap := c.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, 20, snap.VisibleCount)
}

func TestLoadMore_RefetchCancelsPendingLoad(t *testing.T) {
	c, _, clk := newAircraftController(t, makeAircraft(100))
	require.NoError(t, c.FetchAll(context.Background()))

	require.True(t, c.LoadMore())
	clk.Advance(200 * time.Millisecond)

	require.NoError(t, c.FetchAll(context.Background()))
	assert.Equal(t, Ready, c.Snapshot().State)
	assert.Equal(t, 0, clk.Pending())

	require.True(t, c.LoadMore())
	clk.Advance(300 * time.Millisecond)
	snap := c.Snapshot()
	assert.Equal(t, LoadingMore, snap.State, "the cancelled timer must not settle the new load")
	assert.Equal(t, 20, snap.VisibleCount)

	clk.Advance(200 * time.Millisecond)
	snap = c.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, 40, snap.VisibleCount)
}

func TestLoadMore_SearchWhilePendingReleasesGuard(t *testing.T) {
	c, _, clk := newAircraftController(t, makeAircraft(100))
	require.NoError(t, c.FetchAll(context.Background()))

	require.True(t, c.LoadMore())
	c.SetSearchTerm("Type")
	assert.Equal(t, Ready, c.Snapshot().State)
	assert.Equal(t, 0, clk.Pending())

	require.True(t, c.LoadMore())
	clk.Advance(500 * time.Millisecond)
	assert.Equal(t, 40, c.Snapshot().VisibleCount)
}

func TestReveal_OnlyAtSentinel(t *testing.T) {
	c, _, clk := newAircraftController(t, makeAircraft(100))
	require.NoError(t, c.FetchAll(context.Background()))

	assert.False(t, c.Reveal(10))
	assert.True(t, c.Reveal(19))
	clk.Advance(500 * time.Millisecond)
	assert.Equal(t, 40, c.Snapshot().VisibleCount)
}

func TestServerSearch_Debounce(t *testing.T) {
	source := &mockSource[models.Airline]{items: makeAirlines(5)}
	c, clk := newAirlineController(t, source)
	require.NoError(t, c.FetchAll(context.Background()))
	require.Equal(t, 1, source.listCalls())

	c.SetSearchTerm("ro")
	clk.Advance(200 * time.Millisecond)
	c.SetSearchTerm("roy")
	assert.True(t, c.Snapshot().Searching)

	clk.Advance(499 * time.Millisecond)
	assert.Equal(t, 1, source.listCalls())

	clk.Advance(time.Millisecond)
	assert.Equal(t, 2, source.listCalls(), "only the last keystroke reaches the backend")
	assert.Equal(t, "roy", source.lastQuery().Search)
	assert.Equal(t, 100, source.lastQuery().Size)
	assert.False(t, c.Snapshot().Searching)

	clk.Advance(5 * time.Second)
	assert.Equal(t, 2, source.listCalls())
}

func TestServerSearch_CodeLookup(t *testing.T) {
	klm := models.Airline{ICAOCode: "KLM", Name: "KLM Royal Dutch Airlines"}
	source := &mockSource[models.Airline]{
		items:  makeAirlines(40),
		byCode: map[string]models.Airline{"KLM": klm},
	}
	c, clk := newAirlineController(t, source)
	require.NoError(t, c.FetchAll(context.Background()))

	c.SetSearchTerm("klm")
	clk.Advance(500 * time.Millisecond)

	snap := c.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, klm, snap.Items[0])
	assert.Equal(t, 1, snap.Total)
	assert.False(t, snap.HasMore)
	assert.Equal(t, 1, source.listCalls(), "a direct hit skips the list request")
	assert.Equal(t, []string{"KLM"}, source.lookups)
}

func TestServerSearch_CodeLookupFallsBack(t *testing.T) {
	source := &mockSource[models.Airline]{items: makeAirlines(3), byCode: map[string]models.Airline{}}
	c, clk := newAirlineController(t, source)

	c.SetSearchTerm("XYZ")
	clk.Advance(500 * time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.NoError(t, snap.Err)
	assert.Len(t, snap.Items, 3)
	assert.Equal(t, "XYZ", source.lastQuery().Search)
	assert.Equal(t, []string{"XYZ"}, source.lookups)
}

func TestQuery_LookupRules(t *testing.T) {
	klm := models.Airline{ICAOCode: "KLM", Name: "KLM Royal Dutch Airlines"}
	source := &mockSource[models.Airline]{items: makeAirlines(3), byCode: map[string]models.Airline{"KLM": klm}}
	ctx := context.Background()

	page, err := Query(ctx, Airlines, Source[models.Airline](source), api.Query{Search: " klm "})
	require.NoError(t, err)
	assert.Equal(t, []models.Airline{klm}, page.Content)
	assert.Equal(t, 0, source.listCalls())

	page, err = Query(ctx, Airlines, Source[models.Airline](source), api.Query{Search: "klm", Country: "Netherlands"})
	require.NoError(t, err)
	assert.Len(t, page.Content, 3)
	assert.Equal(t, []string{"KLM"}, source.lookups, "filters skip the lookup")

	aircraft := &mockSource[models.AircraftType]{items: makeAircraft(2), byCode: map[string]models.AircraftType{}}
	_, err = Query(ctx, Aircraft, Source[models.AircraftType](aircraft), api.Query{Search: "A320"})
	require.NoError(t, err)
	assert.Empty(t, aircraft.lookups, "client-filter lists never look up by code")
}

func TestServerSearch_NoLookupForOtherLengths(t *testing.T) {
	source := &mockSource[models.Airline]{items: makeAirlines(3)}
	c, clk := newAirlineController(t, source)

	c.SetSearchTerm("KLMX")
	clk.Advance(500 * time.Millisecond)
	c.SetSearchTerm("K-M")
	clk.Advance(500 * time.Millisecond)

	assert.Empty(t, source.lookups)
	assert.Equal(t, 2, source.listCalls())
}

func TestServerSearch_StaleResponseDropped(t *testing.T) {
	source := &mockSource[models.Airline]{items: makeAirlines(3)}
	c, _ := newAirlineController(t, source)

	// Simulate a search superseded while its request was in flight.
	c.mu.Lock()
	c.generation++
	stale := c.generation
	c.generation++
	c.mu.Unlock()

	require.NoError(t, c.fetch(context.Background(), stale))
	assert.Empty(t, c.Snapshot().Items)
}

func TestSetFilter(t *testing.T) {
	source := &mockSource[models.Airline]{items: makeAirlines(3)}
	c, clk := newAirlineController(t, source)

	c.SetSearchTerm("roy")
	require.NoError(t, c.SetFilter(context.Background(), Filter{Country: "Netherlands", Active: "Y"}))

	q := source.lastQuery()
	assert.Equal(t, "Netherlands", q.Country)
	assert.Empty(t, q.Active)
	assert.Empty(t, q.Search)
	assert.Empty(t, c.Snapshot().SearchTerm)

	// The pending debounce was cancelled by the filter change.
	clk.Advance(time.Second)
	assert.Equal(t, 1, source.listCalls())

	require.NoError(t, c.SetFilter(context.Background(), Filter{Active: "N"}))
	assert.Equal(t, "N", source.lastQuery().Active)
	assert.Equal(t, Filter{Active: "N"}, c.Snapshot().Filter)
}

func TestOnChange(t *testing.T) {
	c, _, clk := newAircraftController(t, makeAircraft(30))
	calls := 0
	c.OnChange(func() { calls++ })

	require.NoError(t, c.FetchAll(context.Background()))
	assert.Equal(t, 2, calls)

	c.LoadMore()
	clk.Advance(500 * time.Millisecond)
	assert.Equal(t, 4, calls)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "loading_more", LoadingMore.String())
	assert.Equal(t, "state(42)", State(42).String())
}
