package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/orderlens/internal/database"
	"github.com/Mr-Dark-debug/orderlens/internal/fixture"
	"github.com/Mr-Dark-debug/orderlens/internal/tree"
	"github.com/Mr-Dark-debug/orderlens/pkg/jsonvalue"
)

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

type fakeFetcher struct {
	calls    atomic.Int32
	lastID   string
	response *Response
	err      error
}

func (f *fakeFetcher) OrderURL(orderID string) string {
	return "http://test/api/order/" + orderID
}

func (f *fakeFetcher) GetOrder(ctx context.Context, orderID, requestID string) (*Response, error) {
	f.calls.Add(1)
	f.lastID = orderID
	return f.response, f.err
}

type memJournal struct {
	entries []*database.Lookup
	err     error
}

func (j *memJournal) InsertLookup(l *database.Lookup) error {
	j.entries = append(j.entries, l)
	return j.err
}

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	orders, err := fixture.ParseOrders([]byte(`{"123": {"id":123,"items":[1,2]}}`), "")
	require.NoError(t, err)
	ts := httptest.NewServer(fixture.NewServer(fixture.DefaultConfig(), orders, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestSearchEmptyInputIssuesNoRequest(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		f := &fakeFetcher{}
		view := &View{ResponseTime: "Found in 1.00 ms", Tree: tree.Build(jsonvalue.Null())}
		c := NewController(f, view)

		err := c.Search(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, KindEmptyInput, KindOf(err))
		assert.Equal(t, int32(0), f.calls.Load())

		assert.Equal(t, StateError, view.State)
		assert.Equal(t, "Please enter an Order ID", view.ErrorText)
		// Empty input only touches the error line.
		assert.Equal(t, "Found in 1.00 ms", view.ResponseTime)
		assert.NotNil(t, view.Tree)
		assert.False(t, view.Loading)
	}
}

func TestSearchShowsOrderTree(t *testing.T) {
	ts := newFixtureServer(t)
	view := &View{}
	clock := &stepClock{t: time.Unix(0, 0), step: 12340 * time.Microsecond}
	c := NewController(NewClient(ts.URL, ts.Client()), view, WithClock(clock.Now))

	require.NoError(t, c.Search(context.Background(), "123"))

	assert.Equal(t, StateShown, view.State)
	assert.False(t, view.Loading)
	assert.Empty(t, view.ErrorText)
	assert.Equal(t, "Found in 12.34 ms", view.ResponseTime)
	assert.Equal(t, "123", view.OrderID)
	require.NotNil(t, view.Tree)

	var lines []string
	for _, r := range tree.Visible(view.Tree) {
		lines = append(lines, r.Plain())
	}
	assert.Equal(t, []string{
		"▾ {...}",
		`    "id": 123`,
		`  ▾ "items": [...]`,
		`      "0": 1`,
		`      "1": 2`,
	}, lines)
}

func TestSearchNotFoundAndFetchError(t *testing.T) {
	ts := newFixtureServer(t)
	view := &View{}
	c := NewController(NewClient(ts.URL, nil), view)

	err := c.Search(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, StateError, view.State)
	assert.Equal(t, "Order not found", view.ErrorText)
	assert.Nil(t, view.Tree)
	assert.Empty(t, view.ResponseTime)
	assert.False(t, view.Loading)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	c = NewController(NewClient(failing.URL, nil), view)
	require.Error(t, c.Search(context.Background(), "123"))
	assert.Equal(t, "Error fetching order", view.ErrorText)
	assert.False(t, view.Loading)
}

func TestSearchDecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1} trailing`))
	}))
	defer ts.Close()

	view := &View{}
	c := NewController(NewClient(ts.URL, nil), view)

	err := c.Search(context.Background(), "1")
	require.Error(t, err)
	assert.Equal(t, KindDecodeFailed, KindOf(err))
	assert.Equal(t, StateError, view.State)
	assert.Equal(t, err.Error(), view.ErrorText)
	assert.False(t, view.Loading)
}

func TestSearchMalformedBodyIsDecodeError(t *testing.T) {
	for _, body := range []string{`{"id" 1 "items":[1 2,]}`, `-`, `tru`, `[1,,2]`} {
		t.Run(body, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
			}))
			defer ts.Close()

			journal := &memJournal{}
			view := &View{}
			c := NewController(NewClient(ts.URL, nil), view, WithJournal(journal))

			err := c.Search(context.Background(), "1")
			require.Error(t, err)
			assert.Equal(t, KindDecodeFailed, KindOf(err))
			assert.Equal(t, StateError, view.State)
			assert.Nil(t, view.Tree)
			assert.Empty(t, view.ResponseTime)
			assert.NotEmpty(t, view.ErrorText)
			assert.False(t, view.Loading)

			require.Len(t, journal.entries, 1)
			assert.Equal(t, database.OutcomeDecodeFailed, journal.entries[0].Outcome)
			assert.Equal(t, http.StatusOK, journal.entries[0].StatusCode)
		})
	}
}

func TestSearchTransportError(t *testing.T) {
	f := &fakeFetcher{err: transportError(errors.New("dial tcp 127.0.0.1:1: connect: connection refused"))}
	view := &View{}
	c := NewController(f, view)

	require.Error(t, c.Search(context.Background(), "1"))
	assert.Equal(t, "dial tcp 127.0.0.1:1: connect: connection refused", view.ErrorText)
	assert.False(t, view.Loading)
}

func TestSubmitTrimsInputAndShowsLoading(t *testing.T) {
	f := &fakeFetcher{}
	view := &View{ErrorText: "old", ResponseTime: "Found in 1.00 ms", Tree: tree.Build(jsonvalue.Null())}
	c := NewController(f, view, WithRequestIDs(func() string { return "req-1" }))

	req, err := c.Submit("  abc 1  ")
	require.NoError(t, err)

	assert.Equal(t, "abc 1", req.OrderID)
	assert.Equal(t, "http://test/api/order/abc 1", req.URL)
	assert.Equal(t, "req-1", req.ID)

	assert.Equal(t, StateLoading, view.State)
	assert.True(t, view.Loading)
	assert.Empty(t, view.ErrorText)
	assert.Empty(t, view.ResponseTime)
	assert.Nil(t, view.Tree)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestFetchDoesNotTouchView(t *testing.T) {
	f := &fakeFetcher{response: &Response{StatusCode: 200, Value: jsonvalue.Bool(true)}}
	view := &View{}
	c := NewController(f, view)

	req, err := c.Submit("1")
	require.NoError(t, err)
	before := *view

	res := c.Fetch(context.Background(), req)
	assert.Equal(t, before, *view)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, "1", f.lastID)
	assert.NoError(t, res.Err)
}

func TestLastResponseWins(t *testing.T) {
	first := &fakeFetcher{response: &Response{StatusCode: 200, Value: jsonvalue.String("first")}}
	view := &View{}
	c := NewController(first, view)

	reqA, err := c.Submit("A")
	require.NoError(t, err)
	reqB, err := c.Submit("B")
	require.NoError(t, err)

	resB := c.Fetch(context.Background(), reqB)
	resA := c.Fetch(context.Background(), reqA)

	resB.Response = &Response{StatusCode: 200, Value: jsonvalue.String("second")}
	c.Complete(resB)
	c.Complete(resA)

	require.NotNil(t, view.Tree)
	assert.Equal(t, `"first"`, view.Tree.Text)
	assert.Equal(t, StateShown, view.State)
	assert.False(t, view.Loading)
}

func TestCompleteRecordsJournal(t *testing.T) {
	start := time.Unix(100, 0)
	clock := &stepClock{t: start, step: 5 * time.Millisecond}
	journal := &memJournal{}

	ok := &fakeFetcher{response: &Response{StatusCode: 200, Size: 7, Value: jsonvalue.Null()}}
	c := NewController(ok, &View{}, WithClock(clock.Now), WithJournal(journal),
		WithRequestIDs(func() string { return "req-ok" }))
	require.NoError(t, c.Search(context.Background(), "1"))

	missing := &fakeFetcher{response: &Response{StatusCode: 404}, err: statusError(404)}
	c = NewController(missing, &View{}, WithClock(clock.Now), WithJournal(journal),
		WithRequestIDs(func() string { return "req-404" }))
	require.Error(t, c.Search(context.Background(), "2"))

	plain := &fakeFetcher{err: errors.New("boom")}
	c = NewController(plain, &View{}, WithClock(clock.Now), WithJournal(journal))
	require.Error(t, c.Search(context.Background(), "3"))

	// Empty input is never journaled.
	_ = c.Search(context.Background(), " ")

	require.Len(t, journal.entries, 3)

	got := journal.entries[0]
	assert.Equal(t, "req-ok", got.LookupID)
	assert.Equal(t, "1", got.OrderID)
	assert.Equal(t, "http://test/api/order/1", got.URL)
	assert.Equal(t, start.UnixNano(), got.StartedAt)
	assert.Equal(t, int64(5*time.Millisecond), got.ElapsedNs)
	assert.Equal(t, database.OutcomeShown, got.Outcome)
	assert.Equal(t, 200, got.StatusCode)
	assert.Equal(t, 7, got.ResponseSize)
	assert.Nil(t, got.ErrorMessage)

	got = journal.entries[1]
	assert.Equal(t, database.OutcomeNotFound, got.Outcome)
	assert.Equal(t, 404, got.StatusCode)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "Order not found", *got.ErrorMessage)

	got = journal.entries[2]
	assert.Equal(t, database.OutcomeTransportFailed, got.Outcome)
	assert.NotEmpty(t, got.LookupID)
}

func TestJournalFailureDoesNotAffectView(t *testing.T) {
	f := &fakeFetcher{response: &Response{StatusCode: 200, Value: jsonvalue.Number("1")}}
	view := &View{}
	c := NewController(f, view, WithJournal(&memJournal{err: errors.New("disk full")}))

	require.NoError(t, c.Search(context.Background(), "1"))
	assert.Equal(t, StateShown, view.State)
}

func TestControllerWithDatabaseJournal(t *testing.T) {
	store, err := database.NewDBService(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ts := newFixtureServer(t)
	c := NewController(NewClient(ts.URL, nil), &View{}, WithJournal(store))
	require.NoError(t, c.Search(context.Background(), "123"))
	require.Error(t, c.Search(context.Background(), "999"))

	stats, err := store.GetLookupStats(database.LookupFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Shown)
	assert.Equal(t, 1, stats.NotFound)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "shown", StateShown.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "state(9)", State(9).String())
}
