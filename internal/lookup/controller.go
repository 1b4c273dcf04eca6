// Package lookup implements the order query controller.
//
// A search moves the View through Idle -> Loading -> Shown | Error. The
// controller is split into three steps so it can be driven from an
// event loop:
//
//	req, err := c.Submit(input)     // UI goroutine: validate, show loading
//	res := c.Fetch(ctx, req)        // any goroutine: the one GET, no view access
//	c.Complete(res)                 // UI goroutine: show tree or error, hide loading
//
// Requests are not sequenced or cancelled. If a second search starts while
// the first is in flight, whichever completes last decides what the View
// shows.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mr-Dark-debug/orderlens/internal/database"
	"github.com/Mr-Dark-debug/orderlens/internal/tree"
	"github.com/Mr-Dark-debug/orderlens/pkg/timeutil"
)

// State is the controller's position in the search lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateShown
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateShown:
		return "shown"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// View is everything the page displays. An empty ErrorText, an empty
// ResponseTime and a nil Tree are hidden.
type View struct {
	State        State
	Loading      bool
	ErrorText    string
	ResponseTime string
	Tree         *tree.Node
	// OrderID is the last submitted, trimmed ID.
	OrderID string
}

// Request is one issued lookup.
type Request struct {
	ID      string
	OrderID string
	URL     string
	Started time.Time
}

// Result is the outcome of Fetch.
type Result struct {
	Request  *Request
	Response *Response
	Err      error
	Finished time.Time
}

// Elapsed is the time from Submit to the end of decoding.
func (r *Result) Elapsed() time.Duration {
	return r.Finished.Sub(r.Request.Started)
}

// Journal records completed lookups.
type Journal interface {
	InsertLookup(l *database.Lookup) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithJournal records every completed lookup in j.
func WithJournal(j Journal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithRequestIDs replaces the request ID generator.
func WithRequestIDs(gen func() string) Option {
	return func(c *Controller) { c.newID = gen }
}

// Controller drives a View from user searches.
type Controller struct {
	client  Fetcher
	view    *View
	now     func() time.Time
	journal Journal
	logger  *slog.Logger
	newID   func() string
}

// NewController binds a controller to the view it owns for the session.
func NewController(client Fetcher, view *View, opts ...Option) *Controller {
	c := &Controller{
		client: client,
		view:   view,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns the view the controller drives.
func (c *Controller) View() *View {
	return c.view
}

// Submit starts a search for input. Empty input moves straight to the
// Error state and issues nothing; otherwise the view switches to Loading
// and the returned Request must be passed to Fetch.
func (c *Controller) Submit(input string) (*Request, error) {
	orderID := strings.TrimSpace(input)
	if orderID == "" {
		err := &Error{Kind: KindEmptyInput, Message: MsgEmptyInput}
		c.view.State = StateError
		c.view.ErrorText = err.Message
		return nil, err
	}

	c.view.ErrorText = ""
	c.view.Tree = nil
	c.view.ResponseTime = ""
	c.view.Loading = true
	c.view.State = StateLoading
	c.view.OrderID = orderID

	req := &Request{
		ID:      c.newID(),
		OrderID: orderID,
		URL:     c.client.OrderURL(orderID),
		Started: c.now(),
	}
	c.logger.Info("lookup started",
		"order_id", req.OrderID, "request_id", req.ID, "url", req.URL)
	return req, nil
}

// Fetch performs the request. It does not touch the view and is safe to
// call off the UI goroutine.
func (c *Controller) Fetch(ctx context.Context, req *Request) *Result {
	resp, err := c.client.GetOrder(ctx, req.OrderID, req.ID)
	return &Result{
		Request:  req,
		Response: resp,
		Err:      err,
		Finished: c.now(),
	}
}

// Complete applies a fetch result to the view. The loading indicator is
// hidden on every path.
func (c *Controller) Complete(res *Result) {
	defer func() { c.view.Loading = false }()

	elapsed := res.Elapsed()
	if res.Err != nil {
		c.view.State = StateError
		c.view.ErrorText = res.Err.Error()
	} else {
		c.view.State = StateShown
		c.view.ResponseTime = fmt.Sprintf("Found in %s ms", timeutil.FormatMillis(elapsed))
		c.view.Tree = tree.Build(res.Response.Value)
	}

	c.record(res, elapsed)
}

// Search runs Submit, Fetch and Complete in sequence.
func (c *Controller) Search(ctx context.Context, input string) error {
	req, err := c.Submit(input)
	if err != nil {
		return err
	}
	res := c.Fetch(ctx, req)
	c.Complete(res)
	return res.Err
}

func (c *Controller) record(res *Result, elapsed time.Duration) {
	entry := &database.Lookup{
		LookupID:  res.Request.ID,
		OrderID:   res.Request.OrderID,
		URL:       res.Request.URL,
		StartedAt: res.Request.Started.UnixNano(),
		ElapsedNs: elapsed.Nanoseconds(),
		Outcome:   outcome(res.Err),
	}
	if res.Response != nil {
		entry.StatusCode = res.Response.StatusCode
		entry.ResponseSize = res.Response.Size
	}

	attrs := []any{
		"order_id", entry.OrderID, "request_id", entry.LookupID,
		"status", entry.StatusCode, "outcome", entry.Outcome,
		"elapsed_ms", timeutil.FormatMillis(elapsed),
	}
	if res.Err != nil {
		msg := res.Err.Error()
		entry.ErrorMessage = &msg
		c.logger.Warn("lookup failed", append(attrs, "error", msg)...)
	} else {
		c.logger.Info("lookup finished", attrs...)
	}

	if c.journal == nil {
		return
	}
	if err := c.journal.InsertLookup(entry); err != nil {
		c.logger.Error("failed to journal lookup", "request_id", entry.LookupID, "error", err)
	}
}

func outcome(err error) string {
	if err == nil {
		return database.OutcomeShown
	}
	var le *Error
	if errors.As(err, &le) {
		return string(le.Kind)
	}
	return database.OutcomeTransportFailed
}
