package database

import (
	"fmt"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *DBService {
	t.Helper()
	svc, err := NewDBService(":memory:")
	if err != nil {
		t.Fatalf("NewDBService(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func strPtr(s string) *string { return &s }

// TestNewDBService verifies that the journal initializes with the
// embedded schema.
func TestNewDBService(t *testing.T) {
	newTestStore(t)
}

// TestNewDBServiceCreatesDirectory verifies that a file-backed journal
// creates its parent directory.
func TestNewDBServiceCreatesDirectory(t *testing.T) {
	path := fmt.Sprintf("%s/nested/dir/history.db", t.TempDir())
	svc, err := NewDBService(path)
	if err != nil {
		t.Fatalf("NewDBService(%s) failed: %v", path, err)
	}
	defer svc.Close()

	if err := svc.InsertLookup(&Lookup{LookupID: "l-1", OrderID: "1", URL: "u", Outcome: OutcomeShown}); err != nil {
		t.Fatalf("InsertLookup failed: %v", err)
	}
}

// TestInsertAndQueryLookup verifies insert -> query -> fields match.
func TestInsertAndQueryLookup(t *testing.T) {
	svc := newTestStore(t)

	now := time.Now().UnixNano()
	l := &Lookup{
		LookupID:     "lookup-001",
		OrderID:      "b563feb7b2b84b6test",
		URL:          "http://localhost:8000/api/order/b563feb7b2b84b6test",
		StartedAt:    now,
		ElapsedNs:    int64(12 * time.Millisecond),
		Outcome:      OutcomeShown,
		StatusCode:   200,
		ResponseSize: 512,
	}

	if err := svc.InsertLookup(l); err != nil {
		t.Fatalf("InsertLookup failed: %v", err)
	}

	lookups, err := svc.QueryLookups(LookupFilter{Limit: 10})
	if err != nil {
		t.Fatalf("QueryLookups failed: %v", err)
	}
	if len(lookups) != 1 {
		t.Fatalf("expected 1 lookup, got %d", len(lookups))
	}

	got := lookups[0]
	if got.OrderID != l.OrderID {
		t.Errorf("expected order_id=%s, got %s", l.OrderID, got.OrderID)
	}
	if got.ElapsedNs != l.ElapsedNs {
		t.Errorf("expected elapsed_ns=%d, got %d", l.ElapsedNs, got.ElapsedNs)
	}
	if got.ErrorMessage != nil {
		t.Errorf("expected nil error_message, got %q", *got.ErrorMessage)
	}
	if got.ResponseSize != 512 {
		t.Errorf("expected response_size=512, got %d", got.ResponseSize)
	}
}

// TestDuplicateLookupID verifies the primary key rejects replays.
func TestDuplicateLookupID(t *testing.T) {
	svc := newTestStore(t)

	l := &Lookup{LookupID: "dup", OrderID: "1", URL: "u", Outcome: OutcomeShown}
	if err := svc.InsertLookup(l); err != nil {
		t.Fatalf("first InsertLookup failed: %v", err)
	}
	if err := svc.InsertLookup(l); err == nil {
		t.Fatal("expected error on duplicate lookup_id")
	}
}

// TestQueryLookupsFilterAndOrder verifies filtering and most-recent-first ordering.
func TestQueryLookupsFilterAndOrder(t *testing.T) {
	svc := newTestStore(t)

	base := time.Now().UnixNano()
	entries := []*Lookup{
		{LookupID: "a", OrderID: "1", URL: "u", StartedAt: base, Outcome: OutcomeShown, StatusCode: 200},
		{LookupID: "b", OrderID: "2", URL: "u", StartedAt: base + 1000, Outcome: OutcomeNotFound, StatusCode: 404,
			ErrorMessage: strPtr("Order not found")},
		{LookupID: "c", OrderID: "1", URL: "u", StartedAt: base + 2000, Outcome: OutcomeFetchFailed, StatusCode: 500,
			ErrorMessage: strPtr("Error fetching order")},
	}
	for _, e := range entries {
		if err := svc.InsertLookup(e); err != nil {
			t.Fatalf("InsertLookup(%s) failed: %v", e.LookupID, err)
		}
	}

	all, err := svc.QueryLookups(LookupFilter{})
	if err != nil {
		t.Fatalf("QueryLookups failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 lookups, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].StartedAt > all[i-1].StartedAt {
			t.Errorf("lookups not ordered by started_at DESC at %d", i)
		}
	}

	byOrder, err := svc.QueryLookups(LookupFilter{OrderID: strPtr("1")})
	if err != nil {
		t.Fatalf("QueryLookups by order failed: %v", err)
	}
	if len(byOrder) != 2 {
		t.Errorf("expected 2 lookups for order 1, got %d", len(byOrder))
	}

	notFound, err := svc.QueryLookups(LookupFilter{Outcome: strPtr(OutcomeNotFound)})
	if err != nil {
		t.Fatalf("QueryLookups by outcome failed: %v", err)
	}
	if len(notFound) != 1 || notFound[0].ErrorMessage == nil || *notFound[0].ErrorMessage != "Order not found" {
		t.Errorf("unexpected not_found result: %+v", notFound)
	}

	since := base + 1000
	recent, err := svc.QueryLookups(LookupFilter{Since: &since})
	if err != nil {
		t.Fatalf("QueryLookups since failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 recent lookups, got %d", len(recent))
	}

	page, err := svc.QueryLookups(LookupFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("QueryLookups page failed: %v", err)
	}
	if len(page) != 1 || page[0].LookupID != "b" {
		t.Errorf("expected page [b], got %+v", page)
	}
}

// TestGetLookupStats verifies outcome counts and timing aggregates.
func TestGetLookupStats(t *testing.T) {
	svc := newTestStore(t)

	outcomes := []string{
		OutcomeShown, OutcomeShown, OutcomeNotFound,
		OutcomeFetchFailed, OutcomeTransportFailed, OutcomeDecodeFailed,
	}
	for i, o := range outcomes {
		err := svc.InsertLookup(&Lookup{
			LookupID:  fmt.Sprintf("l-%d", i),
			OrderID:   fmt.Sprintf("%d", i),
			URL:       "u",
			StartedAt: int64(i),
			ElapsedNs: int64(i+1) * int64(time.Millisecond),
			Outcome:   o,
		})
		if err != nil {
			t.Fatalf("InsertLookup failed: %v", err)
		}
	}

	stats, err := svc.GetLookupStats(LookupFilter{})
	if err != nil {
		t.Fatalf("GetLookupStats failed: %v", err)
	}

	if stats.Total != 6 {
		t.Errorf("expected total=6, got %d", stats.Total)
	}
	if stats.Shown != 2 {
		t.Errorf("expected shown=2, got %d", stats.Shown)
	}
	if stats.NotFound != 1 || stats.FetchFailed != 1 || stats.OtherFailed != 2 {
		t.Errorf("unexpected failure counts: %+v", stats)
	}
	if stats.TotalElapsedNs != 21*int64(time.Millisecond) {
		t.Errorf("expected total elapsed 21ms, got %d", stats.TotalElapsedNs)
	}
	if stats.MaxElapsedNs != 6*int64(time.Millisecond) {
		t.Errorf("expected max elapsed 6ms, got %d", stats.MaxElapsedNs)
	}
}

// TestGetLookupStatsEmpty verifies aggregates over an empty journal.
func TestGetLookupStatsEmpty(t *testing.T) {
	svc := newTestStore(t)

	stats, err := svc.GetLookupStats(LookupFilter{OrderID: strPtr("missing")})
	if err != nil {
		t.Fatalf("GetLookupStats failed: %v", err)
	}
	if stats.Total != 0 || stats.TotalElapsedNs != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}
