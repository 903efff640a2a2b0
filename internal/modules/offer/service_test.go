package offer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"loadapp/internal/types"
)

// memStore is an in-memory OfferStore for service tests.
type memStore struct {
	offers  map[types.ID]*Offer
	history []HistoryEntry
}

func newMemStore() *memStore {
	return &memStore{offers: map[types.ID]*Offer{}}
}

func (m *memStore) Create(ctx context.Context, o *Offer) error {
	copied := *o
	m.offers[o.ID] = &copied
	return nil
}

func (m *memStore) Get(ctx context.Context, id types.ID) (*Offer, error) {
	o, ok := m.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *memStore) Update(ctx context.Context, o *Offer, expectedStatusVersion int) (bool, error) {
	stored, ok := m.offers[o.ID]
	if !ok {
		return false, ErrNotFound
	}
	if stored.StatusVersion != expectedStatusVersion {
		return false, nil
	}
	copied := *o
	copied.StatusVersion = expectedStatusVersion + 1
	m.offers[o.ID] = &copied
	return true, nil
}

func (m *memStore) List(ctx context.Context) ([]Offer, error) {
	var out []Offer
	for _, o := range m.offers {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memStore) AppendHistory(ctx context.Context, e *HistoryEntry) error {
	m.history = append(m.history, *e)
	return nil
}

func (m *memStore) History(ctx context.Context, offerID types.ID) ([]HistoryEntry, error) {
	var out []HistoryEntry
	for _, e := range m.history {
		if e.OfferID == offerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// failingEnricher simulates a provider outage.
type failingEnricher struct{}

func (failingEnricher) FunFact(ctx context.Context, origin, destination string) (string, error) {
	return "", errors.New("provider unavailable")
}

func (failingEnricher) EnhanceDescription(ctx context.Context, origin, destination string, distanceKm, durationHours float64) (string, error) {
	return "", errors.New("provider unavailable")
}

// stubEnricher returns canned texts.
type stubEnricher struct{}

func (stubEnricher) FunFact(ctx context.Context, origin, destination string) (string, error) {
	return fmt.Sprintf("Did you know %s and %s were once linked by a salt road?", origin, destination), nil
}

func (stubEnricher) EnhanceDescription(ctx context.Context, origin, destination string, distanceKm, durationHours float64) (string, error) {
	return "A scenic industrial corridor.", nil
}

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func priceCmd(margin float64) PriceCommand {
	return PriceCommand{
		RouteID:       types.NewID(),
		Origin:        "Berlin, Germany",
		Destination:   "Warsaw, Poland",
		DistanceKm:    575,
		DurationHours: 6.5,
		TotalCost:     d(1000),
		Margin:        d(margin),
		Actor:         "tester",
	}
}

func mustPrice(t *testing.T, svc *Service, margin float64) *Offer {
	t.Helper()
	o, err := svc.Price(context.Background(), priceCmd(margin))
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	return o
}

func TestPriceComputesFinalPrice(t *testing.T) {
	svc := NewService(newMemStore(), stubEnricher{}, time.Hour)

	cases := []struct {
		margin float64
		want   float64
	}{
		{0, 1000},
		{15, 1150},
		{100, 2000},
	}
	for _, tc := range cases {
		o := mustPrice(t, svc, tc.margin)
		if !o.FinalPrice.Equal(d(tc.want)) {
			t.Errorf("margin %v: final price = %s, want %v", tc.margin, o.FinalPrice, tc.want)
		}
		if o.Status != StatusDraft {
			t.Errorf("new offer status = %s, want draft", o.Status)
		}
		if o.Version != "1.0" {
			t.Errorf("new offer version = %s, want 1.0", o.Version)
		}
	}
}

func TestPriceMarginMonotonic(t *testing.T) {
	svc := NewService(newMemStore(), nil, time.Hour)
	previous := decimal.Zero
	for _, margin := range []float64{0, 1, 5, 12.5, 15, 40, 100} {
		o := mustPrice(t, svc, margin)
		if o.FinalPrice.LessThan(previous) {
			t.Fatalf("final price decreased at margin %v: %s < %s", margin, o.FinalPrice, previous)
		}
		previous = o.FinalPrice
	}
}

func TestPriceRejectsNegativeMargin(t *testing.T) {
	svc := NewService(newMemStore(), nil, time.Hour)
	_, err := svc.Price(context.Background(), priceCmd(-5))
	if !errors.Is(err, ErrNegativeMargin) {
		t.Errorf("err = %v, want ErrNegativeMargin", err)
	}
}

func TestPriceWritesInitialHistory(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, stubEnricher{}, time.Hour)
	o := mustPrice(t, svc, 15)

	history, _ := store.History(context.Background(), o.ID)
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].ChangeReason != "Initial creation" {
		t.Errorf("reason = %q, want %q", history[0].ChangeReason, "Initial creation")
	}
	if history[0].Status != StatusDraft {
		t.Errorf("history status = %s, want draft", history[0].Status)
	}
}

func TestPriceSurvivesEnrichmentFailure(t *testing.T) {
	svc := NewService(newMemStore(), failingEnricher{}, time.Hour)
	o := mustPrice(t, svc, 10)

	if o.FunFact != FallbackFunFact("Berlin, Germany", "Warsaw, Poland") {
		t.Errorf("fun fact = %q, want deterministic fallback", o.FunFact)
	}
	if !strings.Contains(o.EnhancedDescription, "575 km") {
		t.Errorf("description = %q, want fallback with distance", o.EnhancedDescription)
	}
}

func TestUpdateMetadataOnlyKeepsCostBasis(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, time.Hour)
	o := mustPrice(t, svc, 15)

	updated, entry, err := svc.Update(context.Background(), UpdateCommand{
		OfferID:  o.ID,
		Metadata: map[string]string{"customer": "ACME"},
		Actor:    "sales",
		Reason:   "attach customer",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.TotalCost.Equal(o.TotalCost) {
		t.Errorf("total cost changed: %s → %s", o.TotalCost, updated.TotalCost)
	}
	if !updated.FinalPrice.Equal(o.FinalPrice) {
		t.Errorf("final price changed: %s → %s", o.FinalPrice, updated.FinalPrice)
	}
	if updated.Version != "1.1" {
		t.Errorf("version = %s, want 1.1", updated.Version)
	}
	if entry == nil || entry.ChangeReason != "attach customer" {
		t.Errorf("history entry = %+v", entry)
	}
	history, _ := store.History(context.Background(), o.ID)
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2", len(history))
	}
}

func TestUpdateMarginRepricesStoredCost(t *testing.T) {
	svc := NewService(newMemStore(), nil, time.Hour)
	o := mustPrice(t, svc, 15)

	newMargin := d(20)
	updated, entry, err := svc.Update(context.Background(), UpdateCommand{
		OfferID: o.ID,
		Margin:  &newMargin,
		Reason:  "negotiated up",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.FinalPrice.Equal(d(1200)) {
		t.Errorf("final price = %s, want 1200", updated.FinalPrice)
	}
	if !entry.PreviousMargin.Equal(d(15)) || !entry.Margin.Equal(d(20)) {
		t.Errorf("history margins = %s → %s, want 15 → 20", entry.PreviousMargin, entry.Margin)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, time.Hour)
	ctx := context.Background()
	o := mustPrice(t, svc, 15)

	active := StatusActive
	if _, _, err := svc.Update(ctx, UpdateCommand{OfferID: o.ID, Status: &active, Reason: "sent to customer"}); err != nil {
		t.Fatalf("draft → active: %v", err)
	}
	accepted := StatusAccepted
	if _, _, err := svc.Update(ctx, UpdateCommand{OfferID: o.ID, Status: &accepted, Reason: "customer accepted"}); err != nil {
		t.Fatalf("active → accepted: %v", err)
	}

	history, _ := store.History(ctx, o.ID)
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if history[1].PreviousStatus != StatusDraft || history[1].Status != StatusActive {
		t.Errorf("entry 1 = %s → %s", history[1].PreviousStatus, history[1].Status)
	}
	if history[2].PreviousStatus != StatusActive || history[2].Status != StatusAccepted {
		t.Errorf("entry 2 = %s → %s", history[2].PreviousStatus, history[2].Status)
	}
}

func TestUpdateRejectsInvalidTransition(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, time.Hour)
	ctx := context.Background()
	o := mustPrice(t, svc, 15)

	if _, err := svc.Archive(ctx, o.ID, "ops", ""); err != nil {
		t.Fatalf("archive: %v", err)
	}

	active := StatusActive
	_, _, err := svc.Update(ctx, UpdateCommand{OfferID: o.ID, Status: &active, Reason: "reopen"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	for _, fragment := range []string{"archived", "active", "allowed: none"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q missing %q", err, fragment)
		}
	}

	// the failed transition left the offer untouched
	current, _ := svc.Get(ctx, o.ID)
	if current.Status != StatusArchived {
		t.Errorf("status = %s, want archived", current.Status)
	}
	if current.Version != "1.1" {
		t.Errorf("version = %s, want 1.1 (one successful update)", current.Version)
	}
	history, _ := store.History(ctx, o.ID)
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2", len(history))
	}
}

func TestUpdateStatusRequiresReason(t *testing.T) {
	svc := NewService(newMemStore(), nil, time.Hour)
	o := mustPrice(t, svc, 15)

	active := StatusActive
	_, _, err := svc.Update(context.Background(), UpdateCommand{OfferID: o.ID, Status: &active})
	if !errors.Is(err, ErrReasonRequired) {
		t.Errorf("err = %v, want ErrReasonRequired", err)
	}
}

func TestArchiveUsesDefaultReason(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, time.Hour)
	o := mustPrice(t, svc, 15)

	archived, err := svc.Archive(context.Background(), o.ID, "", "")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived.Status != StatusArchived {
		t.Errorf("status = %s, want archived", archived.Status)
	}
	history, _ := store.History(context.Background(), o.ID)
	if got := history[len(history)-1].ChangeReason; got != "Offer archived" {
		t.Errorf("reason = %q, want default", got)
	}
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusActive, true},
		{StatusDraft, StatusArchived, true},
		{StatusActive, StatusAccepted, true},
		{StatusActive, StatusRejected, true},
		{StatusActive, StatusArchived, true},
		// skipping or reversing states
		{StatusDraft, StatusAccepted, false},
		{StatusDraft, StatusRejected, false},
		{StatusActive, StatusDraft, false},
		// terminal states have no outgoing transitions
		{StatusAccepted, StatusArchived, false},
		{StatusRejected, StatusActive, false},
		{StatusArchived, StatusActive, false},
		{StatusArchived, StatusDraft, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestBumpVersion(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1.0", "1.1"},
		{"1.1", "1.2"},
		{"1.9", "2.0"},
		{"3.4", "3.5"},
	}
	for _, tc := range cases {
		if got := bumpVersion(tc.in); got != tc.want {
			t.Errorf("bumpVersion(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
