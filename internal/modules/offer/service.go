// README: Offer service implements pricing, lifecycle transitions, and history.
package offer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	logrus "github.com/sirupsen/logrus"

	"loadapp/internal/modules/costing"
	"loadapp/internal/types"
)

var (
	ErrNotFound          = errors.New("offer not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNegativeMargin    = errors.New("margin must be >= 0")
	ErrReasonRequired    = errors.New("change reason is required")
	ErrCostBasisRequired = errors.New("cost breakdown or total cost is required")
	ErrConflict          = errors.New("offer was modified concurrently")
)

// Enricher supplies the optional marketing texts. Failures are
// tolerated; pricing never fails because enrichment failed.
type Enricher interface {
	FunFact(ctx context.Context, origin, destination string) (string, error)
	EnhanceDescription(ctx context.Context, origin, destination string, distanceKm, durationHours float64) (string, error)
}

// OfferStore is the persistence contract. The pgx-backed Store
// satisfies it; tests use an in-memory fake.
type OfferStore interface {
	Create(ctx context.Context, o *Offer) error
	Get(ctx context.Context, id types.ID) (*Offer, error)
	Update(ctx context.Context, o *Offer, expectedStatusVersion int) (bool, error)
	List(ctx context.Context) ([]Offer, error)
	AppendHistory(ctx context.Context, e *HistoryEntry) error
	History(ctx context.Context, offerID types.ID) ([]HistoryEntry, error)
}

type Service struct {
	store    OfferStore
	enricher Enricher
	validity time.Duration
}

func NewService(store OfferStore, enricher Enricher, validity time.Duration) *Service {
	if validity <= 0 {
		validity = 7 * 24 * time.Hour
	}
	return &Service{store: store, enricher: enricher, validity: validity}
}

// PriceCommand prices a route. The cost basis comes from Breakdown
// when present, otherwise from TotalCost.
type PriceCommand struct {
	RouteID       types.ID
	Origin        string
	Destination   string
	DistanceKm    float64
	DurationHours float64

	Breakdown *costing.CostBreakdown
	TotalCost decimal.Decimal
	Currency  string

	Margin   decimal.Decimal // percentage points
	Metadata map[string]string
	Actor    string
}

// Price creates a draft offer with final price = cost × (1 + margin/100)
// and writes the initial history entry.
func (s *Service) Price(ctx context.Context, cmd PriceCommand) (*Offer, error) {
	if cmd.Margin.IsNegative() {
		return nil, fmt.Errorf("%w: got %s", ErrNegativeMargin, cmd.Margin)
	}

	totalCost := cmd.TotalCost
	currency := cmd.Currency
	var breakdownID types.ID
	if cmd.Breakdown != nil {
		totalCost = cmd.Breakdown.TotalCost
		currency = cmd.Breakdown.Currency
		breakdownID = cmd.Breakdown.ID
	}
	if totalCost.IsZero() && cmd.Breakdown == nil {
		return nil, ErrCostBasisRequired
	}
	if currency == "" {
		currency = costing.DefaultCurrency
	}

	funFact, description := s.enrich(ctx, cmd)

	now := time.Now().UTC()
	o := &Offer{
		ID:                  types.NewID(),
		RouteID:             cmd.RouteID,
		BreakdownID:         breakdownID,
		Margin:              cmd.Margin,
		TotalCost:           totalCost,
		FinalPrice:          FinalPriceFor(totalCost, cmd.Margin),
		Currency:            currency,
		Status:              StatusDraft,
		Version:             initialVersion,
		FunFact:             funFact,
		EnhancedDescription: description,
		Metadata:            cmd.Metadata,
		ValidUntil:          now.Add(s.validity),
		CreatedAt:           now,
		CreatedBy:           actorOrSystem(cmd.Actor),
		ModifiedAt:          now,
		ModifiedBy:          actorOrSystem(cmd.Actor),
	}

	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	if err := s.store.AppendHistory(ctx, historyFor(o, "", o.Margin, "Initial creation")); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateCommand mutates an offer. Nil fields are left unchanged.
// Reason is mandatory whenever the status changes.
type UpdateCommand struct {
	OfferID  types.ID
	Margin   *decimal.Decimal
	Status   *Status
	Metadata map[string]string
	Actor    string
	Reason   string
}

// Update applies a margin/status/metadata change, bumps the version by
// 0.1, and appends exactly one history entry. The cost basis is never
// recomputed; a margin change re-prices the stored total cost.
func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*Offer, *HistoryEntry, error) {
	o, err := s.store.Get(ctx, cmd.OfferID)
	if err != nil {
		return nil, nil, err
	}

	previousStatus := o.Status
	previousMargin := o.Margin

	if cmd.Status != nil && *cmd.Status != o.Status {
		if cmd.Reason == "" {
			return nil, nil, fmt.Errorf("%w when changing status", ErrReasonRequired)
		}
		if !CanTransition(o.Status, *cmd.Status) {
			return nil, nil, invalidTransitionError(o.Status, *cmd.Status)
		}
		o.Status = *cmd.Status
	}

	if cmd.Margin != nil {
		if cmd.Margin.IsNegative() {
			return nil, nil, fmt.Errorf("%w: got %s", ErrNegativeMargin, cmd.Margin)
		}
		o.Margin = *cmd.Margin
		o.FinalPrice = FinalPriceFor(o.TotalCost, o.Margin)
	}

	if cmd.Metadata != nil {
		if o.Metadata == nil {
			o.Metadata = map[string]string{}
		}
		for k, v := range cmd.Metadata {
			o.Metadata[k] = v
		}
	}

	o.Version = bumpVersion(o.Version)
	o.ModifiedAt = time.Now().UTC()
	o.ModifiedBy = actorOrSystem(cmd.Actor)

	ok, err := s.store.Update(ctx, o, o.StatusVersion)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrConflict
	}
	o.StatusVersion++

	reason := cmd.Reason
	if reason == "" {
		reason = "Offer updated"
	}
	entry := historyFor(o, previousStatus, previousMargin, reason)
	if err := s.store.AppendHistory(ctx, entry); err != nil {
		return nil, nil, err
	}
	return o, entry, nil
}

// Archive forces the offer into the terminal archived state.
func (s *Service) Archive(ctx context.Context, id types.ID, actor, reason string) (*Offer, error) {
	if reason == "" {
		reason = "Offer archived"
	}
	archived := StatusArchived
	o, _, err := s.Update(ctx, UpdateCommand{
		OfferID: id,
		Status:  &archived,
		Actor:   actor,
		Reason:  reason,
	})
	return o, err
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Offer, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Offer, error) {
	return s.store.List(ctx)
}

func (s *Service) History(ctx context.Context, id types.ID) ([]HistoryEntry, error) {
	return s.store.History(ctx, id)
}

// enrich asks the provider for the fun fact and enhanced description,
// falling back to deterministic strings on any failure.
func (s *Service) enrich(ctx context.Context, cmd PriceCommand) (funFact, description string) {
	funFact = FallbackFunFact(cmd.Origin, cmd.Destination)
	description = FallbackDescription(cmd.Origin, cmd.Destination, cmd.DistanceKm, cmd.DurationHours)
	if s.enricher == nil {
		return funFact, description
	}

	if fact, err := s.enricher.FunFact(ctx, cmd.Origin, cmd.Destination); err == nil && fact != "" {
		funFact = fact
	} else if err != nil {
		logrus.WithError(err).Warn("fun fact enrichment failed, using fallback")
	}

	if desc, err := s.enricher.EnhanceDescription(ctx, cmd.Origin, cmd.Destination, cmd.DistanceKm, cmd.DurationHours); err == nil && desc != "" {
		description = desc
	} else if err != nil {
		logrus.WithError(err).Warn("description enrichment failed, using fallback")
	}
	return funFact, description
}

// FallbackFunFact is the deterministic fact used when the enrichment
// provider is unavailable.
func FallbackFunFact(origin, destination string) string {
	return fmt.Sprintf("Route from %s to %s is served by our European freight network.", origin, destination)
}

// FallbackDescription is the deterministic description used when the
// enrichment provider is unavailable.
func FallbackDescription(origin, destination string, distanceKm, durationHours float64) string {
	return fmt.Sprintf("Freight transport from %s to %s, %.0f km in approximately %.1f hours.",
		origin, destination, distanceKm, durationHours)
}

func historyFor(o *Offer, previousStatus Status, previousMargin decimal.Decimal, reason string) *HistoryEntry {
	metadata := make(map[string]string, len(o.Metadata))
	for k, v := range o.Metadata {
		metadata[k] = v
	}
	return &HistoryEntry{
		ID:             types.NewID(),
		OfferID:        o.ID,
		Version:        o.Version,
		PreviousStatus: previousStatus,
		Status:         o.Status,
		PreviousMargin: previousMargin,
		Margin:         o.Margin,
		FinalPrice:     o.FinalPrice,
		FunFact:        o.FunFact,
		Metadata:       metadata,
		ChangedAt:      o.ModifiedAt,
		ChangedBy:      o.ModifiedBy,
		ChangeReason:   reason,
	}
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return "system"
	}
	return actor
}
