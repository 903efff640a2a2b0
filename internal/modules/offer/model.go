// README: Offer aggregate, status state machine, and history records.
package offer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"loadapp/internal/types"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusArchived Status = "archived"
)

// AllowedTransitions represents the offer lifecycle as code. Accepted,
// rejected, and archived offers are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusDraft:  {StatusActive, StatusArchived},
	StatusActive: {StatusAccepted, StatusRejected, StatusArchived},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// LegalTargets lists the states reachable from the given status, for
// use in transition error messages.
func LegalTargets(from Status) string {
	targets := AllowedTransitions[from]
	if len(targets) == 0 {
		return "none"
	}
	names := make([]string, len(targets))
	for i, s := range targets {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Offer is a priced, versioned, status-tracked commercial quotation.
// The cost basis (TotalCost) is fixed at creation; updates only
// re-price it through the margin.
type Offer struct {
	ID          types.ID `json:"id"`
	RouteID     types.ID `json:"route_id"`
	BreakdownID types.ID `json:"breakdown_id,omitempty"`

	Margin     decimal.Decimal `json:"margin"` // percentage points, e.g. 15 ⇒ ×1.15
	TotalCost  decimal.Decimal `json:"total_cost"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Currency   string          `json:"currency"`

	Status  Status `json:"status"`
	Version string `json:"version"` // "major.minor", +0.1 per mutating update

	FunFact             string            `json:"fun_fact,omitempty"`
	EnhancedDescription string            `json:"enhanced_description,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`

	ValidUntil time.Time `json:"valid_until"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
	ModifiedAt time.Time `json:"modified_at"`
	ModifiedBy string    `json:"modified_by"`

	// StatusVersion is the optimistic-concurrency counter used by the
	// store's compare-and-set update. Not exposed over the API.
	StatusVersion int `json:"-"`
}

// HistoryEntry is one immutable line of an offer's audit trail. One
// entry is written per creation and per mutating update; entries are
// never edited or deleted.
type HistoryEntry struct {
	ID      types.ID `json:"id"`
	OfferID types.ID `json:"offer_id"`
	Version string   `json:"version"`

	PreviousStatus Status `json:"previous_status,omitempty"`
	Status         Status `json:"status"`

	PreviousMargin decimal.Decimal `json:"previous_margin"`
	Margin         decimal.Decimal `json:"margin"`
	FinalPrice     decimal.Decimal `json:"final_price"`

	FunFact  string            `json:"fun_fact,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`

	ChangedAt    time.Time `json:"changed_at"`
	ChangedBy    string    `json:"changed_by"`
	ChangeReason string    `json:"change_reason"`
}

// initialVersion is the version every new offer starts at.
const initialVersion = "1.0"

var versionStep = decimal.NewFromFloat(0.1)

// bumpVersion advances a "major.minor" version by 0.1, so "1.9" rolls
// over to "2.0".
func bumpVersion(version string) string {
	v, err := decimal.NewFromString(version)
	if err != nil {
		return initialVersion
	}
	return v.Add(versionStep).StringFixed(1)
}

// FinalPriceFor derives the sale price from a cost and a margin in
// percentage points.
func FinalPriceFor(totalCost, margin decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return totalCost.Mul(hundred.Add(margin)).Div(hundred)
}

func invalidTransitionError(from, to Status) error {
	return fmt.Errorf("%w: offer is %s, cannot move to %s (allowed: %s)",
		ErrInvalidTransition, from, to, LegalTargets(from))
}
