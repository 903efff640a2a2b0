// README: Route aggregate: loaded segments plus the empty-driving leg.
package route

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"loadapp/internal/modules/costing"
	"loadapp/internal/types"
)

var (
	ErrNotFound        = errors.New("route not found")
	ErrLocationService = errors.New("location service failure")
	ErrBadRequest      = errors.New("origin and destination are required")
)

// Default empty-driving leg assumed when the truck's current position
// is unknown at route creation time.
var (
	DefaultEmptyDistanceKm    = decimal.NewFromInt(200)
	DefaultEmptyDurationHours = decimal.NewFromInt(4)
)

// Route is a planned transport between two locations, split into
// per-country segments by the maps provider. The empty-driving leg is
// created once at route creation and only changes on recalculation.
type Route struct {
	ID          types.ID       `json:"id"`
	Origin      types.Location `json:"origin"`
	Destination types.Location `json:"destination"`

	TotalDistanceKm    decimal.Decimal          `json:"total_distance_km"`
	TotalDurationHours decimal.Decimal          `json:"total_duration_hours"`
	Segments           []costing.CountrySegment `json:"segments"`
	Empty              *costing.EmptyDriving    `json:"empty_driving,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Estimate is what the segment provider returns for one leg.
type Estimate struct {
	DistanceKm    decimal.Decimal
	DurationHours decimal.Decimal
	Segments      []costing.CountrySegment
}

// SegmentProvider resolves a leg into per-country segments. Provider
// failures are fatal for the calculation; no fallback route is
// fabricated.
type SegmentProvider interface {
	Segments(ctx context.Context, origin, destination types.Location) (Estimate, error)
	EmptyDrivingSegments(ctx context.Context, origin, destination types.Location) (Estimate, error)
}
