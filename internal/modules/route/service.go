// README: Route service; builds routes from the segment provider.
package route

import (
	"context"
	"fmt"
	"time"

	"loadapp/internal/modules/costing"
	"loadapp/internal/types"
)

// RouteStore is the persistence contract. The pgx-backed Store
// satisfies it; tests use an in-memory fake.
type RouteStore interface {
	Create(ctx context.Context, r *Route) error
	Get(ctx context.Context, id types.ID) (*Route, error)
	Update(ctx context.Context, r *Route) error
	List(ctx context.Context) ([]Route, error)
}

type Service struct {
	store    RouteStore
	provider SegmentProvider
}

func NewService(store RouteStore, provider SegmentProvider) *Service {
	return &Service{store: store, provider: provider}
}

type CreateCommand struct {
	Origin      types.Location
	Destination types.Location
	// TruckLocation is where the vehicle currently sits; when set, the
	// empty-driving leg is resolved from it to the origin. When unset
	// a default 200 km / 4 h leg in the origin country is assumed.
	TruckLocation *types.Location
}

// Create resolves the loaded leg and the empty-driving leg through the
// provider and persists the route. Provider errors abort the creation.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Route, error) {
	if cmd.Origin.Address == "" || cmd.Destination.Address == "" {
		return nil, ErrBadRequest
	}

	loaded, empty, err := s.resolve(ctx, cmd.Origin, cmd.Destination, cmd.TruckLocation)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r := &Route{
		ID:                 types.NewID(),
		Origin:             cmd.Origin,
		Destination:        cmd.Destination,
		TotalDistanceKm:    loaded.DistanceKm,
		TotalDurationHours: loaded.DurationHours,
		Segments:           loaded.Segments,
		Empty:              empty,
		CreatedAt:          now,
		ModifiedAt:         now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Recalculate re-resolves both legs for an existing route. This is the
// only way an empty-driving leg changes after creation.
func (s *Service) Recalculate(ctx context.Context, id types.ID, truckLocation *types.Location) (*Route, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	loaded, empty, err := s.resolve(ctx, r.Origin, r.Destination, truckLocation)
	if err != nil {
		return nil, err
	}

	r.TotalDistanceKm = loaded.DistanceKm
	r.TotalDurationHours = loaded.DurationHours
	r.Segments = loaded.Segments
	r.Empty = empty
	r.ModifiedAt = time.Now().UTC()

	if err := s.store.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Route, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Route, error) {
	return s.store.List(ctx)
}

func (s *Service) resolve(ctx context.Context, origin, destination types.Location, truck *types.Location) (Estimate, *costing.EmptyDriving, error) {
	loaded, err := s.provider.Segments(ctx, origin, destination)
	if err != nil {
		return Estimate{}, nil, fmt.Errorf("%w: %v", ErrLocationService, err)
	}

	if truck == nil {
		return loaded, defaultEmptyLeg(origin, loaded), nil
	}

	est, err := s.provider.EmptyDrivingSegments(ctx, *truck, origin)
	if err != nil {
		return Estimate{}, nil, fmt.Errorf("%w: %v", ErrLocationService, err)
	}
	return loaded, &costing.EmptyDriving{
		DistanceKm:    est.DistanceKm,
		DurationHours: est.DurationHours,
		Origin:        truck,
		Destination:   &origin,
		Segments:      est.Segments,
	}, nil
}

// defaultEmptyLeg assumes the vehicle repositions inside the origin
// country when its actual position is unknown.
func defaultEmptyLeg(origin types.Location, loaded Estimate) *costing.EmptyDriving {
	country := ""
	if len(loaded.Segments) > 0 {
		country = loaded.Segments[0].CountryCode
	}
	return &costing.EmptyDriving{
		DistanceKm:    DefaultEmptyDistanceKm,
		DurationHours: DefaultEmptyDurationHours,
		Destination:   &origin,
		Segments: []costing.CountrySegment{
			{
				CountryCode:   country,
				DistanceKm:    DefaultEmptyDistanceKm,
				DurationHours: DefaultEmptyDurationHours,
			},
		},
	}
}
