// README: Route store backed by PostgreSQL; segments persisted as JSONB.
package route

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"loadapp/internal/modules/costing"
	"loadapp/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *Route) error {
	origin, destination, segments, empty, err := marshalRoute(r)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO routes (
			id, origin, destination, total_distance_km, total_duration_hours,
			segments, empty_driving, created_at, modified_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(r.ID), origin, destination,
		r.TotalDistanceKm, r.TotalDurationHours,
		segments, empty, r.CreatedAt, r.ModifiedAt,
	)
	return err
}

func (s *Store) Update(ctx context.Context, r *Route) error {
	origin, destination, segments, empty, err := marshalRoute(r)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE routes
		SET origin = $1, destination = $2,
		    total_distance_km = $3, total_duration_hours = $4,
		    segments = $5, empty_driving = $6, modified_at = $7
		WHERE id = $8`,
		origin, destination, r.TotalDistanceKm, r.TotalDurationHours,
		segments, empty, r.ModifiedAt, string(r.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Route, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, origin, destination, total_distance_km, total_duration_hours,
		       segments, empty_driving, created_at, modified_at
		FROM routes
		WHERE id = $1`, string(id))
	return scanRoute(row)
}

func (s *Store) List(ctx context.Context) ([]Route, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, origin, destination, total_distance_km, total_duration_hours,
		       segments, empty_driving, created_at, modified_at
		FROM routes
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, *r)
	}
	return routes, rows.Err()
}

func marshalRoute(r *Route) (origin, destination, segments, empty []byte, err error) {
	if origin, err = json.Marshal(r.Origin); err != nil {
		return
	}
	if destination, err = json.Marshal(r.Destination); err != nil {
		return
	}
	if segments, err = json.Marshal(r.Segments); err != nil {
		return
	}
	if r.Empty != nil {
		empty, err = json.Marshal(r.Empty)
	}
	return
}

func scanRoute(row pgx.Row) (*Route, error) {
	var (
		r                                    Route
		id                                   string
		origin, destination, segments, empty []byte
		distance, duration                   decimal.Decimal
		createdAt, modifiedAt                time.Time
	)
	err := row.Scan(&id, &origin, &destination, &distance, &duration,
		&segments, &empty, &createdAt, &modifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.ID = types.ID(id)
	r.TotalDistanceKm = distance
	r.TotalDurationHours = duration
	r.CreatedAt = createdAt
	r.ModifiedAt = modifiedAt
	if err := json.Unmarshal(origin, &r.Origin); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(destination, &r.Destination); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(segments, &r.Segments); err != nil {
		return nil, err
	}
	if len(empty) > 0 {
		var e costing.EmptyDriving
		if err := json.Unmarshal(empty, &e); err != nil {
			return nil, err
		}
		r.Empty = &e
	}
	return &r, nil
}
