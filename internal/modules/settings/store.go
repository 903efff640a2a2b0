// README: Settings store backed by PostgreSQL with a Redis snapshot cache.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"loadapp/internal/types"
)

const (
	currentCacheKey = "settings:current"
	currentCacheTTL = 5 * time.Minute
)

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, redis *redis.Client) *Store {
	return &Store{db: db, redis: redis}
}

// Current returns the latest snapshot. The Redis cache is best-effort:
// a cache miss or unmarshal failure falls through to Postgres.
func (s *Store) Current(ctx context.Context) (*RateSettings, error) {
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, currentCacheKey).Result(); err == nil {
			var cached RateSettings
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, version, payload, change_reason, created_by, created_at
		FROM rate_settings
		ORDER BY version DESC
		LIMIT 1`)

	settings, err := scanSettings(row)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(settings); err == nil {
			_ = s.redis.Set(ctx, currentCacheKey, raw, currentCacheTTL).Err()
		}
	}
	return settings, nil
}

// Save persists the snapshot as a new version and invalidates the
// cached current snapshot.
func (s *Store) Save(ctx context.Context, settings *RateSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO rate_settings (id, version, payload, change_reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(settings.ID),
		settings.Version,
		payload,
		settings.ChangeReason,
		settings.CreatedBy,
		settings.CreatedAt,
	)
	if err != nil {
		return err
	}
	if s.redis != nil {
		_ = s.redis.Del(ctx, currentCacheKey).Err()
	}
	return nil
}

// ByVersion returns one historical snapshot for audit queries.
func (s *Store) ByVersion(ctx context.Context, version int) (*RateSettings, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, version, payload, change_reason, created_by, created_at
		FROM rate_settings
		WHERE version = $1`, version)
	return scanSettings(row)
}

// History lists the change records, newest first.
func (s *Store) History(ctx context.Context) ([]ChangeRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, version, change_reason, created_by, created_at
		FROM rate_settings
		ORDER BY version DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ChangeRecord
	for rows.Next() {
		var rec ChangeRecord
		var id string
		if err := rows.Scan(&id, &rec.Version, &rec.ChangeReason, &rec.CreatedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.ID = types.ID(id)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanSettings(row pgx.Row) (*RateSettings, error) {
	var (
		id, reason, createdBy string
		version               int
		payload               []byte
		createdAt             time.Time
	)
	err := row.Scan(&id, &version, &payload, &reason, &createdBy, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var settings RateSettings
	if err := json.Unmarshal(payload, &settings); err != nil {
		return nil, err
	}
	settings.ID = types.ID(id)
	settings.Version = version
	settings.ChangeReason = reason
	settings.CreatedBy = createdBy
	settings.CreatedAt = createdAt
	return &settings, nil
}
