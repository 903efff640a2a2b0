// README: Settings service; versions snapshots and serves the current one.
package settings

import (
	"context"
	"errors"
	"time"

	"loadapp/internal/types"
)

// SettingsStore is the persistence contract the service needs. The
// pgx-backed Store satisfies it; tests use an in-memory fake.
type SettingsStore interface {
	Current(ctx context.Context) (*RateSettings, error)
	Save(ctx context.Context, settings *RateSettings) error
	ByVersion(ctx context.Context, version int) (*RateSettings, error)
	History(ctx context.Context) ([]ChangeRecord, error)
}

type Service struct {
	store SettingsStore
}

func NewService(store SettingsStore) *Service {
	return &Service{store: store}
}

// Current returns the latest snapshot, falling back to the built-in
// defaults when nothing has been saved yet.
func (s *Service) Current(ctx context.Context) (*RateSettings, error) {
	current, err := s.store.Current(ctx)
	if errors.Is(err, ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, err
	}
	return current, nil
}

// UpdateCommand carries a full replacement snapshot plus the mandatory
// change reason. The service assigns identity, version, and timestamps.
type UpdateCommand struct {
	Settings *RateSettings
	Reason   string
	Actor    string
}

// Update validates and persists the snapshot as a new version. The
// previous version is left untouched and remains retrievable.
func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*RateSettings, error) {
	if cmd.Reason == "" {
		return nil, ErrReasonRequired
	}
	if err := cmd.Settings.Validate(); err != nil {
		return nil, err
	}

	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	next := *cmd.Settings
	next.ID = types.NewID()
	next.Version = current.Version + 1
	next.ChangeReason = cmd.Reason
	next.CreatedBy = actorOrSystem(cmd.Actor)
	next.CreatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *Service) ByVersion(ctx context.Context, version int) (*RateSettings, error) {
	return s.store.ByVersion(ctx, version)
}

func (s *Service) History(ctx context.Context) ([]ChangeRecord, error) {
	return s.store.History(ctx)
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return "system"
	}
	return actor
}
