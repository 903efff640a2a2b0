// README: Offer store backed by PostgreSQL; optimistic updates and append-only history.
package offer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"loadapp/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, o *Offer) error {
	metadata, err := json.Marshal(o.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO offers (
			id, route_id, breakdown_id, margin, total_cost, final_price, currency,
			status, status_version, version, fun_fact, enhanced_description, metadata,
			valid_until, created_at, created_by, modified_at, modified_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18
		)`,
		string(o.ID), string(o.RouteID), string(o.BreakdownID),
		o.Margin, o.TotalCost, o.FinalPrice, o.Currency,
		string(o.Status), o.StatusVersion, o.Version,
		o.FunFact, o.EnhancedDescription, metadata,
		o.ValidUntil, o.CreatedAt, o.CreatedBy, o.ModifiedAt, o.ModifiedBy,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Offer, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, route_id, breakdown_id, margin, total_cost, final_price, currency,
		       status, status_version, version, fun_fact, enhanced_description, metadata,
		       valid_until, created_at, created_by, modified_at, modified_by
		FROM offers
		WHERE id = $1`, string(id))
	return scanOffer(row)
}

// Update persists a mutated offer guarded by the status-version
// counter; a stale counter means a concurrent update won and the
// caller gets ok=false.
func (s *Store) Update(ctx context.Context, o *Offer, expectedStatusVersion int) (bool, error) {
	metadata, err := json.Marshal(o.Metadata)
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE offers
		SET margin = $1,
		    final_price = $2,
		    status = $3,
		    status_version = status_version + 1,
		    version = $4,
		    metadata = $5,
		    modified_at = $6,
		    modified_by = $7
		WHERE id = $8 AND status_version = $9`,
		o.Margin, o.FinalPrice, string(o.Status), o.Version,
		metadata, o.ModifiedAt, o.ModifiedBy,
		string(o.ID), expectedStatusVersion,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) List(ctx context.Context) ([]Offer, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, route_id, breakdown_id, margin, total_cost, final_price, currency,
		       status, status_version, version, fun_fact, enhanced_description, metadata,
		       valid_until, created_at, created_by, modified_at, modified_by
		FROM offers
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

func (s *Store) AppendHistory(ctx context.Context, e *HistoryEntry) error {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO offer_history (
			id, offer_id, version, previous_status, status,
			previous_margin, margin, final_price, fun_fact, metadata,
			changed_at, changed_by, change_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		string(e.ID), string(e.OfferID), e.Version,
		string(e.PreviousStatus), string(e.Status),
		e.PreviousMargin, e.Margin, e.FinalPrice,
		e.FunFact, metadata,
		e.ChangedAt, e.ChangedBy, e.ChangeReason,
	)
	return err
}

func (s *Store) History(ctx context.Context, offerID types.ID) ([]HistoryEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, offer_id, version, previous_status, status,
		       previous_margin, margin, final_price, fun_fact, metadata,
		       changed_at, changed_by, change_reason
		FROM offer_history
		WHERE offer_id = $1
		ORDER BY changed_at ASC`, string(offerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e                HistoryEntry
			id, offID        string
			prevStatus, stat string
			metadata         []byte
		)
		err := rows.Scan(&id, &offID, &e.Version, &prevStatus, &stat,
			&e.PreviousMargin, &e.Margin, &e.FinalPrice, &e.FunFact, &metadata,
			&e.ChangedAt, &e.ChangedBy, &e.ChangeReason)
		if err != nil {
			return nil, err
		}
		e.ID = types.ID(id)
		e.OfferID = types.ID(offID)
		e.PreviousStatus = Status(prevStatus)
		e.Status = Status(stat)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanOffer(row pgx.Row) (*Offer, error) {
	var (
		o                          Offer
		id, routeID, breakdownID   string
		status                     string
		margin, total, finalPrice  decimal.Decimal
		metadata                   []byte
		validUntil, created, modAt time.Time
	)
	err := row.Scan(&id, &routeID, &breakdownID, &margin, &total, &finalPrice, &o.Currency,
		&status, &o.StatusVersion, &o.Version, &o.FunFact, &o.EnhancedDescription, &metadata,
		&validUntil, &created, &o.CreatedBy, &modAt, &o.ModifiedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	o.ID = types.ID(id)
	o.RouteID = types.ID(routeID)
	o.BreakdownID = types.ID(breakdownID)
	o.Margin = margin
	o.TotalCost = total
	o.FinalPrice = finalPrice
	o.Status = Status(status)
	o.ValidUntil = validUntil
	o.CreatedAt = created
	o.ModifiedAt = modAt
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &o.Metadata); err != nil {
			return nil, err
		}
	}
	return &o, nil
}
