package responserepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/responserepo"
)

// Repo is a Postgres implementation of responserepo.Repository backed by the
// event_rsvps table. The (event_id, user_id) pair is unique; concurrent
// upserts for the same pair resolve via ON CONFLICT.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Find(ctx context.Context, eventID domain.EventID, userID domain.UserID) (responserepo.Response, error) {
	if r.pool == nil {
		return responserepo.Response{}, fmt.Errorf("%w: nil postgres pool", responserepo.ErrUnavailable)
	}

	row := r.pool.QueryRow(ctx, `
		SELECT id, status, guests, anonymous, updated_at
		FROM event_rsvps
		WHERE event_id = $1 AND user_id = $2
	`, int64(eventID), int64(userID))

	var (
		id        string
		status    string
		guests    int
		anonymous bool
		updatedAt time.Time
	)
	if err := row.Scan(&id, &status, &guests, &anonymous, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return responserepo.Response{}, responserepo.ErrNotFound
		}
		return responserepo.Response{}, fmt.Errorf("%w: %v", responserepo.ErrUnavailable, err)
	}

	return responserepo.Response{
		ID:        domain.ResponseID(id),
		EventID:   eventID,
		UserID:    userID,
		Status:    domain.RSVPStatus(status),
		Guests:    guests,
		Anonymous: anonymous,
		UpdatedAt: updatedAt.UTC(),
	}, nil
}

func (r *Repo) ListByEvent(ctx context.Context, eventID domain.EventID) ([]responserepo.Response, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("%w: nil postgres pool", responserepo.ErrUnavailable)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, status, guests, anonymous, updated_at
		FROM event_rsvps
		WHERE event_id = $1
		ORDER BY user_id ASC
	`, int64(eventID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", responserepo.ErrUnavailable, err)
	}
	defer rows.Close()

	out := make([]responserepo.Response, 0)
	for rows.Next() {
		var (
			id        string
			userID    int64
			status    string
			guests    int
			anonymous bool
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &userID, &status, &guests, &anonymous, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", responserepo.ErrUnavailable, err)
		}
		out = append(out, responserepo.Response{
			ID:        domain.ResponseID(id),
			EventID:   eventID,
			UserID:    domain.UserID(userID),
			Status:    domain.RSVPStatus(status),
			Guests:    guests,
			Anonymous: anonymous,
			UpdatedAt: updatedAt.UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", responserepo.ErrUnavailable, err)
	}
	return out, nil
}

func (r *Repo) Upsert(ctx context.Context, rec responserepo.Response) (responserepo.Response, error) {
	if r.pool == nil {
		return responserepo.Response{}, fmt.Errorf("%w: nil postgres pool", responserepo.ErrUnavailable)
	}

	if rec.ID == "" {
		rec.ID = domain.ResponseID(uuid.NewString())
	}

	// ON CONFLICT keeps the stored row's identity if another writer won the
	// insert race for the same (event, user) pair.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO event_rsvps (id, event_id, user_id, status, guests, anonymous, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id, user_id) DO UPDATE
		SET status = EXCLUDED.status,
		    guests = EXCLUDED.guests,
		    anonymous = EXCLUDED.anonymous,
		    updated_at = EXCLUDED.updated_at
		RETURNING id
	`, string(rec.ID), int64(rec.EventID), int64(rec.UserID), string(rec.Status), rec.Guests, rec.Anonymous, rec.UpdatedAt.UTC())

	var id string
	if err := row.Scan(&id); err != nil {
		return responserepo.Response{}, fmt.Errorf("%w: %v", responserepo.ErrUnavailable, err)
	}
	rec.ID = domain.ResponseID(id)
	return rec, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ResponseID) error {
	if r.pool == nil {
		return fmt.Errorf("%w: nil postgres pool", responserepo.ErrUnavailable)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM event_rsvps WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("%w: %v", responserepo.ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return responserepo.ErrNotFound
	}
	return nil
}
