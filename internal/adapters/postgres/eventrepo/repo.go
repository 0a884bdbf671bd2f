package eventrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/eventrepo"
)

// Repo is a Postgres implementation of eventrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, e eventrepo.Event) (eventrepo.Event, error) {
	if r.pool == nil {
		return eventrepo.Event{}, errors.New("nil postgres pool")
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (name, description, starts_at, ends_at, max_guest_limit, online, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, e.Name, e.Description, utcPtr(e.StartsAt), utcPtr(e.EndsAt), e.MaxGuestLimit, e.Online, e.CreatedAt.UTC(), e.UpdatedAt.UTC())

	var id int64
	if err := row.Scan(&id); err != nil {
		return eventrepo.Event{}, fmt.Errorf("insert event: %w", err)
	}
	e.ID = domain.EventID(id)
	return e, nil
}

func (r *Repo) Save(ctx context.Context, e eventrepo.Event) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE events
		SET name = $2,
		    description = $3,
		    starts_at = $4,
		    ends_at = $5,
		    max_guest_limit = $6,
		    online = $7,
		    updated_at = $8
		WHERE id = $1
	`, int64(e.ID), e.Name, e.Description, utcPtr(e.StartsAt), utcPtr(e.EndsAt), e.MaxGuestLimit, e.Online, e.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return eventrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	if r.pool == nil {
		return eventrepo.Event{}, errors.New("nil postgres pool")
	}

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, description, starts_at, ends_at, max_guest_limit, online, created_at, updated_at
		FROM events
		WHERE id = $1
	`, int64(id))

	var (
		eid           int64
		name          string
		description   *string
		startsAt      *time.Time
		endsAt        *time.Time
		maxGuestLimit int
		online        bool
		createdAt     time.Time
		updatedAt     time.Time
	)
	if err := row.Scan(&eid, &name, &description, &startsAt, &endsAt, &maxGuestLimit, &online, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return eventrepo.Event{}, eventrepo.ErrNotFound
		}
		return eventrepo.Event{}, fmt.Errorf("select event: %w", err)
	}

	return eventrepo.Event{
		ID:            domain.EventID(eid),
		Name:          name,
		Description:   description,
		StartsAt:      utcPtr(startsAt),
		EndsAt:        utcPtr(endsAt),
		MaxGuestLimit: maxGuestLimit,
		Online:        online,
		CreatedAt:     createdAt.UTC(),
		UpdatedAt:     updatedAt.UTC(),
	}, nil
}

func (r *Repo) Exists(ctx context.Context, id domain.EventID) (bool, error) {
	if r.pool == nil {
		return false, errors.New("nil postgres pool")
	}

	row := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, int64(id))
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, fmt.Errorf("event exists: %w", err)
	}
	return ok, nil
}

func utcPtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := p.UTC()
	return &v
}
