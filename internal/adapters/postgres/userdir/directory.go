package userdir

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/userdir"
)

// Directory is a Postgres implementation of userdir.Directory reading the
// users table.
type Directory struct {
	pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

func (d *Directory) Lookup(ctx context.Context, userID domain.UserID) (userdir.Profile, error) {
	if d.pool == nil {
		return userdir.Profile{}, errors.New("nil postgres pool")
	}

	row := d.pool.QueryRow(ctx, `
		SELECT display_name, avatar_url, profile_url
		FROM users
		WHERE id = $1
	`, int64(userID))

	var displayName, avatarURL, profileURL string
	if err := row.Scan(&displayName, &avatarURL, &profileURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userdir.Profile{}, userdir.ErrNotFound
		}
		return userdir.Profile{}, fmt.Errorf("select user: %w", err)
	}

	return userdir.Profile{
		UserID:      userID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		ProfileURL:  profileURL,
	}, nil
}
