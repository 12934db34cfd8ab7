package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
	"github.com/ericfisherdev/classfeed/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProfileStore = (*ProfileRepo)(nil)

// ProfileRepo is the SQLite implementation of the ProfileStore port interface.
// The profile table holds at most one row (id = 1).
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new ProfileRepo backed by the given DB.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get returns the stored identity, or (nil, nil) when nobody is signed in.
func (r *ProfileRepo) Get(ctx context.Context) (*model.User, error) {
	const query = `
		SELECT user_id, first_name, last_name, email, role, type, confirmed, image
		FROM profile
		WHERE id = 1
	`

	var u model.User
	var confirmed int
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.Type, &confirmed, &u.Image,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	u.Confirmed = confirmed != 0

	return &u, nil
}

// Save replaces the stored identity.
func (r *ProfileRepo) Save(ctx context.Context, u model.User) error {
	const query = `
		INSERT INTO profile (id, user_id, first_name, last_name, email, role, type, confirmed, image, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			role = excluded.role,
			type = excluded.type,
			confirmed = excluded.confirmed,
			image = excluded.image,
			updated_at = excluded.updated_at
	`

	confirmed := 0
	if u.Confirmed {
		confirmed = 1
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		u.ID, u.FirstName, u.LastName, u.Email, u.Role, u.Type, confirmed, u.Image,
	)
	if err != nil {
		return fmt.Errorf("save profile for %s: %w", u.ID, err)
	}

	return nil
}

// Clear removes the stored identity. Clearing an empty table is not an error.
func (r *ProfileRepo) Clear(ctx context.Context) error {
	if _, err := r.db.Writer.ExecContext(ctx, `DELETE FROM profile`); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}
