package profile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/semtetteh/semsterapp/internal/db"
)

// PostgresStore is the canonical profile store.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetByID(ctx context.Context, userID string) (*Profile, error) {
	return s.getOne(ctx, `
		SELECT id, username, full_name, avatar_url, school, updated_at
		FROM profiles
		WHERE id = $1
	`, userID)
}

func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	return s.getOne(ctx, `
		SELECT id, username, full_name, avatar_url, school, updated_at
		FROM profiles
		WHERE username = $1
	`, username)
}

func (s *PostgresStore) getOne(ctx context.Context, query string, arg string) (*Profile, error) {
	var p Profile
	var username, fullName, avatar, school sql.NullString

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID,
		&username,
		&fullName,
		&avatar,
		&school,
		&p.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Username = username.String
	p.FullName = fullName.String
	p.AvatarURL = avatar.String
	p.School = school.String

	return &p, nil
}

// Upsert inserts the row if absent, otherwise updates only the columns
// the patch names. COALESCE keeps nil patch fields from clobbering
// existing values.
func (s *PostgresStore) Upsert(ctx context.Context, userID string, p Patch, updatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, username, full_name, avatar_url, school, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			username   = COALESCE(EXCLUDED.username, profiles.username),
			full_name  = COALESCE(EXCLUDED.full_name, profiles.full_name),
			avatar_url = COALESCE(EXCLUDED.avatar_url, profiles.avatar_url),
			school     = COALESCE(EXCLUDED.school, profiles.school),
			updated_at = EXCLUDED.updated_at
	`,
		userID,
		nullable(p.Username),
		nullable(p.FullName),
		nullable(p.AvatarURL),
		nullable(p.School),
		updatedAt,
	)

	return err
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
