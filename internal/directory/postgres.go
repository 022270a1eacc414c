package directory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/semtetteh/semsterapp/internal/db"
)

type PostgresDirectory struct {
	db *db.DB
}

func NewPostgresDirectory(db *db.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) EmailByID(ctx context.Context, userID string) (string, error) {
	var email string

	err := d.db.QueryRowContext(ctx, `
		SELECT email
		FROM accounts
		WHERE id = $1
	`, userID).Scan(&email)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoAccount
	}
	if err != nil {
		return "", err
	}

	return email, nil
}
