package profile

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semtetteh/semsterapp/internal/db"
)

func newStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return NewPostgresStore(&db.DB{DB: sqlDB}), mock
}

func profileRows(updatedAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "full_name", "avatar_url", "school", "updated_at",
	}).AddRow("9f0f1f74-1111-2222-3333-444444444444", "ada", "Ada Lovelace", nil, "Analytical U", updatedAt)
}

func TestGetByID(t *testing.T) {
	store, mock := newStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles")).
		WithArgs("9f0f1f74-1111-2222-3333-444444444444").
		WillReturnRows(profileRows(now))

	p, err := store.GetByID(context.Background(), "9f0f1f74-1111-2222-3333-444444444444")
	require.NoError(t, err)
	assert.Equal(t, "ada", p.Username)
	assert.Equal(t, "Ada Lovelace", p.FullName)
	assert.Equal(t, "", p.AvatarURL)
	assert.Equal(t, "Analytical U", p.School)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles")).
		WithArgs("missing").
		WillReturnError(errNoRows())

	_, err := store.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetByIDOtherErrorIsNotErrNotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles")).
		WithArgs("u1").
		WillReturnError(errors.New("connection reset"))

	_, err := store.GetByID(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGetByUsernameNotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles")).
		WithArgs("ghost").
		WillReturnError(errNoRows())

	_, err := store.GetByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertPartialPatch(t *testing.T) {
	store, mock := newStore(t)
	now := time.Now().UTC()

	school := "Analytical U"
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WithArgs("u1", nil, nil, nil, school, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Upsert(context.Background(), "u1", Patch{School: &school}, now)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertFullPatch(t *testing.T) {
	store, mock := newStore(t)
	now := time.Now().UTC()

	username, fullName := "ada", "Ada Lovelace"
	avatar, school := "https://cdn.example/a.png", "Analytical U"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WithArgs("u1", username, fullName, avatar, school, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Upsert(context.Background(), "u1", Patch{
		Username:  &username,
		FullName:  &fullName,
		AvatarURL: &avatar,
		School:    &school,
	}, now)
	require.NoError(t, err)
}

func errNoRows() error {
	// the store must map the driver's no-rows error, not a lookalike
	return sql.ErrNoRows
}
