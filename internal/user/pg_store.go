package user

import (
	"context"
	"database/sql"

	"github.com/stz7750/next-chat-app/internal/db"
)

// PGStore is the canonical Postgres-backed user store.
type PGStore struct {
	db *db.DB
}

func NewPGStore(db *db.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, email, name, hashed_password, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email))
}

func (s *PGStore) Create(
	ctx context.Context,
	email string,
	name string,
	hashedPassword *string,
) (*User, error) {

	var hash sql.NullString
	if hashedPassword != nil {
		hash = sql.NullString{String: *hashedPassword, Valid: true}
	}

	return s.scanOne(s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, hashed_password, created_at
	`, email, name, hash))
}

func (s *PGStore) FindByAccount(
	ctx context.Context,
	provider string,
	providerUserID string,
) (*User, error) {

	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.name, u.hashed_password, u.created_at
		FROM users u
		JOIN accounts a ON a.user_id = u.id
		WHERE a.provider = $1
		  AND a.provider_user_id = $2
	`, provider, providerUserID))
}

func (s *PGStore) LinkAccount(
	ctx context.Context,
	userID string,
	provider string,
	providerUserID string,
) error {

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`, userID, provider, providerUserID)

	return err
}

func (s *PGStore) scanOne(row *sql.Row) (*User, error) {
	var (
		u    User
		hash sql.NullString
	)

	err := row.Scan(&u.ID, &u.Email, &u.Name, &hash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	if hash.Valid {
		u.HashedPassword = &hash.String
	}

	return &u, nil
}
