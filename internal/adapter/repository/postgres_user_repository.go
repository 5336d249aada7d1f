package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"dormdrop/internal/domain/entity"
	"dormdrop/pkg/errors"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, first_name, last_name, COALESCE(username, ''), email, college, password_hash, email_verified, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.College,
		&user.PasswordHash,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, first_name, last_name, username, email, college, password_hash, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Username,
		user.Email, user.College, user.PasswordHash, user.EmailVerified,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return errors.Internal("Failed to create user", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get user", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get user", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, username = NULLIF($4, ''), updated_at = $5
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Username, user.UpdatedAt,
	)
	if err != nil {
		return errors.Internal("Failed to update user", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("User", nil)
	}
	return nil
}

func (r *PostgresUserRepository) SetVerificationCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	query := `UPDATE users SET verification_code = $2, verification_expires_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID, code, expiresAt)
	if err != nil {
		return errors.Internal("Failed to set verification code", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("User", nil)
	}
	return nil
}

func (r *PostgresUserRepository) GetVerificationCode(ctx context.Context, userID string) (string, time.Time, error) {
	query := `SELECT COALESCE(verification_code, ''), COALESCE(verification_expires_at, to_timestamp(0)) FROM users WHERE id = $1`

	var code string
	var expiresAt time.Time
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&code, &expiresAt)
	if err == sql.ErrNoRows {
		return "", time.Time{}, errors.NotFound("User", err)
	}
	if err != nil {
		return "", time.Time{}, errors.Internal("Failed to get verification code", err)
	}
	return code, expiresAt, nil
}

func (r *PostgresUserRepository) MarkVerified(ctx context.Context, userID string) error {
	query := `UPDATE users SET email_verified = true, verification_code = NULL, verification_expires_at = NULL WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return errors.Internal("Failed to mark user verified", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("User", nil)
	}
	return nil
}

func (r *PostgresUserRepository) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query := `UPDATE users SET reset_token = $2, reset_expires_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID, token, expiresAt)
	if err != nil {
		return errors.Internal("Failed to set reset token", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("User", nil)
	}
	return nil
}

func (r *PostgresUserRepository) GetByResetToken(ctx context.Context, token string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1 AND reset_expires_at > $2`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, token, time.Now()))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Reset token", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to look up reset token", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, reset_token = NULL, reset_expires_at = NULL, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID, passwordHash, time.Now())
	if err != nil {
		return errors.Internal("Failed to update password", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("User", nil)
	}
	return nil
}
