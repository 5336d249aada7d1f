package repository

import (
	"context"
	"time"

	"dormdrop/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error

	SetVerificationCode(ctx context.Context, userID, code string, expiresAt time.Time) error
	GetVerificationCode(ctx context.Context, userID string) (code string, expiresAt time.Time, err error)
	MarkVerified(ctx context.Context, userID string) error

	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, token string) (*entity.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
