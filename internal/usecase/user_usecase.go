package usecase

import (
	"context"
	"strings"
	"time"

	"dormdrop/internal/domain/entity"
	"dormdrop/internal/domain/repository"
)

type UserUseCase struct {
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
}

func NewUserUseCase(userRepo repository.UserRepository, listingRepo repository.ListingRepository) *UserUseCase {
	return &UserUseCase{userRepo: userRepo, listingRepo: listingRepo}
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Username  string
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != "" {
		user.FirstName = strings.TrimSpace(input.FirstName)
	}
	if input.LastName != "" {
		user.LastName = strings.TrimSpace(input.LastName)
	}
	user.Username = strings.TrimSpace(input.Username)

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// PublicProfile is the subset of an account other students may see.
type PublicProfile struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Username       string    `json:"username,omitempty"`
	College        string    `json:"college"`
	MemberSince    time.Time `json:"member_since"`
	ActiveListings int       `json:"active_listings"`
}

func (uc *UserUseCase) GetPublicProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	listings, err := uc.listingRepo.ListBySeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	active := 0
	for _, l := range listings {
		if !l.IsSold {
			active++
		}
	}

	return &PublicProfile{
		ID:             user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Username:       user.Username,
		College:        user.College,
		MemberSince:    user.CreatedAt,
		ActiveListings: active,
	}, nil
}
