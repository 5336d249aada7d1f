package repository

import (
	"context"

	"dormdrop/internal/domain/entity"
)

type SavedListingRepository interface {
	Save(ctx context.Context, userID, listingID string) error
	Unsave(ctx context.Context, userID, listingID string) error
	IsSaved(ctx context.Context, userID, listingID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Listing, error)
}
