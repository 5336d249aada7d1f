package usecase

import (
	"context"

	"dormdrop/internal/domain/entity"
	"dormdrop/internal/domain/repository"
	"dormdrop/internal/domain/service"
	"dormdrop/pkg/logger"
)

type SavedListingUseCase struct {
	savedRepo   repository.SavedListingRepository
	listingRepo repository.ListingRepository
	storage     service.ObjectStorage
}

func NewSavedListingUseCase(
	savedRepo repository.SavedListingRepository,
	listingRepo repository.ListingRepository,
	storage service.ObjectStorage,
) *SavedListingUseCase {
	return &SavedListingUseCase{
		savedRepo:   savedRepo,
		listingRepo: listingRepo,
		storage:     storage,
	}
}

// Save is idempotent: saving an already-saved listing succeeds quietly.
func (uc *SavedListingUseCase) Save(ctx context.Context, userID, listingID string) error {
	if _, err := uc.listingRepo.GetByID(ctx, listingID); err != nil {
		return err
	}
	return uc.savedRepo.Save(ctx, userID, listingID)
}

func (uc *SavedListingUseCase) Unsave(ctx context.Context, userID, listingID string) error {
	return uc.savedRepo.Unsave(ctx, userID, listingID)
}

func (uc *SavedListingUseCase) List(ctx context.Context, userID string) ([]*entity.Listing, error) {
	listings, err := uc.savedRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, listing := range listings {
		if listing.CoverKey == "" {
			continue
		}
		url, err := uc.storage.SignView(ctx, listing.CoverKey)
		if err != nil {
			logger.Warn("Failed to sign view URL for %s: %v", listing.CoverKey, err)
			continue
		}
		listing.CoverURL = url
	}
	return listings, nil
}
