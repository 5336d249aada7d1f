package usecase

import (
	"context"
	"strings"

	"dormdrop/internal/domain/entity"
	"dormdrop/internal/domain/repository"
	"dormdrop/internal/domain/service"
	"dormdrop/pkg/errors"
	"dormdrop/pkg/logger"
)

type ListingUseCase struct {
	listingRepo  repository.ListingRepository
	categoryRepo repository.CategoryRepository
	savedRepo    repository.SavedListingRepository
	userRepo     repository.UserRepository
	storage      service.ObjectStorage
	analyzer     service.ListingAnalyzer
	comps        service.CompSource
}

func NewListingUseCase(
	listingRepo repository.ListingRepository,
	categoryRepo repository.CategoryRepository,
	savedRepo repository.SavedListingRepository,
	userRepo repository.UserRepository,
	storage service.ObjectStorage,
	analyzer service.ListingAnalyzer,
	comps service.CompSource,
) *ListingUseCase {
	return &ListingUseCase{
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		savedRepo:    savedRepo,
		userRepo:     userRepo,
		storage:      storage,
		analyzer:     analyzer,
		comps:        comps,
	}
}

type ImageInput struct {
	Key     string `json:"key" validate:"required"`
	IsCover bool   `json:"is_cover"`
}

type CreateListingInput struct {
	Title       string
	Description string
	Price       float64
	Categories  []string
	Images      []ImageInput
}

func (uc *ListingUseCase) Create(ctx context.Context, sellerID string, input CreateListingInput) (*entity.Listing, error) {
	seller, err := uc.userRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	listing := &entity.Listing{
		SellerID:    sellerID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		College:     seller.College,
		Categories:  input.Categories,
	}

	coverSeen := false
	for _, img := range input.Images {
		cover := img.IsCover && !coverSeen
		coverSeen = coverSeen || cover
		listing.Images = append(listing.Images, entity.ListingImage{
			ObjectKey: img.Key,
			IsCover:   cover,
		})
	}
	// First image is the cover when none was flagged.
	if !coverSeen && len(listing.Images) > 0 {
		listing.Images[0].IsCover = true
	}

	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	uc.signImages(ctx, listing)
	return listing, nil
}

type ListingDetail struct {
	*entity.Listing
	Seller  *entity.User `json:"seller"`
	IsSaved bool         `json:"is_saved"`
}

func (uc *ListingUseCase) Get(ctx context.Context, viewerID, id string) (*ListingDetail, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	seller, err := uc.userRepo.GetByID(ctx, listing.SellerID)
	if err != nil {
		return nil, err
	}

	saved := false
	if viewerID != "" {
		if saved, err = uc.savedRepo.IsSaved(ctx, viewerID, id); err != nil {
			return nil, err
		}
	}

	uc.signImages(ctx, listing)
	return &ListingDetail{Listing: listing, Seller: seller, IsSaved: saved}, nil
}

type BrowseInput struct {
	Category    string
	Query       string
	IncludeSold bool
	Limit       int
	Offset      int
}

// Browse lists listings on the viewer's own campus only.
func (uc *ListingUseCase) Browse(ctx context.Context, viewerID string, input BrowseInput) ([]*entity.Listing, error) {
	viewer, err := uc.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	listings, err := uc.listingRepo.List(ctx, repository.ListingFilter{
		College:     viewer.College,
		Category:    input.Category,
		Query:       strings.TrimSpace(input.Query),
		IncludeSold: input.IncludeSold,
		Limit:       limit,
		Offset:      input.Offset,
	})
	if err != nil {
		return nil, err
	}

	uc.signCovers(ctx, listings)
	return listings, nil
}

func (uc *ListingUseCase) MyListings(ctx context.Context, sellerID string) ([]*entity.Listing, error) {
	listings, err := uc.listingRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	uc.signCovers(ctx, listings)
	return listings, nil
}

type UpdateListingInput struct {
	Title       string
	Description string
	Price       float64
	Categories  []string
}

func (uc *ListingUseCase) Update(ctx context.Context, sellerID, id string, input UpdateListingInput) (*entity.Listing, error) {
	listing, err := uc.ownedListing(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	listing.Title = strings.TrimSpace(input.Title)
	listing.Description = strings.TrimSpace(input.Description)
	listing.Price = input.Price
	listing.Categories = input.Categories

	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	uc.signImages(ctx, listing)
	return listing, nil
}

func (uc *ListingUseCase) SetSold(ctx context.Context, sellerID, id string, isSold bool) error {
	if _, err := uc.ownedListing(ctx, sellerID, id); err != nil {
		return err
	}
	return uc.listingRepo.SetSold(ctx, id, isSold)
}

func (uc *ListingUseCase) Delete(ctx context.Context, sellerID, id string) error {
	listing, err := uc.ownedListing(ctx, sellerID, id)
	if err != nil {
		return err
	}

	if err := uc.listingRepo.Delete(ctx, id); err != nil {
		return err
	}

	// Orphaned objects are deleted best-effort after the row is gone.
	for _, img := range listing.Images {
		if err := uc.storage.Delete(ctx, img.ObjectKey); err != nil {
			logger.Warn("Failed to delete object %s for listing %s: %v", img.ObjectKey, id, err)
		}
	}
	return nil
}

func (uc *ListingUseCase) Categories(ctx context.Context) ([]*entity.Category, error) {
	return uc.categoryRepo.List(ctx)
}

// Analyze drafts listing copy from already-uploaded photos.
func (uc *ListingUseCase) Analyze(ctx context.Context, keys []string) (*service.ListingDraft, error) {
	if len(keys) == 0 {
		return nil, errors.BadRequest("At least one image is required", nil)
	}

	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		url, err := uc.storage.SignView(ctx, key)
		if err != nil {
			return nil, errors.Internal("Failed to sign image URL", err)
		}
		urls = append(urls, url)
	}

	categories, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	hints := make([]string, 0, len(categories))
	for _, c := range categories {
		hints = append(hints, c.Name)
	}

	return uc.analyzer.Analyze(ctx, urls, hints)
}

func (uc *ListingUseCase) ownedListing(ctx context.Context, sellerID, id string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, errors.Forbidden("You do not own this listing", nil)
	}
	return listing, nil
}

func (uc *ListingUseCase) signImages(ctx context.Context, listing *entity.Listing) {
	for i := range listing.Images {
		img := &listing.Images[i]
		url, err := uc.storage.SignView(ctx, img.ObjectKey)
		if err != nil {
			logger.Warn("Failed to sign view URL for %s: %v", img.ObjectKey, err)
			continue
		}
		img.URL = url
		if img.IsCover {
			listing.CoverURL = url
		}
	}
}

func (uc *ListingUseCase) signCovers(ctx context.Context, listings []*entity.Listing) {
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
}
