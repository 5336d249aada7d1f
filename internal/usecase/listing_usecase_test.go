package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dormdrop/internal/domain/entity"
	"dormdrop/internal/domain/service"
	"dormdrop/pkg/errors"
)

type fakeObjectStorage struct {
	deleted []string
}

func (f *fakeObjectStorage) SignUpload(ctx context.Context, filename, contentType string) (*service.SignedUpload, error) {
	return &service.SignedUpload{UploadURL: "https://upload/" + filename, Key: "listings/" + filename}, nil
}

func (f *fakeObjectStorage) SignView(ctx context.Context, key string) (string, error) {
	return "https://signed/" + key, nil
}

func (f *fakeObjectStorage) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeCategoryRepo struct{}

func (fakeCategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	return []*entity.Category{{ID: "cat-1", Name: "Books"}}, nil
}

type fakeSavedRepo struct {
	saved map[string]bool
}

func (f *fakeSavedRepo) Save(ctx context.Context, userID, listingID string) error {
	f.saved[userID+":"+listingID] = true
	return nil
}
func (f *fakeSavedRepo) Unsave(ctx context.Context, userID, listingID string) error {
	delete(f.saved, userID+":"+listingID)
	return nil
}
func (f *fakeSavedRepo) IsSaved(ctx context.Context, userID, listingID string) (bool, error) {
	return f.saved[userID+":"+listingID], nil
}
func (f *fakeSavedRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Listing, error) {
	return nil, nil
}

func newTestListingUseCase(listingRepo *fakeListingRepo, userRepo *fakeUserRepo, storage *fakeObjectStorage) *ListingUseCase {
	return NewListingUseCase(
		listingRepo,
		fakeCategoryRepo{},
		&fakeSavedRepo{saved: make(map[string]bool)},
		userRepo,
		storage,
		nil,
		nil,
	)
}

func sellerAccount(userRepo *fakeUserRepo) *entity.User {
	seller := &entity.User{ID: "seller-1", Email: "s@stanford.edu", College: "stanford.edu"}
	userRepo.users[seller.ID] = seller
	return seller
}

func TestCreateListingInheritsSellerCampus(t *testing.T) {
	listingRepo := &fakeListingRepo{listings: map[string]*entity.Listing{}}
	userRepo := newFakeUserRepo()
	sellerAccount(userRepo)
	uc := newTestListingUseCase(listingRepo, userRepo, &fakeObjectStorage{})

	listing, err := uc.Create(context.Background(), "seller-1", CreateListingInput{
		Title:  "Mini fridge",
		Price:  40,
		Images: []ImageInput{{Key: "listings/a.jpg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "stanford.edu", listing.College)
}

func TestCreateListingDefaultsFirstImageAsCover(t *testing.T) {
	listingRepo := &fakeListingRepo{listings: map[string]*entity.Listing{}}
	userRepo := newFakeUserRepo()
	sellerAccount(userRepo)
	uc := newTestListingUseCase(listingRepo, userRepo, &fakeObjectStorage{})

	listing, err := uc.Create(context.Background(), "seller-1", CreateListingInput{
		Title:  "Desk lamp",
		Price:  10,
		Images: []ImageInput{{Key: "listings/a.jpg"}, {Key: "listings/b.jpg"}},
	})
	require.NoError(t, err)
	require.Len(t, listing.Images, 2)
	assert.True(t, listing.Images[0].IsCover)
	assert.False(t, listing.Images[1].IsCover)
}

func TestCreateListingKeepsSingleCover(t *testing.T) {
	listingRepo := &fakeListingRepo{listings: map[string]*entity.Listing{}}
	userRepo := newFakeUserRepo()
	sellerAccount(userRepo)
	uc := newTestListingUseCase(listingRepo, userRepo, &fakeObjectStorage{})

	listing, err := uc.Create(context.Background(), "seller-1", CreateListingInput{
		Title:  "Desk lamp",
		Price:  10,
		Images: []ImageInput{{Key: "listings/a.jpg", IsCover: true}, {Key: "listings/b.jpg", IsCover: true}},
	})
	require.NoError(t, err)
	assert.True(t, listing.Images[0].IsCover)
	assert.False(t, listing.Images[1].IsCover, "only one cover survives")
}

func TestUpdateListingRequiresOwnership(t *testing.T) {
	listingRepo := &fakeListingRepo{listings: map[string]*entity.Listing{
		"l1": {ID: "l1", SellerID: "seller-1", Title: "Old"},
	}}
	userRepo := newFakeUserRepo()
	uc := newTestListingUseCase(listingRepo, userRepo, &fakeObjectStorage{})

	_, err := uc.Update(context.Background(), "intruder", "l1", UpdateListingInput{Title: "Hacked", Price: 1})
	assert.True(t, errors.Is(err, "FORBIDDEN"))
	assert.Equal(t, "Old", listingRepo.listings["l1"].Title)
}

func TestDeleteListingRemovesObjectsBestEffort(t *testing.T) {
	listingRepo := &fakeListingRepo{listings: map[string]*entity.Listing{
		"l1": {
			ID:       "l1",
			SellerID: "seller-1",
			Images: []entity.ListingImage{
				{ObjectKey: "listings/a.jpg", IsCover: true},
				{ObjectKey: "listings/b.jpg"},
			},
		},
	}}
	userRepo := newFakeUserRepo()
	storage := &fakeObjectStorage{}
	uc := newTestListingUseCase(listingRepo, userRepo, storage)

	require.NoError(t, uc.Delete(context.Background(), "seller-1", "l1"))
	assert.ElementsMatch(t, []string{"listings/a.jpg", "listings/b.jpg"}, storage.deleted)
}

func TestGetListingSignsImageURLs(t *testing.T) {
	listingRepo := &fakeListingRepo{listings: map[string]*entity.Listing{
		"l1": {
			ID:       "l1",
			SellerID: "seller-1",
			Images:   []entity.ListingImage{{ObjectKey: "listings/a.jpg", IsCover: true}},
		},
	}}
	userRepo := newFakeUserRepo()
	sellerAccount(userRepo)
	uc := newTestListingUseCase(listingRepo, userRepo, &fakeObjectStorage{})

	detail, err := uc.Get(context.Background(), "viewer-1", "l1")
	require.NoError(t, err)
	assert.Equal(t, "https://signed/listings/a.jpg", detail.Images[0].URL)
	assert.Equal(t, "https://signed/listings/a.jpg", detail.CoverURL)
	assert.False(t, detail.IsSaved)
}

func TestAnalyzeRequiresImages(t *testing.T) {
	listingRepo := &fakeListingRepo{listings: map[string]*entity.Listing{}}
	uc := newTestListingUseCase(listingRepo, newFakeUserRepo(), &fakeObjectStorage{})

	_, err := uc.Analyze(context.Background(), nil)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}
