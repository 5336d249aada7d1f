package repository

import (
	"context"

	"dormdrop/internal/domain/entity"
)

type ListingFilter struct {
	College     string
	Category    string
	Query       string
	IncludeSold bool
	Limit       int
	Offset      int
}

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]*entity.Listing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*entity.Listing, error)
	Update(ctx context.Context, listing *entity.Listing) error
	SetSold(ctx context.Context, id string, isSold bool) error
	Delete(ctx context.Context, id string) error
}
