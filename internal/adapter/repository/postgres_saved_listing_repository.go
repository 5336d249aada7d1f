package repository

import (
	"context"
	"database/sql"
	"time"

	"dormdrop/internal/domain/entity"
	"dormdrop/pkg/errors"
)

type PostgresSavedListingRepository struct {
	db *sql.DB
}

func NewPostgresSavedListingRepository(db *sql.DB) *PostgresSavedListingRepository {
	return &PostgresSavedListingRepository{db: db}
}

func (r *PostgresSavedListingRepository) Save(ctx context.Context, userID, listingID string) error {
	query := `
		INSERT INTO saved_listings (user_id, listing_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, listing_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID, listingID, time.Now()); err != nil {
		return errors.Internal("Failed to save listing", err)
	}
	return nil
}

func (r *PostgresSavedListingRepository) Unsave(ctx context.Context, userID, listingID string) error {
	query := `DELETE FROM saved_listings WHERE user_id = $1 AND listing_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, listingID); err != nil {
		return errors.Internal("Failed to unsave listing", err)
	}
	return nil
}

func (r *PostgresSavedListingRepository) IsSaved(ctx context.Context, userID, listingID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM saved_listings WHERE user_id = $1 AND listing_id = $2)`

	var saved bool
	if err := r.db.QueryRowContext(ctx, query, userID, listingID).Scan(&saved); err != nil {
		return false, errors.Internal("Failed to check saved listing", err)
	}
	return saved, nil
}

func (r *PostgresSavedListingRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Listing, error) {
	query := `
		SELECT l.id, l.seller_id, l.title, l.description, l.price, l.college, l.is_sold, l.created_at, l.updated_at,
			COALESCE(ci.object_key, '')
		FROM saved_listings sl
		JOIN listings l ON l.id = sl.listing_id
		LEFT JOIN LATERAL (
			SELECT object_key FROM listing_images
			WHERE listing_id = l.id AND is_cover
			LIMIT 1
		) ci ON true
		WHERE sl.user_id = $1
		ORDER BY sl.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.Internal("Failed to list saved listings", err)
	}
	defer rows.Close()

	var listings []*entity.Listing
	for rows.Next() {
		listing, err := scanListingWithCover(rows)
		if err != nil {
			return nil, errors.Internal("Failed to scan saved listing", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to list saved listings", err)
	}
	return listings, nil
}
