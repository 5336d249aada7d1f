package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"

	"dormdrop/internal/domain/entity"
	"dormdrop/internal/domain/repository"
	"dormdrop/pkg/errors"
)

type PostgresListingRepository struct {
	db *sql.DB
}

func NewPostgresListingRepository(db *sql.DB) *PostgresListingRepository {
	return &PostgresListingRepository{db: db}
}

func (r *PostgresListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Internal("Failed to create listing", err)
	}
	defer tx.Rollback()

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	listingInsert := `
		INSERT INTO listings (id, seller_id, title, description, price, college, is_sold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err = tx.ExecContext(ctx, listingInsert,
		listing.ID, listing.SellerID, listing.Title, listing.Description,
		listing.Price, listing.College, listing.IsSold, listing.CreatedAt, listing.UpdatedAt,
	); err != nil {
		return errors.Internal("Failed to create listing", err)
	}

	imageInsert := `
		INSERT INTO listing_images (id, listing_id, object_key, is_cover)
		VALUES ($1, $2, $3, $4)
	`
	for i := range listing.Images {
		img := &listing.Images[i]
		if img.ID == "" {
			img.ID = uuid.New().String()
		}
		img.ListingID = listing.ID
		if _, err = tx.ExecContext(ctx, imageInsert, img.ID, img.ListingID, img.ObjectKey, img.IsCover); err != nil {
			return errors.Internal("Failed to attach listing image", err)
		}
	}

	categoryInsert := `INSERT INTO listing_categories (listing_id, category_id) VALUES ($1, $2)`
	for _, categoryID := range listing.Categories {
		if _, err = tx.ExecContext(ctx, categoryInsert, listing.ID, categoryID); err != nil {
			return errors.Internal("Failed to attach listing category", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Internal("Failed to create listing", err)
	}
	return nil
}

const listingColumns = `l.id, l.seller_id, l.title, l.description, l.price, l.college, l.is_sold, l.created_at, l.updated_at`

func (r *PostgresListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.id = $1`

	var listing entity.Listing
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&listing.ID, &listing.SellerID, &listing.Title, &listing.Description,
		&listing.Price, &listing.College, &listing.IsSold, &listing.CreatedAt, &listing.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Listing", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get listing", err)
	}

	if err := r.loadImages(ctx, &listing); err != nil {
		return nil, err
	}
	if err := r.loadCategories(ctx, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *PostgresListingRepository) loadImages(ctx context.Context, listing *entity.Listing) error {
	query := `
		SELECT id, object_key, is_cover
		FROM listing_images
		WHERE listing_id = $1
		ORDER BY is_cover DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, listing.ID)
	if err != nil {
		return errors.Internal("Failed to load listing images", err)
	}
	defer rows.Close()

	for rows.Next() {
		img := entity.ListingImage{ListingID: listing.ID}
		if err := rows.Scan(&img.ID, &img.ObjectKey, &img.IsCover); err != nil {
			return errors.Internal("Failed to scan listing image", err)
		}
		if img.IsCover && listing.CoverKey == "" {
			listing.CoverKey = img.ObjectKey
		}
		listing.Images = append(listing.Images, img)
	}
	return rows.Err()
}

func (r *PostgresListingRepository) loadCategories(ctx context.Context, listing *entity.Listing) error {
	query := `SELECT category_id FROM listing_categories WHERE listing_id = $1`
	rows, err := r.db.QueryContext(ctx, query, listing.ID)
	if err != nil {
		return errors.Internal("Failed to load listing categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var categoryID string
		if err := rows.Scan(&categoryID); err != nil {
			return errors.Internal("Failed to scan listing category", err)
		}
		listing.Categories = append(listing.Categories, categoryID)
	}
	return rows.Err()
}

// listingWithCover selects the base row plus the cover image key.
const listingWithCover = `
	SELECT ` + listingColumns + `, COALESCE(ci.object_key, '')
	FROM listings l
	LEFT JOIN LATERAL (
		SELECT object_key FROM listing_images
		WHERE listing_id = l.id AND is_cover
		LIMIT 1
	) ci ON true
`

func scanListingWithCover(rows *sql.Rows) (*entity.Listing, error) {
	var listing entity.Listing
	err := rows.Scan(
		&listing.ID, &listing.SellerID, &listing.Title, &listing.Description,
		&listing.Price, &listing.College, &listing.IsSold, &listing.CreatedAt, &listing.UpdatedAt,
		&listing.CoverKey,
	)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *PostgresListingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	query := listingWithCover + ` WHERE l.college = $1`
	args := []interface{}{filter.College}

	if !filter.IncludeSold {
		query += ` AND NOT l.is_sold`
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND EXISTS (SELECT 1 FROM listing_categories lc WHERE lc.listing_id = l.id AND lc.category_id = $` + strconv.Itoa(len(args)) + `)`
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		query += ` AND l.title ILIKE $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY l.created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Internal("Failed to list listings", err)
	}
	defer rows.Close()

	var listings []*entity.Listing
	for rows.Next() {
		listing, err := scanListingWithCover(rows)
		if err != nil {
			return nil, errors.Internal("Failed to scan listing", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to list listings", err)
	}
	return listings, nil
}

func (r *PostgresListingRepository) ListBySeller(ctx context.Context, sellerID string) ([]*entity.Listing, error) {
	query := listingWithCover + ` WHERE l.seller_id = $1 ORDER BY l.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, errors.Internal("Failed to list seller listings", err)
	}
	defer rows.Close()

	var listings []*entity.Listing
	for rows.Next() {
		listing, err := scanListingWithCover(rows)
		if err != nil {
			return nil, errors.Internal("Failed to scan listing", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to list seller listings", err)
	}
	return listings, nil
}

func (r *PostgresListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Internal("Failed to update listing", err)
	}
	defer tx.Rollback()

	listing.UpdatedAt = time.Now()
	update := `
		UPDATE listings
		SET title = $2, description = $3, price = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := tx.ExecContext(ctx, update,
		listing.ID, listing.Title, listing.Description, listing.Price, listing.UpdatedAt,
	)
	if err != nil {
		return errors.Internal("Failed to update listing", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("Listing", nil)
	}

	if listing.Categories != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM listing_categories WHERE listing_id = $1`, listing.ID); err != nil {
			return errors.Internal("Failed to update listing categories", err)
		}
		categoryInsert := `INSERT INTO listing_categories (listing_id, category_id) VALUES ($1, $2)`
		for _, categoryID := range listing.Categories {
			if _, err = tx.ExecContext(ctx, categoryInsert, listing.ID, categoryID); err != nil {
				return errors.Internal("Failed to update listing categories", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Internal("Failed to update listing", err)
	}
	return nil
}

func (r *PostgresListingRepository) SetSold(ctx context.Context, id string, isSold bool) error {
	query := `UPDATE listings SET is_sold = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, isSold, time.Now())
	if err != nil {
		return errors.Internal("Failed to update sold status", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("Listing", nil)
	}
	return nil
}

func (r *PostgresListingRepository) Delete(ctx context.Context, id string) error {
	// Images, categories, saved rows and conversations cascade in the schema.
	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return errors.Internal("Failed to delete listing", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("Listing", nil)
	}
	return nil
}

