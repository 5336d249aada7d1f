package entity

import "time"

type Listing struct {
	ID          string         `json:"id"`
	SellerID    string         `json:"seller_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	College     string         `json:"college"`
	IsSold      bool           `json:"is_sold"`
	Categories  []string       `json:"categories"`
	Images      []ListingImage `json:"images,omitempty"`
	CoverKey    string         `json:"-"`
	CoverURL    string         `json:"cover_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ListingImage struct {
	ID        string `json:"id"`
	ListingID string `json:"-"`
	ObjectKey string `json:"-"`
	URL       string `json:"url,omitempty"`
	IsCover   bool   `json:"is_cover"`
}
