package service

import "context"

// ListingDraft is an AI-suggested starting point for a new listing.
type ListingDraft struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	SuggestedCategories []string `json:"suggested_categories"`
	Confidence          float64  `json:"confidence"`
}

// ItemAttributes are the searchable facts extracted from an item's
// photos, used to build a price-comparison query.
type ItemAttributes struct {
	ItemType  string   `json:"item_type"`
	Brand     string   `json:"brand"`
	Model     string   `json:"model"`
	Condition string   `json:"condition"`
	Keywords  []string `json:"keywords"`
}

// ListingAnalyzer drafts listing copy and extracts structured attributes
// from uploaded photos.
type ListingAnalyzer interface {
	Analyze(ctx context.Context, imageURLs []string, categoryHints []string) (*ListingDraft, error)
	ExtractAttributes(ctx context.Context, imageURLs []string, titleHint string, categoryHints []string) (*ItemAttributes, error)
}
