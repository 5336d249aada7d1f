package service

import "context"

// PriceComp is one comparable listing found on an external marketplace.
type PriceComp struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	URL      string  `json:"url"`
}

// CompSource searches an external marketplace for listings comparable to
// a search query.
type CompSource interface {
	SearchComps(ctx context.Context, query string, limit int) ([]PriceComp, error)
}
