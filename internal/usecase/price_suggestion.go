package usecase

import (
	"context"
	"math"
	"sort"
	"strings"

	"dormdrop/internal/domain/service"
	"dormdrop/pkg/errors"
)

// compSampleSize caps how many comparable listings are echoed back for
// the client to show alongside the recommendation.
const compSampleSize = 5

// minCompsForSuggestion is the fewest comparables a band may be built
// from before the recommendation is withheld.
const minCompsForSuggestion = 3

type PriceSuggestionInput struct {
	Keys      []string
	TitleHint string
}

type PriceSuggestion struct {
	Currency       string              `json:"currency"`
	SuggestedPrice *float64            `json:"suggested_price"`
	Low            *float64            `json:"low"`
	High           *float64            `json:"high"`
	Confidence     string              `json:"confidence"`
	Rationale      string              `json:"rationale"`
	Comps          []service.PriceComp `json:"comps_sample"`
}

// SuggestPrice recommends an asking price for an item from its photos:
// extract searchable attributes, pull comparable listings from the
// external marketplace, then band the suggestion around the median and
// interquartile range of their prices.
func (uc *ListingUseCase) SuggestPrice(ctx context.Context, input PriceSuggestionInput) (*PriceSuggestion, error) {
	if len(input.Keys) == 0 {
		return nil, errors.BadRequest("At least one image is required", nil)
	}

	urls := make([]string, 0, len(input.Keys))
	for _, key := range input.Keys {
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

	attrs, err := uc.analyzer.ExtractAttributes(ctx, urls, input.TitleHint, hints)
	if err != nil {
		return nil, err
	}

	query := buildCompQuery(attrs, input.TitleHint)
	comps, err := uc.comps.SearchComps(ctx, query, 25)
	if err != nil {
		return nil, err
	}

	usable := comps[:0:0]
	for _, c := range comps {
		if c.Price > 0 && c.Currency != "" {
			usable = append(usable, c)
		}
	}

	currency := "USD"
	if len(usable) > 0 {
		currency = usable[0].Currency
	}

	sample := usable
	if len(sample) > compSampleSize {
		sample = sample[:compSampleSize]
	}

	prices := make([]float64, 0, len(usable))
	for _, c := range usable {
		prices = append(prices, c.Price)
	}
	band := computePriceBand(prices)

	if band.count < minCompsForSuggestion {
		return &PriceSuggestion{
			Currency:   currency,
			Confidence: "low",
			Rationale:  "Not enough comparable listings found to make a confident recommendation.",
			Comps:      sample,
		}, nil
	}

	suggested := round2(band.mid)
	low := round2(band.low)
	high := round2(band.high)
	return &PriceSuggestion{
		Currency:       currency,
		SuggestedPrice: &suggested,
		Low:            &low,
		High:           &high,
		Confidence:     "medium",
		Rationale:      "Based on the median and interquartile range of similar active marketplace listings.",
		Comps:          sample,
	}, nil
}

// buildCompQuery assembles a conservative search query from the extracted
// attributes, deduplicated in order so brand and model lead.
func buildCompQuery(attrs *service.ItemAttributes, titleHint string) string {
	parts := []string{attrs.Brand, attrs.Model, attrs.ItemType}
	keywords := attrs.Keywords
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}
	parts = append(parts, keywords...)

	seen := make(map[string]bool)
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		terms = append(terms, p)
	}

	query := strings.Join(terms, " ")
	if query == "" {
		query = strings.TrimSpace(titleHint)
	}
	if query == "" {
		query = "dorm item"
	}
	return query
}

type priceBand struct {
	count int
	low   float64
	mid   float64
	high  float64
}

// computePriceBand derives the 25th/50th/75th percentiles of the comp
// prices, widening the band around the median when the spread is too
// tight to be meaningful.
func computePriceBand(prices []float64) priceBand {
	usable := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p > 0 {
			usable = append(usable, p)
		}
	}
	sort.Float64s(usable)
	if len(usable) == 0 {
		return priceBand{}
	}

	mid := percentile(usable, 0.50)
	low := math.Max(0, percentile(usable, 0.25))
	high := math.Max(low, percentile(usable, 0.75))
	if high-low < math.Max(2, 0.1*mid) {
		low = math.Max(0, mid*0.9)
		high = mid * 1.1
	}
	return priceBand{count: len(usable), low: low, mid: mid, high: high}
}

// percentile interpolates linearly between the two nearest ranks of an
// ascending-sorted slice.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	k := float64(len(sorted)-1) * pct
	f := int(k)
	c := f + 1
	if c > len(sorted)-1 {
		c = len(sorted) - 1
	}
	if f == c {
		return sorted[f]
	}
	return sorted[f]*(float64(c)-k) + sorted[c]*(k-float64(f))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
