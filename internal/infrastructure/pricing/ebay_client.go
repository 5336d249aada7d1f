package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"dormdrop/internal/domain/service"
	"dormdrop/pkg/errors"
)

const (
	productionBaseURL = "https://api.ebay.com"
	sandboxBaseURL    = "https://api.sandbox.ebay.com"

	// Refresh the OAuth token a little before eBay expires it.
	tokenExpirySlack = 30 * time.Second
)

// EbayClient searches the eBay Browse API for listings comparable to an
// item being priced. Browse surfaces active listings, not sold comps,
// which is good enough for a suggestion band.
type EbayClient struct {
	clientID     string
	clientSecret string
	marketplace  string
	baseURL      string
	httpClient   *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewEbayClient(clientID, clientSecret, marketplace string, sandbox bool) *EbayClient {
	baseURL := productionBaseURL
	if sandbox {
		baseURL = sandboxBaseURL
	}
	return &EbayClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		marketplace:  marketplace,
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 20 * time.Second},
	}
}

// accessToken returns a cached client-credentials token, fetching a new
// one when the cached token is missing or about to expire.
func (c *EbayClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpirySlack)) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {"https://api.ebay.com/oauth/api_scope"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/identity/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.BadGateway("Marketplace token request failed", nil)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" || payload.ExpiresIn <= 0 {
		return "", errors.BadGateway("Marketplace returned an unusable token", nil)
	}

	c.token = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return c.token, nil
}

func (c *EbayClient) SearchComps(ctx context.Context, query string, limit int) ([]service.PriceComp, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, errors.BadGateway("Price comparison is not configured", nil)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, errors.BadGateway("Price comparison is temporarily unavailable", err)
	}

	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/buy/browse/v1/item_summary/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplace)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.BadGateway("Price comparison is temporarily unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.BadGateway("Marketplace search failed", nil)
	}

	var payload struct {
		ItemSummaries []struct {
			Title string `json:"title"`
			Price struct {
				Value    string `json:"value"`
				Currency string `json:"currency"`
			} `json:"price"`
			ItemWebURL string `json:"itemWebUrl"`
		} `json:"itemSummaries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.BadGateway("Marketplace returned an unreadable result", err)
	}

	comps := make([]service.PriceComp, 0, len(payload.ItemSummaries))
	for _, item := range payload.ItemSummaries {
		price, err := strconv.ParseFloat(item.Price.Value, 64)
		if err != nil || price <= 0 {
			continue
		}
		comps = append(comps, service.PriceComp{
			Title:    item.Title,
			Price:    price,
			Currency: item.Price.Currency,
			URL:      item.ItemWebURL,
		})
	}
	return comps, nil
}
