package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dormdrop/pkg/errors"
)

func newTestServer(t *testing.T, tokenCalls *int, items string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/identity/v1/oauth2/token":
			*tokenCalls++
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"tok-1","expires_in":7200}`))
		case "/buy/browse/v1/item_summary/search":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			assert.Equal(t, "EBAY_US", r.Header.Get("X-EBAY-C-MARKETPLACE-ID"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(items))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
}

func newTestClient(baseURL string) *EbayClient {
	c := NewEbayClient("client-id", "client-secret", "EBAY_US", false)
	c.baseURL = baseURL
	return c
}

func TestSearchCompsParsesSummaries(t *testing.T) {
	var tokenCalls int
	srv := newTestServer(t, &tokenCalls, `{
		"itemSummaries": [
			{"title": "IKEA desk lamp", "price": {"value": "14.99", "currency": "USD"}, "itemWebUrl": "https://ebay.example/1"},
			{"title": "broken price", "price": {"value": "not-a-number", "currency": "USD"}},
			{"title": "free", "price": {"value": "0", "currency": "USD"}}
		]
	}`)
	defer srv.Close()

	client := newTestClient(srv.URL)
	comps, err := client.SearchComps(context.Background(), "desk lamp", 25)
	require.NoError(t, err)

	// Unparseable and non-positive prices are skipped, not fatal.
	require.Len(t, comps, 1)
	assert.Equal(t, "IKEA desk lamp", comps[0].Title)
	assert.Equal(t, 14.99, comps[0].Price)
	assert.Equal(t, "USD", comps[0].Currency)
	assert.Equal(t, "https://ebay.example/1", comps[0].URL)
}

func TestSearchCompsReusesCachedToken(t *testing.T) {
	var tokenCalls int
	srv := newTestServer(t, &tokenCalls, `{"itemSummaries": []}`)
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.SearchComps(context.Background(), "desk lamp", 10)
	require.NoError(t, err)
	_, err = client.SearchComps(context.Background(), "mini fridge", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, tokenCalls)
}

func TestSearchCompsWithoutCredentials(t *testing.T) {
	client := NewEbayClient("", "", "EBAY_US", false)

	_, err := client.SearchComps(context.Background(), "desk lamp", 10)
	assert.True(t, errors.Is(err, "BAD_GATEWAY"))
}
