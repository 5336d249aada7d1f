package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dormdrop/internal/infrastructure/auth"
	"dormdrop/internal/infrastructure/sse"
)

func newEventsTestContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestStreamRejectsMissingToken(t *testing.T) {
	authenticator := auth.NewAuthenticator("test-secret", "dormdrop", time.Hour)
	h := NewEventsHandler(authenticator, sse.NewManager(), nil, time.Second)

	c, _ := newEventsTestContext("/v1/events")

	err := h.Stream(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestStreamRejectsInvalidToken(t *testing.T) {
	authenticator := auth.NewAuthenticator("test-secret", "dormdrop", time.Hour)
	h := NewEventsHandler(authenticator, sse.NewManager(), nil, time.Second)

	c, _ := newEventsTestContext("/v1/events?token=bogus")

	err := h.Stream(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestStreamRejectsTokenFromAnotherIssuerSecret(t *testing.T) {
	authenticator := auth.NewAuthenticator("test-secret", "dormdrop", time.Hour)
	other := auth.NewAuthenticator("other-secret", "dormdrop", time.Hour)

	token, err := other.GenerateToken("user-1", "")
	require.NoError(t, err)

	h := NewEventsHandler(authenticator, sse.NewManager(), nil, time.Second)
	c, _ := newEventsTestContext("/v1/events?token=" + token)

	streamErr := h.Stream(c)
	require.Error(t, streamErr)
	httpErr, ok := streamErr.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
