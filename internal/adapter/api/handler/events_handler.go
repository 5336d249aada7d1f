package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"dormdrop/internal/infrastructure/auth"
	"dormdrop/internal/infrastructure/sse"
	"dormdrop/internal/usecase"
	"dormdrop/pkg/logger"
)

type EventsHandler struct {
	authenticator *auth.Authenticator
	manager       *sse.Manager
	chatUseCase   *usecase.ChatUseCase
	heartbeat     time.Duration
}

func NewEventsHandler(authenticator *auth.Authenticator, manager *sse.Manager, chatUseCase *usecase.ChatUseCase, heartbeat time.Duration) *EventsHandler {
	return &EventsHandler{
		authenticator: authenticator,
		manager:       manager,
		chatUseCase:   chatUseCase,
		heartbeat:     heartbeat,
	}
}

// Stream is the live-update endpoint. EventSource cannot set headers, so
// the token rides in the query string instead of an Authorization header.
// The connection stays open until the client goes away or the connection
// stalls; nothing is replayed on reconnect.
func (h *EventsHandler) Stream(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token is required")
	}
	claims, err := h.authenticator.ValidateToken(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	client := sse.NewClient(claims.UserID)
	h.manager.Register(client)
	defer h.manager.Unregister(client)

	logger.Debug("SSE stream opened for user %s", claims.UserID)

	if err := h.writeEvent(c, sse.Event{Name: sse.EventConnected, Data: []byte(`{"ok":true}`)}); err != nil {
		return nil
	}

	// Initial snapshot so a fresh tab shows the badge without waiting
	// for the next trigger.
	ctx := c.Request().Context()
	if total, err := h.chatUseCase.UnreadTotal(ctx, claims.UserID); err == nil {
		data, _ := json.Marshal(map[string]int{"total_unread": total})
		if err := h.writeEvent(c, sse.Event{Name: sse.EventUnread, Data: data}); err != nil {
			return nil
		}
	} else {
		logger.Error("Failed to count unread for %s: %v", claims.UserID, err)
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("SSE stream closed for user %s", claims.UserID)
			return nil
		case evt, ok := <-client.Events():
			if !ok {
				return nil
			}
			if _, err := res.Write(evt.Marshal()); err != nil {
				return nil
			}
			res.Flush()
		case <-ticker.C:
			if _, err := res.Write(sse.Heartbeat); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func (h *EventsHandler) writeEvent(c echo.Context, evt sse.Event) error {
	if _, err := c.Response().Write(evt.Marshal()); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}
