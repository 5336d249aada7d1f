package router

import (
	"github.com/labstack/echo/v4"

	"dormdrop/internal/adapter/api/handler"
)

// The stream authenticates itself via the token query parameter, so it
// sits outside the Bearer-token middleware.
func SetupEventsRouter(e *echo.Echo) {
	eventsHandler := handler.GetEventsHandler()

	e.GET("/v1/events", eventsHandler.Stream)
}
