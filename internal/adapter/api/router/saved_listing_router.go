package router

import (
	"github.com/labstack/echo/v4"

	"dormdrop/internal/adapter/api/handler"
	"dormdrop/internal/adapter/api/middleware"
)

func SetupSavedListingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	savedListingHandler := handler.GetSavedListingHandler()

	saved := e.Group("/v1/saved-listings")
	saved.Use(authMiddleware.Authenticate)

	saved.GET("", savedListingHandler.List)
	saved.POST("/:id", savedListingHandler.Save)
	saved.DELETE("/:id", savedListingHandler.Unsave)
}
