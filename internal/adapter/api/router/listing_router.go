package router

import (
	"github.com/labstack/echo/v4"

	"dormdrop/internal/adapter/api/handler"
	"dormdrop/internal/adapter/api/middleware"
)

func SetupListingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	listingHandler := handler.GetListingHandler()

	categories := e.Group("/v1/categories")
	categories.Use(authMiddleware.Authenticate)
	categories.GET("", listingHandler.Categories)

	listings := e.Group("/v1/listings")
	listings.Use(authMiddleware.Authenticate)

	listings.POST("", listingHandler.Create)
	listings.GET("", listingHandler.Browse)
	listings.GET("/mine", listingHandler.Mine)
	listings.POST("/analyze", listingHandler.Analyze)
	listings.POST("/price-suggestion", listingHandler.SuggestPrice)
	listings.GET("/:id", listingHandler.Get)
	listings.PUT("/:id", listingHandler.Update)
	listings.PATCH("/:id/sold", listingHandler.SetSold)
	listings.DELETE("/:id", listingHandler.Delete)
}
