package router

import (
	"github.com/labstack/echo/v4"

	"dormdrop/internal/adapter/api/handler"
	"dormdrop/internal/adapter/api/middleware"
)

func SetupFileRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	fileHandler := handler.GetFileHandler()

	uploads := e.Group("/v1/uploads")
	uploads.Use(authMiddleware.Authenticate)

	uploads.POST("/urls", fileHandler.CreateUploadURLs)
}
