package router

import (
	"github.com/labstack/echo/v4"

	"dormdrop/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	SetupAuthRouter(e)
	SetupUserRouter(e, authMiddleware)
	SetupListingRouter(e, authMiddleware)
	SetupSavedListingRouter(e, authMiddleware)
	SetupChatRouter(e, authMiddleware)
	SetupEventsRouter(e)
	SetupFileRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
