package router

import (
	"github.com/labstack/echo/v4"

	"dormdrop/internal/adapter/api/handler"
	"dormdrop/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	conversations := e.Group("/v1/conversations")
	conversations.Use(authMiddleware.Authenticate)

	conversations.POST("", chatHandler.StartConversation)
	conversations.GET("", chatHandler.Inbox)
	conversations.GET("/unread-count", chatHandler.UnreadCount)
	conversations.GET("/:id", chatHandler.GetThread)
	conversations.POST("/:id/messages", chatHandler.SendMessage)
}
