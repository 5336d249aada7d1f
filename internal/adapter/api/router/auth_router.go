package router

import (
	"github.com/labstack/echo/v4"

	"dormdrop/internal/adapter/api/handler"
	"dormdrop/internal/adapter/api/middleware"
)

func SetupAuthRouter(e *echo.Echo) {
	authHandler := handler.GetAuthHandler()

	auth := e.Group("/v1/auth")
	auth.Use(middleware.AuthRateLimit())

	auth.POST("/register", authHandler.Register)
	auth.POST("/verify", authHandler.VerifyEmail)
	auth.POST("/resend-verification", authHandler.ResendVerification)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
}
