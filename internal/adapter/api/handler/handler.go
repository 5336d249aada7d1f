package handler

import (
	"database/sql"
	"time"

	"dormdrop/internal/domain/service"
	"dormdrop/internal/infrastructure/auth"
	"dormdrop/internal/infrastructure/sse"
	"dormdrop/internal/usecase"
)

var (
	authHandler         *AuthHandler
	userHandler         *UserHandler
	listingHandler      *ListingHandler
	savedListingHandler *SavedListingHandler
	chatHandler         *ChatHandler
	eventsHandler       *EventsHandler
	fileHandler         *FileHandler
	healthHandler       *HealthHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	listingUseCase *usecase.ListingUseCase,
	savedListingUseCase *usecase.SavedListingUseCase,
	chatUseCase *usecase.ChatUseCase,
	authenticator *auth.Authenticator,
	manager *sse.Manager,
	storage service.ObjectStorage,
	db *sql.DB,
	heartbeat time.Duration,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	listingHandler = NewListingHandler(listingUseCase)
	savedListingHandler = NewSavedListingHandler(savedListingUseCase)
	chatHandler = NewChatHandler(chatUseCase)
	eventsHandler = NewEventsHandler(authenticator, manager, chatUseCase, heartbeat)
	fileHandler = NewFileHandler(storage)
	healthHandler = NewHealthHandler(db)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetListingHandler() *ListingHandler {
	return listingHandler
}

func GetSavedListingHandler() *SavedListingHandler {
	return savedListingHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetEventsHandler() *EventsHandler {
	return eventsHandler
}

func GetFileHandler() *FileHandler {
	return fileHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}
