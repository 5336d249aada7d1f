package handler

import (
	"github.com/labstack/echo/v4"

	"dormdrop/internal/usecase"
	"dormdrop/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type startConversationRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
}

func (h *ChatHandler) StartConversation(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req startConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	conv, err := h.chatUseCase.StartConversation(c.Request().Context(), uid, req.ListingID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, conv)
}

func (h *ChatHandler) Inbox(c echo.Context) error {
	uid := c.Get("uid").(string)

	summaries, err := h.chatUseCase.Inbox(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, summaries)
}

func (h *ChatHandler) GetThread(c echo.Context) error {
	uid := c.Get("uid").(string)

	thread, err := h.chatUseCase.GetThread(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, thread)
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), uid, c.Param("id"), req.Body)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, message)
}

func (h *ChatHandler) UnreadCount(c echo.Context) error {
	uid := c.Get("uid").(string)

	total, err := h.chatUseCase.UnreadTotal(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"total_unread": total})
}
