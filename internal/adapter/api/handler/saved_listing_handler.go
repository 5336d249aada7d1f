package handler

import (
	"github.com/labstack/echo/v4"

	"dormdrop/internal/usecase"
	"dormdrop/pkg/response"
)

type SavedListingHandler struct {
	savedListingUseCase *usecase.SavedListingUseCase
}

func NewSavedListingHandler(savedListingUseCase *usecase.SavedListingUseCase) *SavedListingHandler {
	return &SavedListingHandler{
		savedListingUseCase: savedListingUseCase,
	}
}

func (h *SavedListingHandler) Save(c echo.Context) error {
	uid := c.Get("uid").(string)

	if err := h.savedListingUseCase.Save(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"saved": true})
}

func (h *SavedListingHandler) Unsave(c echo.Context) error {
	uid := c.Get("uid").(string)

	if err := h.savedListingUseCase.Unsave(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"saved": false})
}

func (h *SavedListingHandler) List(c echo.Context) error {
	uid := c.Get("uid").(string)

	listings, err := h.savedListingUseCase.List(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, listings)
}
