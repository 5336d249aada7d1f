package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"dormdrop/internal/usecase"
	"dormdrop/pkg/response"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

type createListingRequest struct {
	Title       string               `json:"title" validate:"required,min=3,max=120"`
	Description string               `json:"description" validate:"max=2000"`
	Price       float64              `json:"price" validate:"required,gte=0"`
	Categories  []string             `json:"categories" validate:"omitempty,dive,required"`
	Images      []usecase.ImageInput `json:"images" validate:"required,min=1,max=10,dive"`
}

func (h *ListingHandler) Create(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listingUseCase.Create(c.Request().Context(), uid, usecase.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Categories:  req.Categories,
		Images:      req.Images,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, listing)
}

func (h *ListingHandler) Browse(c echo.Context) error {
	uid := c.Get("uid").(string)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	includeSold, _ := strconv.ParseBool(c.QueryParam("include_sold"))

	listings, err := h.listingUseCase.Browse(c.Request().Context(), uid, usecase.BrowseInput{
		Category:    c.QueryParam("category"),
		Query:       c.QueryParam("q"),
		IncludeSold: includeSold,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, listings)
}

func (h *ListingHandler) Mine(c echo.Context) error {
	uid := c.Get("uid").(string)

	listings, err := h.listingUseCase.MyListings(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, listings)
}

func (h *ListingHandler) Get(c echo.Context) error {
	uid := c.Get("uid").(string)

	detail, err := h.listingUseCase.Get(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, detail)
}

type updateListingRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=120"`
	Description string   `json:"description" validate:"max=2000"`
	Price       float64  `json:"price" validate:"required,gte=0"`
	Categories  []string `json:"categories" validate:"omitempty,dive,required"`
}

func (h *ListingHandler) Update(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req updateListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listingUseCase.Update(c.Request().Context(), uid, c.Param("id"), usecase.UpdateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Categories:  req.Categories,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, listing)
}

type setSoldRequest struct {
	IsSold bool `json:"is_sold"`
}

func (h *ListingHandler) SetSold(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req setSoldRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.listingUseCase.SetSold(c.Request().Context(), uid, c.Param("id"), req.IsSold); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"is_sold": req.IsSold})
}

func (h *ListingHandler) Delete(c echo.Context) error {
	uid := c.Get("uid").(string)

	if err := h.listingUseCase.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Listing deleted"})
}

func (h *ListingHandler) Categories(c echo.Context) error {
	categories, err := h.listingUseCase.Categories(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, categories)
}

type analyzeRequest struct {
	Keys []string `json:"keys" validate:"required,min=1,max=10,dive,required"`
}

func (h *ListingHandler) Analyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	draft, err := h.listingUseCase.Analyze(c.Request().Context(), req.Keys)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, draft)
}

type priceSuggestionRequest struct {
	Keys      []string `json:"keys" validate:"required,min=1,max=10,dive,required"`
	TitleHint string   `json:"title_hint" validate:"omitempty,max=120"`
}

func (h *ListingHandler) SuggestPrice(c echo.Context) error {
	var req priceSuggestionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	suggestion, err := h.listingUseCase.SuggestPrice(c.Request().Context(), usecase.PriceSuggestionInput{
		Keys:      req.Keys,
		TitleHint: req.TitleHint,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, suggestion)
}
