package handler

import (
	"github.com/labstack/echo/v4"

	"dormdrop/internal/domain/service"
	"dormdrop/pkg/errors"
	"dormdrop/pkg/response"
)

const maxUploadSlots = 10

type FileHandler struct {
	storage service.ObjectStorage
}

func NewFileHandler(storage service.ObjectStorage) *FileHandler {
	return &FileHandler{
		storage: storage,
	}
}

type uploadSlotRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
}

type uploadURLsRequest struct {
	Files []uploadSlotRequest `json:"files" validate:"required,min=1,dive"`
}

// CreateUploadURLs mints presigned PUT URLs so clients upload image bytes
// straight to the bucket. The API never proxies file content.
func (h *FileHandler) CreateUploadURLs(c echo.Context) error {
	var req uploadURLsRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}
	if len(req.Files) > maxUploadSlots {
		return response.Error(c, errors.BadRequest("Too many files requested", nil))
	}

	uploads := make([]*service.SignedUpload, 0, len(req.Files))
	for _, f := range req.Files {
		upload, err := h.storage.SignUpload(c.Request().Context(), f.Filename, f.ContentType)
		if err != nil {
			return response.Error(c, err)
		}
		uploads = append(uploads, upload)
	}

	return response.Success(c, map[string]interface{}{"uploadUrls": uploads})
}
