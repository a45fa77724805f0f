package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kata/sweetshop/internal/api/response"
	"github.com/kata/sweetshop/internal/core/domain"
	"github.com/kata/sweetshop/internal/core/ports"
)

const uploadField = "file"

type UploadHandler struct {
	images ports.ImageService
}

func NewUploadHandler(images ports.ImageService) *UploadHandler {
	return &UploadHandler{images: images}
}

// Upload godoc
// @Summary      Upload a product image
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Image file"
// @Success      201   {object}  response.Envelope{data=domain.StoredImage}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /uploads [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return domain.ErrImageMissing
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid upload")
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := h.images.Upload(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return response.Created(c, "File uploaded successfully", img)
}
