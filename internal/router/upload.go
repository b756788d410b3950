package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

type deleteImageRequest struct {
	PublicID string `json:"publicId"`
}

func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, global.InvalidArgument("file", "No file uploaded"))
		return
	}

	f, err := file.Open()
	if err != nil {
		respondError(c, global.InvalidArgument("file", "Could not read uploaded file"))
		return
	}
	defer f.Close()

	result, err := h.images.Upload(c.Request.Context(), file.Header.Get("Content-Type"), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Image uploaded", result))
}

func (h *Handler) DeleteImage(c *gin.Context) {
	var req deleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PublicID == "" {
		respondError(c, global.InvalidArgument("publicId", "publicId is required"))
		return
	}

	if err := h.images.Delete(c.Request.Context(), req.PublicID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse("Image deleted", nil))
}
