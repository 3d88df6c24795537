package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/temu/internal/auth"
	"github.com/justsurfingit/temu/internal/dtos"
	"github.com/justsurfingit/temu/internal/services"
)

type UploadHandler struct {
	Service *services.UploadService
}

func NewUploadHandler(s *services.UploadService) *UploadHandler {
	return &UploadHandler{Service: s}
}

// POST /upload, multipart with fields "file" and "kind" (photo or cv).
func (h *UploadHandler) Upload(c *gin.Context) {
	id, _ := auth.FromContext(c)
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Missing file", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "Unreadable file", err)
		return
	}
	defer f.Close()

	url, err := h.Service.Upload(c.Request.Context(), id.UserID, c.PostForm("kind"), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.UploadResponse{URL: url})
}
