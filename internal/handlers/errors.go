package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/temu/internal/dtos"
	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/services"
	"github.com/justsurfingit/temu/internal/storage"
	"github.com/justsurfingit/temu/internal/wizard"
)

// Error codes clients branch on.
const (
	CodeValidation           = "validation_failed"
	CodeVersionConflict      = "version_conflict"
	CodeDuplicate            = "duplicate"
	CodeInvalidTransition    = "invalid_transition"
	CodeAlreadyCompleted     = "already_completed"
	CodeNotFound             = "not_found"
	CodeForbidden            = "forbidden"
	CodeFileTooLarge         = "file_too_large"
	CodeInvalidFileType      = "invalid_file_type"
	CodeStorageMisconfigured = "storage_misconfigured"
	CodeUnavailable          = "unavailable"
	CodeTimeout              = "timeout"
)

// respondError writes the status and body for err.
func respondError(c *gin.Context, err error) {
	var (
		valErr  *wizard.ValidationError
		rejErr  *services.RejectionError
		nfErr   *wizard.NotFoundError
		confErr *wizard.ConfigurationError
	)
	switch {
	case errors.As(err, &valErr):
		abort(c, http.StatusBadRequest, dtos.ErrorResponse{Error: err.Error(), Code: CodeValidation, Fields: valErr.Errors})
	case errors.As(err, &rejErr):
		abort(c, http.StatusBadRequest, dtos.ErrorResponse{Error: rejErr.Message, Code: CodeValidation, Fields: rejErr.Fields})
	case errors.Is(err, wizard.ErrVersionConflict):
		abort(c, http.StatusConflict, dtos.ErrorResponse{Error: err.Error(), Code: CodeVersionConflict})
	case errors.Is(err, wizard.ErrAlreadyCompleted):
		abort(c, http.StatusConflict, dtos.ErrorResponse{Error: err.Error(), Code: CodeAlreadyCompleted})
	case errors.Is(err, services.ErrConflict):
		abort(c, http.StatusConflict, dtos.ErrorResponse{Error: err.Error(), Code: CodeDuplicate})
	case errors.Is(err, services.ErrInvalidTransition):
		abort(c, http.StatusConflict, dtos.ErrorResponse{Error: err.Error(), Code: CodeInvalidTransition})
	case errors.As(err, &nfErr):
		abort(c, http.StatusNotFound, dtos.ErrorResponse{Error: err.Error(), Code: CodeNotFound, Redirect: nfErr.Redirect})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, flows.ErrUnknownFlow):
		abort(c, http.StatusNotFound, dtos.ErrorResponse{Error: err.Error(), Code: CodeNotFound})
	case errors.Is(err, services.ErrForbidden):
		abort(c, http.StatusForbidden, dtos.ErrorResponse{Error: err.Error(), Code: CodeForbidden})
	case errors.Is(err, storage.ErrFileTooLarge):
		abort(c, http.StatusRequestEntityTooLarge, dtos.ErrorResponse{Error: err.Error(), Code: CodeFileTooLarge})
	case errors.Is(err, storage.ErrInvalidFileType):
		abort(c, http.StatusUnsupportedMediaType, dtos.ErrorResponse{Error: err.Error(), Code: CodeInvalidFileType})
	case errors.Is(err, storage.ErrTokenMissing):
		slog.Error("Upload storage is misconfigured.", "err", err)
		abort(c, http.StatusInternalServerError, dtos.ErrorResponse{Error: "file storage is not configured", Code: CodeStorageMisconfigured})
	case errors.Is(err, services.ErrUnavailable), errors.As(err, &confErr):
		abort(c, http.StatusServiceUnavailable, dtos.ErrorResponse{Error: err.Error(), Code: CodeUnavailable})
	case errors.Is(err, context.DeadlineExceeded):
		slog.Warn("Request timed out.", "method", c.Request.Method, "path", c.FullPath())
		abort(c, http.StatusGatewayTimeout, dtos.ErrorResponse{Error: "the request took too long, try again", Code: CodeTimeout})
	default:
		slog.Error("Request failed.", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		abort(c, http.StatusInternalServerError, dtos.ErrorResponse{Error: "internal error"})
	}
}

func abort(c *gin.Context, status int, body dtos.ErrorResponse) {
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string, err error) {
	abort(c, http.StatusBadRequest, dtos.ErrorResponse{Error: msg + ": " + err.Error(), Code: CodeValidation})
}

// idParam parses a numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		abort(c, http.StatusBadRequest, dtos.ErrorResponse{Error: "invalid " + name, Code: CodeValidation})
		return 0, false
	}
	return uint(id), true
}
