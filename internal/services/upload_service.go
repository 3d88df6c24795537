package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/justsurfingit/temu/internal/metrics"
	"github.com/justsurfingit/temu/internal/storage"
	"github.com/justsurfingit/temu/internal/wizard"
)

const (
	UploadPhoto = "photo"
	UploadCV    = "cv"
)

var allowedTypes = map[string][]string{
	UploadPhoto: {"image/jpeg", "image/png", "image/webp"},
	UploadCV: {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
}

type UploadService struct {
	Store   storage.BlobStore
	Limits  map[string]int64
	Metrics *metrics.Recorder
}

func NewUploadService(store storage.BlobStore, maxPhoto, maxCV int64, rec *metrics.Recorder) *UploadService {
	return &UploadService{
		Store:   store,
		Limits:  map[string]int64{UploadPhoto: maxPhoto, UploadCV: maxCV},
		Metrics: rec,
	}
}

// Upload stores a photo or CV for userID and returns its public URL. The
// content is sniffed; the client supplied name and type are not trusted.
func (s *UploadService) Upload(ctx context.Context, userID, kind string, body io.Reader) (string, error) {
	url, err := s.upload(ctx, userID, kind, body)
	label := kind
	if _, ok := allowedTypes[kind]; !ok {
		label = "unknown"
	}
	s.Metrics.ObserveUpload(label, uploadOutcome(err))
	if err != nil {
		slog.Warn("Upload failed.", "user", userID, "kind", kind, "err", err)
	}
	return url, err
}

func (s *UploadService) upload(ctx context.Context, userID, kind string, body io.Reader) (string, error) {
	allowed, ok := allowedTypes[kind]
	if !ok {
		return "", &RejectionError{
			Message: "unknown upload kind",
			Fields:  wizard.ValidationErrors{"kind": "must be one of photo cv"},
		}
	}

	limit := s.Limits[kind]
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: %s uploads are limited to %d bytes", storage.ErrFileTooLarge, kind, limit)
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowed...) {
		return "", fmt.Errorf("%w: %s is not accepted for %s", storage.ErrInvalidFileType, mt.String(), kind)
	}

	key := fmt.Sprintf("%s/%s/%s%s", kind, userID, uuid.NewString(), mt.Extension())
	url, err := s.Store.Put(ctx, key, mt.String(), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return url, nil
}

func uploadOutcome(err error) string {
	var rej *RejectionError
	switch {
	case err == nil:
		return "stored"
	case errors.Is(err, storage.ErrFileTooLarge):
		return "file_too_large"
	case errors.Is(err, storage.ErrInvalidFileType):
		return "invalid_file_type"
	case errors.Is(err, storage.ErrTokenMissing):
		return "storage_misconfigured"
	case errors.As(err, &rej):
		return "rejected"
	}
	return "error"
}
