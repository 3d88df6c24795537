package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/temu/internal/metrics"
	"github.com/justsurfingit/temu/internal/storage"
)

type recordingStore struct {
	key, contentType string
	body             []byte
	err              error
}

func (s *recordingStore) Put(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.key, s.contentType = key, contentType
	s.body, _ = io.ReadAll(body)
	return "https://cdn.example/" + key, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestUploadStoresSniffedFile(t *testing.T) {
	store := &recordingStore{}
	svc := NewUploadService(store, 1<<10, 1<<10, metrics.New(prometheus.NewRegistry()))

	url, err := svc.Upload(context.Background(), "u1", UploadPhoto, bytes.NewReader(pngHeader))

	require.NoError(t, err)
	assert.Equal(t, "image/png", store.contentType)
	assert.True(t, strings.HasPrefix(store.key, "photo/u1/"))
	assert.True(t, strings.HasSuffix(store.key, ".png"))
	assert.Equal(t, "https://cdn.example/"+store.key, url)
	assert.Equal(t, pngHeader, store.body)
}

func TestUploadErrorTaxonomy(t *testing.T) {
	pdf := []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n")
	tests := []struct {
		name  string
		kind  string
		body  []byte
		store *recordingStore
		want  error
	}{
		{"pdf as photo", UploadPhoto, pdf, &recordingStore{}, storage.ErrInvalidFileType},
		{"text as cv", UploadCV, []byte("just some text"), &recordingStore{}, storage.ErrInvalidFileType},
		{"too large", UploadCV, append(pdf, bytes.Repeat([]byte{' '}, 2048)...), &recordingStore{}, storage.ErrFileTooLarge},
		{"missing token", UploadCV, pdf, &recordingStore{err: storage.ErrTokenMissing}, storage.ErrTokenMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUploadService(tt.store, 1<<10, 1<<10, nil)
			_, err := svc.Upload(context.Background(), "u1", tt.kind, bytes.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUploadUnknownKind(t *testing.T) {
	svc := NewUploadService(&recordingStore{}, 1<<10, 1<<10, nil)

	_, err := svc.Upload(context.Background(), "u1", "video", bytes.NewReader(pngHeader))

	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Contains(t, rej.Fields, "kind")
}

func TestUnknownKindsShareOneMetricSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewUploadService(&recordingStore{}, 1<<10, 1<<10, metrics.New(reg))

	for _, kind := range []string{"video", "audio", "../etc"} {
		_, err := svc.Upload(context.Background(), "u1", kind, bytes.NewReader(pngHeader))
		require.Error(t, err)
	}

	n, err := testutil.GatherAndCount(reg, "uploads_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
