// Package storage puts uploaded files into blob storage and returns their public URL.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrTokenMissing    = errors.New("storage write token is not configured")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
)

// BlobStore writes a blob under key and returns the URL it is served from.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// HTTPBlobStore talks to a Vercel Blob compatible HTTP API: PUT {base}/{key}
// with a bearer token, answering {"url": "..."}.
type HTTPBlobStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPBlobStore(baseURL, token string, httpClient *http.Client) *HTTPBlobStore {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPBlobStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

func (s *HTTPBlobStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if s.token == "" {
		return "", ErrTokenMissing
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/"+escapeKey(key), body)
	if err != nil {
		return "", fmt.Errorf("build blob request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("x-content-type", contentType)
	req.Header.Set("x-add-random-suffix", "0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("put blob: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: blob store refused the token (%d)", ErrTokenMissing, resp.StatusCode)
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("put blob: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode blob response: %w", err)
	}
	if out.URL == "" {
		return "", errors.New("blob response has no url")
	}
	return out.URL, nil
}

func escapeKey(key string) string {
	segs := strings.Split(strings.Trim(key, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

// DiskStore writes blobs below a directory, for local development.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *DiskStore) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	clean := filepath.Clean("/" + key)
	path := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return s.baseURL + filepath.ToSlash(clean), nil
}

// Dir is the directory files are written to.
func (s *DiskStore) Dir() string { return s.dir }
