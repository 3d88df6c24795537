// Package client talks to the onboarding API. OnboardingClient is the
// wizard.Remote a Session uses when it runs outside the API process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/justsurfingit/temu/internal/auth"
	"github.com/justsurfingit/temu/internal/dtos"
	"github.com/justsurfingit/temu/internal/storage"
	"github.com/justsurfingit/temu/internal/wizard"
)

type OnboardingClient struct {
	baseURL    string
	httpClient *http.Client
	identity   auth.Identity
}

type Option func(*OnboardingClient)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(oc *OnboardingClient) {
		oc.httpClient = c
	}
}

// WithIdentity sets the user the auth proxy would have forwarded.
func WithIdentity(id auth.Identity) Option {
	return func(oc *OnboardingClient) {
		oc.identity = id
	}
}

func New(baseURL string, opts ...Option) *OnboardingClient {
	c := &OnboardingClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ wizard.Remote = (*OnboardingClient)(nil)

func (c *OnboardingClient) SaveStep(ctx context.Context, flow string, req wizard.SaveRequest) (wizard.SaveResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return wizard.SaveResult{}, fmt.Errorf("marshal save request: %w", err)
	}
	var res wizard.SaveResult
	err = c.do(ctx, http.MethodPost, "/api/v1/onboarding/"+url.PathEscape(flow), "application/json", bytes.NewReader(body), &res)
	return res, err
}

func (c *OnboardingClient) Load(ctx context.Context, flow string) (wizard.Snapshot, error) {
	var snap wizard.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/v1/onboarding/"+url.PathEscape(flow), "", nil, &snap)
	if snap.Data == nil {
		snap.Data = wizard.FormState{}
	}
	return snap, err
}

// Reset deletes the caller's progress for flow.
func (c *OnboardingClient) Reset(ctx context.Context, flow string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/onboarding/"+url.PathEscape(flow), "", nil, nil)
}

// Upload sends a photo or CV and returns its public URL. Pass it to
// Session.AttachUpload as the upload function.
func (c *OnboardingClient) Upload(ctx context.Context, kind, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("kind", kind); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out dtos.UploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/upload", mw.FormDataContentType(), &buf, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *OnboardingClient) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	op := method + " " + path
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.identity.UserID != "" {
		req.Header.Set(auth.HeaderUserID, c.identity.UserID)
		req.Header.Set(auth.HeaderUserEmail, c.identity.Email)
		req.Header.Set(auth.HeaderUserRole, c.identity.Role)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &wizard.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &wizard.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// decodeError maps an error response onto the wizard error taxonomy.
func decodeError(op string, resp *http.Response) error {
	var body dtos.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &wizard.NotFoundError{Resource: op, Redirect: body.Redirect}
	case resp.StatusCode == http.StatusConflict && body.Code == "version_conflict":
		return &wizard.RemoteRejection{StatusCode: resp.StatusCode, Message: body.Error, Err: wizard.ErrVersionConflict}
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return &wizard.RemoteRejection{StatusCode: resp.StatusCode, Message: body.Error, Err: storage.ErrFileTooLarge}
	case resp.StatusCode == http.StatusUnsupportedMediaType:
		return &wizard.RemoteRejection{StatusCode: resp.StatusCode, Message: body.Error, Err: storage.ErrInvalidFileType}
	case body.Code == "storage_misconfigured":
		return &wizard.ConfigurationError{Setting: "BLOB_READ_WRITE_TOKEN", Message: body.Error}
	case resp.StatusCode >= 500:
		return &wizard.NetworkError{Op: op, Err: fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)}
	}
	return &wizard.RemoteRejection{
		StatusCode: resp.StatusCode,
		Message:    body.Error,
		Fields:     body.Fields,
	}
}
