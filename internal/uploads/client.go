// Package uploads talks to the external image host (an ImgBB-compatible API).
package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"picwedding/internal/models"
)

// Uploader sends an image to the external host and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Client implements Uploader against an ImgBB-style endpoint:
// POST <url>?key=<key> with a multipart "image" field.
type Client struct {
	HTTPClient *http.Client
	uploadURL  string
	key        string
}

// NewClient creates an upload client for the given endpoint and API key.
func NewClient(uploadURL, key string) *Client {
	return &Client{
		HTTPClient: &http.Client{},
		uploadURL:  uploadURL,
		key:        key,
	}
}

type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the image and returns the hosted URL. Failures come back as
// UploadError carrying the host's human-readable message.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", models.NewUploadError("", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", models.NewUploadError("", err)
	}
	if err := writer.Close(); err != nil {
		return "", models.NewUploadError("", err)
	}

	url := fmt.Sprintf("%s?key=%s", c.uploadURL, c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", models.NewUploadError("", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", models.NewUploadError("", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", models.NewUploadError("", err)
	}

	var parsed uploadResponse
	// The host sometimes returns non-JSON bodies on gateway errors; keep the
	// generic message in that case.
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", models.NewUploadError(parsed.Error.Message, nil)
	}
	if !parsed.Success || parsed.Data.URL == "" {
		return "", models.NewUploadError("", nil)
	}
	return parsed.Data.URL, nil
}

// IsQuotaExhausted reports whether the upload failure indicates the host's
// quota, bandwidth or storage limit, detected by substring match on the
// error message.
func IsQuotaExhausted(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "bandwidth") ||
		strings.Contains(msg, "limit") ||
		strings.Contains(msg, "storage")
}
