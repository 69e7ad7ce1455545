package uploads

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"picwedding/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "wedding.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"url":"https://i.ibb.co/abc/wedding.jpg"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	url, err := c.Upload(context.Background(), "wedding.jpg", []byte("fake-image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://i.ibb.co/abc/wedding.jpg", url)
}

func TestUpload_HostErrorMessagePreserved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":{"message":"Upload rate limit reached"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.Upload(context.Background(), "wedding.jpg", []byte("x"))
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UPLOAD_ERROR", appErr.Code)
	assert.Equal(t, "Upload rate limit reached", appErr.Message)
}

func TestUpload_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>502 Bad Gateway</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.Upload(context.Background(), "wedding.jpg", []byte("x"))
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Error uploading image", appErr.Message)
}

func TestUpload_SuccessFlagWithoutURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.Upload(context.Background(), "wedding.jpg", []byte("x"))
	require.Error(t, err)
}

func TestIsQuotaExhausted(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"quota", models.NewUploadError("Monthly quota exceeded", nil), true},
		{"bandwidth", errors.New("bandwidth cap reached"), true},
		{"limit", models.NewUploadError("Upload rate limit reached", nil), true},
		{"storage", errors.New("Storage is full"), true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQuotaExhausted(tt.err))
		})
	}
}
