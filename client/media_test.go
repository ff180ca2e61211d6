// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1_1/demo-cloud/image/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "unsigned-preset", r.FormValue("upload_preset"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		// The stored name is randomized but keeps the extension
		assert.True(t, strings.HasSuffix(header.Filename, ".jpg"), "got %q", header.Filename)
		assert.NotEqual(t, "pothole.jpg", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake image bytes", string(content))

		fmt.Fprintf(w, `{"secure_url":"https://media.example.com/demo-cloud/%s"}`, header.Filename)
	}))
	defer srv.Close()

	u := NewMediaUploader(srv.URL, "demo-cloud", "unsigned-preset")
	url, err := u.Upload(context.Background(), "pothole.jpg", strings.NewReader("fake image bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://media.example.com/demo-cloud/"))
}

func TestMediaUploadRandomizesEachName(t *testing.T) {
	names := make(map[string]bool)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		names[header.Filename] = true
		fmt.Fprint(w, `{"secure_url":"https://media.example.com/x"}`)
	}))
	defer srv.Close()

	u := NewMediaUploader(srv.URL, "demo-cloud", "preset")
	for i := 0; i < 3; i++ {
		_, err := u.Upload(context.Background(), "same.jpg", strings.NewReader("data"))
		require.NoError(t, err)
	}
	assert.Len(t, names, 3, "repeated uploads of one filename must never collide")
}

func TestMediaUploadRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Upload preset not found"}}`)
	}))
	defer srv.Close()

	u := NewMediaUploader(srv.URL, "demo-cloud", "bad-preset")
	_, err := u.Upload(context.Background(), "x.png", strings.NewReader("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Upload preset not found")
}

func TestMediaUploadNonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A proxy in front of the media host answers with HTML
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html><body>Bad Gateway</body></html>")
	}))
	defer srv.Close()

	u := NewMediaUploader(srv.URL, "demo-cloud", "preset")
	_, err := u.Upload(context.Background(), "x.png", strings.NewReader("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502 Bad Gateway")
	assert.NotContains(t, err.Error(), "decode upload response")
}

func TestMediaUploadMissingSecureURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	u := NewMediaUploader(srv.URL, "demo-cloud", "preset")
	_, err := u.Upload(context.Background(), "x.png", strings.NewReader("data"))
	assert.Error(t, err)
}
