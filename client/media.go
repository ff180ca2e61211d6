// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
)

// MediaUploader pushes issue attachments to an external media host via
// unsigned multipart upload. The host identifies the tenant by cloud name
// and authorizes the upload with a preset; no account credentials ever
// reach this client. The returned secure URL is what gets attached to an
// issue.
type MediaUploader struct {
	host      string
	cloudName string
	preset    string
	httpc     *http.Client
}

// NewMediaUploader configures an uploader for one media host tenant.
func NewMediaUploader(host, cloudName, preset string) *MediaUploader {
	return &MediaUploader{
		host:      host,
		cloudName: cloudName,
		preset:    preset,
		httpc:     &http.Client{Timeout: 60 * time.Second},
	}
}

type mediaUploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the file and returns the hosted secure URL. The stored
// name is randomized so repeated uploads of the same local filename never
// collide; only the extension survives.
func (u *MediaUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("upload_preset", u.preset); err != nil {
		return "", err
	}

	stored := uuid.NewString() + path.Ext(filename)
	part, err := form.CreateFormFile("file", stored)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", u.host, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Failure bodies are JSON on a real media host, but a proxy can
		// answer with HTML; fall back to the status line
		msg := resp.Status
		var failure mediaUploadResponse
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Error.Message != "" {
			msg = failure.Error.Message
		}
		return "", fmt.Errorf("media host rejected upload: %s", msg)
	}

	var decoded mediaUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if decoded.SecureURL == "" {
		return "", fmt.Errorf("media host returned no secure_url")
	}

	return decoded.SecureURL, nil
}
