// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/morganforge/persona-desk/internal/persona"
)

// ProgressFunc observes upload progress as a 0..100 percent. It is called
// from the request goroutine as body bytes are consumed.
type ProgressFunc func(percent int)

// Upload posts the file at path to POST /upload as a multipart form with
// fields "file" and "persona", and returns the stored filename. When the
// backend omits the filename, the local basename is returned so callers
// always have a usable name.
func (c *Client) Upload(ctx context.Context, p persona.ID, path string, progress ProgressFunc) (string, error) {
	name := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to open file", Cause: err}
	}
	defer f.Close()

	// The form is assembled up front so progress can be reported against
	// the full body length as the transport consumes it.
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to build form", Cause: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to read file", Cause: err}
	}
	if err := writer.WriteField("persona", p.String()); err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to build form", Cause: err}
	}
	if err := writer.Close(); err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to build form", Cause: err}
	}

	reader := &progressReader{
		r:        bytes.NewReader(body.Bytes()),
		total:    int64(body.Len()),
		progress: progress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/upload", reader)
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = reader.total

	// No client timeout: large uploads are bounded by ctx instead.
	uploadClient := &http.Client{}
	resp, err := uploadClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError("upload failed", resp)
	}

	var result UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	if result.Filename == "" {
		return name, nil
	}
	return result.Filename, nil
}

// progressReader reports consumption of the request body as a percent.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	progress ProgressFunc
}

func (pr *progressReader) Read(b []byte) (int, error) {
	n, err := pr.r.Read(b)
	if n > 0 {
		pr.read += int64(n)
		if pr.progress != nil && pr.total > 0 {
			pr.progress(int(pr.read * 100 / pr.total))
		}
	}
	return n, err
}
