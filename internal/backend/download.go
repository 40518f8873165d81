// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/morganforge/persona-desk/internal/persona"
)

// Download fetches a short-lived retrieval URL for the document and
// streams its body into the configured download directory under the
// original filename. It returns the path written.
//
// Only the URL fetch counts against the tracked transfer; once the body
// copy starts, completion is reported when the file is fully written.
func (c *Client) Download(ctx context.Context, p persona.ID, filename string) (string, error) {
	fetched, err := c.FetchURL(ctx, p, filename)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetched, nil)
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	// Retrieval URLs may point at slow object storage; bound by ctx, not
	// the client timeout.
	downloadClient := &http.Client{}
	resp, err := downloadClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "document fetch failed: " + resp.Status}
	}

	if err := os.MkdirAll(c.config.DownloadDir, 0o755); err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create download directory", Cause: err}
	}

	// Base strips any path the server smuggled into the filename.
	dest := filepath.Join(c.config.DownloadDir, filepath.Base(filename))
	out, err := os.Create(dest)
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create file", Cause: err}
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to write file", Cause: err}
	}
	if err := out.Close(); err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to write file", Cause: err}
	}

	return dest, nil
}
