// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/persona-desk/internal/persona"
)

func newTestClient(baseURL string) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	})
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestClient_Chat(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(ChatResponse{Content: "Here is your answer."})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	reply, err := c.Chat(context.Background(), persona.HR, nil, "  what is the leave policy?  ")
	require.NoError(t, err)
	assert.Equal(t, "Here is your answer.", reply)

	// Persona id travels as-is; input is trimmed; history is an empty
	// array, never null.
	assert.Equal(t, "HR", got.Role)
	assert.Equal(t, "what is the leave policy?", got.UserInput)
	assert.NotNil(t, got.Messages)
	assert.Empty(t, got.Messages)
}

func TestClient_ChatEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{})
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL).Chat(context.Background(), persona.L1, nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "No response", reply)
}

func TestClient_ChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(APIError{Error: "inference backend overloaded"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), persona.HR, nil, "hello")
	require.Error(t, err)

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, ErrTypeInvalidResponse, clientErr.Type)
	assert.Contains(t, clientErr.Message, "inference backend overloaded")
}

func TestClient_ChatUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately, so the port refuses connections

	_, err := newTestClient(srv.URL).Chat(context.Background(), persona.HR, nil, "hello")
	assert.True(t, IsUnreachable(err))
}

// =============================================================================
// FILE LISTING TESTS
// =============================================================================

func TestClient_ListFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files", r.URL.Path)
		// Listing calls lowercase the persona id.
		require.Equal(t, "legal", r.URL.Query().Get("persona"))
		json.NewEncoder(w).Encode(ListFilesResponse{Files: []string{"nda.pdf", "policy.docx"}})
	}))
	defer srv.Close()

	files, err := newTestClient(srv.URL).ListFiles(context.Background(), persona.Legal)
	require.NoError(t, err)
	assert.Equal(t, []string{"nda.pdf", "policy.docx"}, files)
}

func TestClient_ListFilesEmptyIsValid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty array", body: `{"files": []}`},
		{name: "null files", body: `{"files": null}`},
		{name: "missing field", body: `{}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			files, err := newTestClient(srv.URL).ListFiles(context.Background(), persona.HR)
			require.NoError(t, err)
			require.NotNil(t, files)
			assert.Empty(t, files)
		})
	}
}

func TestClient_ListFilesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	files, err := newTestClient(srv.URL).ListFiles(context.Background(), persona.HR)
	assert.Error(t, err)
	assert.Nil(t, files)
}

// =============================================================================
// RETRIEVAL URL TESTS
// =============================================================================

func TestClient_FetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/preview-url", r.URL.Path)
		require.Equal(t, "l2", r.URL.Query().Get("persona"))
		require.Equal(t, "run book.pdf", r.URL.Query().Get("filename"))
		json.NewEncoder(w).Encode(PreviewURLResponse{URL: "https://store.example/runbook?sig=abc"})
	}))
	defer srv.Close()

	u, err := newTestClient(srv.URL).FetchURL(context.Background(), persona.L2, "run book.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://store.example/runbook?sig=abc", u)
}

func TestClient_FetchURLEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(PreviewURLResponse{})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchURL(context.Background(), persona.HR, "x.pdf")
	assert.Error(t, err)
}

// =============================================================================
// UPLOAD TESTS
// =============================================================================

func TestClient_Upload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf bytes here"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		// Upload sends the persona id as-is, not lowercased.
		assert.Equal(t, "HR", r.FormValue("persona"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "report.pdf", hdr.Filename)

		json.NewEncoder(w).Encode(UploadResponse{Filename: "report.pdf"})
	}))
	defer srv.Close()

	var lastPercent int
	name, err := newTestClient(srv.URL).Upload(context.Background(), persona.HR, path, func(p int) {
		lastPercent = p
	})
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", name)
	assert.Equal(t, 100, lastPercent)
}

func TestClient_UploadFilenameFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("notes"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(UploadResponse{})
	}))
	defer srv.Close()

	name, err := newTestClient(srv.URL).Upload(context.Background(), persona.L1, path, nil)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", name)
}

func TestClient_UploadMissingFile(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").Upload(context.Background(), persona.HR, "/no/such/file.txt", nil)
	assert.Error(t, err)
}

// =============================================================================
// DOWNLOAD TESTS
// =============================================================================

func TestClient_Download(t *testing.T) {
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("document body"))
	}))
	defer fileSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/preview-url", r.URL.Path)
		json.NewEncoder(w).Encode(PreviewURLResponse{URL: fileSrv.URL + "/blob?sig=xyz"})
	}))
	defer apiSrv.Close()

	dir := t.TempDir()
	c := NewClientWithConfig(&ClientConfig{BaseURL: apiSrv.URL, DownloadDir: dir})

	dest, err := c.Download(context.Background(), persona.HR, "x.pdf")
	require.NoError(t, err)
	// Saved under the original filename, not the blob name from the URL.
	assert.Equal(t, filepath.Join(dir, "x.pdf"), dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "document body", string(data))
}

func TestClient_DownloadFetchFails(t *testing.T) {
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer apiSrv.Close()

	dir := t.TempDir()
	c := NewClientWithConfig(&ClientConfig{BaseURL: apiSrv.URL, DownloadDir: dir})

	_, err := c.Download(context.Background(), persona.HR, "missing.pdf")
	require.Error(t, err)

	// Nothing written on failure.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(nil)
	cfg := c.GetConfig()
	assert.Equal(t, "http://127.0.0.1:8000", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "downloads", cfg.DownloadDir)

	c = NewClientWithConfig(&ClientConfig{BaseURL: "http://10.0.0.5:9000"})
	assert.Equal(t, "http://10.0.0.5:9000", c.GetConfig().BaseURL)
	assert.Equal(t, 30*time.Second, c.GetConfig().Timeout)
}
