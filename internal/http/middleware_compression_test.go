package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompression(t *testing.T) {
	testContent := strings.Repeat("<tr><td>Resident</td></tr>", 500)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testContent))
	})

	tests := []struct {
		name           string
		acceptEncoding string
		expectGzip     bool
		level          int
	}{
		{name: "client accepts gzip", acceptEncoding: "gzip, deflate", expectGzip: true},
		{name: "client does not accept gzip", acceptEncoding: "deflate"},
		{name: "no accept-encoding header", acceptEncoding: ""},
		{name: "gzip disabled by q=0", acceptEncoding: "gzip;q=0, deflate"},
		{name: "fastest level", acceptEncoding: "gzip", expectGzip: true, level: 1},
		{name: "best level", acceptEncoding: "gzip;q=0.8", expectGzip: true, level: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Compression(CompressionConfig{Level: tt.level})(handler)
			req := httptest.NewRequest(http.MethodGet, "/account", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			resp := rec.Result()
			defer resp.Body.Close()

			if !tt.expectGzip {
				assert.Empty(t, resp.Header.Get("Content-Encoding"))
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, testContent, string(body))
				return
			}

			assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
			assert.Contains(t, resp.Header.Values("Vary"), "Accept-Encoding")
			gz, err := gzip.NewReader(resp.Body)
			require.NoError(t, err)
			defer gz.Close()
			body, err := io.ReadAll(gz)
			require.NoError(t, err)
			assert.Equal(t, testContent, string(body))
		})
	}
}

func TestCompression_SkipsNonTextAndNoContent(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "image",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "image/png")
				_, _ = w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
			},
		},
		{
			name: "no content",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusNoContent)
			},
		},
		{
			name: "already encoded",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/css")
				w.Header().Set("Content-Encoding", "br")
				_, _ = w.Write([]byte("body{}"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Compression(CompressionConfig{})(tt.handler)
			req := httptest.NewRequest(http.MethodGet, "/static/x", nil)
			req.Header.Set("Accept-Encoding", "gzip")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.NotEqual(t, "gzip", rec.Header().Get("Content-Encoding"))
		})
	}
}

func TestCompression_HeadPassesThrough(t *testing.T) {
	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}
