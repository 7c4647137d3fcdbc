package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewHTTPClient(Config{
		BaseURL:       server.URL,
		Model:         "test-model",
		RatePerSecond: 1000, // keep tests fast
		RateBurst:     1000,
	})
	return client, server
}

func TestGenerate(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		var captured generateRequest
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/generate", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(generateResponse{Response: "a sunny beach"})
		})

		text, err := client.Generate(context.Background(), "describe the video")
		require.NoError(t, err)
		assert.Equal(t, "a sunny beach", text)
		assert.Equal(t, "test-model", captured.Model)
		assert.False(t, captured.Stream)
		assert.Empty(t, captured.Images)
	})

	t.Run("non-2xx is an upstream error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		})

		_, err := client.Generate(context.Background(), "prompt")
		require.Error(t, err)
		assert.True(t, IsUpstreamError(err))

		var upstreamErr *UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, http.StatusInternalServerError, upstreamErr.StatusCode)
	})

	t.Run("malformed JSON is an upstream error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		})

		_, err := client.Generate(context.Background(), "prompt")
		require.Error(t, err)
		assert.True(t, IsUpstreamError(err))
	})
}

func TestGenerateWithImages(t *testing.T) {
	t.Run("missing images are skipped silently", func(t *testing.T) {
		dir := t.TempDir()
		existing := filepath.Join(dir, "frame.jpg")
		require.NoError(t, os.WriteFile(existing, []byte("jpeg-bytes"), 0644))

		var captured generateRequest
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(generateResponse{Response: "ok"})
		})

		var logged bytes.Buffer
		log.SetOutput(&logged)
		defer log.SetOutput(os.Stderr)

		_, err := client.GenerateWithImages(context.Background(), "prompt",
			[]string{existing, filepath.Join(dir, "missing.jpg")})
		require.NoError(t, err)
		assert.Len(t, captured.Images, 1)
		assert.Contains(t, logged.String(), "[WARN]", "skipped images log at warn level")
	})

	t.Run("all images missing degrades to text-only", func(t *testing.T) {
		var captured generateRequest
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(generateResponse{Response: "ok"})
		})

		_, err := client.GenerateWithImages(context.Background(), "prompt",
			[]string{"/nope/a.jpg", "/nope/b.jpg"})
		require.NoError(t, err)
		assert.Empty(t, captured.Images)
	})
}

func TestGenerateTags(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "1. beach\n2. sunset\nbeach\nocean"})
	})

	tags, err := client.GenerateTags(context.Background(), "a beach video", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"beach", "sunset", "ocean"}, tags)
}
