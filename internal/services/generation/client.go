package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// Config holds configuration for the generation client
type Config struct {
	BaseURL       string
	Model         string
	TextTimeout   time.Duration
	VisionTimeout time.Duration
	RatePerSecond float64
	RateBurst     int
}

// HTTPClient talks to an Ollama-compatible generation endpoint.
// The upstream is treated as a rate-limited singleton: a shared limiter
// bounds all calls regardless of how many pipelines run concurrently.
type HTTPClient struct {
	baseURL      string
	model        string
	textClient   *http.Client
	visionClient *http.Client
	limiter      *rate.Limiter
}

// Ensure HTTPClient implements the Client interface
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a new generation client
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.TextTimeout <= 0 {
		cfg.TextTimeout = 2 * time.Minute
	}
	if cfg.VisionTimeout <= 0 {
		// Vision calls carry image payloads and need more headroom
		cfg.VisionTimeout = 3 * time.Minute
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 1
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}

	return &HTTPClient{
		baseURL:      cfg.BaseURL,
		model:        cfg.Model,
		textClient:   &http.Client{Timeout: cfg.TextTimeout},
		visionClient: &http.Client{Timeout: cfg.VisionTimeout},
		limiter:      rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
	}
}

// generateRequest is the wire format of the /api/generate endpoint
type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

// generateResponse is the non-streaming response body
type generateResponse struct {
	Response string `json:"response"`
}

// Generate performs a single-shot text completion
func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, c.textClient, generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
}

// GenerateWithImages performs a completion with supporting images attached.
// Images that cannot be read are skipped; if none survive, the call
// degrades to a text-only completion.
func (c *HTTPClient) GenerateWithImages(ctx context.Context, prompt string, imagePaths []string) (string, error) {
	images := encodeImages(imagePaths)
	client := c.visionClient
	if len(images) == 0 {
		client = c.textClient
	}
	return c.generate(ctx, client, generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Images: images,
		Stream: false,
	})
}

// GenerateTags generates a cleaned tag list for a textual description
func (c *HTTPClient) GenerateTags(ctx context.Context, description string, max int) ([]string, error) {
	response, err := c.Generate(ctx, TagListPrompt(description))
	if err != nil {
		return nil, err
	}
	return CleanTagList(response, max), nil
}

// GenerateTagsWithImages generates a cleaned tag list from scene frames plus context
func (c *HTTPClient) GenerateTagsWithImages(ctx context.Context, imagePaths []string, sceneContext string, max int) ([]string, error) {
	response, err := c.GenerateWithImages(ctx, SceneTagPrompt(sceneContext), imagePaths)
	if err != nil {
		return nil, err
	}
	return CleanTagList(response, max), nil
}

func (c *HTTPClient) generate(ctx context.Context, client *http.Client, payload generateRequest) (string, error) {
	endpoint := c.baseURL + "/api/generate"

	if err := c.limiter.Wait(ctx); err != nil {
		return "", NewUpstreamError(endpoint, 0, "rate limiter wait aborted", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", NewUpstreamError(endpoint, 0, "encoding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", NewUpstreamError(endpoint, 0, "creating request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", NewUpstreamError(endpoint, 0, "executing request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", NewUpstreamError(endpoint, resp.StatusCode, string(snippet),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", NewUpstreamError(endpoint, resp.StatusCode, "decoding response", err)
	}

	return result.Response, nil
}

// encodeImages base64-encodes the images that exist on disk.
// Missing or unreadable files are logged and skipped.
func encodeImages(paths []string) []string {
	encoded := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[WARN] Skipping unreadable image %s: %v", path, err)
			continue
		}
		encoded = append(encoded, base64.StdEncoding.EncodeToString(data))
	}
	return encoded
}
