package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"notaria/internal/config"
	"notaria/internal/provider"
)

const (
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	name       = "gemini"
)

// Client implements port.AIProvider using Google's Gemini API.
type Client struct {
	apiKey    string
	model     string
	endpoint  string
	maxTokens int
	client    *http.Client
}

// New creates a Gemini client from a provider config.
func New(cfg config.ProviderConfig, maxTokens int) *Client {
	return NewWithEndpoint(cfg, maxTokens, cfg.Endpoint)
}

// NewWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg config.ProviderConfig, maxTokens int, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &Client{
		apiKey:    cfg.APIKey,
		model:     model,
		endpoint:  endpoint,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: cfg.Timeout()},
	}
}

func (c *Client) Name() string { return name }

func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	parts := []map[string]interface{}{{"text": prompt}}
	return c.send(ctx, parts, maxTokens)
}

func (c *Client) CompleteWithImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if err := provider.CheckImageType(mimeType); err != nil {
		return "", err
	}
	parts := []map[string]interface{}{
		{
			"inline_data": map[string]interface{}{
				"mime_type": mimeType,
				"data":      base64.StdEncoding.EncodeToString(image),
			},
		},
		{"text": prompt},
	}
	return c.send(ctx, parts, c.maxTokens)
}

func (c *Client) send(ctx context.Context, parts []map[string]interface{}, maxTokens int) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"role": "user", "parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": maxTokens,
		},
	}
	body, err := provider.PostJSON(ctx, c.client, name, c.endpoint, map[string]string{"x-goog-api-key": c.apiKey}, reqBody)
	if err != nil {
		return "", err
	}
	return parseResponse(body)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from API: no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == "MAX_TOKENS" {
		return "", fmt.Errorf("output truncated (finishReason: MAX_TOKENS): response exceeded output token limit")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", provider.ErrEmptyCompletion
	}
	return sb.String(), nil
}
