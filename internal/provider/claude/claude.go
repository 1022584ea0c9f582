package claude

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
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	name       = "claude"
)

// Client implements port.AIProvider using the Anthropic Messages API.
type Client struct {
	apiKey    string
	model     string
	endpoint  string
	maxTokens int
	client    *http.Client
}

// New creates a Claude client from a provider config.
func New(cfg config.ProviderConfig, maxTokens int) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return NewWithEndpoint(cfg, maxTokens, endpoint)
}

// NewWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg config.ProviderConfig, maxTokens int, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
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
	return c.send(ctx, prompt, maxTokens)
}

func (c *Client) CompleteWithImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if err := provider.CheckImageType(mimeType); err != nil {
		return "", err
	}
	blockType := "image"
	if mimeType == "application/pdf" {
		blockType = "document"
	}
	content := []map[string]interface{}{
		{
			"type": blockType,
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": mimeType,
				"data":       base64.StdEncoding.EncodeToString(image),
			},
		},
		{"type": "text", "text": prompt},
	}
	return c.send(ctx, content, c.maxTokens)
}

func (c *Client) send(ctx context.Context, content interface{}, maxTokens int) (string, error) {
	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": maxTokens,
		"messages": []map[string]interface{}{
			{"role": "user", "content": content},
		},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": apiVersion,
	}
	body, err := provider.PostJSON(ctx, c.client, name, c.endpoint, headers, reqBody)
	if err != nil {
		return "", err
	}
	return parseResponse(body)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if resp.StopReason == "max_tokens" {
		return "", fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", provider.ErrEmptyCompletion
	}
	return sb.String(), nil
}
