package openai

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
	apiURL = "https://api.openai.com/v1/chat/completions"
	name   = "openai"
)

// Client implements port.AIProvider using the OpenAI Chat Completions API.
type Client struct {
	apiKey    string
	model     string
	endpoint  string
	maxTokens int
	client    *http.Client
}

// New creates an OpenAI client from a provider config.
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
		model = "gpt-4o"
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
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	var fileBlock map[string]interface{}
	if mimeType == "application/pdf" {
		fileBlock = map[string]interface{}{
			"type": "file",
			"file": map[string]interface{}{"filename": "document.pdf", "file_data": dataURI},
		}
	} else {
		fileBlock = map[string]interface{}{
			"type":      "image_url",
			"image_url": map[string]interface{}{"url": dataURI},
		}
	}
	content := []map[string]interface{}{fileBlock, {"type": "text", "text": prompt}}
	return c.send(ctx, content, c.maxTokens)
}

func (c *Client) send(ctx context.Context, content interface{}, maxTokens int) (string, error) {
	reqBody := map[string]interface{}{
		"model":                 c.model,
		"max_completion_tokens": maxTokens,
		"messages": []map[string]interface{}{
			{"role": "user", "content": content},
		},
	}
	body, err := provider.PostJSON(ctx, c.client, name, c.endpoint, map[string]string{"Authorization": "Bearer " + c.apiKey}, reqBody)
	if err != nil {
		return "", err
	}
	return parseResponse(body)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", provider.ErrEmptyCompletion
	}
	return text, nil
}
