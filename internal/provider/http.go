package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 500

// PostJSON sends body to endpoint and returns the raw 200 response. A 429
// becomes a RateLimitError wrapping a StatusError; any other non-200 status
// is returned as a StatusError.
func PostJSON(ctx context.Context, client *http.Client, name, endpoint string, headers map[string]string, body interface{}) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := &StatusError{Provider: name, Status: resp.StatusCode, Body: Truncate(string(respBody), maxErrorBody)}
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, NewRateLimitError(name, baseErr, retryAfter)
		}
		return nil, baseErr
	}
	return respBody, nil
}

// Truncate shortens s to maxLen bytes for log and error output.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// CheckImageType rejects content types no provider accepts.
func CheckImageType(mimeType string) error {
	switch mimeType {
	case "application/pdf", "image/jpeg", "image/png":
		return nil
	default:
		return fmt.Errorf("unsupported content type for analysis: %s", mimeType)
	}
}

// StripCodeFences removes a surrounding Markdown code fence (with optional
// language tag) from a completion.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
