package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Result is the enhanced form of one news item. Tags supplement the resolved
// category; they never replace it.
type Result struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

const systemPrompt = "You edit wire-service news copy. Given a raw title, content and summary, " +
	"return a JSON object with keys title, content, summary and tags (array of strings). " +
	"Improve clarity without changing facts. Respond with the JSON object only."

// Client calls an OpenAI-compatible chat completions endpoint to enhance raw
// item text. A failed enhancement never aborts the pipeline; callers fall back
// to the original fields.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint, model, apiKey string) *Client {
	return &Client{
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Available returns true if an API key is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Run enhances one item. The upstream model answers with a JSON object; any
// transport, status or parse failure is returned as an error for the caller
// to count and ignore.
func (c *Client) Run(ctx context.Context, title, content, summary string) (*Result, error) {
	if !c.Available() {
		return nil, fmt.Errorf("enhancer not configured")
	}

	userPayload, err := json.Marshal(map[string]string{
		"title":   title,
		"content": content,
		"summary": summary,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal enhancement input: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(userPayload)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal enhancement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enhancement request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read enhancement response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enhancer error %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("parse enhancement response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("enhancer returned no choices")
	}

	var result Result
	answer := strings.TrimSpace(chat.Choices[0].Message.Content)
	answer = strings.TrimPrefix(answer, "```json")
	answer = strings.Trim(answer, "`")
	if err := json.Unmarshal([]byte(answer), &result); err != nil {
		return nil, fmt.Errorf("parse enhanced item: %w", err)
	}

	// A model that drops a field must not blank out the original.
	if strings.TrimSpace(result.Title) == "" {
		result.Title = title
	}
	if strings.TrimSpace(result.Content) == "" {
		result.Content = content
	}
	if strings.TrimSpace(result.Summary) == "" {
		result.Summary = summary
	}

	return &result, nil
}
