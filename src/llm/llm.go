package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	OpenRouterURL   = "https://openrouter.ai/api/v1"
	DefaultSiteURL  = "https://desktop.app/copypolish"
	DefaultSiteName = "CopyPolish Desktop Tool"
	DefaultTimeout  = 30 * time.Second
)

// ErrEmptyResponse is returned when the service answered without any text.
var ErrEmptyResponse = errors.New("no text in API response")

// Request is one system+user prompt exchange.
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
}

// Completer is the text-transformation service as the router sees it.
type Completer interface {
	Complete(ctx context.Context, apiKey string, req Request) (string, error)
}

type Config struct {
	BaseURL  string
	SiteURL  string
	SiteName string
	Timeout  time.Duration
}

// Client talks to OpenRouter's OpenAI-compatible chat completions endpoint.
// The API key is supplied per call so a key change needs no restart.
type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterURL
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = DefaultSiteURL
	}
	if cfg.SiteName == "" {
		cfg.SiteName = DefaultSiteName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{cfg: cfg}
}

func (c *Client) api(apiKey string, timeout time.Duration) *openai.Client {
	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = strings.TrimRight(c.cfg.BaseURL, "/")
	oc.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": c.cfg.SiteURL,
				"X-Title":      c.cfg.SiteName,
			},
		},
	}
	return openai.NewClientWithConfig(oc)
}

// Complete sends the request and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, apiKey string, req Request) (string, error) {
	if apiKey == "" {
		return "", errors.New("API key is required")
	}
	if req.Model == "" {
		return "", errors.New("model is required")
	}

	resp, err := c.api(apiKey, c.cfg.Timeout).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("API error: %s (type: %s, status: %d)", apiErr.Message, apiErr.Type, apiErr.HTTPStatusCode)
		}
		return "", fmt.Errorf("API request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ListModels returns the model ids available to apiKey.
func (c *Client) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	list, err := c.api(apiKey, 20*time.Second).ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range t.headers {
		r.Header.Set(k, v)
	}
	return t.base.RoundTrip(r)
}
