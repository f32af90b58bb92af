package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

type OpenRouterConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	SiteURL     string
	AppName     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type OpenRouterProvider struct {
	cfg    OpenRouterConfig
	client *http.Client
}

type openRouterMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterChatReq struct {
	Model       string          `json:"model"`
	Messages    []openRouterMsg `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Stream      bool            `json:"stream"`
}

type openRouterChatResp struct {
	Choices []struct {
		Message openRouterMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenRouterProvider(cfg OpenRouterConfig) *OpenRouterProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &OpenRouterProvider{
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (p *OpenRouterProvider) Model() string { return p.cfg.Model }

// Complete issues one chat-completions call bounded by the configured timeout.
// Failures come back as *UpstreamError or ErrUpstreamTimeout; a success never
// carries empty completion content.
func (p *OpenRouterProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return "", errors.New("openrouter: api key is required")
	}
	model := strings.TrimSpace(p.cfg.Model)
	if model == "" {
		return "", errors.New("openrouter: model is required")
	}

	reqBody := openRouterChatReq{
		Model:       model,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
		Stream:      false,
		Messages: func() []openRouterMsg {
			out := make([]openRouterMsg, 0, len(messages))
			for _, m := range messages {
				out = append(out, openRouterMsg{Role: m.Role, Content: m.Content})
			}
			return out
		}(),
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	cctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.cfg.BaseURL, "/"))
	req, err := http.NewRequestWithContext(cctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	if p.cfg.SiteURL != "" {
		req.Header.Set("HTTP-Referer", p.cfg.SiteURL)
	}
	if p.cfg.AppName != "" {
		req.Header.Set("X-Title", p.cfg.AppName)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || cctx.Err() == context.DeadlineExceeded {
			return "", ErrUpstreamTimeout
		}
		return "", &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := upstreamErrorMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", &UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	var decoded openRouterChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		// the deadline can also fire mid-body, after a 2xx status line
		if cctx.Err() == context.DeadlineExceeded {
			return "", ErrUpstreamTimeout
		}
		return "", &UpstreamError{Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", &UpstreamError{Status: resp.StatusCode, Message: decoded.Error.Message}
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", &UpstreamError{Status: resp.StatusCode, Message: "malformed response: no completion content"}
	}
	return decoded.Choices[0].Message.Content, nil
}

// upstreamErrorMessage pulls a human-readable message out of an error body,
// falling back to the raw text.
func upstreamErrorMessage(body []byte) string {
	var decoded struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error != nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	return strings.TrimSpace(string(body))
}
