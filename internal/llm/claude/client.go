// Package claude はAnthropic Messages APIを使うllm.Completerの実装。
package claude

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/douhashi/triage/internal/llm"
	"github.com/douhashi/triage/internal/logger"
)

const (
	providerName = "claude"

	// DefaultBaseURL はAPIのベースURL
	DefaultBaseURL = "https://api.anthropic.com"
	// DefaultModel は既定のモデル名
	DefaultModel = "claude-3-sonnet-20240229"
)

// Config はClaudeクライアントの設定
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// HTTPClient はテストなどで差し替える場合に設定する
	HTTPClient *http.Client
}

// Client はllm.Completerを実装する
type Client struct {
	sdk    anthropic.Client
	model  string
	logger logger.Logger
}

// NewClient は新しいClientを作成する
func NewClient(cfg Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(normalizeBaseURL(cfg.BaseURL)),
		// 1件につき1回だけ試行する
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		sdk:    anthropic.NewClient(opts...),
		model:  model,
		logger: log.WithFields("provider", providerName, "model", model),
	}
}

// Name implements llm.Completer
func (c *Client) Name() string {
	return providerName
}

// Complete implements llm.Completer
func (c *Client) Complete(ctx context.Context, req *llm.Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	c.logger.Debug("Sending message", "max_tokens", req.MaxTokens, "prompt_length", len(req.Prompt))

	msg, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			c.logger.Warn("Claude API returned error status", "status", apiErr.StatusCode)
			return "", &llm.StatusError{Provider: providerName, StatusCode: apiErr.StatusCode, Body: apiErr.RawJSON()}
		}
		return "", &llm.TransportError{Provider: providerName, Err: err}
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", llm.ErrEmptyResponse
	}

	c.logger.Debug("Received message",
		"stop_reason", string(msg.StopReason),
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens,
	)
	return b.String(), nil
}

// normalizeBaseURL は "/v1/messages" まで含むURLを受け付けるためにSDK向けのベースURLへ変換する
func normalizeBaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return DefaultBaseURL
	}
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, "/v1/messages")
	u = strings.TrimSuffix(u, "/v1")
	return u
}
