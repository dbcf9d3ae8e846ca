package github

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/douhashi/triage/internal/logger"
	"github.com/douhashi/triage/internal/utils"
)

// bodyPreviewLen はデバッグログに載せるレスポンスボディの長さ
const bodyPreviewLen = 200

// loggingRoundTripper はGitHub APIへのリクエストとレスポンスをログ出力するラウンドトリッパー
type loggingRoundTripper struct {
	base   http.RoundTripper
	logger logger.Logger
}

// RoundTrip implements http.RoundTripper
func (rt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	fields := []interface{}{
		"method", req.Method,
		"path", req.URL.Path,
	}
	if auth := req.Header.Get("Authorization"); auth != "" {
		fields = append(fields, "authorization", maskAuthHeader(auth))
	}
	rt.logger.Debug("GitHub API request", fields...)

	resp, err := rt.base.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		rt.logger.Error("GitHub API request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return nil, err
	}

	respFields := []interface{}{
		"method", req.Method,
		"path", req.URL.Path,
		"status_code", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	}
	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		respFields = append(respFields, "rate_limit_remaining", remaining)
	}
	// エラー時のみボディを読む。成功時のボディはgo-githubにそのまま渡す
	if resp.StatusCode >= 400 && resp.Body != nil {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))
		if readErr == nil {
			respFields = append(respFields, "body_preview", preview(string(body)))
		}
		rt.logger.Warn("GitHub API error response", respFields...)
		return resp, nil
	}

	rt.logger.Debug("GitHub API response", respFields...)
	return resp, nil
}

// maskAuthHeader はAuthorizationヘッダーの値をマスキングする
func maskAuthHeader(auth string) string {
	if scheme, _, ok := strings.Cut(auth, " "); ok {
		return scheme + " [REDACTED]"
	}
	return "[REDACTED]"
}

func preview(s string) string {
	return utils.Truncate(s, bodyPreviewLen)
}
