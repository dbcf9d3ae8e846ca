package github

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v50/github"
)

var (
	// 型情報のないエラーメッセージの分類に使う
	rateLimitRegex   = regexp.MustCompile(`(?i)(rate limit|API rate limit exceeded|You have exceeded a secondary rate limit)`)
	notFoundRegex    = regexp.MustCompile(`(?i)(not found|could not resolve to)`)
	authRegex        = regexp.MustCompile(`(?i)(authentication|unauthorized|bad credentials|requires authentication)`)
	networkRegex     = regexp.MustCompile(`(?i)(timeout|connection refused|network|dial tcp|no such host)`)
	serverErrorRegex = regexp.MustCompile(`(?i)(internal server error|server error|502|503|504)`)
	httpStatusRegex  = regexp.MustCompile(`\b([45]\d{2})\b`)
)

// ClassifyError はエラーをGitHubErrorに分類する。
// go-githubの型付きエラーを優先し、それ以外はメッセージから推定する。
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		return err
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		e := &GitHubError{
			Type:        ErrorTypeRateLimit,
			StatusCode:  statusOf(rateErr.Response),
			Message:     rateErr.Message,
			OriginalErr: err,
		}
		if !rateErr.Rate.Reset.Time.IsZero() {
			e.RetryAfter = time.Until(rateErr.Rate.Reset.Time)
		}
		return e
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		e := &GitHubError{
			Type:        ErrorTypeRateLimit,
			StatusCode:  statusOf(abuseErr.Response),
			Message:     abuseErr.Message,
			OriginalErr: err,
		}
		if abuseErr.RetryAfter != nil {
			e.RetryAfter = *abuseErr.RetryAfter
		}
		return e
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		status := statusOf(respErr.Response)
		return &GitHubError{
			Type:        typeForStatus(status),
			StatusCode:  status,
			Message:     responseMessage(respErr),
			OriginalErr: err,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &GitHubError{Type: ErrorTypeNetworkTimeout, Message: err.Error(), OriginalErr: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &GitHubError{Type: ErrorTypeNetworkTimeout, Message: err.Error(), OriginalErr: err}
	}

	return ParseErrorMessage(err.Error(), err)
}

// ParseErrorMessage はエラーメッセージからGitHubErrorを推定する
func ParseErrorMessage(msg string, err error) *GitHubError {
	ghErr := &GitHubError{
		Message:     strings.TrimSpace(msg),
		OriginalErr: err,
	}

	if matches := httpStatusRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if statusCode, convErr := strconv.Atoi(matches[1]); convErr == nil {
			ghErr.StatusCode = statusCode
		}
	}

	switch {
	case rateLimitRegex.MatchString(msg):
		ghErr.Type = ErrorTypeRateLimit
	case authRegex.MatchString(msg):
		ghErr.Type = ErrorTypeAuthentication
	case notFoundRegex.MatchString(msg):
		ghErr.Type = ErrorTypeNotFound
	case networkRegex.MatchString(msg):
		ghErr.Type = ErrorTypeNetworkTimeout
	case serverErrorRegex.MatchString(msg):
		ghErr.Type = ErrorTypeServerError
	default:
		ghErr.Type = typeForStatus(ghErr.StatusCode)
	}

	return ghErr
}

func typeForStatus(status int) GitHubErrorType {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorTypeAuthentication
	case status == http.StatusNotFound || status == http.StatusGone:
		return ErrorTypeNotFound
	case status == http.StatusUnprocessableEntity:
		return ErrorTypeValidation
	case status == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case status >= 500 && status < 600:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

// responseMessage はErrorResponseのメッセージと詳細をまとめる
func responseMessage(e *github.ErrorResponse) string {
	parts := []string{e.Message}
	for _, detail := range e.Errors {
		switch {
		case detail.Message != "":
			parts = append(parts, detail.Message)
		case detail.Field != "":
			parts = append(parts, detail.Field+" "+detail.Code)
		}
	}
	return strings.Join(parts, ": ")
}
