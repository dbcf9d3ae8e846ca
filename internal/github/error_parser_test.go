package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v50/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	t.Run("正常系: nilはnilのまま", func(t *testing.T) {
		assert.NoError(t, ClassifyError(nil))
	})

	t.Run("正常系: 分類済みのエラーはそのまま返す", func(t *testing.T) {
		original := &GitHubError{Type: ErrorTypeValidation, StatusCode: 422}
		wrapped := fmt.Errorf("add labels: %w", original)

		assert.Same(t, wrapped, ClassifyError(wrapped))
	})

	t.Run("正常系: ErrorResponseをステータスコードで分類する", func(t *testing.T) {
		tests := []struct {
			status   int
			expected GitHubErrorType
		}{
			{status: http.StatusUnauthorized, expected: ErrorTypeAuthentication},
			{status: http.StatusForbidden, expected: ErrorTypeAuthentication},
			{status: http.StatusNotFound, expected: ErrorTypeNotFound},
			{status: http.StatusGone, expected: ErrorTypeNotFound},
			{status: http.StatusUnprocessableEntity, expected: ErrorTypeValidation},
			{status: http.StatusTooManyRequests, expected: ErrorTypeRateLimit},
			{status: http.StatusBadGateway, expected: ErrorTypeServerError},
			{status: http.StatusTeapot, expected: ErrorTypeUnknown},
		}
		for _, tt := range tests {
			err := &github.ErrorResponse{
				Response: &http.Response{StatusCode: tt.status},
				Message:  "failed",
			}

			var ghErr *GitHubError
			require.ErrorAs(t, ClassifyError(err), &ghErr)
			assert.Equal(t, tt.expected, ghErr.Type, "status %d", tt.status)
			assert.Equal(t, tt.status, ghErr.StatusCode)
		}
	})

	t.Run("正常系: 422の詳細をメッセージに含める", func(t *testing.T) {
		err := &github.ErrorResponse{
			Response: &http.Response{StatusCode: http.StatusUnprocessableEntity},
			Message:  "Validation Failed",
			Errors: []github.Error{
				{Resource: "Issue", Field: "assignees", Code: "invalid"},
			},
		}

		var ghErr *GitHubError
		require.ErrorAs(t, ClassifyError(err), &ghErr)
		assert.Equal(t, "Validation Failed: assignees invalid", ghErr.Message)
		assert.Same(t, err, ghErr.Unwrap())
	})

	t.Run("正常系: AbuseRateLimitErrorはRetryAfterを引き継ぐ", func(t *testing.T) {
		retryAfter := 30 * time.Second
		err := &github.AbuseRateLimitError{
			Response:   &http.Response{StatusCode: http.StatusForbidden},
			Message:    "You have exceeded a secondary rate limit",
			RetryAfter: &retryAfter,
		}

		var ghErr *GitHubError
		require.ErrorAs(t, ClassifyError(err), &ghErr)
		assert.Equal(t, ErrorTypeRateLimit, ghErr.Type)
		assert.Equal(t, retryAfter, ghErr.RetryAfter)
	})

	t.Run("正常系: タイムアウトはNetworkTimeout", func(t *testing.T) {
		err := fmt.Errorf("request: %w", context.DeadlineExceeded)

		var ghErr *GitHubError
		require.ErrorAs(t, ClassifyError(err), &ghErr)
		assert.Equal(t, ErrorTypeNetworkTimeout, ghErr.Type)
	})

	t.Run("正常系: 型情報がない場合はメッセージから推定する", func(t *testing.T) {
		var ghErr *GitHubError
		require.ErrorAs(t, ClassifyError(errors.New("Bad credentials")), &ghErr)
		assert.Equal(t, ErrorTypeAuthentication, ghErr.Type)
	})
}

func TestParseErrorMessage(t *testing.T) {
	tests := []struct {
		name           string
		msg            string
		expectedType   GitHubErrorType
		expectedStatus int
	}{
		{
			name:           "rate limit",
			msg:            "API rate limit exceeded for user ID 1",
			expectedType:   ErrorTypeRateLimit,
			expectedStatus: 0,
		},
		{
			name:           "not found",
			msg:            "GET https://api.github.com/repos/acme/widgets: 404 Not Found",
			expectedType:   ErrorTypeNotFound,
			expectedStatus: 404,
		},
		{
			name:           "authentication",
			msg:            "401 Requires authentication",
			expectedType:   ErrorTypeAuthentication,
			expectedStatus: 401,
		},
		{
			name:           "network",
			msg:            "dial tcp: lookup api.github.com: no such host",
			expectedType:   ErrorTypeNetworkTimeout,
			expectedStatus: 0,
		},
		{
			name:           "server error",
			msg:            "503 Service Unavailable",
			expectedType:   ErrorTypeServerError,
			expectedStatus: 503,
		},
		{
			name:           "status only",
			msg:            "unexpected status 422",
			expectedType:   ErrorTypeValidation,
			expectedStatus: 422,
		},
		{
			name:           "unknown",
			msg:            "something odd happened",
			expectedType:   ErrorTypeUnknown,
			expectedStatus: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseErrorMessage(tt.msg, nil)
			assert.Equal(t, tt.expectedType, got.Type)
			assert.Equal(t, tt.expectedStatus, got.StatusCode)
			assert.Equal(t, tt.msg, got.Message)
		})
	}
}
