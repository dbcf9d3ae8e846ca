// Package llm はトリアージで使うLLMバックエンドの共通インターフェースを提供する。
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/douhashi/triage/internal/utils"
)

// Request はLLMへの1回の問い合わせ
type Request struct {
	Prompt      string
	System      string
	MaxTokens   int
	Temperature float64
}

// Completer はプロンプトを送り応答テキストを返すバックエンド
type Completer interface {
	// Name はログやメトリクスに使うバックエンド名を返す
	Name() string
	Complete(ctx context.Context, req *Request) (string, error)
}

// TransportError はリクエストがサーバーに届かなかった、またはタイムアウトした場合のエラー
type TransportError struct {
	Provider string
	Err      error
}

// Error implements error
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

// Unwrap はラップされたエラーを返す
func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError はAPIが2xx以外を返した場合のエラー
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

// Error implements error
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, utils.Truncate(e.Body, 200))
}

// ErrEmptyResponse は応答にテキストが含まれない場合のエラー
var ErrEmptyResponse = errors.New("empty response from model")

// IsTransport はエラーが通信エラーかどうかを判定する
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode はエラーがStatusErrorの場合にHTTPステータスを返す
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}
