package triage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseErrorKind はパース失敗の分類
type ParseErrorKind string

const (
	ParseErrorMalformedJSON ParseErrorKind = "malformed_json"
	ParseErrorMissingField  ParseErrorKind = "missing_field"
	ParseErrorInvalidEnum   ParseErrorKind = "invalid_enum"
	ParseErrorInvalidField  ParseErrorKind = "invalid_field"
)

const (
	// DefaultConfidence はconfidence_scoreがない場合の値
	DefaultConfidence = 0.5
	// DefaultReasoning はreasoningがない場合の値
	DefaultReasoning = "No reasoning provided"
)

// ParseError はモデル応答がレスポンス形式に合わない場合のエラー
type ParseError struct {
	Kind    ParseErrorKind
	Field   string
	Message string
	// Raw はMalformedJSONの場合に受け取った応答をそのまま保持する
	Raw string
	Err error
}

// Error implements error
func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap はラップされたエラーを返す
func (e *ParseError) Unwrap() error {
	return e.Err
}

// StripCodeFence は応答を囲むMarkdownのコードフェンスを取り除く。
// 開始フェンスの言語タグ(```json, ```JSON, ```javascript など)は種類を問わず捨てる。
// フェンスがない文字列に適用しても前後の空白以外は変わらない。
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		if tag, body, found := strings.Cut(rest, "\n"); found && !strings.ContainsAny(tag, "{[") {
			rest = body
		} else {
			rest = strings.TrimLeftFunc(rest, unicode.IsLetter)
		}
		s = rest
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseRecommendation はモデルの応答をRecommendationに変換する
func ParseRecommendation(raw string) (*Recommendation, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &fields); err != nil {
		return nil, &ParseError{
			Kind:    ParseErrorMalformedJSON,
			Message: "response is not a single JSON object",
			Raw:     raw,
			Err:     err,
		}
	}
	// "null" はエラーにならずnilのmapになる
	if fields == nil {
		return nil, &ParseError{
			Kind:    ParseErrorMalformedJSON,
			Message: "response is not a single JSON object",
			Raw:     raw,
		}
	}

	rec := &Recommendation{
		SuggestedLabels: []string{},
		ConfidenceScore: DefaultConfidence,
		Reasoning:       DefaultReasoning,
	}

	priority, err := requiredString(fields, "priority")
	if err != nil {
		return nil, err
	}
	if rec.Priority, err = ParsePriority(priority); err != nil {
		return nil, &ParseError{Kind: ParseErrorInvalidEnum, Field: "priority", Message: err.Error(), Err: err}
	}

	component, err := requiredString(fields, "component")
	if err != nil {
		return nil, err
	}
	if rec.Component, err = ParseComponent(component); err != nil {
		return nil, &ParseError{Kind: ParseErrorInvalidEnum, Field: "component", Message: err.Error(), Err: err}
	}

	if value, ok := present(fields, "suggested_labels"); ok {
		var labels []string
		if err := json.Unmarshal(value, &labels); err != nil {
			return nil, invalidField("suggested_labels", "must be an array of strings", err)
		}
		for _, label := range labels {
			if label = strings.TrimSpace(label); label != "" {
				rec.SuggestedLabels = append(rec.SuggestedLabels, label)
			}
		}
	}

	if value, ok := present(fields, "suggested_assignee"); ok {
		var assignee string
		if err := json.Unmarshal(value, &assignee); err != nil {
			return nil, invalidField("suggested_assignee", "must be a string or null", err)
		}
		assignee = strings.TrimPrefix(strings.TrimSpace(assignee), "@")
		// モデルが文字列の "null" を返すことがある
		if assignee != "" && !strings.EqualFold(assignee, "null") {
			rec.SuggestedAssignee = &assignee
		}
	}

	if value, ok := present(fields, "confidence_score"); ok {
		score, err := parseConfidence(value)
		if err != nil {
			return nil, err
		}
		rec.ConfidenceScore = score
	}

	if value, ok := present(fields, "reasoning"); ok {
		var reasoning string
		if err := json.Unmarshal(value, &reasoning); err != nil {
			return nil, invalidField("reasoning", "must be a string", err)
		}
		if strings.TrimSpace(reasoning) != "" {
			rec.Reasoning = reasoning
		}
	}

	return rec, nil
}

// present はキーが存在しnullでない場合に値を返す
func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	value, ok := fields[key]
	if !ok || string(value) == "null" {
		return nil, false
	}
	return value, true
}

func requiredString(fields map[string]json.RawMessage, key string) (string, error) {
	value, ok := present(fields, key)
	if !ok {
		return "", &ParseError{Kind: ParseErrorMissingField, Field: key, Message: "required field is missing"}
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", invalidField(key, "must be a string", err)
	}
	return s, nil
}

func parseConfidence(value json.RawMessage) (float64, error) {
	var score float64
	if err := json.Unmarshal(value, &score); err != nil {
		// "0.8" のような数値文字列は受け付ける
		var s string
		if json.Unmarshal(value, &s) != nil {
			return 0, invalidField("confidence_score", "must be a number", err)
		}
		parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return 0, invalidField("confidence_score", fmt.Sprintf("%q is not a number", s), perr)
		}
		score = parsed
	}
	if math.IsNaN(score) || score < 0 || score > 1 {
		return 0, invalidField("confidence_score", fmt.Sprintf("%v is outside [0, 1]", score), nil)
	}
	return score, nil
}

func invalidField(field, message string, err error) *ParseError {
	return &ParseError{Kind: ParseErrorInvalidField, Field: field, Message: message, Err: err}
}
