package triage

import (
	"fmt"
	"strings"

	"github.com/douhashi/triage/internal/utils"
)

// ActionKind はアクションの種類を表す型
type ActionKind string

const (
	ActionKindLabel   ActionKind = "label"
	ActionKindAssign  ActionKind = "assign"
	ActionKindComment ActionKind = "comment"
)

// ActionKinds は有効なアクション種別の一覧（サマリーの表示順）
var ActionKinds = []ActionKind{ActionKindLabel, ActionKindAssign, ActionKindComment}

// ParseActionKind は文字列をアクション種別に変換する。
// レポートなど外部表現から復元する境界でのみ使う。
func ParseActionKind(s string) (ActionKind, error) {
	for _, k := range ActionKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown action kind: %q", s)
}

// 実行結果として記録する定型文
const (
	OutcomeSuccess     = "success"
	OutcomeSimulated   = "simulated"
	OutcomeUnknownKind = "unknown action kind"
)

// Payload はアクション種別ごとのデータ。
// LabelPayload, AssignPayload, CommentPayload のいずれか。
type Payload interface {
	Kind() ActionKind
	Describe() string
	sealed()
}

// LabelPayload はラベル追加アクションのデータ
type LabelPayload struct {
	Labels []string
}

// Kind implements Payload
func (LabelPayload) Kind() ActionKind { return ActionKindLabel }

// Describe implements Payload
func (p LabelPayload) Describe() string {
	return fmt.Sprintf("add labels [%s]", strings.Join(p.Labels, ", "))
}

func (LabelPayload) sealed() {}

// AssignPayload は担当者設定アクションのデータ
type AssignPayload struct {
	Assignee string
}

// Kind implements Payload
func (AssignPayload) Kind() ActionKind { return ActionKindAssign }

// Describe implements Payload
func (p AssignPayload) Describe() string {
	return "assign to " + p.Assignee
}

func (AssignPayload) sealed() {}

// CommentPayload はコメント投稿アクションのデータ
type CommentPayload struct {
	Body string
}

// Kind implements Payload
func (CommentPayload) Kind() ActionKind { return ActionKindComment }

// Describe implements Payload
func (p CommentPayload) Describe() string {
	const previewLen = 100
	return "comment: " + utils.Truncate(p.Body, previewLen)
}

func (CommentPayload) sealed() {}

// Action はトラッカーに対する1件の書き込み操作
type Action struct {
	IssueNumber int
	Payload     Payload
	DryRun      bool
	Executed    bool
	Outcome     string

	recorded bool
}

// NewAction は新しいActionを作成する
func NewAction(issueNumber int, payload Payload, dryRun bool) *Action {
	return &Action{
		IssueNumber: issueNumber,
		Payload:     payload,
		DryRun:      dryRun,
	}
}

// Kind はアクション種別を返す。Payloadがない場合は空文字列。
func (a *Action) Kind() ActionKind {
	if a.Payload == nil {
		return ""
	}
	return a.Payload.Kind()
}

// Describe はログ出力用の説明を返す
func (a *Action) Describe() string {
	if a.Payload == nil {
		return "<empty action>"
	}
	return a.Payload.Describe()
}

// Recorded は実行結果が記録済みかを返す
func (a *Action) Recorded() bool {
	return a.recorded
}

// record は実行結果を一度だけ記録する。2回目以降は false を返し何もしない。
func (a *Action) record(executed bool, outcome string) bool {
	if a.recorded {
		return false
	}
	a.Executed = executed
	a.Outcome = outcome
	a.recorded = true
	return true
}
