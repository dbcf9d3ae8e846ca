// Package report はトリアージセッションの結果をファイルに書き出す。
// 拡張子が .json ならJSON、.yaml/.yml ならYAMLで出力する。
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/douhashi/triage/internal/triage"
)

// Format はレポートの出力形式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Document はセッションレポートのファイル表現
type Document struct {
	SessionID       string         `yaml:"session_id" json:"session_id"`
	Repository      string         `yaml:"repository" json:"repository"`
	StartedAt       time.Time      `yaml:"started_at" json:"started_at"`
	DryRun          bool           `yaml:"dry_run" json:"dry_run"`
	IssuesProcessed int            `yaml:"issues_processed" json:"issues_processed"`
	Totals          Totals         `yaml:"totals" json:"totals"`
	Actions         []ActionRecord `yaml:"actions" json:"actions"`
	Errors          []string       `yaml:"errors" json:"errors"`
}

// Totals はアクションの集計
type Totals struct {
	Actions    int            `yaml:"actions" json:"actions"`
	Successful int            `yaml:"successful" json:"successful"`
	ByKind     map[string]int `yaml:"by_kind" json:"by_kind"`
}

// ActionRecord は1件のアクションとその実行結果
type ActionRecord struct {
	IssueNumber int      `yaml:"issue_number" json:"issue_number"`
	Kind        string   `yaml:"kind" json:"kind"`
	Labels      []string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Assignee    string   `yaml:"assignee,omitempty" json:"assignee,omitempty"`
	Comment     string   `yaml:"comment,omitempty" json:"comment,omitempty"`
	DryRun      bool     `yaml:"dry_run" json:"dry_run"`
	Executed    bool     `yaml:"executed" json:"executed"`
	Outcome     string   `yaml:"outcome" json:"outcome"`
}

// FromSession はセッションからレポートを組み立てる
func FromSession(session *triage.Session, repository string) *Document {
	doc := &Document{
		SessionID:       session.ID,
		Repository:      repository,
		StartedAt:       session.StartedAt,
		DryRun:          session.DryRun,
		IssuesProcessed: session.IssuesProcessed,
		Totals: Totals{
			Actions:    len(session.Actions),
			Successful: session.SuccessfulActions(),
			ByKind:     make(map[string]int),
		},
		Actions: make([]ActionRecord, 0, len(session.Actions)),
		Errors:  append([]string{}, session.Errors...),
	}

	for _, a := range session.Actions {
		rec := ActionRecord{
			IssueNumber: a.IssueNumber,
			Kind:        string(a.Kind()),
			DryRun:      a.DryRun,
			Executed:    a.Executed,
			Outcome:     a.Outcome,
		}
		switch p := a.Payload.(type) {
		case triage.LabelPayload:
			rec.Labels = p.Labels
		case triage.AssignPayload:
			rec.Assignee = p.Assignee
		case triage.CommentPayload:
			rec.Comment = p.Body
		}
		if rec.Kind != "" {
			doc.Totals.ByKind[rec.Kind]++
		}
		doc.Actions = append(doc.Actions, rec)
	}
	return doc
}

// FormatFor はファイルの拡張子から出力形式を決める
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported report format %q (use .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// Marshal はレポートを指定形式にエンコードする
func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

// Write はレポートをファイルに書き出す。親ディレクトリがなければ作成する。
func Write(path string, doc *Document) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Marshal(doc, format)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Read はレポートファイルを読み込む。未知のアクション種別はエラーにする。
func Read(path string) (*Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	doc := &Document{}
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, doc)
	case FormatJSON:
		err = json.Unmarshal(data, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}

	for i, rec := range doc.Actions {
		if _, err := triage.ParseActionKind(rec.Kind); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
	}
	return doc, nil
}
