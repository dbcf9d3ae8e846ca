// Package github はGitHub Issues APIを使うトリアージ用トラッカーの実装。
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v50/github"
	"golang.org/x/oauth2"

	"github.com/douhashi/triage/internal/logger"
	"github.com/douhashi/triage/internal/triage"
	"github.com/douhashi/triage/internal/utils"
)

// DefaultAPIURL はgithub.comのREST APIのURL
const DefaultAPIURL = "https://api.github.com/"

// maxPerPage はGitHub APIの1ページあたりの最大件数
const maxPerPage = 100

// Options はClientの作成オプション
type Options struct {
	Token string
	// Repo は owner/name またはリポジトリのURL
	Repo    string
	APIURL  string
	Timeout time.Duration
	Logger  logger.Logger
	// Transport はテストで差し替える場合に設定する
	Transport http.RoundTripper
}

// Client はtriage.Trackerを実装するGitHub APIクライアント
type Client struct {
	github *github.Client
	owner  string
	repo   string
	logger logger.Logger
}

// NewClient は新しいGitHub APIクライアントを作成する
func NewClient(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, errors.New("GitHub token is required")
	}
	info, err := utils.ParseGitHubURL(opts.Repo)
	if err != nil {
		return nil, fmt.Errorf("invalid repository: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
		Transport: &loggingRoundTripper{base: base, logger: log},
	})
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: opts.Token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = opts.Timeout

	gh := github.NewClient(tc)
	if opts.APIURL != "" {
		baseURL, err := apiBaseURL(opts.APIURL)
		if err != nil {
			return nil, err
		}
		gh.BaseURL = baseURL
	}

	return &Client{
		github: gh,
		owner:  info.Owner,
		repo:   info.Repo,
		logger: log.WithFields("repo", info.FullName()),
	}, nil
}

// apiBaseURL はgo-githubが要求する末尾スラッシュ付きのURLに変換する
func apiBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid GitHub API URL: %q", raw)
	}
	return u, nil
}

// Repository は対象リポジトリを owner/name 形式で返す
func (c *Client) Repository() string {
	return c.owner + "/" + c.repo
}

// ListOpenIssues はオープンなIssueを作成日時の新しい順に最大max件返す。
// プルリクエストは除外する。
func (c *Client) ListOpenIssues(ctx context.Context, max int) ([]triage.Issue, error) {
	if max <= 0 {
		return []triage.Issue{}, nil
	}

	perPage := max
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	opts := &github.IssueListByRepoOptions{
		State:     "open",
		Sort:      "created",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	issues := make([]triage.Issue, 0, max)
	for {
		page, resp, err := c.github.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues: %w", ClassifyError(err))
		}
		for _, gi := range page {
			if gi.IsPullRequest() {
				continue
			}
			issues = append(issues, convertIssue(gi))
			if len(issues) == max {
				break
			}
		}
		if len(issues) >= max || resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.logger.Info("Fetched open issues", "count", len(issues))
	return issues, nil
}

// AddLabels はIssueにラベルを追加する
func (c *Client) AddLabels(ctx context.Context, number int, labels []string) error {
	_, _, err := c.github.Issues.AddLabelsToIssue(ctx, c.owner, c.repo, number, labels)
	if err != nil {
		return ClassifyError(err)
	}
	c.logger.Info("Added labels", "issue", number, "labels", strings.Join(labels, ","))
	return nil
}

// SetAssignee はIssueの担当者を置き換える
func (c *Client) SetAssignee(ctx context.Context, number int, assignee string) error {
	_, _, err := c.github.Issues.Edit(ctx, c.owner, c.repo, number, &github.IssueRequest{
		Assignees: &[]string{assignee},
	})
	if err != nil {
		return ClassifyError(err)
	}
	c.logger.Info("Assigned issue", "issue", number, "assignee", assignee)
	return nil
}

// AddComment はIssueにコメントを投稿する
func (c *Client) AddComment(ctx context.Context, number int, body string) error {
	_, _, err := c.github.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return ClassifyError(err)
	}
	c.logger.Info("Added comment", "issue", number)
	return nil
}

// convertIssue はgo-githubのIssueをトリアージ用のIssueに変換する
func convertIssue(gi *github.Issue) triage.Issue {
	issue := triage.Issue{
		Number:    gi.GetNumber(),
		Title:     gi.GetTitle(),
		Body:      gi.Body,
		State:     gi.GetState(),
		Labels:    make([]string, 0, len(gi.Labels)),
		CreatedAt: asTime(gi.GetCreatedAt()),
		UpdatedAt: asTime(gi.GetUpdatedAt()),
		HTMLURL:   gi.GetHTMLURL(),
	}
	for _, label := range gi.Labels {
		issue.Labels = append(issue.Labels, label.GetName())
	}
	if login := gi.GetAssignee().GetLogin(); login != "" {
		issue.Assignee = &login
	}
	return issue
}

// asTime はgo-githubのタイムスタンプをtime.Timeに変換する
func asTime(v interface{}) time.Time {
	switch t := v.(type) {
	case github.Timestamp:
		return t.Time
	case time.Time:
		return t
	default:
		return time.Time{}
	}
}

var _ triage.Tracker = (*Client)(nil)
