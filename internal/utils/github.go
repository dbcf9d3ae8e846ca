package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// GitHubRepoInfo はGitHubリポジトリの情報を保持する構造体
type GitHubRepoInfo struct {
	Owner string
	Repo  string
}

// FullName は owner/repo 形式の文字列を返す
func (r *GitHubRepoInfo) FullName() string {
	return r.Owner + "/" + r.Repo
}

var (
	shortRepoPattern = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
	// GitHub Enterprise を考慮してホスト名は固定しない
	httpsRepoPattern = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/]+?)(?:\.git)?/?$`)
	sshRepoPattern   = regexp.MustCompile(`^(?:ssh://)?git@[^:/]+[:/]([^/]+)/([^/]+?)(?:\.git)?$`)
)

// ParseGitHubURL はGitHubのURLまたは owner/repo 形式の文字列からowner/repo情報を抽出する
// 以下の形式に対応:
// - owner/repo
// - https://github.com/owner/repo.git
// - https://github.com/owner/repo
// - git@github.com:owner/repo.git
// - ssh://git@github.com/owner/repo.git
func ParseGitHubURL(url string) (*GitHubRepoInfo, error) {
	url = strings.TrimSpace(url)

	for _, pattern := range []*regexp.Regexp{shortRepoPattern, httpsRepoPattern, sshRepoPattern} {
		if matches := pattern.FindStringSubmatch(url); len(matches) == 3 {
			return &GitHubRepoInfo{
				Owner: matches[1],
				Repo:  strings.TrimSuffix(matches[2], ".git"),
			}, nil
		}
	}

	return nil, fmt.Errorf("invalid GitHub repository format: %q", url)
}
