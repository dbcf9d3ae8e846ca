package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v50/github"

	"github.com/douhashi/triage/internal/triage"
)

// LabelDefinition defines a GitHub label with its properties
type LabelDefinition struct {
	Name        string
	Color       string
	Description string
}

// TaxonomyLabels は優先度とコンポーネントのラベル定義を返す。
// "unknown" はラベルとして付与しないので含まない。
func TaxonomyLabels() []LabelDefinition {
	return []LabelDefinition{
		{Name: string(triage.PriorityP0), Color: "b60205", Description: "Critical: production down, security vulnerability, data loss"},
		{Name: string(triage.PriorityP1), Color: "d93f0b", Description: "High: major feature broken, significant user impact"},
		{Name: string(triage.PriorityP2), Color: "fbca04", Description: "Medium: minor feature issue, moderate user impact"},
		{Name: string(triage.PriorityP3), Color: "0e8a16", Description: "Low: enhancement, documentation, nice-to-have"},
		{Name: string(triage.ComponentFrontend), Color: "1d76db", Description: "UI/UX, client-side bugs, styling"},
		{Name: string(triage.ComponentBackend), Color: "5319e7", Description: "API, server-side logic, database"},
		{Name: string(triage.ComponentInfra), Color: "006b75", Description: "DevOps, deployment, infrastructure, CI/CD"},
		{Name: string(triage.ComponentDocs), Color: "0075ca", Description: "Documentation"},
		{Name: string(triage.ComponentTesting), Color: "bfdadc", Description: "Tests"},
	}
}

// MissingLabels はリポジトリに存在しないラベル定義を返す。
// GitHubのラベル名は大文字小文字を区別しないため、比較も同様に行う。
func (c *Client) MissingLabels(ctx context.Context, defs []LabelDefinition) ([]LabelDefinition, error) {
	existing := make(map[string]bool)
	opts := &github.ListOptions{PerPage: maxPerPage}
	for {
		labels, resp, err := c.github.Issues.ListLabels(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repository labels: %w", ClassifyError(err))
		}
		for _, label := range labels {
			existing[strings.ToLower(label.GetName())] = true
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	var missing []LabelDefinition
	for _, def := range defs {
		if !existing[strings.ToLower(def.Name)] {
			missing = append(missing, def)
		}
	}
	return missing, nil
}

// EnsureLabels は不足しているラベルを作成し、作成したラベル名を返す。
// dryRunの場合は作成せずに不足しているラベル名だけを返す。
func (c *Client) EnsureLabels(ctx context.Context, defs []LabelDefinition, dryRun bool) ([]string, error) {
	missing, err := c.MissingLabels(ctx, defs)
	if err != nil {
		return nil, err
	}

	created := make([]string, 0, len(missing))
	for _, def := range missing {
		if dryRun {
			c.logger.Info("[DRY RUN] Would create label", "label", def.Name, "color", def.Color)
			created = append(created, def.Name)
			continue
		}
		_, _, err := c.github.Issues.CreateLabel(ctx, c.owner, c.repo, &github.Label{
			Name:        github.String(def.Name),
			Color:       github.String(def.Color),
			Description: github.String(def.Description),
		})
		if err != nil {
			return created, fmt.Errorf("failed to create label %s: %w", def.Name, ClassifyError(err))
		}
		c.logger.Info("Created label", "label", def.Name)
		created = append(created, def.Name)
	}
	return created, nil
}
