package builders

import (
	"time"

	"github.com/douhashi/triage/internal/config"
)

// ConfigBuilder builds config.Config instances that pass Validate by default
type ConfigBuilder struct {
	cfg *config.Config
}

// NewConfigBuilder creates a builder from the default config plus required credentials
func NewConfigBuilder() *ConfigBuilder {
	cfg := config.NewConfig()
	cfg.GitHub.Token = "ghp_test_token_1234567890"
	cfg.GitHub.Repo = "acme/widgets"
	cfg.AI.Claude.APIKey = "sk-ant-test-key-1234567890"
	return &ConfigBuilder{cfg: cfg}
}

// WithRepo sets the repository reference
func (b *ConfigBuilder) WithRepo(repo string) *ConfigBuilder {
	b.cfg.GitHub.Repo = repo
	return b
}

// WithGitHubAPIURL sets the GitHub API base URL
func (b *ConfigBuilder) WithGitHubAPIURL(url string) *ConfigBuilder {
	b.cfg.GitHub.APIURL = url
	return b
}

// WithEngine sets the AI engine
func (b *ConfigBuilder) WithEngine(engine string) *ConfigBuilder {
	b.cfg.AI.Engine = engine
	if engine == config.EngineOpenAI && b.cfg.AI.OpenAI.APIKey == "" {
		b.cfg.AI.OpenAI.APIKey = "sk-test-openai-1234567890"
	}
	return b
}

// WithDryRun sets the dry-run flag
func (b *ConfigBuilder) WithDryRun(dryRun bool) *ConfigBuilder {
	b.cfg.Triage.DryRun = dryRun
	return b
}

// WithMaxIssues sets the per-run issue cap
func (b *ConfigBuilder) WithMaxIssues(n int) *ConfigBuilder {
	b.cfg.Triage.MaxIssues = n
	return b
}

// WithAssigneePolicy sets the assignee policy
func (b *ConfigBuilder) WithAssigneePolicy(policy string) *ConfigBuilder {
	b.cfg.Triage.AssigneePolicy = policy
	return b
}

// WithTeam sets all team members
func (b *ConfigBuilder) WithTeam(members ...string) *ConfigBuilder {
	b.cfg.Team.Members = append([]string{}, members...)
	return b
}

// WithTimeout sets the HTTP timeout
func (b *ConfigBuilder) WithTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.HTTP.Timeout = d
	return b
}

// Build returns the config
func (b *ConfigBuilder) Build() *config.Config {
	return b.cfg
}
