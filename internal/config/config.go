package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/douhashi/triage/internal/utils"
	"github.com/spf13/viper"
)

const (
	// EngineClaude はAnthropic Messages APIを使うバックエンド
	EngineClaude = "claude"
	// EngineOpenAI はOpenAI chat/completions APIを使うバックエンド
	EngineOpenAI = "openai"

	// AssigneePolicyPassThrough はAIの提案をそのまま担当者にする
	AssigneePolicyPassThrough = "pass-through"
	// AssigneePolicyValidate はチームに所属するユーザーのみ担当者にする
	AssigneePolicyValidate = "validate"
)

// Config はアプリケーション全体の設定
type Config struct {
	GitHub GitHubConfig `mapstructure:"github"`
	AI     AIConfig     `mapstructure:"ai"`
	Triage TriageConfig `mapstructure:"triage"`
	Team   TeamConfig   `mapstructure:"team"`
	HTTP   HTTPConfig   `mapstructure:"http"`
}

// GitHubConfig はGitHub関連の設定
type GitHubConfig struct {
	Token  string `mapstructure:"token"`
	Repo   string `mapstructure:"repo"`
	APIURL string `mapstructure:"api_url"`
}

// AIConfig は解析に使うLLMバックエンドの設定
type AIConfig struct {
	Engine      string         `mapstructure:"engine"`
	MaxTokens   int            `mapstructure:"max_tokens"`
	Temperature float64        `mapstructure:"temperature"`
	Claude      ProviderConfig `mapstructure:"claude"`
	OpenAI      ProviderConfig `mapstructure:"openai"`
}

// ProviderConfig はLLMプロバイダーごとの接続設定
type ProviderConfig struct {
	APIKey string `mapstructure:"api_key"`
	APIURL string `mapstructure:"api_url"`
	Model  string `mapstructure:"model"`
}

// TriageConfig はトリアージの動作ポリシー
type TriageConfig struct {
	MaxIssues      int    `mapstructure:"max_issues"`
	DryRun         bool   `mapstructure:"dry_run"`
	AutoAssign     bool   `mapstructure:"auto_assign"`
	AutoLabel      bool   `mapstructure:"auto_label"`
	AssigneePolicy string `mapstructure:"assignee_policy"`
	// AssigneeFallback はvalidateで却下された場合にコンポーネント担当チームへ割り当てる
	AssigneeFallback bool `mapstructure:"assignee_fallback"`
}

// TeamConfig はプロンプトと担当者検証に使うチーム構成
type TeamConfig struct {
	Members  []string `mapstructure:"members"`
	Frontend []string `mapstructure:"frontend"`
	Backend  []string `mapstructure:"backend"`
	Infra    []string `mapstructure:"infra"`
}

// HTTPConfig は外部API呼び出しの設定
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// 設定キーと環境変数の対応
var envBindings = map[string][]string{
	"github.token":             {"GITHUB_TOKEN", "TRIAGE_GITHUB_TOKEN"},
	"github.repo":              {"GITHUB_REPO", "TRIAGE_GITHUB_REPO"},
	"github.api_url":           {"GITHUB_API_URL"},
	"ai.engine":                {"AI_ENGINE"},
	"ai.max_tokens":            {"AI_MAX_TOKENS"},
	"ai.temperature":           {"AI_TEMPERATURE"},
	"ai.claude.api_key":        {"CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	"ai.claude.api_url":        {"CLAUDE_API_URL"},
	"ai.claude.model":          {"CLAUDE_MODEL"},
	"ai.openai.api_key":        {"OPENAI_API_KEY"},
	"ai.openai.api_url":        {"OPENAI_API_URL"},
	"ai.openai.model":          {"OPENAI_MODEL"},
	"triage.max_issues":        {"MAX_ISSUES_PER_RUN"},
	"triage.dry_run":           {"DRY_RUN_MODE"},
	"triage.auto_assign":       {"AUTO_ASSIGN_ENABLED"},
	"triage.auto_label":        {"AUTO_LABEL_ENABLED"},
	"triage.assignee_policy":   {"ASSIGNEE_POLICY"},
	"triage.assignee_fallback": {"ASSIGNEE_FALLBACK_ENABLED"},
	"team.members":             {"TEAM_MEMBERS"},
	"team.frontend":            {"FRONTEND_TEAM"},
	"team.backend":             {"BACKEND_TEAM"},
	"team.infra":               {"INFRA_TEAM"},
	"http.timeout":             {"HTTP_TIMEOUT"},
}

// NewConfig はデフォルト値を持つ新しいConfigを作成する
func NewConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIURL: "https://api.github.com",
		},
		AI: AIConfig{
			Engine:      EngineClaude,
			MaxTokens:   500,
			Temperature: 0.3,
			Claude: ProviderConfig{
				APIURL: "https://api.anthropic.com",
				Model:  "claude-3-sonnet-20240229",
			},
			OpenAI: ProviderConfig{
				APIURL: "https://api.openai.com/v1",
				Model:  "gpt-4",
			},
		},
		Triage: TriageConfig{
			MaxIssues:      50,
			DryRun:         true,
			AutoAssign:     true,
			AutoLabel:      true,
			AssigneePolicy: AssigneePolicyPassThrough,
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// setDefaults はNewConfigの値をviperのデフォルト値として登録する
func setDefaults(v *viper.Viper) {
	d := NewConfig()
	v.SetDefault("github.api_url", d.GitHub.APIURL)
	v.SetDefault("ai.engine", d.AI.Engine)
	v.SetDefault("ai.max_tokens", d.AI.MaxTokens)
	v.SetDefault("ai.temperature", d.AI.Temperature)
	v.SetDefault("ai.claude.api_url", d.AI.Claude.APIURL)
	v.SetDefault("ai.claude.model", d.AI.Claude.Model)
	v.SetDefault("ai.openai.api_url", d.AI.OpenAI.APIURL)
	v.SetDefault("ai.openai.model", d.AI.OpenAI.Model)
	v.SetDefault("triage.max_issues", d.Triage.MaxIssues)
	v.SetDefault("triage.dry_run", d.Triage.DryRun)
	v.SetDefault("triage.auto_assign", d.Triage.AutoAssign)
	v.SetDefault("triage.auto_label", d.Triage.AutoLabel)
	v.SetDefault("triage.assignee_policy", d.Triage.AssigneePolicy)
	v.SetDefault("triage.assignee_fallback", d.Triage.AssigneeFallback)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
}

// Load は設定ファイルと環境変数から設定を読み込む。
// 優先順位は 環境変数 > 設定ファイル > デフォルト値。
// configPath が空の場合は設定ファイルなしで読み込む。
func (c *Config) Load(configPath string) error {
	v := viper.New()

	setDefaults(v)
	v.SetEnvPrefix("TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	c.normalize()
	return nil
}

// LoadOrDefault は設定ファイルを探索して読み込み、実際に使用したパスを返す。
// 探索順は 明示指定 > カレントディレクトリの .triage.yml/.triage.yaml > DefaultConfigPath。
// どれも存在しない場合は環境変数とデフォルト値だけで読み込み、空文字列を返す。
func (c *Config) LoadOrDefault(configPath string) (string, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return "", fmt.Errorf("failed to access config file: %w", err)
		}
		return configPath, c.Load(configPath)
	}

	candidates := []string{".triage.yml", ".triage.yaml"}
	if p := DefaultConfigPath(); p != "" {
		candidates = append(candidates, p)
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, c.Load(candidate)
		}
	}

	return "", c.Load("")
}

// DefaultConfigPath はユーザー設定ファイルのデフォルトパスを返す
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "triage", "triage.yml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "triage", "triage.yml")
}

// normalize はリスト値の空白と空要素を取り除く
func (c *Config) normalize() {
	c.Team.Members = cleanList(c.Team.Members)
	c.Team.Frontend = cleanList(c.Team.Frontend)
	c.Team.Backend = cleanList(c.Team.Backend)
	c.Team.Infra = cleanList(c.Team.Infra)
	c.AI.Engine = strings.ToLower(strings.TrimSpace(c.AI.Engine))
	c.Triage.AssigneePolicy = strings.ToLower(strings.TrimSpace(c.Triage.AssigneePolicy))
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		// 環境変数由来の "a, b" と YAML由来の ["a b"] の両方を受け付ける
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Repository は設定されたリポジトリのowner/repoを返す
func (c *Config) Repository() (*utils.GitHubRepoInfo, error) {
	return utils.ParseGitHubURL(c.GitHub.Repo)
}

// Provider は選択されたエンジンのプロバイダー設定を返す
func (c *Config) Provider() ProviderConfig {
	if c.AI.Engine == EngineOpenAI {
		return c.AI.OpenAI
	}
	return c.AI.Claude
}

// ValidationError は設定の検証エラー
type ValidationError struct {
	Missing  []string
	Problems []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required settings: "+strings.Join(e.Missing, ", "))
	}
	parts = append(parts, e.Problems...)
	return strings.Join(parts, "; ")
}

// IsValidationError はエラーが設定の検証エラーかを判定する
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// Validate は設定の妥当性を検証する。
// ネットワークにアクセスする前に呼び出すこと。
func (c *Config) Validate() error {
	vErr := &ValidationError{}

	if c.GitHub.Token == "" {
		vErr.Missing = append(vErr.Missing, "GITHUB_TOKEN")
	}
	if c.GitHub.Repo == "" {
		vErr.Missing = append(vErr.Missing, "GITHUB_REPO")
	} else if _, err := c.Repository(); err != nil {
		vErr.Problems = append(vErr.Problems, fmt.Sprintf("invalid GITHUB_REPO: %v", err))
	}

	if c.GitHub.APIURL != "" {
		if u, err := url.Parse(c.GitHub.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
			vErr.Problems = append(vErr.Problems, fmt.Sprintf("invalid GITHUB_API_URL: %q", c.GitHub.APIURL))
		}
	}

	switch c.AI.Engine {
	case EngineClaude:
		if c.AI.Claude.APIKey == "" {
			vErr.Missing = append(vErr.Missing, "CLAUDE_API_KEY")
		}
	case EngineOpenAI:
		if c.AI.OpenAI.APIKey == "" {
			vErr.Missing = append(vErr.Missing, "OPENAI_API_KEY")
		}
	default:
		vErr.Problems = append(vErr.Problems,
			fmt.Sprintf("invalid AI_ENGINE value: %q (must be %q or %q)", c.AI.Engine, EngineOpenAI, EngineClaude))
	}

	switch c.Triage.AssigneePolicy {
	case AssigneePolicyPassThrough, AssigneePolicyValidate:
	default:
		vErr.Problems = append(vErr.Problems,
			fmt.Sprintf("invalid ASSIGNEE_POLICY value: %q (must be %q or %q)",
				c.Triage.AssigneePolicy, AssigneePolicyPassThrough, AssigneePolicyValidate))
	}

	if c.Triage.MaxIssues <= 0 {
		vErr.Problems = append(vErr.Problems, fmt.Sprintf("MAX_ISSUES_PER_RUN must be positive, got %d", c.Triage.MaxIssues))
	}
	if c.AI.MaxTokens <= 0 {
		vErr.Problems = append(vErr.Problems, fmt.Sprintf("AI_MAX_TOKENS must be positive, got %d", c.AI.MaxTokens))
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 1 {
		vErr.Problems = append(vErr.Problems, fmt.Sprintf("AI_TEMPERATURE must be within 0..1, got %g", c.AI.Temperature))
	}
	if c.HTTP.Timeout < time.Second {
		vErr.Problems = append(vErr.Problems, "HTTP_TIMEOUT must be at least 1 second")
	}

	if len(vErr.Missing) > 0 || len(vErr.Problems) > 0 {
		return vErr
	}
	return nil
}

// Summary は --config-check で表示する設定の要約を返す。
// シークレットは含めない。
func (c *Config) Summary() string {
	provider := c.Provider()
	var b strings.Builder
	fmt.Fprintln(&b, "Configuration Summary:")
	fmt.Fprintf(&b, "GitHub Repo: %s\n", c.GitHub.Repo)
	fmt.Fprintf(&b, "GitHub API URL: %s\n", c.GitHub.APIURL)
	fmt.Fprintf(&b, "AI Engine: %s\n", c.AI.Engine)
	fmt.Fprintf(&b, "AI Model: %s\n", provider.Model)
	fmt.Fprintf(&b, "Max Issues Per Run: %d\n", c.Triage.MaxIssues)
	fmt.Fprintf(&b, "Dry Run Mode: %t\n", c.Triage.DryRun)
	fmt.Fprintf(&b, "Auto Label Enabled: %t\n", c.Triage.AutoLabel)
	fmt.Fprintf(&b, "Auto Assign Enabled: %t\n", c.Triage.AutoAssign)
	fmt.Fprintf(&b, "Assignee Policy: %s\n", c.Triage.AssigneePolicy)
	fmt.Fprintf(&b, "Assignee Team Fallback: %t\n", c.Triage.AssigneeFallback)
	fmt.Fprintf(&b, "Team Members: %d\n", len(c.Team.Members))
	fmt.Fprintf(&b, "Frontend Team: %d\n", len(c.Team.Frontend))
	fmt.Fprintf(&b, "Backend Team: %d\n", len(c.Team.Backend))
	fmt.Fprintf(&b, "Infra Team: %d\n", len(c.Team.Infra))
	return b.String()
}
