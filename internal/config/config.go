package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete capstan configuration
type Config struct {
	Delegate  DelegateConfig  `mapstructure:"delegate"`
	Execution ExecutionConfig `mapstructure:"execution"`
	Artifact  ArtifactConfig  `mapstructure:"artifact"`
	Cleanup   CleanupConfig   `mapstructure:"cleanup"`
	PR        PRConfig        `mapstructure:"pr"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Jira      JiraConfig      `mapstructure:"jira"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DelegateConfig controls how capstan talks to the reasoning delegate
type DelegateConfig struct {
	// Backend is the delegate CLI to invoke (default: "claude")
	// Options: "claude", "codex"
	Backend string `mapstructure:"backend"`
	// TimeoutMinutes is the maximum runtime for a single delegate call
	// (default: 30, 0 = no timeout)
	TimeoutMinutes int `mapstructure:"timeout_minutes"`
	// ExtraArgs are additional arguments appended to every delegate invocation.
	// Useful for model selection flags, e.g. ["--model", "opus"].
	ExtraArgs []string `mapstructure:"extra_args"`
}

// ExecutionConfig controls how plan steps are executed
type ExecutionConfig struct {
	// AbortPolicy decides what happens when a step fails (default: "abort_on_first_error")
	// Options: "abort_on_first_error", "continue_on_error"
	AbortPolicy string `mapstructure:"abort_policy"`
	// Autonomy runs the pipeline without interactive confirmation prompts.
	// While a run is in autonomy mode, artifact conflicts that would prompt
	// are resolved by overwriting. (default: true)
	Autonomy bool `mapstructure:"autonomy"`
	// WatchPlan watches the plan file during execution and warns when it is
	// modified mid-run (default: true)
	WatchPlan bool `mapstructure:"watch_plan"`
}

// ArtifactConfig controls how generated artifacts are written
type ArtifactConfig struct {
	// OnConflict decides what happens when an artifact target already exists
	// (default: "prompt")
	// Options: "overwrite", "skip", "prompt"
	OnConflict string `mapstructure:"on_conflict"`
}

// CleanupConfig controls the optional post-execution cleanup stage
type CleanupConfig struct {
	// Enabled runs a cleanup pass after all steps complete (default: false)
	Enabled bool `mapstructure:"enabled"`
	// Intensity is the default cleanup intensity for the standalone cleanup
	// command (default: "low"). The solve pipeline always runs at "low".
	// Options: "low", "medium", "high"
	Intensity string `mapstructure:"intensity"`
}

// PRConfig controls pull request creation behavior
type PRConfig struct {
	// Draft creates PRs as drafts by default
	Draft bool `mapstructure:"draft"`
	// UseDelegate uses the reasoning delegate to generate PR title and body
	// (default: true). When false, a minimal title and body are derived from
	// the branch name and commit log.
	UseDelegate bool `mapstructure:"use_delegate"`
	// Base is the base branch for PRs. Empty means auto-detect the
	// repository's default branch. (default: "")
	Base string `mapstructure:"base"`
	// Submitter selects how the PR is created (default: "gh")
	// Options: "gh" (GitHub CLI), "api" (GitHub REST API, requires github.token)
	Submitter string `mapstructure:"submitter"`
	// Labels to add to all PRs by default
	Labels []string `mapstructure:"labels"`
	// Reviewers configuration for automatic reviewer assignment
	Reviewers ReviewerConfig `mapstructure:"reviewers"`
	// Template controls pull request template discovery
	Template TemplateConfig `mapstructure:"template"`
}

// ReviewerConfig controls automatic reviewer assignment
type ReviewerConfig struct {
	// Default reviewers to always assign
	Default []string `mapstructure:"default"`
	// ByPath maps file path patterns to reviewers (glob patterns supported)
	ByPath map[string][]string `mapstructure:"by_path"`
}

// TemplateConfig controls pull request template discovery
type TemplateConfig struct {
	// CaseSensitive matches template file names exactly instead of
	// case-insensitively (default: false)
	CaseSensitive bool `mapstructure:"case_sensitive"`
	// MaxDepth limits how deep template directories are searched (default: 8)
	MaxDepth int `mapstructure:"max_depth"`
}

// GitHubConfig holds GitHub API credentials
type GitHubConfig struct {
	// Token is the GitHub API token used by the "api" submitter.
	// Usually set via the CAPSTAN_GITHUB_TOKEN environment variable.
	Token string `mapstructure:"token"`
}

// JiraConfig holds the Jira connection used when a solve argument is an
// issue key instead of a ticket file
type JiraConfig struct {
	// BaseURL is the Jira server URL (e.g. https://acme.atlassian.net)
	BaseURL string `mapstructure:"base_url"`
	// Email is the account the API token belongs to
	Email string `mapstructure:"email"`
	// Token is the Jira API token.
	// Usually set via the CAPSTAN_JIRA_TOKEN environment variable.
	Token string `mapstructure:"token"`
	// ReviewStatus is the workflow status the ticket is transitioned to
	// after its pull request is raised (default: "In review")
	ReviewStatus string `mapstructure:"review_status"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the directory for the debug log. Empty means the user cache
	// directory (default: "")
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// Timeout returns the delegate timeout as a time.Duration (0 means disabled)
func (c *DelegateConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// ResolveDir returns the resolved log directory.
// If Dir is empty, it returns the capstan cache directory.
// If Dir starts with ~, it expands to the user's home directory.
func (c *LoggingConfig) ResolveDir() string {
	if c.Dir == "" {
		return CacheDir()
	}
	return expandHome(c.Dir)
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if len(path) > 1 && path[0] == '~' && path[1] == os.PathSeparator {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Delegate: DelegateConfig{
			Backend:        "claude",
			TimeoutMinutes: 30,
			ExtraArgs:      []string{},
		},
		Execution: ExecutionConfig{
			AbortPolicy: AbortPolicyFirstError,
			Autonomy:    true,
			WatchPlan:   true,
		},
		Artifact: ArtifactConfig{
			OnConflict: "prompt",
		},
		Cleanup: CleanupConfig{
			Enabled:   false,
			Intensity: "low",
		},
		PR: PRConfig{
			Draft:       false,
			UseDelegate: true,
			Base:        "", // Empty means auto-detect default branch
			Submitter:   "gh",
			Labels:      []string{},
			Reviewers: ReviewerConfig{
				Default: []string{},
				ByPath:  map[string][]string{},
			},
			Template: TemplateConfig{
				CaseSensitive: false,
				MaxDepth:      8,
			},
		},
		GitHub: GitHubConfig{
			Token: "",
		},
		Jira: JiraConfig{
			BaseURL:      "",
			Email:        "",
			Token:        "",
			ReviewStatus: "In review",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "", // Empty means use the user cache directory
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Delegate defaults
	viper.SetDefault("delegate.backend", defaults.Delegate.Backend)
	viper.SetDefault("delegate.timeout_minutes", defaults.Delegate.TimeoutMinutes)
	viper.SetDefault("delegate.extra_args", defaults.Delegate.ExtraArgs)

	// Execution defaults
	viper.SetDefault("execution.abort_policy", defaults.Execution.AbortPolicy)
	viper.SetDefault("execution.autonomy", defaults.Execution.Autonomy)
	viper.SetDefault("execution.watch_plan", defaults.Execution.WatchPlan)

	// Artifact defaults
	viper.SetDefault("artifact.on_conflict", defaults.Artifact.OnConflict)

	// Cleanup defaults
	viper.SetDefault("cleanup.enabled", defaults.Cleanup.Enabled)
	viper.SetDefault("cleanup.intensity", defaults.Cleanup.Intensity)

	// PR defaults
	viper.SetDefault("pr.draft", defaults.PR.Draft)
	viper.SetDefault("pr.use_delegate", defaults.PR.UseDelegate)
	viper.SetDefault("pr.base", defaults.PR.Base)
	viper.SetDefault("pr.submitter", defaults.PR.Submitter)
	viper.SetDefault("pr.labels", defaults.PR.Labels)
	viper.SetDefault("pr.reviewers.default", defaults.PR.Reviewers.Default)
	viper.SetDefault("pr.reviewers.by_path", defaults.PR.Reviewers.ByPath)
	viper.SetDefault("pr.template.case_sensitive", defaults.PR.Template.CaseSensitive)
	viper.SetDefault("pr.template.max_depth", defaults.PR.Template.MaxDepth)

	// GitHub defaults
	viper.SetDefault("github.token", defaults.GitHub.Token)

	// Jira defaults
	viper.SetDefault("jira.base_url", defaults.Jira.BaseURL)
	viper.SetDefault("jira.email", defaults.Jira.Email)
	viper.SetDefault("jira.token", defaults.Jira.Token)
	viper.SetDefault("jira.review_status", defaults.Jira.ReviewStatus)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "capstan")
	}
	// Fall back to ~/.config/capstan
	home, err := os.UserHomeDir()
	if err != nil {
		return ".capstan"
	}
	return filepath.Join(home, ".config", "capstan")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// CacheDir returns the path to the user's cache directory, used for the
// debug log
func CacheDir() string {
	// Check XDG_CACHE_HOME first
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "capstan")
	}
	// Fall back to ~/.cache/capstan
	home, err := os.UserHomeDir()
	if err != nil {
		return ".capstan"
	}
	return filepath.Join(home, ".cache", "capstan")
}

// Abort policy values for execution.abort_policy
const (
	AbortPolicyFirstError = "abort_on_first_error"
	AbortPolicyContinue   = "continue_on_error"
)

// ValidAbortPolicies returns the list of valid abort policy values
func ValidAbortPolicies() []string {
	return []string{AbortPolicyFirstError, AbortPolicyContinue}
}

// IsValidAbortPolicy checks if the given policy is valid
func IsValidAbortPolicy(policy string) bool {
	for _, valid := range ValidAbortPolicies() {
		if policy == valid {
			return true
		}
	}
	return false
}

// ValidConflictStrategies returns the list of valid artifact conflict strategies
func ValidConflictStrategies() []string {
	return []string{"overwrite", "skip", "prompt"}
}

// IsValidConflictStrategy checks if the given strategy is valid
func IsValidConflictStrategy(strategy string) bool {
	for _, valid := range ValidConflictStrategies() {
		if strategy == valid {
			return true
		}
	}
	return false
}
