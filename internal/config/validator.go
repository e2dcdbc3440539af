package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "delegate.timeout_minutes")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// reviewerRegex validates GitHub reviewer handles.
// Handles may be users ("octocat") or teams ("org/team-name").
var reviewerRegex = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?(?:/[a-zA-Z0-9_-]+)?$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidDelegateBackends returns the list of valid delegate backends
func ValidDelegateBackends() []string {
	return []string{"claude", "codex"}
}

// ValidCleanupIntensities returns the list of valid cleanup intensities
func ValidCleanupIntensities() []string {
	return []string{"low", "medium", "high"}
}

// ValidSubmitters returns the list of valid PR submitters
func ValidSubmitters() []string {
	return []string{"gh", "api"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Delegate config
	errors = append(errors, c.validateDelegate()...)

	// Validate Execution config
	errors = append(errors, c.validateExecution()...)

	// Validate Artifact config
	errors = append(errors, c.validateArtifact()...)

	// Validate Cleanup config
	errors = append(errors, c.validateCleanup()...)

	// Validate PR config
	errors = append(errors, c.validatePR()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateDelegate validates the DelegateConfig
func (c *Config) validateDelegate() []ValidationError {
	var errors []ValidationError

	if c.Delegate.Backend != "" && !slices.Contains(ValidDelegateBackends(), c.Delegate.Backend) {
		errors = append(errors, ValidationError{
			Field:   "delegate.backend",
			Value:   c.Delegate.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidDelegateBackends(), ", ")),
		})
	}

	// Timeout validation (0 means disabled, which is valid; negative is invalid)
	if c.Delegate.TimeoutMinutes < 0 {
		errors = append(errors, ValidationError{
			Field:   "delegate.timeout_minutes",
			Value:   c.Delegate.TimeoutMinutes,
			Message: "must be non-negative (0 disables timeout)",
		})
	}

	// Reasonable upper bound for a single delegate call
	const maxTimeoutMinutes = 1440 // 24 hours
	if c.Delegate.TimeoutMinutes > maxTimeoutMinutes {
		errors = append(errors, ValidationError{
			Field:   "delegate.timeout_minutes",
			Value:   c.Delegate.TimeoutMinutes,
			Message: fmt.Sprintf("exceeds maximum of %d minutes", maxTimeoutMinutes),
		})
	}

	return errors
}

// validateExecution validates the ExecutionConfig
func (c *Config) validateExecution() []ValidationError {
	var errors []ValidationError

	if c.Execution.AbortPolicy != "" && !IsValidAbortPolicy(c.Execution.AbortPolicy) {
		errors = append(errors, ValidationError{
			Field:   "execution.abort_policy",
			Value:   c.Execution.AbortPolicy,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidAbortPolicies(), ", ")),
		})
	}

	return errors
}

// validateArtifact validates the ArtifactConfig
func (c *Config) validateArtifact() []ValidationError {
	var errors []ValidationError

	if c.Artifact.OnConflict != "" && !IsValidConflictStrategy(c.Artifact.OnConflict) {
		errors = append(errors, ValidationError{
			Field:   "artifact.on_conflict",
			Value:   c.Artifact.OnConflict,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidConflictStrategies(), ", ")),
		})
	}

	return errors
}

// validateCleanup validates the CleanupConfig
func (c *Config) validateCleanup() []ValidationError {
	var errors []ValidationError

	if c.Cleanup.Intensity != "" && !slices.Contains(ValidCleanupIntensities(), c.Cleanup.Intensity) {
		errors = append(errors, ValidationError{
			Field:   "cleanup.intensity",
			Value:   c.Cleanup.Intensity,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidCleanupIntensities(), ", ")),
		})
	}

	return errors
}

// validatePR validates the PRConfig
func (c *Config) validatePR() []ValidationError {
	var errors []ValidationError

	if c.PR.Submitter != "" && !slices.Contains(ValidSubmitters(), c.PR.Submitter) {
		errors = append(errors, ValidationError{
			Field:   "pr.submitter",
			Value:   c.PR.Submitter,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidSubmitters(), ", ")),
		})
	}

	// The api submitter needs a token to authenticate
	if c.PR.Submitter == "api" && c.GitHub.Token == "" {
		errors = append(errors, ValidationError{
			Field:   "github.token",
			Value:   "",
			Message: "required when pr.submitter is 'api' (set CAPSTAN_GITHUB_TOKEN)",
		})
	}

	// Template search depth bounds
	const minMaxDepth = 1
	const maxMaxDepth = 64
	if c.PR.Template.MaxDepth < minMaxDepth {
		errors = append(errors, ValidationError{
			Field:   "pr.template.max_depth",
			Value:   c.PR.Template.MaxDepth,
			Message: fmt.Sprintf("must be at least %d", minMaxDepth),
		})
	}
	if c.PR.Template.MaxDepth > maxMaxDepth {
		errors = append(errors, ValidationError{
			Field:   "pr.template.max_depth",
			Value:   c.PR.Template.MaxDepth,
			Message: fmt.Sprintf("exceeds maximum of %d", maxMaxDepth),
		})
	}

	// Validate reviewer handles
	errors = append(errors, validateReviewerList(c.PR.Reviewers.Default, "pr.reviewers.default")...)

	// Validate by-path patterns and their reviewers
	for pattern, reviewers := range c.PR.Reviewers.ByPath {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errors = append(errors, ValidationError{
				Field:   "pr.reviewers.by_path",
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
		errors = append(errors, validateReviewerList(reviewers, fmt.Sprintf("pr.reviewers.by_path[%s]", pattern))...)
	}

	return errors
}

// validateReviewerList validates a list of GitHub reviewer handles
func validateReviewerList(reviewers []string, fieldPrefix string) []ValidationError {
	var errors []ValidationError

	for i, reviewer := range reviewers {
		fieldName := fmt.Sprintf("%s[%d]", fieldPrefix, i)

		if strings.TrimSpace(reviewer) == "" {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   reviewer,
				Message: "reviewer handle cannot be empty",
			})
			continue
		}

		if !reviewerRegex.MatchString(reviewer) {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   reviewer,
				Message: "must be a GitHub username ('octocat') or team ('org/team-name')",
			})
		}
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	// Log directory path sanity checks
	if c.Logging.Dir != "" {
		path := c.Logging.Dir

		// Check for null bytes which are invalid in paths
		if strings.ContainsRune(path, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "logging.dir",
				Value:   path,
				Message: "path contains invalid null character",
			})
		}

		// Reasonable path length limit (most filesystems have limits around 4096)
		const maxPathLength = 4096
		if len(path) > maxPathLength {
			errors = append(errors, ValidationError{
				Field:   "logging.dir",
				Value:   path,
				Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
			})
		}
	}

	return errors
}
