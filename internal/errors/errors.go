// Package errors provides centralized error definitions and error handling utilities
// for the capstan codebase. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific pipeline stages:
//   - DelegateError: errors from the reasoning delegate (subprocess failures, timeouts)
//   - PlanError: errors during plan generation (unreadable specification, empty plan)
//   - StepCountError: strict-parse failures of the delegate's step-count answer
//   - ArtifactError: errors writing derived artifacts (plan files, cleanup output)
//   - GitError: errors from git operations (branch detection, push)
//   - TemplateError: pull-request template discovery/selection failures (non-fatal)
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//   - TimeoutError: operation timed out
//
// # Usage
//
// Creating errors:
//
//	// Domain-specific error
//	err := errors.NewDelegateError("step execution failed", cause).WithBackend("claude")
//
//	// Semantic error
//	err := errors.NewNotFoundError("specification file", "ticket.md")
//
//	// With context wrapping
//	err := errors.NewGitError("push failed", baseErr).WithBranch("feature-x")
//
// Checking errors:
//
//	// Check for specific sentinel errors
//	if errors.Is(err, errors.ErrDetachedHead) { ... }
//
//	// Check for error types
//	var delegateErr *errors.DelegateError
//	if errors.As(err, &delegateErr) { ... }
//
//	// Use classification helpers
//	if errors.IsRetryable(err) { ... }
//	if errors.IsUserFacing(err) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Delegate-related sentinel errors
var (
	// ErrDelegateNotFound indicates that the delegate binary is not on PATH.
	ErrDelegateNotFound = New("delegate binary not found")
	// ErrDelegateEmptyResult indicates that the delegate returned no usable text.
	ErrDelegateEmptyResult = New("delegate returned empty result")
	// ErrDelegateReportedFailure indicates that the delegate answered with its
	// own error envelope rather than a result.
	ErrDelegateReportedFailure = New("delegate reported failure")
)

// Plan-related sentinel errors
var (
	// ErrPlanEmpty indicates that plan generation produced no content.
	ErrPlanEmpty = New("generated plan is empty")
	// ErrStepCountInvalid indicates that the step-count answer did not parse
	// as a positive integer.
	ErrStepCountInvalid = New("step count is not a positive integer")
)

// Git-related sentinel errors
var (
	// ErrNotGitRepository indicates that the directory is not a git repository.
	ErrNotGitRepository = New("not a git repository")
	// ErrDetachedHead indicates that HEAD points directly at a commit with no
	// branch checked out.
	ErrDetachedHead = New("HEAD is detached")
	// ErrNoDefaultBranch indicates that neither main nor master exists.
	ErrNoDefaultBranch = New("no default branch found")
)

// Pull-request-related sentinel errors
var (
	// ErrGHNotInstalled indicates that the gh CLI is not available.
	ErrGHNotInstalled = New("gh CLI not installed")
	// ErrTemplateNotSelected indicates that template selection produced no
	// usable choice.
	ErrTemplateNotSelected = New("template not selected")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// PipelineError is the base interface for all capstan errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type PipelineError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// DelegateError represents errors from the reasoning delegate.
//
// Example:
//
//	err := errors.NewDelegateError("step execution failed", errors.ErrTimeout)
//	err = err.WithBackend("claude").WithStage("execute")
//	fmt.Println(err) // "delegate error [backend=claude, stage=execute]: step execution failed: operation timed out"
type DelegateError struct {
	baseError
	Backend string
	Stage   string
	Stderr  string // Captured delegate stderr output
}

// NewDelegateError creates a new DelegateError.
func NewDelegateError(message string, cause error) *DelegateError {
	return &DelegateError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithBackend adds the delegate backend name to the error context.
func (e *DelegateError) WithBackend(backend string) *DelegateError {
	e.Backend = backend
	return e
}

// WithStage adds the pipeline stage name to the error context.
func (e *DelegateError) WithStage(stage string) *DelegateError {
	e.Stage = stage
	return e
}

// WithStderr adds captured delegate stderr to the error context.
func (e *DelegateError) WithStderr(stderr string) *DelegateError {
	e.Stderr = stderr
	return e
}

// WithSeverity sets the error severity.
func (e *DelegateError) WithSeverity(s Severity) *DelegateError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *DelegateError) WithRetryable(r bool) *DelegateError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *DelegateError) Error() string {
	var parts []string
	if e.Backend != "" {
		parts = append(parts, fmt.Sprintf("backend=%s", e.Backend))
	}
	if e.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage=%s", e.Stage))
	}

	prefix := "delegate error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("delegate error [%s]", strings.Join(parts, ", "))
	}

	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s\ndelegate stderr: %s", msg, e.Stderr)
	}

	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Is checks if this error matches the target.
func (e *DelegateError) Is(target error) bool {
	if _, ok := target.(*DelegateError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// PlanError represents errors during plan generation.
//
// Example:
//
//	err := errors.NewPlanError("delegate returned an empty plan", errors.ErrPlanEmpty)
//	err = err.WithSpecPath("ticket.md")
type PlanError struct {
	baseError
	SpecPath string
	PlanPath string
}

// NewPlanError creates a new PlanError.
func NewPlanError(message string, cause error) *PlanError {
	return &PlanError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithSpecPath adds the specification path to the error context.
func (e *PlanError) WithSpecPath(path string) *PlanError {
	e.SpecPath = path
	return e
}

// WithPlanPath adds the plan output path to the error context.
func (e *PlanError) WithPlanPath(path string) *PlanError {
	e.PlanPath = path
	return e
}

// WithSeverity sets the error severity.
func (e *PlanError) WithSeverity(s Severity) *PlanError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *PlanError) Error() string {
	var parts []string
	if e.SpecPath != "" {
		parts = append(parts, fmt.Sprintf("spec=%s", e.SpecPath))
	}
	if e.PlanPath != "" {
		parts = append(parts, fmt.Sprintf("plan=%s", e.PlanPath))
	}

	prefix := "plan error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("plan error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *PlanError) Is(target error) bool {
	if _, ok := target.(*PlanError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// StepCountError represents a step-count answer that failed strict parsing.
// The raw delegate response is retained so the user can see exactly what was
// rejected; no fallback count is ever guessed.
//
// Example:
//
//	err := errors.NewStepCountError("three")
//	fmt.Println(err) // `step count error [response="three"]: step count is not a positive integer`
type StepCountError struct {
	baseError
	Response string
}

// NewStepCountError creates a new StepCountError from the raw delegate response.
func NewStepCountError(response string) *StepCountError {
	return &StepCountError{
		baseError: baseError{
			message:    "step count is not a positive integer",
			cause:      ErrStepCountInvalid,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
		Response: response,
	}
}

// Error returns the formatted error message.
func (e *StepCountError) Error() string {
	return fmt.Sprintf("step count error [response=%q]: %s", e.Response, e.message)
}

// Is checks if this error matches the target.
func (e *StepCountError) Is(target error) bool {
	if _, ok := target.(*StepCountError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ArtifactError represents errors writing derived artifacts.
//
// Example:
//
//	err := errors.NewArtifactError("failed to write plan", cause)
//	err = err.WithPath("ticket_implementation_plan.md").WithStrategy("overwrite")
type ArtifactError struct {
	baseError
	Path     string
	Strategy string
}

// NewArtifactError creates a new ArtifactError.
func NewArtifactError(message string, cause error) *ArtifactError {
	return &ArtifactError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithPath adds the artifact path to the error context.
func (e *ArtifactError) WithPath(path string) *ArtifactError {
	e.Path = path
	return e
}

// WithStrategy adds the conflict strategy to the error context.
func (e *ArtifactError) WithStrategy(strategy string) *ArtifactError {
	e.Strategy = strategy
	return e
}

// Error returns the formatted error message.
func (e *ArtifactError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Strategy != "" {
		parts = append(parts, fmt.Sprintf("strategy=%s", e.Strategy))
	}

	prefix := "artifact error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("artifact error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ArtifactError) Is(target error) bool {
	if _, ok := target.(*ArtifactError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// GitError represents errors related to git operations.
//
// Example:
//
//	err := errors.NewGitError("failed to detect branch", errors.ErrDetachedHead)
//	err = err.WithRepository("/path/to/repo")
type GitError struct {
	baseError
	Branch     string
	Repository string
	GitOutput  string // Captured git command output
}

// NewGitError creates a new GitError.
func NewGitError(message string, cause error) *GitError {
	return &GitError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithBranch adds a branch name to the error context.
func (e *GitError) WithBranch(branch string) *GitError {
	e.Branch = branch
	return e
}

// WithRepository adds a repository path to the error context.
func (e *GitError) WithRepository(path string) *GitError {
	e.Repository = path
	return e
}

// WithGitOutput adds git command output to the error context.
func (e *GitError) WithGitOutput(output string) *GitError {
	e.GitOutput = output
	return e
}

// WithSeverity sets the error severity.
func (e *GitError) WithSeverity(s Severity) *GitError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *GitError) WithRetryable(r bool) *GitError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *GitError) Error() string {
	var parts []string
	if e.Branch != "" {
		parts = append(parts, fmt.Sprintf("branch=%s", e.Branch))
	}
	if e.Repository != "" {
		parts = append(parts, fmt.Sprintf("repo=%s", e.Repository))
	}

	prefix := "git error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("git error [%s]", strings.Join(parts, ", "))
	}

	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.GitOutput != "" {
		msg = fmt.Sprintf("%s\ngit output: %s", msg, e.GitOutput)
	}

	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Is checks if this error matches the target.
func (e *GitError) Is(target error) bool {
	if _, ok := target.(*GitError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// TemplateError represents pull-request template discovery or selection
// failures. These are never fatal to PR creation; the resolver degrades to
// proceeding without a template.
//
// Example:
//
//	err := errors.NewTemplateError("selection delegate failed", cause)
//	err = err.WithDir(".github/PULL_REQUEST_TEMPLATE").WithCandidateCount(3)
type TemplateError struct {
	baseError
	Dir            string
	CandidateCount int
}

// NewTemplateError creates a new TemplateError.
func NewTemplateError(message string, cause error) *TemplateError {
	return &TemplateError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		CandidateCount: -1, // -1 indicates not set
	}
}

// WithDir adds the template directory to the error context.
func (e *TemplateError) WithDir(dir string) *TemplateError {
	e.Dir = dir
	return e
}

// WithCandidateCount adds the number of candidates to the error context.
func (e *TemplateError) WithCandidateCount(n int) *TemplateError {
	e.CandidateCount = n
	return e
}

// Error returns the formatted error message.
func (e *TemplateError) Error() string {
	var parts []string
	if e.Dir != "" {
		parts = append(parts, fmt.Sprintf("dir=%s", e.Dir))
	}
	if e.CandidateCount >= 0 {
		parts = append(parts, fmt.Sprintf("candidates=%d", e.CandidateCount))
	}

	prefix := "template error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("template error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *TemplateError) Is(target error) bool {
	if _, ok := target.(*TemplateError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("specification file", "ticket.md")
//	fmt.Println(err) // "specification file 'ticket.md' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("abort policy must be abort-on-first-error or continue-on-error")
//	err = err.WithField("execution.abort_policy").WithValue("sometimes")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("waiting for delegate response", 5*time.Minute)
//	fmt.Println(err) // "timeout error: waiting for delegate response (timeout: 5m0s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true, // Timeouts are generally retryable
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// WithRetryable sets whether the error is retryable (default true for timeouts).
func (e *TimeoutError) WithRetryable(r bool) *TimeoutError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. This checks for:
//   - Errors implementing PipelineError with IsRetryable() returning true
//   - TimeoutError instances
//   - Errors wrapping ErrTimeout
//
// Example:
//
//	if errors.IsRetryable(err) {
//	    time.Sleep(backoff)
//	    return retry(operation)
//	}
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Check if error implements PipelineError
	var pipeErr PipelineError
	if As(err, &pipeErr) {
		return pipeErr.IsRetryable()
	}

	// Check for known retryable sentinel errors
	if Is(err, ErrTimeout) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
// This checks for:
//   - Errors implementing PipelineError with IsUserFacing() returning true
//   - Semantic errors (NotFoundError, ValidationError, TimeoutError)
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    displayToUser(err.Error())
//	} else {
//	    displayToUser("An internal error occurred")
//	    log.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	// Check if error implements PipelineError
	var pipeErr PipelineError
	if As(err, &pipeErr) {
		return pipeErr.IsUserFacing()
	}

	// Semantic errors are always user-facing
	var notFound *NotFoundError
	var validation *ValidationError
	var timeout *TimeoutError

	if As(err, &notFound) || As(err, &validation) || As(err, &timeout) {
		return true
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement PipelineError.
//
// Example:
//
//	switch errors.GetSeverity(err) {
//	case errors.SeverityCritical:
//	    alertOnCall(err)
//	case errors.SeverityError:
//	    log.Error("error occurred", "err", err)
//	case errors.SeverityWarning:
//	    log.Warn("warning", "err", err)
//	}
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	// Check if error implements PipelineError
	var pipeErr PipelineError
	if As(err, &pipeErr) {
		return pipeErr.Severity()
	}

	// Default to Error severity for unknown errors
	return SeverityError
}

// IsDomainError returns true if the error is a domain-specific error
// (DelegateError, PlanError, StepCountError, ArtifactError, GitError,
// or TemplateError).
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}

	var delegateErr *DelegateError
	var planErr *PlanError
	var stepCountErr *StepCountError
	var artifactErr *ArtifactError
	var gitErr *GitError
	var templateErr *TemplateError

	return As(err, &delegateErr) || As(err, &planErr) ||
		As(err, &stepCountErr) || As(err, &artifactErr) ||
		As(err, &gitErr) || As(err, &templateErr)
}

// IsSemanticError returns true if the error is a semantic error
// (NotFoundError, ValidationError, or TimeoutError).
func IsSemanticError(err error) bool {
	if err == nil {
		return false
	}

	var notFound *NotFoundError
	var validation *ValidationError
	var timeout *TimeoutError

	return As(err, &notFound) || As(err, &validation) || As(err, &timeout)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this preserves the PipelineError interface.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to generate plan")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to execute step %d", index)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
