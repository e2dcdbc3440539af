package cleanup

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/capstanhq/capstan/internal/artifact"
	"github.com/capstanhq/capstan/internal/confirm"
	"github.com/capstanhq/capstan/internal/delegate"
	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
	"github.com/capstanhq/capstan/internal/notify"
)

// Intensity selects how aggressive a cleanup pass is. Each intensity maps to
// a fixed task list handed to the delegate.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// ParseIntensity normalizes a user-supplied intensity. Empty selects low,
// matching the pipeline default.
func ParseIntensity(s string) (Intensity, error) {
	switch Intensity(strings.ToLower(strings.TrimSpace(s))) {
	case IntensityLow, "":
		return IntensityLow, nil
	case IntensityMedium:
		return IntensityMedium, nil
	case IntensityHigh:
		return IntensityHigh, nil
	default:
		return IntensityLow, fmt.Errorf("invalid cleanup intensity %q (valid: low, medium, high)", s)
	}
}

// tasks returns the fixed instruction list for an intensity.
func (i Intensity) tasks() []string {
	switch i {
	case IntensityHigh:
		return []string{
			"Refactor thoroughly to improve maintainability while preserving behavior.",
			"Remove unused code, including imports, variables, and functions.",
			"Improve code structure and apply appropriate design patterns.",
			"Break down large functions into smaller, focused ones.",
			"Ensure consistent naming conventions throughout.",
			"Add error handling where it is missing.",
			"Apply the idioms of each file's language.",
		}
	case IntensityMedium:
		return []string{
			"Remove redundant comments and simplify overly verbose expressions.",
			"Ensure a consistent coding style throughout each file.",
			"Fix potential bugs and unhandled edge cases.",
		}
	default:
		return []string{
			"Add missing documentation comments to functions and types that lack them.",
			"Fix obvious syntax issues and ensure consistent indentation.",
		}
	}
}

// codeExtensions marks the file types a cleanup pass will touch.
var codeExtensions = map[string]bool{
	".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".java": true, ".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".cs": true, ".go": true, ".rb": true, ".php": true, ".swift": true,
	".kt": true, ".rs": true, ".scala": true, ".sh": true, ".html": true,
	".css": true, ".scss": true, ".sass": true, ".less": true,
}

// RepoInspector is the slice of the version-control layer the stage needs to
// scope its instruction to this branch's changes.
type RepoInspector interface {
	DetectBranch(ctx context.Context) (string, error)
	DefaultBranch(ctx context.Context) (string, error)
	ChangedFiles(ctx context.Context, base, head string) ([]string, error)
	CommitHistory(ctx context.Context, base, head string) (string, error)
}

// Result summarizes a cleanup pass.
type Result struct {
	Intensity Intensity
	Files     []string
	Skipped   bool // no code files changed on the branch
	Reply     string
}

// Options configures a Stage.
type Options struct {
	Logger   *logging.Logger
	Notifier *notify.Notifier
}

// Stage runs the post-execution cleanup pass: one delegate call covering the
// code files modified on the current branch, executed under the auto-confirm
// scope. Failures are reported by the caller as warnings; the stage never
// touches version control itself, so it must run before any push.
type Stage struct {
	oracle   delegate.Oracle
	repo     RepoInspector
	gate     *confirm.Gate
	logger   *logging.Logger
	notifier *notify.Notifier
}

// NewStage assembles a cleanup stage.
func NewStage(oracle delegate.Oracle, repo RepoInspector, gate *confirm.Gate, opts Options) *Stage {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Silent()
	}
	if gate == nil {
		gate = confirm.NewGate(nil)
	}
	return &Stage{
		oracle:   oracle,
		repo:     repo,
		gate:     gate,
		logger:   logger,
		notifier: notifier,
	}
}

// Run executes one cleanup pass at the given intensity.
func (s *Stage) Run(ctx context.Context, intensity Intensity) (*Result, error) {
	branch, err := s.repo.DetectBranch(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cleanup could not determine current branch")
	}
	base, err := s.repo.DefaultBranch(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cleanup could not determine default branch")
	}

	changed, err := s.repo.ChangedFiles(ctx, base, branch)
	if err != nil {
		return nil, errors.Wrap(err, "cleanup could not list changed files")
	}
	files := filterCodeFiles(changed)
	if len(files) == 0 {
		s.notifier.Skipf("No code files changed on %s; skipping cleanup", branch)
		s.logger.Info("cleanup skipped", "branch", branch, "changed_files", len(changed))
		return &Result{Intensity: intensity, Skipped: true}, nil
	}

	history, err := s.repo.CommitHistory(ctx, base, branch)
	if err != nil {
		s.logger.Debug("commit history unavailable for cleanup prompt", "error", err.Error())
		history = "(commit history unavailable)"
	}

	s.notifier.Stage("Cleanup")
	s.notifier.Infof("Cleaning %d files with %s intensity", len(files), intensity)
	s.logger.WithStage("cleanup").Info("cleanup starting",
		"intensity", string(intensity),
		"files", len(files))

	prompt := buildInstruction(intensity, files, history)

	var reply string
	err = s.gate.AutoConfirm(func() error {
		var genErr error
		reply, genErr = s.oracle.Generate(ctx, prompt)
		return genErr
	})
	if err != nil {
		return nil, errors.Wrap(err, "cleanup delegate failed")
	}

	s.notifier.Successf("Cleanup pass complete")
	return &Result{
		Intensity: intensity,
		Files:     files,
		Reply:     reply,
	}, nil
}

// WriteReport persists a summary of the pass through the artifact resolver,
// honoring the configured conflict strategy.
func (s *Stage) WriteReport(res *Result, resolver *artifact.Resolver, path string) (artifact.Resolution, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Cleanup Report\n\nIntensity: %s\n\n", res.Intensity)
	if res.Skipped {
		b.WriteString("No code files changed on this branch; nothing was cleaned.\n")
	} else {
		b.WriteString("## Files\n\n")
		for _, f := range res.Files {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		if res.Reply != "" {
			fmt.Fprintf(&b, "\n## Delegate Summary\n\n%s\n", res.Reply)
		}
	}
	return resolver.WriteFile(path, []byte(b.String()))
}

func filterCodeFiles(changed []string) []string {
	var files []string
	for _, f := range changed {
		if codeExtensions[strings.ToLower(filepath.Ext(f))] {
			files = append(files, f)
		}
	}
	return files
}

// buildInstruction assembles the single delegate prompt for the pass: the
// intensity's task list, the commit history that scopes which edits are fair
// game, and the files in scope.
func buildInstruction(intensity Intensity, files []string, history string) string {
	var b strings.Builder
	b.WriteString("Clean up the following code files, which were modified on this branch. Focus on these specific tasks:\n")
	for _, task := range intensity.tasks() {
		fmt.Fprintf(&b, "- %s\n", task)
	}
	b.WriteString("\nPreserve the functionality of the code while improving its quality. Only change the parts of these files that were edited on this branch. To help you identify those changes, here is the commit history:\n\n")
	b.WriteString(history)
	b.WriteString("\n\nFILES:\n")
	for _, f := range files {
		b.WriteString(f + "\n")
	}
	return b.String()
}
