package pr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/capstanhq/capstan/internal/config"
	"github.com/capstanhq/capstan/internal/delegate"
	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
	"github.com/capstanhq/capstan/internal/notify"
)

const (
	templateFileName = "pull_request_template.md"
	templateDirName  = "PULL_REQUEST_TEMPLATE"

	defaultTemplateMaxDepth = 8
)

// Candidate is a discovered pull request template. Path is relative to the
// repository root, using forward slashes.
type Candidate struct {
	Path    string
	Content string
}

// Finder locates pull request templates in a repository checkout. It looks in
// the conventional locations (the repository root, docs/ and .github/) for a
// file named pull_request_template.md, and in any directory named
// PULL_REQUEST_TEMPLATE, whose files are all treated as templates.
type Finder struct {
	root          string
	caseSensitive bool
	maxDepth      int
	logger        *logging.Logger
}

// NewFinder creates a Finder rooted at the given repository path.
func NewFinder(root string, cfg config.TemplateConfig, logger *logging.Logger) *Finder {
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultTemplateMaxDepth
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Finder{
		root:          root,
		caseSensitive: cfg.CaseSensitive,
		maxDepth:      maxDepth,
		logger:        logger,
	}
}

// FindTemplates returns every template candidate in a stable order. Locations
// that do not exist and files that cannot be read are skipped.
func (f *Finder) FindTemplates() []Candidate {
	var candidates []Candidate
	seen := make(map[string]bool)

	add := func(rel string) {
		rel = filepath.ToSlash(rel)
		if seen[rel] {
			return
		}
		content, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
		if err != nil {
			f.logger.Debug("skipping unreadable template candidate", "path", rel, "error", err.Error())
			return
		}
		seen[rel] = true
		candidates = append(candidates, Candidate{Path: rel, Content: string(content)})
	}

	for _, dir := range []string{".", "docs", ".github"} {
		entries, err := os.ReadDir(filepath.Join(f.root, dir))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !f.matchesTemplateName(entry.Name()) {
				continue
			}
			add(filepath.Join(dir, entry.Name()))
		}
	}

	// Template directories can sit anywhere in the tree, most commonly under
	// .github/. Every regular file directly inside one is a candidate.
	dirs, err := doublestar.Glob(os.DirFS(f.root), "**/"+templateDirName)
	if err != nil {
		f.logger.Warn("template directory scan failed", "error", err.Error())
		return candidates
	}
	for _, dir := range dirs {
		if pathDepth(dir) > f.maxDepth {
			f.logger.Debug("skipping template directory beyond depth limit", "path", dir, "max_depth", f.maxDepth)
			continue
		}
		entries, err := os.ReadDir(filepath.Join(f.root, filepath.FromSlash(dir)))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			add(filepath.Join(filepath.FromSlash(dir), entry.Name()))
		}
	}

	return candidates
}

func (f *Finder) matchesTemplateName(name string) bool {
	if f.caseSensitive {
		return name == templateFileName
	}
	return strings.EqualFold(name, templateFileName)
}

func pathDepth(fsPath string) int {
	return strings.Count(fsPath, "/") + 1
}

const selectionPromptFormat = `Based on this commit history:

%s

over these changed files:

%s

choose which of these pull request templates should be used to raise a PR in this repository. Do not read any files. Respond with only the path of the most appropriate template, nothing else. Here are the options:

%s`

// Selector asks the delegate to choose between multiple template candidates.
type Selector struct {
	oracle delegate.Oracle
	logger *logging.Logger
}

// NewSelector creates a Selector backed by the given delegate.
func NewSelector(oracle delegate.Oracle, logger *logging.Logger) *Selector {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Selector{oracle: oracle, logger: logger}
}

// Select presents every candidate to the delegate and returns the one it
// names. The answer must identify exactly one candidate, by full path or by
// file name; anything else is a TemplateError wrapping ErrTemplateNotSelected.
func (s *Selector) Select(ctx context.Context, candidates []Candidate, prCtx Context) (*Candidate, error) {
	paths := make([]string, len(candidates))
	for i, c := range candidates {
		paths[i] = c.Path
	}
	options, err := json.MarshalIndent(paths, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode template options")
	}

	prompt := fmt.Sprintf(selectionPromptFormat, prCtx.CommitLog, strings.Join(prCtx.ChangedFiles, "\n"), options)
	reply, err := s.oracle.Generate(ctx, prompt)
	if err != nil {
		return nil, errors.NewTemplateError("template selection delegate failed", err).
			WithCandidateCount(len(candidates))
	}

	answer := normalizeAnswer(reply)
	s.logger.Debug("template selection answer", "answer", answer, "candidates", len(candidates))

	var matches []*Candidate
	for i := range candidates {
		c := &candidates[i]
		if c.Path == answer || filepath.Base(c.Path) == answer {
			matches = append(matches, c)
		}
	}
	if len(matches) != 1 {
		return nil, errors.NewTemplateError(
			fmt.Sprintf("delegate answer %q does not identify one of %d templates", answer, len(candidates)),
			errors.ErrTemplateNotSelected,
		).WithCandidateCount(len(candidates))
	}
	return matches[0], nil
}

// normalizeAnswer strips the decoration delegates tend to wrap around a bare
// filename: surrounding whitespace, quotes and backticks, trailing prose.
func normalizeAnswer(reply string) string {
	answer := strings.TrimSpace(reply)
	if i := strings.IndexByte(answer, '\n'); i >= 0 {
		answer = strings.TrimSpace(answer[:i])
	}
	return strings.Trim(answer, "`\"'")
}

// TemplateResolver combines discovery and selection. Template handling never
// fails PR creation: zero candidates means no template, one is used directly,
// and when selection among several fails the PR proceeds without a template.
type TemplateResolver struct {
	finder   *Finder
	selector *Selector
	logger   *logging.Logger
	notifier *notify.Notifier
}

// NewTemplateResolver creates a resolver from its two halves.
func NewTemplateResolver(finder *Finder, selector *Selector, logger *logging.Logger, notifier *notify.Notifier) *TemplateResolver {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if notifier == nil {
		notifier = notify.Silent()
	}
	return &TemplateResolver{finder: finder, selector: selector, logger: logger, notifier: notifier}
}

// Resolve returns the template to apply, or nil when none should be used.
func (r *TemplateResolver) Resolve(ctx context.Context, prCtx Context) *Candidate {
	candidates := r.finder.FindTemplates()
	switch len(candidates) {
	case 0:
		r.logger.Debug("no pull request template found")
		return nil
	case 1:
		r.notifier.Infof("Using PR template %s", candidates[0].Path)
		return &candidates[0]
	}

	chosen, err := r.selector.Select(ctx, candidates, prCtx)
	if err != nil {
		r.notifier.Warnf("Could not pick a PR template, continuing without one: %v", err)
		r.logger.Warn("template selection failed", "error", err.Error(), "candidates", len(candidates))
		return nil
	}
	r.notifier.Infof("Using PR template %s", chosen.Path)
	return chosen
}
