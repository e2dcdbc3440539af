package pr

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/capstanhq/capstan/internal/config"
	"github.com/capstanhq/capstan/internal/errors"
)

func writeTemplate(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindTemplatesConventionalLocations(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "pull_request_template.md", "root template")
	writeTemplate(t, root, "docs/PULL_REQUEST_TEMPLATE.md", "docs template")
	writeTemplate(t, root, ".github/pull_request_template.md", "github template")
	writeTemplate(t, root, "README.md", "not a template")

	finder := NewFinder(root, config.TemplateConfig{}, nil)
	got := finder.FindTemplates()

	want := map[string]string{
		"pull_request_template.md":         "root template",
		"docs/PULL_REQUEST_TEMPLATE.md":    "docs template",
		".github/pull_request_template.md": "github template",
	}
	if len(got) != len(want) {
		t.Fatalf("FindTemplates returned %d candidates, want %d: %+v", len(got), len(want), got)
	}
	for _, c := range got {
		if want[c.Path] != c.Content {
			t.Errorf("candidate %s has content %q, want %q", c.Path, c.Content, want[c.Path])
		}
	}
}

func TestFindTemplatesCaseSensitive(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "PULL_REQUEST_TEMPLATE.md", "uppercase")

	finder := NewFinder(root, config.TemplateConfig{CaseSensitive: true}, nil)
	if got := finder.FindTemplates(); len(got) != 0 {
		t.Errorf("case-sensitive finder matched %+v, want none", got)
	}
}

func TestFindTemplatesDirectory(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, ".github/PULL_REQUEST_TEMPLATE/feature.md", "feature")
	writeTemplate(t, root, ".github/PULL_REQUEST_TEMPLATE/bugfix.md", "bugfix")
	writeTemplate(t, root, ".github/PULL_REQUEST_TEMPLATE/release.md", "release")

	finder := NewFinder(root, config.TemplateConfig{}, nil)
	got := finder.FindTemplates()
	if len(got) != 3 {
		t.Fatalf("FindTemplates returned %d candidates, want 3: %+v", len(got), got)
	}
	for _, c := range got {
		if !strings.HasPrefix(c.Path, ".github/PULL_REQUEST_TEMPLATE/") {
			t.Errorf("unexpected candidate path %s", c.Path)
		}
	}
}

func TestFindTemplatesDepthLimit(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "a/b/c/PULL_REQUEST_TEMPLATE/deep.md", "deep")

	shallow := NewFinder(root, config.TemplateConfig{MaxDepth: 2}, nil)
	if got := shallow.FindTemplates(); len(got) != 0 {
		t.Errorf("depth-limited finder matched %+v, want none", got)
	}

	deep := NewFinder(root, config.TemplateConfig{MaxDepth: 6}, nil)
	if got := deep.FindTemplates(); len(got) != 1 {
		t.Errorf("finder with depth 6 returned %d candidates, want 1", len(got))
	}
}

func TestSelectorPicksByPath(t *testing.T) {
	candidates := []Candidate{
		{Path: ".github/PULL_REQUEST_TEMPLATE/feature.md", Content: "feature"},
		{Path: ".github/PULL_REQUEST_TEMPLATE/bugfix.md", Content: "bugfix"},
	}
	oracle := &cannedOracle{reply: ".github/PULL_REQUEST_TEMPLATE/bugfix.md"}
	sel := NewSelector(oracle, nil)

	chosen, err := sel.Select(context.Background(), candidates, testContext())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if chosen.Content != "bugfix" {
		t.Errorf("Select chose %s, want bugfix.md", chosen.Path)
	}

	prompt := oracle.prompts[0]
	for _, c := range candidates {
		if !strings.Contains(prompt, c.Path) {
			t.Errorf("selection prompt missing candidate %s", c.Path)
		}
	}
	if !strings.Contains(prompt, "abc1234 feat: add login form") {
		t.Error("selection prompt missing commit history")
	}
}

func TestSelectorToleratesDecoratedAnswer(t *testing.T) {
	candidates := []Candidate{
		{Path: ".github/PULL_REQUEST_TEMPLATE/feature.md"},
		{Path: ".github/PULL_REQUEST_TEMPLATE/bugfix.md"},
	}
	replies := []string{
		"`feature.md`",
		"\"feature.md\"",
		"feature.md\nbecause it matches the commit history",
	}
	for _, reply := range replies {
		sel := NewSelector(&cannedOracle{reply: reply}, nil)
		chosen, err := sel.Select(context.Background(), candidates, testContext())
		if err != nil {
			t.Errorf("Select(%q): %v", reply, err)
			continue
		}
		if chosen.Path != ".github/PULL_REQUEST_TEMPLATE/feature.md" {
			t.Errorf("Select(%q) chose %s", reply, chosen.Path)
		}
	}
}

func TestSelectorRejectsUnknownAnswer(t *testing.T) {
	candidates := []Candidate{
		{Path: "a.md"},
		{Path: "b.md"},
	}
	sel := NewSelector(&cannedOracle{reply: "c.md"}, nil)

	_, err := sel.Select(context.Background(), candidates, testContext())
	if !errors.Is(err, errors.ErrTemplateNotSelected) {
		t.Errorf("Select with unknown answer returned %v, want ErrTemplateNotSelected", err)
	}
}

func TestResolveZeroCandidates(t *testing.T) {
	root := t.TempDir()
	finder := NewFinder(root, config.TemplateConfig{}, nil)
	oracle := &cannedOracle{reply: "unused"}
	resolver := NewTemplateResolver(finder, NewSelector(oracle, nil), nil, nil)

	if got := resolver.Resolve(context.Background(), testContext()); got != nil {
		t.Errorf("Resolve on an empty repo returned %+v, want nil", got)
	}
	if len(oracle.prompts) != 0 {
		t.Error("Resolve invoked the delegate with zero candidates")
	}
}

func TestResolveSingleCandidateSkipsSelection(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, ".github/pull_request_template.md", "the one")

	finder := NewFinder(root, config.TemplateConfig{}, nil)
	oracle := &cannedOracle{reply: "unused"}
	resolver := NewTemplateResolver(finder, NewSelector(oracle, nil), nil, nil)

	got := resolver.Resolve(context.Background(), testContext())
	if got == nil || got.Content != "the one" {
		t.Fatalf("Resolve = %+v, want the single candidate", got)
	}
	if len(oracle.prompts) != 0 {
		t.Error("Resolve invoked the delegate with a single candidate")
	}
}

func TestResolveSelectionFailureIsNonFatal(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, ".github/PULL_REQUEST_TEMPLATE/a.md", "a")
	writeTemplate(t, root, ".github/PULL_REQUEST_TEMPLATE/b.md", "b")

	finder := NewFinder(root, config.TemplateConfig{}, nil)
	oracle := &cannedOracle{err: errors.New("delegate unavailable")}
	resolver := NewTemplateResolver(finder, NewSelector(oracle, nil), nil, nil)

	if got := resolver.Resolve(context.Background(), testContext()); got != nil {
		t.Errorf("Resolve after selection failure returned %+v, want nil", got)
	}
	if len(oracle.prompts) != 1 {
		t.Errorf("delegate invoked %d times, want 1", len(oracle.prompts))
	}
}
