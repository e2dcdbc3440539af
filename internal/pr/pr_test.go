package pr

import (
	"context"
	"strings"
	"testing"
)

// cannedOracle replies with a fixed string or error and records prompts.
type cannedOracle struct {
	reply   string
	err     error
	prompts []string
}

func (o *cannedOracle) Name() string        { return "canned" }
func (o *cannedOracle) DisplayName() string { return "Canned" }

func (o *cannedOracle) Generate(_ context.Context, prompt string) (string, error) {
	o.prompts = append(o.prompts, prompt)
	return o.reply, o.err
}

func testContext() Context {
	return Context{
		Branch:       "feature/add-login",
		Base:         "main",
		CommitLog:    "abc1234 feat: add login form",
		ChangedFiles: []string{"login.go", "login_test.go"},
	}
}

func TestGenerate(t *testing.T) {
	oracle := &cannedOracle{reply: `{"title": "feat: add login", "body": "Adds the login form."}`}
	g := NewGenerator(oracle, nil)

	content, err := g.Generate(context.Background(), testContext())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if content.Title != "feat: add login" {
		t.Errorf("Title = %q", content.Title)
	}
	if content.Body != "Adds the login form." {
		t.Errorf("Body = %q", content.Body)
	}

	if len(oracle.prompts) != 1 {
		t.Fatalf("delegate invoked %d times, want 1", len(oracle.prompts))
	}
	prompt := oracle.prompts[0]
	for _, want := range []string{"feature/add-login", "main", "login.go", "abc1234 feat: add login form"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "Structure the body according to this PR template") {
		t.Error("prompt embedded a template without one being set")
	}
}

func TestGenerateEmbedsTemplate(t *testing.T) {
	oracle := &cannedOracle{reply: `{"title": "t", "body": "b"}`}
	g := NewGenerator(oracle, nil)

	prCtx := testContext()
	prCtx.Template = &Candidate{Path: ".github/pull_request_template.md", Content: "## Checklist\n- [ ] tests"}
	if _, err := g.Generate(context.Background(), prCtx); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	prompt := oracle.prompts[0]
	if !strings.Contains(prompt, "## Checklist") {
		t.Error("prompt missing template content")
	}
}

func TestGenerateToleratesFencedReply(t *testing.T) {
	oracle := &cannedOracle{reply: "```json\n{\"title\": \"feat: x\", \"body\": \"y\"}\n```"}
	g := NewGenerator(oracle, nil)

	content, err := g.Generate(context.Background(), testContext())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if content.Title != "feat: x" || content.Body != "y" {
		t.Errorf("content = %+v", content)
	}
}

func TestGenerateEmptyTitleFallsBackToBranch(t *testing.T) {
	oracle := &cannedOracle{reply: `{"title": "  ", "body": "b"}`}
	g := NewGenerator(oracle, nil)

	content, err := g.Generate(context.Background(), testContext())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if content.Title != "Add login" {
		t.Errorf("Title = %q, want %q", content.Title, "Add login")
	}
}

func TestGenerateRejectsNonJSONReply(t *testing.T) {
	oracle := &cannedOracle{reply: "sure, here is a great title for you"}
	g := NewGenerator(oracle, nil)

	if _, err := g.Generate(context.Background(), testContext()); err == nil {
		t.Fatal("Generate accepted a reply with no JSON")
	}
}

func TestFallbackContent(t *testing.T) {
	content := FallbackContent("feature/rate-limit", "abc1234 feat: limit ingest")
	if content.Title != "Rate limit" {
		t.Errorf("Title = %q", content.Title)
	}
	if !strings.Contains(content.Body, "abc1234 feat: limit ingest") {
		t.Errorf("Body = %q, want commit log included", content.Body)
	}

	bare := FallbackContent("fix", "")
	if strings.Contains(bare.Body, "## Commits") {
		t.Errorf("Body = %q, want no commits section", bare.Body)
	}
}

func TestTitleFromBranch(t *testing.T) {
	tests := []struct {
		branch string
		want   string
	}{
		{"feature/add-login-page", "Add login page"},
		{"fix_memory_leak", "Fix memory leak"},
		{"feature-x", "Feature x"},
		{"main", "Main"},
		{"release/v2", "V2"},
		{"//", "//"},
	}
	for _, tt := range tests {
		if got := TitleFromBranch(tt.branch); got != tt.want {
			t.Errorf("TitleFromBranch(%q) = %q, want %q", tt.branch, got, tt.want)
		}
	}
}
