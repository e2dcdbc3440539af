package pr

import (
	"context"
	"os/exec"
	"slices"
	"testing"

	"github.com/capstanhq/capstan/internal/errors"
)

// stubGH replaces the command seams so gh invocations echo url instead of
// running the real CLI.
func stubGH(t *testing.T, url string) *[][]string {
	t.Helper()
	originalCommand := commandContext
	originalLook := lookPath
	t.Cleanup(func() {
		commandContext = originalCommand
		lookPath = originalLook
	})

	lookPath = func(string) (string, error) { return "/usr/bin/gh", nil }

	captured := &[][]string{}
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		*captured = append(*captured, args)
		return exec.CommandContext(ctx, "echo", url)
	}
	return captured
}

func TestGHAvailableMissingBinary(t *testing.T) {
	original := lookPath
	t.Cleanup(func() { lookPath = original })
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	err := NewGH(nil).Available(context.Background())
	if !errors.Is(err, errors.ErrGHNotInstalled) {
		t.Errorf("err = %v, want ErrGHNotInstalled", err)
	}
}

func TestGHSubmit(t *testing.T) {
	captured := stubGH(t, "https://github.com/acme/widget/pull/9")

	url, err := NewGH(nil).Submit(context.Background(), Request{
		Branch:    "feature-x",
		Base:      "main",
		Title:     "feat: widget",
		Body:      "Adds the widget.",
		Draft:     true,
		Reviewers: []string{"octocat"},
		Labels:    []string{"automation"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if url != "https://github.com/acme/widget/pull/9" {
		t.Errorf("url = %q", url)
	}

	if len(*captured) != 1 {
		t.Fatalf("gh invoked %d times, want 1", len(*captured))
	}
	args := (*captured)[0]
	want := []string{
		"pr", "create",
		"--title", "feat: widget",
		"--body", "Adds the widget.",
		"--head", "feature-x",
		"--base", "main",
		"--draft",
		"--reviewer", "octocat",
		"--label", "automation",
	}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v\nwant  %v", args, want)
	}
}

func TestGHSubmitOmitsOptionalFlags(t *testing.T) {
	captured := stubGH(t, "https://github.com/acme/widget/pull/10")

	_, err := NewGH(nil).Submit(context.Background(), Request{
		Branch: "feature-y",
		Base:   "main",
		Title:  "fix: leak",
		Body:   "Plugs it.",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	args := (*captured)[0]
	for _, flag := range []string{"--draft", "--reviewer", "--label"} {
		if slices.Contains(args, flag) {
			t.Errorf("args contain %s for a request without it", flag)
		}
	}
}
