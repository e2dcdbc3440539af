package notify

import (
	"bytes"
	"strings"
	"testing"
)

func TestNotifierMessages(t *testing.T) {
	tests := []struct {
		name string
		emit func(n *Notifier)
		want string
	}{
		{
			name: "info",
			emit: func(n *Notifier) { n.Infof("generating plan for %s", "ticket.md") },
			want: "generating plan for ticket.md",
		},
		{
			name: "success",
			emit: func(n *Notifier) { n.Successf("pushed branch %s", "feature-x") },
			want: "pushed branch feature-x",
		},
		{
			name: "warn",
			emit: func(n *Notifier) { n.Warnf("cleanup failed, continuing") },
			want: "cleanup failed, continuing",
		},
		{
			name: "fail",
			emit: func(n *Notifier) { n.Failf("step %d failed", 3) },
			want: "step 3 failed",
		},
		{
			name: "skip",
			emit: func(n *Notifier) { n.Skipf("plan exists, skipping") },
			want: "plan exists, skipping",
		},
		{
			name: "plain",
			emit: func(n *Notifier) { n.Plainf("done in %s", "4m12s") },
			want: "done in 4m12s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(New(&buf))

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
			if !strings.HasSuffix(buf.String(), "\n") {
				t.Errorf("output should end with newline, got %q", buf.String())
			}
		})
	}
}

func TestNotifierStage(t *testing.T) {
	var buf bytes.Buffer
	n := New(&buf)

	n.Stage("push")

	out := buf.String()
	if !strings.Contains(out, "PUSH") {
		t.Errorf("stage header should be uppercased, got %q", out)
	}
	if !strings.Contains(out, "─") {
		t.Errorf("stage header should include a separator, got %q", out)
	}
}

func TestNotifierStepf(t *testing.T) {
	t.Run("short description", func(t *testing.T) {
		var buf bytes.Buffer
		n := New(&buf)

		n.Stepf(3, 7, "add the retry loop")

		out := buf.String()
		if !strings.Contains(out, "Step 3/7") {
			t.Errorf("expected step counter in %q", out)
		}
		if !strings.Contains(out, "add the retry loop") {
			t.Errorf("expected description in %q", out)
		}
	})

	t.Run("long description is truncated", func(t *testing.T) {
		var buf bytes.Buffer
		n := New(&buf)

		n.Stepf(1, 2, strings.Repeat("x", 200))

		out := buf.String()
		if !strings.Contains(out, "...") {
			t.Errorf("expected truncated description in %q", out)
		}
		if strings.Contains(out, strings.Repeat("x", 120)) {
			t.Errorf("description was not truncated: %q", out)
		}
	})
}

func TestNotifierNilWriterDefaultsToStdout(t *testing.T) {
	n := New(nil)
	if n.out == nil {
		t.Error("New(nil) should default to stdout")
	}
}

func TestSilent(t *testing.T) {
	n := Silent()

	// Should not panic and should not write anywhere visible
	n.Infof("hidden")
	n.Stage("hidden")
	n.Stepf(1, 1, "hidden")
}

func TestTruncateSimple(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short text unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncates with ellipsis", "hello world", 8, "hello..."},
		{"tiny max", "hello", 2, "..."},
		{"utf8 safe", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateSimple(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("TruncateSimple(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestRenderMarkdownWithoutColor(t *testing.T) {
	// With color disabled, markdown passes through unchanged
	t.Setenv("NO_COLOR", "1")

	input := "# Title\n\nsome *markdown* text"
	if got := RenderMarkdown(input); got != input {
		t.Errorf("RenderMarkdown with NO_COLOR should return input unchanged, got %q", got)
	}
}
