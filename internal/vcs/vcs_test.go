package vcs

import (
	"context"
	"slices"
	"testing"

	"github.com/capstanhq/capstan/internal/errors"
)

// mockCall records a single command invocation
type mockCall struct {
	dir  string
	name string
	args []string
}

// mockExecutor is a test double for CommandExecutor
type mockExecutor struct {
	calls      []mockCall
	runOutputs [][]byte
	runErrors  []error
	callIndex  int
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{}
}

func (m *mockExecutor) addResponse(output []byte, err error) {
	m.runOutputs = append(m.runOutputs, output)
	m.runErrors = append(m.runErrors, err)
}

func (m *mockExecutor) Run(_ context.Context, dir string, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, mockCall{dir: dir, name: name, args: args})
	idx := m.callIndex
	m.callIndex++
	if idx < len(m.runOutputs) {
		return m.runOutputs[idx], m.runErrors[idx]
	}
	return nil, nil
}

func (m *mockExecutor) RunQuiet(_ context.Context, dir string, name string, args ...string) error {
	m.calls = append(m.calls, mockCall{dir: dir, name: name, args: args})
	idx := m.callIndex
	m.callIndex++
	if idx < len(m.runErrors) {
		return m.runErrors[idx]
	}
	return nil
}

func (m *mockExecutor) lastCall() mockCall {
	if len(m.calls) == 0 {
		return mockCall{}
	}
	return m.calls[len(m.calls)-1]
}

func TestDetectBranch(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		err        error
		want       string
		wantErr    bool
		isDetached bool
	}{
		{
			name:   "named branch",
			output: "feature/login\n",
			want:   "feature/login",
		},
		{
			name:       "detached HEAD",
			output:     "HEAD\n",
			wantErr:    true,
			isDetached: true,
		},
		{
			name:    "git error",
			output:  "fatal: not a git repository",
			err:     errors.New("exit status 128"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockExecutor()
			mock.addResponse([]byte(tt.output), tt.err)

			r := NewWithExecutor("/repo", mock, nil)
			got, err := r.DetectBranch(context.Background())

			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectBranch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectBranch() = %q, want %q", got, tt.want)
			}
			if tt.isDetached && !errors.Is(err, errors.ErrDetachedHead) {
				t.Errorf("detached HEAD not signaled: %v", err)
			}

			call := mock.lastCall()
			want := []string{"rev-parse", "--abbrev-ref", "HEAD"}
			if call.name != "git" || !slices.Equal(call.args, want) {
				t.Errorf("unexpected command: %v %v", call.name, call.args)
			}
		})
	}
}

func TestDefaultBranch(t *testing.T) {
	t.Run("main exists", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse(nil, nil)

		r := NewWithExecutor("/repo", mock, nil)
		got, err := r.DefaultBranch(context.Background())
		if err != nil {
			t.Fatalf("DefaultBranch: %v", err)
		}
		if got != "main" {
			t.Errorf("DefaultBranch() = %q, want main", got)
		}
	})

	t.Run("falls back to master", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse(nil, errors.New("unknown revision"))
		mock.addResponse(nil, nil)

		r := NewWithExecutor("/repo", mock, nil)
		got, err := r.DefaultBranch(context.Background())
		if err != nil {
			t.Fatalf("DefaultBranch: %v", err)
		}
		if got != "master" {
			t.Errorf("DefaultBranch() = %q, want master", got)
		}
	})

	t.Run("neither exists", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse(nil, errors.New("unknown revision"))
		mock.addResponse(nil, errors.New("unknown revision"))

		r := NewWithExecutor("/repo", mock, nil)
		_, err := r.DefaultBranch(context.Background())
		if !errors.Is(err, errors.ErrNoDefaultBranch) {
			t.Errorf("error = %v, want ErrNoDefaultBranch", err)
		}
	})
}

func TestRemoteURL(t *testing.T) {
	t.Run("returns trimmed URL", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse([]byte("git@github.com:acme/widget.git\n"), nil)

		r := NewWithExecutor("/repo", mock, nil)
		got, err := r.RemoteURL(context.Background(), "origin")
		if err != nil {
			t.Fatalf("RemoteURL: %v", err)
		}
		if got != "git@github.com:acme/widget.git" {
			t.Errorf("RemoteURL() = %q", got)
		}

		call := mock.lastCall()
		want := []string{"remote", "get-url", "origin"}
		if !slices.Equal(call.args, want) {
			t.Errorf("args = %v, want %v", call.args, want)
		}
	})

	t.Run("missing remote", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse([]byte("error: No such remote 'origin'"), errors.New("exit status 2"))

		r := NewWithExecutor("/repo", mock, nil)
		if _, err := r.RemoteURL(context.Background(), "origin"); err == nil {
			t.Fatal("RemoteURL succeeded without a remote")
		}
	})
}

func TestCheck(t *testing.T) {
	t.Run("inside a repository", func(t *testing.T) {
		mock := newMockExecutor()
		r := NewWithExecutor("/repo", mock, nil)
		if err := r.Check(context.Background()); err != nil {
			t.Errorf("Check: %v", err)
		}
	})

	t.Run("outside a repository", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse(nil, errors.New("exit status 128"))
		r := NewWithExecutor("/tmp", mock, nil)
		err := r.Check(context.Background())
		if !errors.Is(err, errors.ErrNotGitRepository) {
			t.Errorf("error = %v, want ErrNotGitRepository", err)
		}
	})
}

func TestRoot(t *testing.T) {
	mock := newMockExecutor()
	mock.addResponse([]byte("/home/dev/project\n"), nil)

	r := NewWithExecutor("/home/dev/project/sub", mock, nil)
	got, err := r.Root(context.Background())
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if got != "/home/dev/project" {
		t.Errorf("Root() = %q", got)
	}
}

func TestChangedFiles(t *testing.T) {
	t.Run("files listed", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse([]byte("auth/login.go\nREADME.md\n"), nil)

		r := NewWithExecutor("/repo", mock, nil)
		got, err := r.ChangedFiles(context.Background(), "main", "feature/login")
		if err != nil {
			t.Fatalf("ChangedFiles: %v", err)
		}
		if !slices.Equal(got, []string{"auth/login.go", "README.md"}) {
			t.Errorf("ChangedFiles() = %v", got)
		}

		call := mock.lastCall()
		want := []string{"diff", "--name-only", "main...feature/login"}
		if !slices.Equal(call.args, want) {
			t.Errorf("unexpected command: %v", call.args)
		}
	})

	t.Run("no changes", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse([]byte("\n"), nil)

		r := NewWithExecutor("/repo", mock, nil)
		got, err := r.ChangedFiles(context.Background(), "main", "feature/login")
		if err != nil {
			t.Fatalf("ChangedFiles: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ChangedFiles() = %v, want empty", got)
		}
	})
}

func TestCommitHistory(t *testing.T) {
	mock := newMockExecutor()
	mock.addResponse([]byte("abc1234 Add login handler\ndef5678 Wire login route\n"), nil)

	r := NewWithExecutor("/repo", mock, nil)
	got, err := r.CommitHistory(context.Background(), "main", "feature/login")
	if err != nil {
		t.Fatalf("CommitHistory: %v", err)
	}
	if got != "abc1234 Add login handler\ndef5678 Wire login route" {
		t.Errorf("CommitHistory() = %q", got)
	}

	call := mock.lastCall()
	want := []string{"log", "main..feature/login", "--pretty=format:%h %s", "--no-merges"}
	if !slices.Equal(call.args, want) {
		t.Errorf("unexpected command: %v", call.args)
	}
}

func TestCommitsAhead(t *testing.T) {
	t.Run("counts", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse([]byte("3\n"), nil)

		r := NewWithExecutor("/repo", mock, nil)
		got, err := r.CommitsAhead(context.Background(), "main", "HEAD")
		if err != nil {
			t.Fatalf("CommitsAhead: %v", err)
		}
		if got != 3 {
			t.Errorf("CommitsAhead() = %d, want 3", got)
		}
	})

	t.Run("unparseable output", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse([]byte("lots\n"), nil)

		r := NewWithExecutor("/repo", mock, nil)
		if _, err := r.CommitsAhead(context.Background(), "main", "HEAD"); err == nil {
			t.Error("CommitsAhead accepted non-numeric output")
		}
	})
}

func TestCommitAll(t *testing.T) {
	t.Run("stages then commits", func(t *testing.T) {
		mock := newMockExecutor()
		r := NewWithExecutor("/repo", mock, nil)

		if err := r.CommitAll(context.Background(), "Implement plan steps"); err != nil {
			t.Fatalf("CommitAll: %v", err)
		}
		if len(mock.calls) != 2 {
			t.Fatalf("got %d calls, want 2", len(mock.calls))
		}
		if !slices.Equal(mock.calls[0].args, []string{"add", "-A"}) {
			t.Errorf("first call = %v", mock.calls[0].args)
		}
		if !slices.Equal(mock.calls[1].args, []string{"commit", "-m", "Implement plan steps"}) {
			t.Errorf("second call = %v", mock.calls[1].args)
		}
	})

	t.Run("nothing to commit is not an error", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse(nil, nil)
		mock.addResponse([]byte("nothing to commit, working tree clean"), errors.New("exit status 1"))

		r := NewWithExecutor("/repo", mock, nil)
		if err := r.CommitAll(context.Background(), "msg"); err != nil {
			t.Errorf("CommitAll: %v", err)
		}
	})

	t.Run("staging failure", func(t *testing.T) {
		mock := newMockExecutor()
		mock.addResponse([]byte("fatal: pathspec error"), errors.New("exit status 128"))

		r := NewWithExecutor("/repo", mock, nil)
		if err := r.CommitAll(context.Background(), "msg"); err == nil {
			t.Error("CommitAll swallowed staging failure")
		}
	})
}

func TestCommitFile(t *testing.T) {
	mock := newMockExecutor()
	r := NewWithExecutor("/repo", mock, nil)

	if err := r.CommitFile(context.Background(), "ticket_implementation_plan.md", "Add implementation plan"); err != nil {
		t.Fatalf("CommitFile: %v", err)
	}
	if len(mock.calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(mock.calls))
	}
	if !slices.Equal(mock.calls[0].args, []string{"add", "ticket_implementation_plan.md"}) {
		t.Errorf("first call = %v", mock.calls[0].args)
	}
}

func TestRemoveAndCommit(t *testing.T) {
	mock := newMockExecutor()
	r := NewWithExecutor("/repo", mock, nil)

	if err := r.RemoveAndCommit(context.Background(), "ticket_implementation_plan.md", "Remove implementation plan"); err != nil {
		t.Fatalf("RemoveAndCommit: %v", err)
	}
	if len(mock.calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(mock.calls))
	}
	if !slices.Equal(mock.calls[0].args, []string{"rm", "ticket_implementation_plan.md"}) {
		t.Errorf("first call = %v", mock.calls[0].args)
	}
	if !slices.Equal(mock.calls[1].args, []string{"commit", "-m", "Remove implementation plan"}) {
		t.Errorf("second call = %v", mock.calls[1].args)
	}
}

func TestHasUncommittedChanges(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"clean repo", "", false},
		{"modified file", " M file.txt\n", true},
		{"untracked file", "?? newfile.txt\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockExecutor()
			mock.addResponse([]byte(tt.output), nil)

			r := NewWithExecutor("/repo", mock, nil)
			got, err := r.HasUncommittedChanges(context.Background())
			if err != nil {
				t.Fatalf("HasUncommittedChanges: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasUncommittedChanges() = %v, want %v", got, tt.want)
			}
		})
	}
}
