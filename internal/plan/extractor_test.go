package plan

import (
	"context"
	"strings"
	"testing"

	"github.com/capstanhq/capstan/internal/errors"
)

func TestParseStepCount(t *testing.T) {
	tests := []struct {
		reply   string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{" 7 \n", 7, false},
		{"+2", 2, false},
		{"12", 12, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"three", 0, true},
		{"", 0, true},
		{"3.", 0, true},
		{"3 steps", 0, true},
		{"3\n4", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, err := ParseStepCount(tt.reply)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrStepCountInvalid) {
					t.Errorf("ParseStepCount(%q): expected ErrStepCountInvalid, got %v", tt.reply, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStepCount(%q) returned error: %v", tt.reply, err)
			}
			if got != tt.want {
				t.Errorf("ParseStepCount(%q) = %d, want %d", tt.reply, got, tt.want)
			}
		})
	}
}

func TestStepExtractorCount(t *testing.T) {
	oracle := &fakeOracle{reply: "4"}
	e := NewStepExtractor(oracle, nil)

	count, err := e.Count(context.Background(), sectionedPlan)
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}

	if len(oracle.prompts) != 1 {
		t.Fatalf("expected 1 delegate call, got %d", len(oracle.prompts))
	}
	if !strings.Contains(oracle.prompts[0], "## Steps") {
		t.Error("prompt missing plan content")
	}
	if !strings.Contains(oracle.prompts[0], "just an integer") {
		t.Error("prompt missing strict-format instruction")
	}
}

func TestStepExtractorRejectsUnparseableReply(t *testing.T) {
	oracle := &fakeOracle{reply: "There are three steps."}
	e := NewStepExtractor(oracle, nil)

	_, err := e.Count(context.Background(), "1. A\n")
	var stepErr *errors.StepCountError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *errors.StepCountError, got %T: %v", err, err)
	}
	if stepErr.Response != "There are three steps." {
		t.Errorf("Response = %q", stepErr.Response)
	}
}

func TestStepExtractorDelegateFailure(t *testing.T) {
	oracle := &fakeOracle{err: errors.NewDelegateError("boom", errors.ErrTimeout)}
	e := NewStepExtractor(oracle, nil)

	_, err := e.Count(context.Background(), "1. A\n")
	if !errors.Is(err, errors.ErrTimeout) {
		t.Errorf("expected wrapped delegate error, got %v", err)
	}
}
