// Package artifact writes derived pipeline artifacts (plan documents,
// cleanup reports) with a uniform existing-file conflict strategy.
//
// Every stage that writes a derived file goes through a Resolver so that
// overwrite behavior is decided in one place rather than by scattered
// ad hoc checks.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/capstanhq/capstan/internal/confirm"
	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
)

// Strategy selects what happens when a write target already exists.
type Strategy string

const (
	// Overwrite replaces existing content unconditionally.
	Overwrite Strategy = "overwrite"
	// Skip leaves an existing target untouched.
	Skip Strategy = "skip"
	// Prompt asks the confirmation capability; under an auto-confirm scope
	// the capability answers yes, so prompt degrades to overwrite.
	Prompt Strategy = "prompt"
)

// ParseStrategy converts a configuration or flag value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(s)) {
	case Overwrite:
		return Overwrite, nil
	case Skip:
		return Skip, nil
	case Prompt:
		return Prompt, nil
	default:
		return "", fmt.Errorf("invalid conflict strategy %q (valid: overwrite, skip, prompt)", s)
	}
}

// Resolution reports how a write was resolved.
type Resolution int

const (
	// ResolutionWritten means the content was written to the target.
	ResolutionWritten Resolution = iota
	// ResolutionSkipped means the target was left untouched.
	ResolutionSkipped
)

// String returns a human-readable resolution name.
func (r Resolution) String() string {
	switch r {
	case ResolutionWritten:
		return "written"
	case ResolutionSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Conflict records a collision between a write target and an existing file.
// It is resolved once and never persisted.
type Conflict struct {
	Path     string
	Exists   bool
	Strategy Strategy
}

// Resolver writes artifacts according to a conflict strategy, consulting the
// confirmation gate when the strategy is Prompt.
type Resolver struct {
	strategy Strategy
	gate     *confirm.Gate
	logger   *logging.Logger
}

// NewResolver creates a Resolver. A nil gate gets an interactive default; a
// nil logger discards.
func NewResolver(strategy Strategy, gate *confirm.Gate, logger *logging.Logger) *Resolver {
	if gate == nil {
		gate = confirm.NewGate(nil)
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Resolver{
		strategy: strategy,
		gate:     gate,
		logger:   logger,
	}
}

// Strategy returns the resolver's configured strategy.
func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// WriteFile writes content to path, resolving any conflict with an existing
// file per the strategy. The returned Resolution reports whether content was
// written or the existing file was kept.
func (r *Resolver) WriteFile(path string, content []byte) (Resolution, error) {
	exists, err := fileExists(path)
	if err != nil {
		return ResolutionSkipped, errors.NewArtifactError("failed to stat target", err).
			WithPath(path).
			WithStrategy(string(r.strategy))
	}

	conflict := Conflict{Path: path, Exists: exists, Strategy: r.strategy}
	write, err := r.resolve(conflict)
	if err != nil {
		return ResolutionSkipped, err
	}
	if !write {
		r.logger.Debug("artifact write skipped", "path", path, "strategy", string(r.strategy))
		return ResolutionSkipped, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return ResolutionSkipped, errors.NewArtifactError("failed to create artifact directory", err).
				WithPath(path).
				WithStrategy(string(r.strategy))
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return ResolutionSkipped, errors.NewArtifactError("failed to write artifact", err).
			WithPath(path).
			WithStrategy(string(r.strategy))
	}

	r.logger.Debug("artifact written",
		"path", path,
		"bytes", len(content),
		"replaced_existing", exists)
	return ResolutionWritten, nil
}

// resolve decides whether the conflict permits a write.
func (r *Resolver) resolve(c Conflict) (bool, error) {
	if !c.Exists {
		return true, nil
	}

	switch c.Strategy {
	case Overwrite:
		return true, nil
	case Skip:
		return false, nil
	case Prompt:
		ok, err := r.gate.Confirm(confirm.Prompt{
			Title:       fmt.Sprintf("%s already exists. Overwrite it?", c.Path),
			Description: "The previous content will be replaced.",
			Affirmative: "Overwrite",
			Negative:    "Keep existing",
		})
		if err != nil {
			return false, errors.NewArtifactError("conflict prompt failed", err).
				WithPath(c.Path).
				WithStrategy(string(c.Strategy))
		}
		return ok, nil
	default:
		return false, errors.NewArtifactError(
			fmt.Sprintf("unknown conflict strategy %q", c.Strategy), nil,
		).WithPath(c.Path)
	}
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
