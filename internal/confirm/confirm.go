// Package confirm handles interactive yes/no prompts and the autonomy
// scope that suppresses them for unattended runs.
package confirm

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/huh"

	"github.com/capstanhq/capstan/internal/errors"
)

// Prompt describes a single yes/no question shown to the user.
type Prompt struct {
	// Title is the question itself.
	Title string
	// Description adds optional context below the title.
	Description string
	// Affirmative is the label for the "yes" answer (default: "Yes").
	Affirmative string
	// Negative is the label for the "no" answer (default: "No").
	Negative string
	// Default is the pre-selected answer.
	Default bool
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(p Prompt) (bool, error)
}

// Interactive returns a Confirmer that prompts on the terminal.
func Interactive() Confirmer {
	return interactiveConfirmer{}
}

type interactiveConfirmer struct{}

func (interactiveConfirmer) Confirm(p Prompt) (bool, error) {
	affirmative := p.Affirmative
	if affirmative == "" {
		affirmative = "Yes"
	}
	negative := p.Negative
	if negative == "" {
		negative = "No"
	}

	confirmed := p.Default
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(p.Title).
				Description(p.Description).
				Affirmative(affirmative).
				Negative(negative).
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return false, errors.Wrap(errors.ErrCanceled, "confirmation prompt aborted")
		}
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	return confirmed, nil
}

// autoConfirmer answers every prompt affirmatively without displaying it.
type autoConfirmer struct{}

func (autoConfirmer) Confirm(Prompt) (bool, error) {
	return true, nil
}

// Auto returns a Confirmer that answers every prompt affirmatively.
func Auto() Confirmer {
	return autoConfirmer{}
}

// Gate holds the Confirmer in effect for a run. Code that needs a yes/no
// answer asks the gate rather than a concrete Confirmer, so a scope can
// temporarily swap in auto-confirmation.
type Gate struct {
	mu      sync.Mutex
	current Confirmer
}

// NewGate creates a Gate starting with the given Confirmer.
// If c is nil, the interactive Confirmer is used.
func NewGate(c Confirmer) *Gate {
	if c == nil {
		c = Interactive()
	}
	return &Gate{current: c}
}

// Confirm asks the currently installed Confirmer.
func (g *Gate) Confirm(p Prompt) (bool, error) {
	g.mu.Lock()
	c := g.current
	g.mu.Unlock()
	return c.Confirm(p)
}

// Autonomous reports whether the gate currently auto-confirms.
func (g *Gate) Autonomous() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.current.(autoConfirmer)
	return ok
}

// AutoConfirm runs fn with auto-confirmation installed, restoring the
// previous Confirmer when fn returns. The restore happens even when fn
// returns an error or panics, and scopes nest: each invocation restores
// exactly the Confirmer it replaced.
func (g *Gate) AutoConfirm(fn func() error) error {
	g.mu.Lock()
	prev := g.current
	g.current = autoConfirmer{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.current = prev
		g.mu.Unlock()
	}()

	return fn()
}
