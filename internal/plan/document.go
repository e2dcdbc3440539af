// Package plan covers the plan lifecycle: reading the specification document
// (the ticket), generating an implementation plan through the reasoning
// delegate, extracting the step count, and watching the plan artifact for
// external modification during execution.
package plan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/capstanhq/capstan/internal/errors"
)

// PlanSuffix replaces the specification file's extension to form the
// implementation-plan artifact path.
const PlanSuffix = "_implementation_plan.md"

// SpecificationDocument is the ticket or feature text that seeds plan
// generation. It is read once at pipeline start and never mutated.
type SpecificationDocument struct {
	Path    string
	Content string
}

// LoadSpecification reads the specification document at path. A missing file
// and an unreadable file are distinct errors, and the underlying read error
// is surfaced rather than swallowed.
func LoadSpecification(path string) (*SpecificationDocument, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("specification file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewPlanError("failed to read specification file", err).
			WithSpecPath(path)
	}

	return &SpecificationDocument{
		Path:    path,
		Content: string(data),
	}, nil
}

// PlanPath returns the derived implementation-plan path for this document.
func (d *SpecificationDocument) PlanPath() string {
	return DerivePlanPath(d.Path)
}

// DerivePlanPath replaces the specification file's extension with the
// implementation-plan suffix, preserving the rest of the path unchanged.
func DerivePlanPath(specPath string) string {
	stem := strings.TrimSuffix(specPath, filepath.Ext(specPath))
	return stem + PlanSuffix
}
