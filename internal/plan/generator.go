package plan

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/capstanhq/capstan/internal/artifact"
	"github.com/capstanhq/capstan/internal/delegate"
	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
)

// planPromptFormat instructs the delegate to produce a markdown plan with a
// numbered Steps section so the entries are locally recognizable.
const planPromptFormat = `You are an expert implementation planner. Turn the ticket below into a clear, actionable implementation plan for this repository.

The plan must be a markdown document with exactly three sections:

## Task Outline
A concise summary of the feature's objective, scope, and desired outcome.

## Steps
A numbered list ("1.", "2.", ...) of sequential implementation steps. Each step must be explicit and actionable, covering code changes, configuration, and tests. Do not include steps like "analyze the code base".

## Warnings
Edge cases, known issues, and caveats to consider, with testing recommendations.

Respond with the markdown plan only, no surrounding commentary.

TICKET:
%s`

// Generator turns a specification document into an implementation-plan
// document through the reasoning delegate.
type Generator struct {
	oracle   delegate.Oracle
	resolver *artifact.Resolver
	logger   *logging.Logger
}

// NewGenerator creates a Generator. The resolver decides what happens when
// the derived plan path already exists.
func NewGenerator(oracle delegate.Oracle, resolver *artifact.Resolver, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Generator{
		oracle:   oracle,
		resolver: resolver,
		logger:   logger,
	}
}

// Generate produces the implementation plan for spec and writes it to the
// derived plan path through the conflict resolver. It returns the plan path,
// the generated text, and how the write was resolved. No file is written
// when the delegate returns an empty result.
func (g *Generator) Generate(ctx context.Context, spec *SpecificationDocument) (string, string, artifact.Resolution, error) {
	g.logger.Info("generating implementation plan", "spec_path", spec.Path)

	reply, err := g.oracle.Generate(ctx, fmt.Sprintf(planPromptFormat, spec.Content))
	if err != nil {
		return "", "", artifact.ResolutionSkipped, errors.NewPlanError("plan generation failed", err).
			WithSpecPath(spec.Path)
	}

	text := strings.TrimSpace(reply)
	if text == "" {
		return "", "", artifact.ResolutionSkipped, errors.NewPlanError("delegate returned an empty plan", errors.ErrPlanEmpty).
			WithSpecPath(spec.Path)
	}

	planPath := spec.PlanPath()
	res, err := g.resolver.WriteFile(planPath, []byte(text+"\n"))
	if err != nil {
		return "", "", res, errors.NewPlanError("failed to save implementation plan", err).
			WithSpecPath(spec.Path).
			WithPlanPath(planPath)
	}
	if res == artifact.ResolutionSkipped {
		// The file on disk was kept; execution has to follow it, not the
		// discarded fresh generation.
		kept, err := os.ReadFile(planPath)
		if err != nil {
			return "", "", res, errors.NewPlanError("failed to read the kept implementation plan", err).
				WithSpecPath(spec.Path).
				WithPlanPath(planPath)
		}
		text = strings.TrimSpace(string(kept))
	}

	g.logger.Info("implementation plan generated",
		"plan_path", planPath,
		"resolution", res.String(),
		"plan_chars", len(text))
	return planPath, text, res, nil
}
