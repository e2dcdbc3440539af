// Package pipeline wires the capstan stages into the end-to-end solve flow:
// plan generation, step extraction, step execution, optional cleanup, push,
// and pull request creation.
//
// Stages run strictly in sequence; no stage starts before the prior stage's
// outcome is recorded. The delegate and git are the only blocking calls, and
// both are bounded by the caller's context.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/capstanhq/capstan/internal/artifact"
	"github.com/capstanhq/capstan/internal/cleanup"
	"github.com/capstanhq/capstan/internal/config"
	"github.com/capstanhq/capstan/internal/confirm"
	"github.com/capstanhq/capstan/internal/delegate"
	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
	"github.com/capstanhq/capstan/internal/notify"
	"github.com/capstanhq/capstan/internal/plan"
	"github.com/capstanhq/capstan/internal/pr"
	"github.com/capstanhq/capstan/internal/session"
	"github.com/capstanhq/capstan/internal/vcs"
)

// Options selects the optional behavior of one pipeline run. Flags override
// the corresponding config values before the run starts; the pipeline itself
// never consults viper.
type Options struct {
	// Autonomy runs the whole pipeline under the auto-confirm scope.
	Autonomy bool
	// AbortPolicy is passed to the execution session.
	AbortPolicy string
	// OnConflict is the artifact conflict strategy for derived files.
	OnConflict artifact.Strategy
	// WatchPlan warns when the plan artifact changes on disk mid-run.
	WatchPlan bool
	// Cleanup runs the post-execution cleanup pass. The solve flow always
	// cleans at low intensity.
	Cleanup bool
	// CreatePR raises a pull request after a successful push.
	CreatePR bool
	// Draft raises the pull request as a draft.
	Draft bool
	// Base is the PR base branch; empty auto-detects the default branch.
	Base string
	// Title overrides the generated PR title when non-empty.
	Title string
	// NoTemplate skips PR template discovery entirely.
	NoTemplate bool
	// RemoveTicket takes the ticket file back off the branch once execution
	// finishes, like the plan artifact. Set when the ticket was fetched from
	// an issue tracker rather than provided by the user.
	RemoveTicket bool
}

// Result aggregates what one run produced. Fields past the stage that failed
// or was skipped hold their zero values.
type Result struct {
	RunID     string
	PlanPath  string
	StepCount int

	State    session.State
	Outcomes []session.Outcome

	CleanupRan bool

	Pushed bool
	Push   vcs.PushResult

	PRURL string
}

// Pipeline owns the collaborators shared across stages. Construct one per
// run: the confirmation gate inside must not be shared between concurrent
// runs.
type Pipeline struct {
	cfg      *config.Config
	oracle   delegate.Oracle
	repo     *vcs.Repository
	gate     *confirm.Gate
	resolver *artifact.Resolver
	submit   pr.Submitter
	logger   *logging.Logger
	notifier *notify.Notifier
}

// New assembles a pipeline around an oracle and a repository. The submitter
// may be nil when Options.CreatePR is false.
func New(cfg *config.Config, oracle delegate.Oracle, repo *vcs.Repository, gate *confirm.Gate, resolver *artifact.Resolver, submit pr.Submitter, logger *logging.Logger, notifier *notify.Notifier) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if gate == nil {
		gate = confirm.NewGate(nil)
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	if notifier == nil {
		notifier = notify.Silent()
	}
	if resolver == nil {
		resolver = artifact.NewResolver(artifact.Prompt, gate, logger)
	}
	return &Pipeline{
		cfg:      cfg,
		oracle:   oracle,
		repo:     repo,
		gate:     gate,
		resolver: resolver,
		submit:   submit,
		logger:   logger,
		notifier: notifier,
	}
}

// Solve runs the full ticket-to-pull-request flow for the specification at
// specPath. The returned Result always carries everything completed before
// the error, so callers can report partial progress.
func (p *Pipeline) Solve(ctx context.Context, specPath string, opts Options) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	logger := p.logger.WithRun(res.RunID)
	logger.Info("pipeline run starting", "spec_path", specPath, "autonomy", opts.Autonomy)

	run := func() error { return p.solve(ctx, specPath, opts, res, logger) }
	var err error
	if opts.Autonomy {
		err = p.gate.AutoConfirm(run)
	} else {
		err = run()
	}
	if err != nil {
		logger.Error("pipeline run failed", "error", err.Error())
		return res, err
	}
	logger.Info("pipeline run finished", "state", string(res.State), "pushed", res.Pushed, "pr_url", res.PRURL)
	return res, nil
}

func (p *Pipeline) solve(ctx context.Context, specPath string, opts Options, res *Result, logger *logging.Logger) error {
	if err := p.repo.Check(ctx); err != nil {
		return err
	}

	// Plan generation.
	p.notifier.Stage("Plan")
	spec, err := plan.LoadSpecification(specPath)
	if err != nil {
		p.notifier.Failf("%v", err)
		return err
	}

	generator := plan.NewGenerator(p.oracle, p.resolver, logger.WithStage("plan"))
	planPath, planText, resolution, err := generator.Generate(ctx, spec)
	if err != nil {
		p.notifier.Failf("%v", err)
		return err
	}
	res.PlanPath = planPath
	if resolution == artifact.ResolutionSkipped {
		p.notifier.Skipf("Kept existing plan at %s", planPath)
	} else {
		p.notifier.Successf("Implementation plan saved to %s", planPath)
	}

	// The plan artifact rides the branch while steps execute, so the
	// delegate can read it from the working tree.
	if err := p.repo.CommitFile(ctx, planPath, "docs: add implementation plan"); err != nil {
		p.notifier.Failf("%v", err)
		return err
	}

	// Step extraction. A count that does not parse aborts the run before
	// any code change is attempted.
	extractor := plan.NewStepExtractor(p.oracle, logger.WithStage("steps"))
	count, err := extractor.Count(ctx, planText)
	if err != nil {
		p.notifier.Failf("%v", err)
		return err
	}
	res.StepCount = count

	implPlan := plan.NewImplementationPlan(planPath, planText, count)
	if implPlan.Diverged() {
		p.notifier.Warnf("Delegate counted %d steps but the plan lists %d numbered entries", count, implPlan.EntryCount)
		logger.Warn("step count divergence", "extracted", count, "recognized", implPlan.EntryCount)
	}

	// Step execution.
	p.notifier.Stage("Execute")
	p.notifier.Infof("Executing %d steps", count)

	var watcher *plan.Watcher
	if opts.WatchPlan {
		watcher, err = plan.NewWatcher(planPath, func(path string) {
			p.notifier.Warnf("Plan file %s changed on disk; the session keeps executing the plan it parsed", path)
		}, logger.WithStage("watch"))
		if err != nil {
			logger.Warn("plan watcher unavailable", "error", err.Error())
		} else {
			watcher.Start()
			defer watcher.Stop()
		}
	}

	sess := session.New(implPlan, p.oracle, p.gate, session.Options{
		AbortPolicy: opts.AbortPolicy,
		Logger:      logger.WithStage("execute"),
		Notifier:    p.notifier,
	})
	runErr := sess.Run(ctx)
	// The plan artifact comes off the branch below; the watcher would report
	// that removal as an external change.
	if watcher != nil {
		watcher.Stop()
	}
	res.State = sess.State()
	res.Outcomes = sess.Outcomes()
	if runErr != nil {
		p.notifier.Failf("Execution aborted with %d of %d steps unexecuted", sess.Remaining(), count)
		return runErr
	}
	p.notifier.Successf("Executed %d steps (%d succeeded, %d failed)", count, sess.SucceededCount(), sess.FailedCount())

	// Land the step edits and take the plan artifact back off the branch.
	if err := p.repo.CommitAll(ctx, "feat: implement plan steps"); err != nil {
		p.notifier.Failf("%v", err)
		return err
	}
	if err := p.repo.RemoveAndCommit(ctx, planPath, "docs: remove implementation plan"); err != nil {
		p.notifier.Failf("%v", err)
		return err
	}
	// A fetched ticket file is as transient as the plan; a failure to drop
	// it is reported but never blocks the push.
	if opts.RemoveTicket {
		if err := p.repo.RemoveAndCommit(ctx, specPath, "docs: remove ticket file"); err != nil {
			p.notifier.Warnf("Could not remove ticket file: %v", err)
			logger.Warn("ticket file removal failed", "path", specPath, "error", err.Error())
		}
	}

	// Optional cleanup, strictly after the steps and strictly before the
	// push so cleaned code is part of the pushed change set. Failure here
	// is reported but does not stop the run.
	if opts.Cleanup {
		stage := cleanup.NewStage(p.oracle, p.repo, p.gate, cleanup.Options{
			Logger:   logger.WithStage("cleanup"),
			Notifier: p.notifier,
		})
		cleanupRes, err := stage.Run(ctx, cleanup.IntensityLow)
		switch {
		case err != nil:
			p.notifier.Warnf("Cleanup failed, continuing: %v", err)
			logger.Warn("cleanup stage failed", "error", err.Error())
		case !cleanupRes.Skipped:
			res.CleanupRan = true
			if err := p.repo.CommitAll(ctx, "refactor: cleanup pass"); err != nil {
				p.notifier.Warnf("Could not commit cleanup edits: %v", err)
			}
		}
	}

	return p.finalize(ctx, opts, res, logger)
}

// finalize pushes the branch and, when requested, raises the pull request.
// A classified push failure stops the run without an error: the code changes
// are already applied locally and the result carries the classification.
func (p *Pipeline) finalize(ctx context.Context, opts Options, res *Result, logger *logging.Logger) error {
	p.notifier.Stage("Push")

	// Branch state is never cached; the tree may have changed since the
	// last stage looked.
	branch, err := p.repo.DetectBranch(ctx)
	if err != nil {
		p.notifier.Failf("%v", err)
		return err
	}

	res.Push = p.repo.Push(ctx, branch)
	if !res.Push.Succeeded {
		p.notifier.Failf("%s", res.Push.UserMessage())
		return nil
	}
	res.Pushed = true
	p.notifier.Successf("Pushed %s to origin with upstream tracking", branch)

	if !opts.CreatePR {
		return nil
	}

	p.notifier.Stage("Pull Request")
	url, err := p.RaisePR(ctx, branch, opts, logger)
	if err != nil {
		p.notifier.Failf("%v", err)
		return err
	}
	res.PRURL = url
	p.notifier.Successf("Pull request created: %s", url)
	return nil
}

// RaisePR assembles and submits the pull request for branch: base detection,
// template resolution, delegate-generated title and body, reviewer
// resolution. Template problems never block the PR; content-generation
// problems degrade to a title derived from the branch name.
func (p *Pipeline) RaisePR(ctx context.Context, branch string, opts Options, logger *logging.Logger) (string, error) {
	if p.submit == nil {
		return "", errors.New("no pull request submitter configured")
	}

	base := opts.Base
	if base == "" {
		detected, err := p.repo.DefaultBranch(ctx)
		if err != nil {
			return "", err
		}
		base = detected
	}
	if base == branch {
		return "", errors.NewValidationError(
			fmt.Sprintf("branch %s is the base branch; check out a feature branch first", branch),
		).WithField("branch")
	}

	ahead, err := p.repo.CommitsAhead(ctx, base, branch)
	if err != nil {
		return "", err
	}
	if ahead == 0 {
		return "", errors.NewValidationError(
			fmt.Sprintf("branch %s has no commits beyond %s", branch, base),
		).WithField("branch")
	}

	commitLog, err := p.repo.CommitHistory(ctx, base, branch)
	if err != nil {
		return "", err
	}
	changed, err := p.repo.ChangedFiles(ctx, base, branch)
	if err != nil {
		return "", err
	}

	prCtx := pr.Context{
		Branch:       branch,
		Base:         base,
		CommitLog:    commitLog,
		ChangedFiles: changed,
	}

	if !opts.NoTemplate {
		finder := pr.NewFinder(p.repo.Dir(), p.cfg.PR.Template, logger.WithStage("pr"))
		selector := pr.NewSelector(p.oracle, logger.WithStage("pr"))
		resolver := pr.NewTemplateResolver(finder, selector, logger.WithStage("pr"), p.notifier)
		prCtx.Template = resolver.Resolve(ctx, prCtx)
	}

	content := p.prContent(ctx, prCtx, logger)
	if opts.Title != "" {
		content.Title = opts.Title
	}

	req := pr.Request{
		Branch:    branch,
		Base:      base,
		Title:     content.Title,
		Body:      content.Body,
		Draft:     opts.Draft,
		Reviewers: pr.ResolveReviewers(changed, p.cfg.PR.Reviewers),
		Labels:    p.cfg.PR.Labels,
	}
	return p.submit.Submit(ctx, req)
}

// prContent generates the PR title and body, falling back to branch-derived
// content when the delegate is disabled or fails.
func (p *Pipeline) prContent(ctx context.Context, prCtx pr.Context, logger *logging.Logger) *pr.Content {
	if !p.cfg.PR.UseDelegate {
		return pr.FallbackContent(prCtx.Branch, prCtx.CommitLog)
	}

	generator := pr.NewGenerator(p.oracle, logger.WithStage("pr"))
	content, err := generator.Generate(ctx, prCtx)
	if err != nil {
		p.notifier.Warnf("PR content generation failed, using a minimal title and body: %v", err)
		logger.Warn("pr content generation failed", "error", err.Error())
		return pr.FallbackContent(prCtx.Branch, prCtx.CommitLog)
	}
	return content
}

// Summary renders a short human-readable recap of a run for the console.
func Summary(res *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan: %s (%d steps)\n", res.PlanPath, res.StepCount)
	if res.State != "" {
		fmt.Fprintf(&b, "Execution: %s", res.State)
		failed := 0
		for _, o := range res.Outcomes {
			if !o.Succeeded {
				failed++
			}
		}
		if failed > 0 {
			fmt.Fprintf(&b, " (%d steps failed)", failed)
		}
		b.WriteString("\n")
	}
	if res.CleanupRan {
		b.WriteString("Cleanup: done\n")
	}
	switch {
	case res.Pushed:
		fmt.Fprintf(&b, "Push: %s\n", res.Push.Branch)
	case res.Push.Kind != "":
		fmt.Fprintf(&b, "Push: failed (%s)\n", res.Push.Kind)
	}
	if res.PRURL != "" {
		fmt.Fprintf(&b, "PR: %s\n", res.PRURL)
	}
	return b.String()
}
