package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/capstanhq/capstan/internal/artifact"
	"github.com/capstanhq/capstan/internal/config"
	"github.com/capstanhq/capstan/internal/confirm"
	"github.com/capstanhq/capstan/internal/delegate"
	"github.com/capstanhq/capstan/internal/logging"
	"github.com/capstanhq/capstan/internal/notify"
	"github.com/capstanhq/capstan/internal/pr"
	"github.com/capstanhq/capstan/internal/vcs"
)

// deps holds the collaborators shared by the pipeline commands, wired from
// configuration once per invocation.
type deps struct {
	cfg      *config.Config
	logger   *logging.Logger
	notifier *notify.Notifier
	oracle   delegate.Oracle
	gate     *confirm.Gate
	repo     *vcs.Repository
}

// buildDeps assembles the command dependencies. Callers must Close the
// returned deps so the debug log is flushed.
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		logger, err = logging.NewLogger(cfg.Logging.ResolveDir(), cfg.Logging.Level, logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open debug log: %w", err)
		}
	}

	oracle, err := delegate.New(cfg.Delegate, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	return &deps{
		cfg:      cfg,
		logger:   logger,
		notifier: notify.New(os.Stdout),
		oracle:   oracle,
		gate:     confirm.NewGate(confirm.Interactive()),
		repo:     vcs.New(cwd),
	}, nil
}

// Close flushes and closes the debug log.
func (d *deps) Close() {
	_ = d.logger.Close()
}

// resolver builds the artifact conflict resolver, with the flag value
// overriding the configured strategy when set.
func (d *deps) resolver(flagValue string, changed bool) (*artifact.Resolver, error) {
	raw := d.cfg.Artifact.OnConflict
	if changed {
		raw = flagValue
	}
	strategy, err := artifact.ParseStrategy(raw)
	if err != nil {
		return nil, err
	}
	return artifact.NewResolver(strategy, d.gate, d.logger), nil
}

// submitter builds the configured pull request submitter. The gh CLI is the
// default; the API submitter needs github.token and a parseable origin URL.
func (d *deps) submitter(ctx context.Context) (pr.Submitter, error) {
	switch d.cfg.PR.Submitter {
	case "api":
		remote, err := d.repo.RemoteURL(ctx, "origin")
		if err != nil {
			return nil, err
		}
		owner, repo, err := pr.ParseRepoURL(remote)
		if err != nil {
			return nil, err
		}
		return pr.NewAPI(ctx, d.cfg.GitHub.Token, owner, repo, d.logger)
	default:
		gh := pr.NewGH(d.logger)
		if err := gh.Available(ctx); err != nil {
			return nil, err
		}
		return gh, nil
	}
}

// boolSetting resolves a boolean config value with an optional flag
// override. The flag only wins when it was set on the command line, so
// config values like execution.autonomy keep working alongside flag
// defaults.
func boolSetting(cfgValue, flagValue, changed bool) bool {
	if changed {
		return flagValue
	}
	return cfgValue
}

// abortPolicy resolves the execution abort policy from config and flag.
func (d *deps) abortPolicy(flagValue string, changed bool) (string, error) {
	policy := d.cfg.Execution.AbortPolicy
	if changed {
		policy = flagValue
	}
	if !config.IsValidAbortPolicy(policy) {
		return "", fmt.Errorf("invalid abort policy %q (valid: %v)", policy, config.ValidAbortPolicies())
	}
	return policy, nil
}
