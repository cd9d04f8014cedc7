package commands

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

// PushOptions selects what and how to push.
type PushOptions struct {
	Branch             string
	Mode               entities.PushMode
	AllowForce         bool
	ConfirmDestructive bool
}

// PushCommand fans one branch out to every push-capable remote through the
// git engine. Remotes are independent: one remote's failure never prevents
// the attempt on the next.
type PushCommand struct {
	repoID      string
	remotes     []string
	detector    domainRepos.VendorDetector
	engine      domainRepos.GitEngine
	credentials domainRepos.CredentialStore
}

// NewPushCommand wires the fan-out from its explicit dependencies.
func NewPushCommand(
	repoID string,
	remotes []string,
	detector domainRepos.VendorDetector,
	engine domainRepos.GitEngine,
	credentials domainRepos.CredentialStore,
) *PushCommand {
	return &PushCommand{
		repoID:      repoID,
		remotes:     remotes,
		detector:    detector,
		engine:      engine,
		credentials: credentials,
	}
}

// PushToAllRemotes pushes opts.Branch to every push-capable remote in
// order and aggregates the per-remote outcomes. The returned fan-out
// result is populated even when an error is returned, so callers can show
// the full breakdown.
func (p *PushCommand) PushToAllRemotes(ctx context.Context, opts PushOptions) (*entities.PushFanoutResult, error) {
	if p.repoID == "" {
		return nil, entities.NewOpError(entities.KindUnknown, entities.ClassFatal,
			"push", fmt.Errorf("repository id is missing"))
	}

	branch := entities.ShortRefName(opts.Branch)
	if branch == "" {
		return nil, entities.NewOpError(entities.KindUnknown, entities.ClassFatal,
			"push", fmt.Errorf("branch name is empty"))
	}

	mode := opts.Mode
	if mode == "" {
		mode = entities.PushBestEffort
	}

	targets := entities.ValidRemotes(p.remotes)
	if len(targets) == 0 {
		return nil, entities.NewOpError(entities.KindUnknown, entities.ClassUserActionable,
			"push", fmt.Errorf("no push-capable remotes configured")).WithBranch(branch)
	}

	result := &entities.PushFanoutResult{Branch: branch}
	for _, remote := range targets {
		result.Results = append(result.Results, p.pushToRemote(ctx, remote, branch, opts))
	}
	result.Finalize()

	if err := p.raiseForMode(mode, result); err != nil {
		return result, err
	}
	return result, nil
}

// pushToRemote pushes to one remote. Resolution failures (provider,
// credential) are recorded on the result, never raised.
func (p *PushCommand) pushToRemote(
	ctx context.Context,
	remote *entities.RemoteURL,
	branch string,
	opts PushOptions,
) entities.RemotePushResult {
	outcome := entities.RemotePushResult{
		RemoteURL: remote.Raw,
		Host:      remote.Host,
	}

	if name, _, ok := p.detector.Detect(remote); ok {
		outcome.Provider = name
	}

	var token string
	if !remote.Credentialless() {
		if tokens := p.credentials.TokensForHost(remote.Host); len(tokens) > 0 {
			token = tokens[0]
		}
	}

	err := p.engine.SafePushToRemote(ctx, domainRepos.PushRequest{
		RepoID:             p.repoID,
		RemoteURL:          remote.Raw,
		Branch:             branch,
		Token:              token,
		Provider:           outcome.Provider,
		AllowForce:         opts.AllowForce,
		ConfirmDestructive: opts.ConfirmDestructive,
	})
	if err != nil {
		logger.Warnf("push to %s failed: %v", remote.Raw, err)
		outcome.Err = err
		return outcome
	}

	outcome.Success = true
	return outcome
}

// raiseForMode applies the failure policy: all-or-nothing raises on any
// failure, best-effort only when every remote failed.
func (p *PushCommand) raiseForMode(mode entities.PushMode, result *entities.PushFanoutResult) error {
	switch {
	case mode == entities.PushAllOrNothing && !result.AllSucceeded:
		return entities.NewOpError(entities.KindUnknown, entities.ClassUserActionable,
			"push", fmt.Errorf("push failed for %s", formatFailures(result))).
			WithBranch(result.Branch)
	case !result.AnySucceeded:
		return entities.NewOpError(entities.KindUnknown, entities.ClassRetriable,
			"push", fmt.Errorf("push failed for every remote: %s", formatFailures(result))).
			WithBranch(result.Branch)
	}
	return nil
}

func formatFailures(result *entities.PushFanoutResult) string {
	failed := result.FailedRemotes()
	return fmt.Sprintf("%d of %d remote(s): %s",
		len(failed), len(result.Results), strings.Join(failed, ", "))
}
