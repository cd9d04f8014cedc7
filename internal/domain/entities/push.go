package entities

// PushMode selects the failure policy of a push fan-out.
type PushMode string

const (
	// PushBestEffort reports partial success normally and only fails when
	// every remote failed.
	PushBestEffort PushMode = "best-effort"
	// PushAllOrNothing fails the fan-out as soon as any remote failed.
	PushAllOrNothing PushMode = "all-or-nothing"
)

// RemotePushResult is the outcome of pushing to one remote.
type RemotePushResult struct {
	RemoteURL string
	Provider  string
	Host      string
	Success   bool
	Err       error
}

// PushFanoutResult aggregates the outcome of pushing one branch to every
// push-capable remote.
type PushFanoutResult struct {
	Branch       string
	Results      []RemotePushResult
	AnySucceeded bool
	AllSucceeded bool
}

// Finalize computes the aggregate flags from the per-remote results.
// An empty fan-out succeeded vacuously on "all" but not on "any".
func (r *PushFanoutResult) Finalize() {
	r.AnySucceeded = false
	r.AllSucceeded = true
	for _, result := range r.Results {
		if result.Success {
			r.AnySucceeded = true
		} else {
			r.AllSucceeded = false
		}
	}
	if len(r.Results) == 0 {
		r.AllSucceeded = false
	}
}

// FailedRemotes lists the remote URLs that failed, for actionable
// user-facing messages.
func (r *PushFanoutResult) FailedRemotes() []string {
	var failed []string
	for _, result := range r.Results {
		if !result.Success {
			failed = append(failed, result.RemoteURL)
		}
	}
	return failed
}
