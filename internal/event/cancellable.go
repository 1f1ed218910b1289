package event

// Cancellable is the contract of gating hooks: listeners may veto
// continuation of the workflow that dispatched the hook.
type Cancellable interface {
	// Cancel vetoes continuation. The reason may be empty; callers apply
	// their own default message in that case.
	Cancel(reason string)

	// Allow clears a previous cancellation.
	Allow()

	// IsCancelled reports whether the hook has been cancelled.
	IsCancelled() bool

	// IsAllowed reports whether the workflow may continue.
	IsAllowed() bool

	// CancelReason returns the reason supplied to Cancel, if any.
	CancelReason() string
}

// Gate is an embeddable Cancellable implementation for hook payloads.
type Gate struct {
	cancelled bool
	reason    string
}

// Cancel vetoes continuation with an optional human-readable reason.
func (g *Gate) Cancel(reason string) {
	g.cancelled = true
	g.reason = reason
}

// Allow clears a previous cancellation.
func (g *Gate) Allow() {
	g.cancelled = false
	g.reason = ""
}

// IsCancelled reports whether the gate has been cancelled.
func (g *Gate) IsCancelled() bool {
	return g.cancelled
}

// IsAllowed reports whether the workflow may continue.
func (g *Gate) IsAllowed() bool {
	return !g.cancelled
}

// CancelReason returns the reason supplied to Cancel, if any.
func (g *Gate) CancelReason() string {
	return g.reason
}
