// Package access is the tenant-scoped authorization gate.
//
// Every club-scoped page and API route composes through the same chain:
// TrialGuard (for trial-gated sections) -> Gate.WithClubAuth -> handler.
// Each step returns a Result holding either a Redirect or the Props bundle
// (identity, membership with resolved role, club id, permission table).
// Failures never escape as errors; they are folded into a redirect while the
// typed Outcome and the underlying error are kept for logs and metrics.
//
// HasAccess is the pure role check used both by the HTTP adapters and by
// handlers that hide or refuse individual actions.
package access
