// Package probe confirms that a published issue is actually live.
//
// Verify fetches the public archive page for an email id and reports one of
// three states: the page exists and carries the expected content markers
// (verified), the platform answered but the issue is not there yet
// (not yet visible), or the platform could not be reached (unreachable).
// The last two are retryable; a structurally invalid id fails before any
// network call.
package probe
