// Package pipeline drives publication runs through the quality gate.
//
// A run advances through an explicit stage table: validate (lint the
// document), publish (create and send the platform draft), verify (probe
// the public archive). Each stage maps a resting status to a processing
// status and a success/failure pair; the manager owns transitions,
// persistence, retries, and the single terminal-outcome notification.
// Transient failures retry with jittered exponential backoff bounded by
// both a per-stage attempt ceiling and a total wait budget; non-transient
// failures move the run to its terminal failure status immediately.
// Cancellation is honored between stages and between attempts, leaving the
// run parked in its processing status for ResetProcessing to roll back.
package pipeline
