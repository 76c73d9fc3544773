// Package services is the thin shared layer between the pipeline and its
// integrations: context helpers that stamp run, stage, and request
// identifiers onto log records, and the error classification (transient or
// permanent) that decides whether a failed stage attempt is retried.
package services
