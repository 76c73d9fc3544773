// Package buttondown wraps the Buttondown REST API used to publish issues.
//
// Publishing is a two-step flow: CreateDraft stores the issue and returns
// its id, Send makes that draft public. Send treats an already-sent draft
// as success so publish retries never double-post. Errors are tagged with
// the services retry markers at this boundary: rate limits, 5xx responses,
// and network failures are transient; rejected requests are permanent.
package buttondown
