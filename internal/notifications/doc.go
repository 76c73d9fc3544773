// Package notifications delivers terminal run outcomes to operators via
// ntfy. When no topic is configured the service degrades to a noop, so
// callers never need to branch on whether notifications are enabled.
package notifications
