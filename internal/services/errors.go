package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse         = errors.New("parse error")
	ErrValidation    = errors.New("validation failure")
	ErrTransient     = errors.New("transient platform error")
	ErrPermanent     = errors.New("permanent platform error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later retry classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := joinDetail(stage, operation, message)
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// IsTransient reports whether the error is worth retrying. Only errors
// tagged with ErrTransient qualify; everything else, including untagged
// errors, is treated as final so misclassified failures never loop.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsPermanent reports whether the error was explicitly tagged as a
// non-retryable platform failure.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

// Message returns the human-readable portion of a wrapped service error,
// without the retry-classification prefix. Operators read this in run
// records and notifications; the marker is plumbing.
func Message(err error) string {
	if err == nil {
		return ""
	}
	text := strings.TrimSpace(err.Error())
	for _, marker := range []error{ErrParse, ErrValidation, ErrTransient, ErrPermanent, ErrConfiguration, ErrNotFound} {
		if prefix := marker.Error() + ": "; strings.HasPrefix(text, prefix) {
			return strings.TrimPrefix(text, prefix)
		}
	}
	return text
}

func joinDetail(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			parts = append(parts, field)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
