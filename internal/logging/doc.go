// Package logging builds the slog loggers used across the quality gate.
//
// New constructs a logger from explicit options; NewFromConfig applies the
// CLI policy of mirroring every record to stderr and to the log file under
// the configured log directory. Two handlers are provided: a console
// handler that renders one scannable line per record, and a JSON handler
// for machine-readable sinks. WithContext copies run, stage, and request
// identifiers from a context onto the logger so stage code does not thread
// them by hand.
package logging
