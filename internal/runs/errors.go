package runs

import "errors"

var (
	// ErrRunNotFound is returned when an operation targets a run id that
	// does not exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrTerminalRun is returned when an update targets a run that already
	// reached a terminal status. Terminal rows are history; use Reissue to
	// retry a source.
	ErrTerminalRun = errors.New("run is terminal")
)
