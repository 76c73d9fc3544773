package runs

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle of a pipeline run.
type Status string

const (
	StatusGenerated     Status = "generated"
	StatusValidating    Status = "validating"
	StatusValidated     Status = "validated"
	StatusRejected      Status = "rejected"
	StatusPublishing    Status = "publishing"
	StatusPublished     Status = "published"
	StatusPublishFailed Status = "publish_failed"
	StatusVerifying     Status = "verifying"
	StatusSucceeded     Status = "succeeded"
	StatusVerifyFailed  Status = "verify_failed"
)

var allStatuses = []Status{
	StatusGenerated,
	StatusValidating,
	StatusValidated,
	StatusRejected,
	StatusPublishing,
	StatusPublished,
	StatusPublishFailed,
	StatusVerifying,
	StatusSucceeded,
	StatusVerifyFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// processingStatuses are in-flight states a crashed process can leave
// behind. ResetProcessing rolls each back to the resting state its stage
// started from.
var processingStatuses = map[Status]struct{}{
	StatusValidating: {},
	StatusPublishing: {},
	StatusVerifying:  {},
}

var terminalStatuses = map[Status]struct{}{
	StatusRejected:      {},
	StatusPublishFailed: {},
	StatusSucceeded:     {},
	StatusVerifyFailed:  {},
}

type statusTransition struct {
	from Status
	to   Status
}

var processingRollbacks = []statusTransition{
	{from: StatusValidating, to: StatusGenerated},
	{from: StatusPublishing, to: StatusValidated},
	{from: StatusVerifying, to: StatusPublished},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a run in this status is finished for good.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// IsProcessing reports whether the status reflects an in-flight stage.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// Outcome is the terminal verdict derived from a run's final status.
type Outcome string

const (
	OutcomeSucceeded          Outcome = "succeeded"
	OutcomeFailedValidation   Outcome = "failed_validation"
	OutcomeFailedPublication  Outcome = "failed_publication"
	OutcomeFailedVerification Outcome = "failed_verification"
)

// Outcome maps a terminal status to its verdict. The second return is false
// for non-terminal statuses, which have no outcome yet.
func (s Status) Outcome() (Outcome, bool) {
	switch s {
	case StatusSucceeded:
		return OutcomeSucceeded, true
	case StatusRejected:
		return OutcomeFailedValidation, true
	case StatusPublishFailed:
		return OutcomeFailedPublication, true
	case StatusVerifyFailed:
		return OutcomeFailedVerification, true
	default:
		return "", false
	}
}

// AttemptOutcome tracks how far a single publish/verify cycle progressed.
type AttemptOutcome string

const (
	AttemptPending       AttemptOutcome = "pending"
	AttemptPublished     AttemptOutcome = "published"
	AttemptPublishFailed AttemptOutcome = "publish_failed"
	AttemptVerified      AttemptOutcome = "verified"
	AttemptVerifyFailed  AttemptOutcome = "verify_failed"
)

// Attempt is one publish/verify cycle. Retries append a new record; a
// record's own outcome advances as its cycle does, but a prior record is
// never rewritten by a later cycle.
type Attempt struct {
	Number    int            `json:"number"`
	StartedAt time.Time      `json:"started_at"`
	Outcome   AttemptOutcome `json:"outcome"`
	EmailID   string         `json:"email_id,omitempty"`
	URL       string         `json:"url,omitempty"`
	Probes    int            `json:"probes,omitempty"`
	Detail    string         `json:"detail,omitempty"`
}

// Run represents a pipeline run persisted in SQLite.
type Run struct {
	ID           int64
	Source       string
	Title        string
	IssueNumber  int
	Status       Status
	ReportJSON   string
	EmailID      string
	EmailURL     string
	Attempts     []Attempt
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Body carries the fetched source content between pipeline stages.
	// It is never persisted; a resumed run reloads it from Source.
	Body string
}

// BeginAttempt appends a fresh pending attempt and returns it for the
// caller to fill in as the cycle progresses.
func (r *Run) BeginAttempt(now time.Time) *Attempt {
	r.Attempts = append(r.Attempts, Attempt{
		Number:    len(r.Attempts) + 1,
		StartedAt: now.UTC(),
		Outcome:   AttemptPending,
	})
	return &r.Attempts[len(r.Attempts)-1]
}

// CurrentAttempt returns the most recent attempt, or nil before the first
// publish cycle.
func (r *Run) CurrentAttempt() *Attempt {
	if len(r.Attempts) == 0 {
		return nil
	}
	return &r.Attempts[len(r.Attempts)-1]
}

// SetFailed moves the run to a terminal failure status with a reason.
func (r *Run) SetFailed(status Status, message string) {
	r.Status = status
	r.ErrorMessage = message
}

// Outcome returns the run's terminal verdict, or false while in flight.
func (r *Run) Outcome() (Outcome, bool) {
	return r.Status.Outcome()
}

// attemptsFromJSON tolerates empty and legacy payloads; a run with no
// recorded attempts simply has none.
func attemptsFromJSON(data string) []Attempt {
	if strings.TrimSpace(data) == "" {
		return nil
	}
	var attempts []Attempt
	_ = json.Unmarshal([]byte(data), &attempts)
	return attempts
}

func attemptsToJSON(attempts []Attempt) (string, error) {
	if len(attempts) == 0 {
		return "", nil
	}
	data, err := json.Marshal(attempts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HealthSummary describes aggregated run counts per key lifecycle state.
type HealthSummary struct {
	Total      int
	Queued     int
	Processing int
	Failed     int
	Succeeded  int
}

// DatabaseHealth captures diagnostic information about the run database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalRuns        int
	Error            string
}
