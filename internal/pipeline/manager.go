package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/document"
	"github.com/nycterent/thefilter/internal/logging"
	"github.com/nycterent/thefilter/internal/notifications"
	"github.com/nycterent/thefilter/internal/probe"
	"github.com/nycterent/thefilter/internal/runs"
	"github.com/nycterent/thefilter/internal/services"
	"github.com/nycterent/thefilter/internal/services/buttondown"
)

// Publisher is the slice of the publishing platform the pipeline needs.
type Publisher interface {
	CreateDraft(ctx context.Context, subject, body string) (buttondown.Email, error)
	Send(ctx context.Context, id string) error
	ListEmails(ctx context.Context) ([]buttondown.Email, error)
}

// Verifier probes the public archive for a published issue.
type Verifier interface {
	Verify(ctx context.Context, id string) (probe.Result, error)
	VerifyURL(ctx context.Context, target, id string) (probe.Result, error)
}

// Dependencies overrides the external services the manager talks to. Nil
// fields fall back to config-derived defaults; tests point them at local
// fixtures.
type Dependencies struct {
	Publisher Publisher
	Verifier  Verifier
	Notifier  notifications.Service
	Loader    *document.Loader
}

// Manager drives runs through the stage table. It is the single authority
// for status transitions, retries, persistence, and the one terminal
// notification each run gets.
type Manager struct {
	cfg    *config.Config
	store  *runs.Store
	logger *slog.Logger

	publisher Publisher
	verifier  Verifier
	notifier  notifications.Service
	loader    *document.Loader

	pollInterval time.Duration

	stages       []pipelineStage
	stageByStart map[runs.Status]pipelineStage
}

// NewManager constructs a manager with config-derived service clients.
func NewManager(cfg *config.Config, store *runs.Store, logger *slog.Logger) *Manager {
	return NewManagerWithDependencies(cfg, store, logger, Dependencies{})
}

// NewManagerWithDependencies constructs a manager with explicit service
// implementations.
func NewManagerWithDependencies(cfg *config.Config, store *runs.Store, logger *slog.Logger, deps Dependencies) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if deps.Publisher == nil {
		deps.Publisher = buttondown.NewFromConfig(cfg)
	}
	if deps.Verifier == nil {
		deps.Verifier = probe.NewFromConfig(cfg)
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(cfg)
	}
	if deps.Loader == nil {
		deps.Loader = document.NewLoader(
			document.WithFetchTimeout(time.Duration(cfg.Lint.FetchTimeout) * time.Second),
		)
	}
	pollInterval := time.Duration(cfg.Workflow.QueuePollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	m := &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "pipeline"),
		publisher:    deps.Publisher,
		verifier:     deps.Verifier,
		notifier:     deps.Notifier,
		loader:       deps.Loader,
		pollInterval: pollInterval,
	}
	m.buildStages()
	return m
}

// ProcessRun advances a run until it reaches a terminal status.
func (m *Manager) ProcessRun(ctx context.Context, run *runs.Run) error {
	return m.ProcessRunUntil(ctx, run, "")
}

// ProcessRunUntil advances a run until it reaches a terminal status or
// parks at stopAt. A dry run stops at validated without publishing.
func (m *Manager) ProcessRunUntil(ctx context.Context, run *runs.Run, stopAt runs.Status) error {
	if run == nil {
		return errors.New("run is nil")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if run.Status.IsTerminal() {
			return nil
		}
		if stopAt != "" && run.Status == stopAt {
			return nil
		}
		stage, ok := m.stageByStart[run.Status]
		if !ok {
			logging.WithContext(ctx, m.logger).Warn("no stage configured for status",
				logging.Int64(logging.FieldRunID, run.ID),
				logging.String("status", string(run.Status)),
			)
			return nil
		}
		if err := m.runStage(ctx, stage, run); err != nil {
			return err
		}
	}
}

// runStage executes one stage entry: transition to the processing status,
// then attempt the handler under the retry policy until success, a
// non-transient failure, the attempt ceiling, or the wait budget.
func (m *Manager) runStage(ctx context.Context, stage pipelineStage, run *runs.Run) error {
	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(services.WithStage(services.WithRunID(ctx, run.ID), stage.name), requestID)
	logger := logging.WithContext(stageCtx, m.logger)

	run.Status = stage.processing
	if err := m.store.Update(stageCtx, run); err != nil {
		return fmt.Errorf("transition run %d to %s: %w", run.ID, stage.processing, err)
	}

	stageStart := time.Now()
	logger.Info("stage started",
		logging.String(logging.FieldSource, run.Source),
		logging.String("title", strings.TrimSpace(run.Title)),
	)

	schedule := newBackoff(m.cfg.Retry)
	var lastErr error
	for attempt := 1; ; attempt++ {
		err := stage.handler.Prepare(stageCtx, run)
		if err == nil {
			if perr := m.store.Update(stageCtx, run); perr != nil {
				return fmt.Errorf("persist stage preparation: %w", perr)
			}
			err = stage.handler.Execute(stageCtx, run)
			if err == nil {
				run.Status = stage.success
				run.ErrorMessage = ""
				if perr := m.store.Update(stageCtx, run); perr != nil {
					return fmt.Errorf("persist stage result: %w", perr)
				}
				logger.Info("stage completed",
					logging.String("next_status", string(run.Status)),
					logging.Int(logging.FieldAttempt, attempt),
					logging.Duration("stage_duration", time.Since(stageStart)),
				)
				if run.Status == runs.StatusSucceeded {
					m.notifySucceeded(stageCtx, run)
				}
				return nil
			}
			// Attempt bookkeeping outlives the failure; persist it so an
			// operator sees how far each cycle got even after a crash.
			if perr := m.store.Update(stageCtx, run); perr != nil {
				logger.Error("failed to persist attempt state", logging.Error(perr))
			}
		}

		// Per-call timeouts also surface as context errors, so shutdown is
		// detected on the stage context itself rather than the returned
		// error. An interrupted run keeps its processing status and is
		// rolled back by ResetProcessing on the next invocation.
		if stageCtx.Err() != nil {
			logger.Debug("stage interrupted by shutdown", logging.Error(err))
			return stageCtx.Err()
		}

		if !services.IsTransient(err) {
			return m.failRun(stageCtx, stage, run, services.Message(err), err)
		}

		lastErr = err
		if attempt >= stage.maxAttempts {
			logger.Warn("attempt ceiling reached",
				logging.Int(logging.FieldAttempt, attempt),
				logging.Error(err),
			)
			break
		}
		delay, ok := schedule.Next()
		if !ok {
			logger.Warn("retry wait budget exhausted",
				logging.Int(logging.FieldAttempt, attempt),
				logging.Error(err),
			)
			break
		}
		logger.Warn("transient failure, retrying",
			logging.Int(logging.FieldAttempt, attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if serr := sleep(stageCtx, delay); serr != nil {
			logger.Debug("stage interrupted by shutdown")
			return serr
		}
	}

	return m.failRun(stageCtx, stage, run, "retries exhausted: "+services.Message(lastErr), lastErr)
}

// failRun moves the run to the stage's terminal failure status, closes the
// open attempt record, persists, and sends the run's one failure
// notification. The notification is skipped when the terminal state could
// not be persisted, since the run will be driven again.
func (m *Manager) failRun(ctx context.Context, stage pipelineStage, run *runs.Run, message string, cause error) error {
	run.SetFailed(stage.failure, message)
	if attempt := run.CurrentAttempt(); attempt != nil {
		if stage.failure == runs.StatusVerifyFailed && attempt.Outcome == runs.AttemptPublished {
			attempt.Outcome = runs.AttemptVerifyFailed
		}
		if attempt.Detail == "" {
			attempt.Detail = message
		}
	}

	logger := logging.WithContext(ctx, m.logger)
	logger.Error("stage failed",
		logging.Alert("stage_failure"),
		logging.String(logging.FieldOutcome, string(stage.failure)),
		logging.String("error_message", message),
		logging.Error(cause),
	)

	if err := m.store.Update(ctx, run); err != nil {
		logger.Error("failed to persist terminal failure", logging.Error(err))
		return err
	}

	m.notifyFailed(ctx, run, message)
	if cause != nil {
		return cause
	}
	return errors.New(message)
}

func (m *Manager) notifySucceeded(ctx context.Context, run *runs.Run) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyRunSucceeded(ctx, runTitle(run), run.EmailURL, len(run.Attempts)); err != nil {
		logging.WithContext(ctx, m.logger).Warn("success notification failed", logging.Error(err))
	}
}

func (m *Manager) notifyFailed(ctx context.Context, run *runs.Run, reason string) {
	if m.notifier == nil {
		return
	}
	outcome, _ := run.Outcome()
	if err := m.notifier.NotifyRunFailed(ctx, runTitle(run), string(outcome), reason); err != nil {
		logging.WithContext(ctx, m.logger).Warn("failure notification failed", logging.Error(err))
	}
}

// runTitle falls back to the source when a run was rejected before a
// subject line was derived.
func runTitle(run *runs.Run) string {
	if title := strings.TrimSpace(run.Title); title != "" {
		return title
	}
	return run.Source
}
