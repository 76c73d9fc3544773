package pipeline

import (
	"context"

	"github.com/nycterent/thefilter/internal/runs"
)

// Handler is one pipeline stage. Prepare derives whatever the attempt needs
// (document content, subject line); Execute performs a single attempt. The
// manager owns retries, persistence, and status transitions, so both
// methods mutate the run in memory and leave storage alone.
type Handler interface {
	Prepare(ctx context.Context, run *runs.Run) error
	Execute(ctx context.Context, run *runs.Run) error
}

// pipelineStage maps a resting status to the handler that advances it and
// to the statuses the run lands in afterwards. maxAttempts bounds how many
// times Execute runs for one stage entry; only transient failures consume
// additional attempts.
type pipelineStage struct {
	name        string
	start       runs.Status
	processing  runs.Status
	success     runs.Status
	failure     runs.Status
	maxAttempts int
	handler     Handler
}

func (m *Manager) buildStages() {
	publishAttempts := m.cfg.Buttondown.MaxAttempts
	if publishAttempts < 1 {
		publishAttempts = 1
	}
	verifyAttempts := m.cfg.Verify.MaxAttempts
	if verifyAttempts < 1 {
		verifyAttempts = 1
	}

	m.stages = []pipelineStage{
		{
			name:        "validate",
			start:       runs.StatusGenerated,
			processing:  runs.StatusValidating,
			success:     runs.StatusValidated,
			failure:     runs.StatusRejected,
			maxAttempts: 1,
			handler:     newValidateStage(m.cfg, m.loader, m.logger),
		},
		{
			name:        "publish",
			start:       runs.StatusValidated,
			processing:  runs.StatusPublishing,
			success:     runs.StatusPublished,
			failure:     runs.StatusPublishFailed,
			maxAttempts: publishAttempts,
			handler:     newPublishStage(m.cfg, m.publisher, m.loader, m.logger),
		},
		{
			name:        "verify",
			start:       runs.StatusPublished,
			processing:  runs.StatusVerifying,
			success:     runs.StatusSucceeded,
			failure:     runs.StatusVerifyFailed,
			maxAttempts: verifyAttempts,
			handler:     newVerifyStage(m.verifier, m.logger),
		},
	}

	m.stageByStart = make(map[runs.Status]pipelineStage, len(m.stages))
	for _, stage := range m.stages {
		m.stageByStart[stage.start] = stage
	}
}
