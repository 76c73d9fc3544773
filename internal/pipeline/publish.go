package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/document"
	"github.com/nycterent/thefilter/internal/logging"
	"github.com/nycterent/thefilter/internal/runs"
	"github.com/nycterent/thefilter/internal/services"
	"github.com/nycterent/thefilter/internal/services/buttondown"
)

// fallbackIssueNumber is used when the archive listing cannot be fetched.
// Issue 001 predates automated numbering, so the sequence resumes at two
// rather than colliding with it.
const fallbackIssueNumber = 2

// publishStage creates a Buttondown draft and sends it. The draft id is
// written back to the run before send, so a retried attempt resumes the
// existing draft instead of creating a duplicate issue.
type publishStage struct {
	cfg       *config.Config
	publisher Publisher
	loader    *document.Loader
	logger    *slog.Logger
}

func newPublishStage(cfg *config.Config, publisher Publisher, loader *document.Loader, logger *slog.Logger) *publishStage {
	return &publishStage{cfg: cfg, publisher: publisher, loader: loader, logger: logger}
}

func (s *publishStage) Prepare(ctx context.Context, run *runs.Run) error {
	if run.Body == "" {
		body, err := s.loader.LoadRaw(ctx, run.Source)
		if err != nil {
			return err
		}
		run.Body = body
	}
	if strings.TrimSpace(run.Title) != "" {
		return nil
	}
	if run.IssueNumber == 0 {
		run.IssueNumber = s.nextIssueNumber(ctx)
	}
	run.Title = fmt.Sprintf("%s %03d", s.cfg.Buttondown.SubjectPrefix, run.IssueNumber)
	return nil
}

// nextIssueNumber counts prior issues in the archive by subject marker.
// Numbering is cosmetic, so a failed listing falls back instead of
// blocking the publish.
func (s *publishStage) nextIssueNumber(ctx context.Context) int {
	emails, err := s.publisher.ListEmails(ctx)
	if err != nil {
		logging.WithContext(ctx, s.logger).Warn("issue numbering fell back to default",
			logging.Int("issue_number", fallbackIssueNumber),
			logging.Error(err),
		)
		return fallbackIssueNumber
	}
	return buttondown.NextIssueNumber(emails, s.cfg.Buttondown.SubjectMarker)
}

func (s *publishStage) Execute(ctx context.Context, run *runs.Run) error {
	attempt := run.BeginAttempt(time.Now())
	if run.EmailID == "" {
		email, err := s.publisher.CreateDraft(ctx, run.Title, run.Body)
		if err != nil {
			attempt.Outcome = runs.AttemptPublishFailed
			attempt.Detail = services.Message(err)
			return err
		}
		run.EmailID = email.ID
		if email.AbsoluteURL != "" {
			run.EmailURL = email.AbsoluteURL
		}
	}
	attempt.EmailID = run.EmailID
	if err := s.publisher.Send(ctx, run.EmailID); err != nil {
		attempt.Outcome = runs.AttemptPublishFailed
		attempt.Detail = services.Message(err)
		return err
	}
	attempt.Outcome = runs.AttemptPublished
	attempt.URL = run.EmailURL
	return nil
}
