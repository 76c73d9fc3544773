package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nycterent/thefilter/internal/logging"
	"github.com/nycterent/thefilter/internal/probe"
	"github.com/nycterent/thefilter/internal/runs"
	"github.com/nycterent/thefilter/internal/services"
)

// verifyStage probes the public archive until the published issue is
// visible. Not-yet-visible and unreachable probes are both transient;
// only an implausible identifier or an archive rejection is permanent.
type verifyStage struct {
	verifier Verifier
	logger   *slog.Logger
}

func newVerifyStage(verifier Verifier, logger *slog.Logger) *verifyStage {
	return &verifyStage{verifier: verifier, logger: logger}
}

func (s *verifyStage) Prepare(ctx context.Context, run *runs.Run) error {
	if run.EmailID == "" {
		return services.Wrap(services.ErrPermanent, "verify", "probe", "run has no email id", nil)
	}
	return nil
}

func (s *verifyStage) Execute(ctx context.Context, run *runs.Run) error {
	attempt := run.CurrentAttempt()
	if attempt == nil {
		// A run resumed after a crash may have lost its publish cycle
		// records; verification still needs one to count probes on.
		attempt = run.BeginAttempt(time.Now())
		attempt.Outcome = runs.AttemptPublished
		attempt.EmailID = run.EmailID
		attempt.URL = run.EmailURL
	}
	attempt.Probes++

	var (
		result probe.Result
		err    error
	)
	if run.EmailURL != "" {
		result, err = s.verifier.VerifyURL(ctx, run.EmailURL, run.EmailID)
	} else {
		result, err = s.verifier.Verify(ctx, run.EmailID)
	}
	if err != nil {
		attempt.Detail = services.Message(err)
		return err
	}

	if result.URL != "" {
		attempt.URL = result.URL
		run.EmailURL = result.URL
	}

	if result.State == probe.Verified {
		attempt.Outcome = runs.AttemptVerified
		attempt.Detail = ""
		return nil
	}

	attempt.Detail = result.Detail
	logging.WithContext(ctx, s.logger).Debug("archive probe inconclusive",
		logging.String("state", string(result.State)),
		logging.Int("probes", attempt.Probes),
		logging.String("detail", result.Detail),
	)
	return services.Wrap(services.ErrTransient, "verify", "probe", result.Detail, nil)
}
