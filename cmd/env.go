package main

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brokerage-metrics/internal/classify"
	"github.com/sells-group/brokerage-metrics/internal/config"
	"github.com/sells-group/brokerage-metrics/internal/metrics"
	"github.com/sells-group/brokerage-metrics/internal/model"
	"github.com/sells-group/brokerage-metrics/internal/resilience"
	"github.com/sells-group/brokerage-metrics/internal/source"
)

var validate = validator.New()

// now is swapped in tests.
var now = time.Now

// validateFlags checks a tagged flag struct and names every failing flag.
func validateFlags(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return eris.Wrap(err, "validate flags")
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fe.Field()+" failed "+fe.Tag())
	}
	return eris.Errorf("invalid flags: %s", strings.Join(problems, "; "))
}

// loadSnapshot opens the configured source, loads it and closes it again.
// Transient failures are retried per source.retry_attempts.
func loadSnapshot(ctx context.Context, mode string) (*source.Snapshot, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	policy := resilience.DefaultPolicy()
	policy.MaxAttempts = cfg.Source.RetryAttempts
	policy.InitialBackoff = time.Duration(cfg.Source.RetryBackoffMS) * time.Millisecond
	policy.OnRetry = resilience.LogRetry(cfg.Source.Driver)

	return resilience.Do(ctx, policy, loadOnce)
}

func loadOnce(ctx context.Context) (*source.Snapshot, error) {
	src, err := source.Open(ctx, cfg.Source)
	if err != nil {
		return nil, eris.Wrap(err, "open source")
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			zap.L().Warn("close source", zap.Error(cerr))
		}
	}()

	snap, err := src.Load(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load snapshot")
	}
	return snap, nil
}

// newAssembler builds the metrics assembler from configuration.
func newAssembler(c *config.Config) *metrics.Assembler {
	return metrics.NewAssembler(metrics.Options{
		Palette:          classify.Palette(c.Metrics.Palette),
		Locale:           c.Metrics.Locale,
		CompactThreshold: c.Metrics.CompactThreshold,
		RentalAlertDays:  c.Alerts.RentalDays,
	})
}

// reference resolves the reporting year: the flag, then report.year, then
// the current UTC year. The month always comes from the clock.
func reference(year int) model.Reference {
	ref := model.ReferenceFor(now())
	if year == 0 {
		year = cfg.Report.Year
	}
	return ref.WithYear(year)
}

// today is the as-of date for rental alerts.
func today() model.Date {
	return model.DateOf(now())
}

func findUser(snap *source.Snapshot, id string) (model.UserData, error) {
	u, ok := snap.User(id)
	if !ok {
		return model.UserData{}, eris.Errorf("user %q not found in snapshot", id)
	}
	return u, nil
}
