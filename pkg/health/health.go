package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// StatusHealthy means every check passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy means at least one check failed.
	StatusUnhealthy = "unhealthy"

	defaultTimeout = 5 * time.Second
)

// CheckFunc checks one dependency. The redis, db and job packages return
// checks of this shape for their clients.
type CheckFunc func(ctx context.Context) error

// Checks maps a service name to its check.
type Checks map[string]CheckFunc

// Check is the outcome of one check.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report aggregates the outcome of Run.
type Report struct {
	Status string           `json:"status"`
	Checks map[string]Check `json:"checks,omitempty"`
}

// Failed returns the names of failed checks in sorted order.
func (r *Report) Failed() []string {
	var names []string
	for _, name := range slices.Sorted(maps.Keys(r.Checks)) {
		if r.Checks[name].Status != StatusHealthy {
			names = append(names, name)
		}
	}
	return names
}

// Err is nil for a healthy report. Otherwise it joins ErrCheckFailed with
// one "name: error" entry per failed check.
func (r *Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failed)+1)
	errs = append(errs, ErrCheckFailed)
	for _, name := range failed {
		errs = append(errs, fmt.Errorf("%s: %s", name, r.Checks[name].Error))
	}
	return errors.Join(errs...)
}

type runner struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures Run.
type Option func(*runner)

// WithTimeout bounds the whole run. Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(r *runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger reports failed checks at warning level.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// Run executes every check concurrently under one deadline.
// A check still running at the deadline is reported as timed out.
func Run(ctx context.Context, checks Checks, opts ...Option) *Report {
	r := &runner{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	report := &Report{Status: StatusHealthy}
	if len(checks) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	names := slices.Sorted(maps.Keys(checks))
	results := make([]error, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			results[i] = runCheck(ctx, checks[name])
			return nil
		})
	}
	_ = g.Wait()

	report.Checks = make(map[string]Check, len(names))
	for i, name := range names {
		if err := results[i]; err != nil {
			r.logger.WarnContext(ctx, "health check failed", slog.String("check", name), slog.Any("error", err))
			report.Checks[name] = Check{Status: StatusUnhealthy, Error: err.Error()}
			report.Status = StatusUnhealthy
			continue
		}
		report.Checks[name] = Check{Status: StatusHealthy}
	}
	return report
}

func runCheck(ctx context.Context, check CheckFunc) error {
	if check == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- check(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrCheckTimeout, ctx.Err())
	}
}
