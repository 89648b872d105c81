// Package ledger keeps pool aggregates consistent with the contributions that
// fund them: admission at submission, approval and rejection, and periodic
// reconciliation.
package ledger

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"donationhub/internal/domain"
	"donationhub/internal/notify"
)

const instrumentationName = "donationhub/ledger"

// Notifier receives ledger notifications. Implementations must not block on
// delivery failures.
type Notifier interface {
	Notify(ctx context.Context, recipientID, locale string, msg notify.Message)
	Broadcast(ctx context.Context, topic string, msg notify.Message)
}

// Actor is the verified caller of an operation.
type Actor struct {
	ID     string
	Admin  bool
	Locale string

	// system is only set on SystemActor; a token subject cannot forge it.
	system bool
}

// SystemActor performs automated approvals and scheduled reconciliation.
var SystemActor = Actor{ID: "system", Admin: true, system: true}

// IsSystem reports whether a is the automated actor.
func (a Actor) IsSystem() bool {
	return a.system
}

// Options tunes a Service. Zero values select defaults.
type Options struct {
	Logger     zerolog.Logger
	Policy     AdmissionPolicy
	MaxRetries int
	IDs        IDMinter
	Now        func() time.Time
	// RetryInterval is the first backoff delay after a version conflict.
	RetryInterval time.Duration
}

// Service implements the pool ledger over a domain.Store.
type Service struct {
	store      domain.Store
	notifier   Notifier
	logger     zerolog.Logger
	policy     AdmissionPolicy
	maxRetries int
	ids        IDMinter
	now        func() time.Time
	retryEvery time.Duration
	tracer     trace.Tracer
	metrics    instruments
}

type instruments struct {
	submitted   metric.Int64Counter
	approved    metric.Int64Counter
	rejected    metric.Int64Counter
	conflicts   metric.Int64Counter
	corrections metric.Int64Counter
}

// NewService wires a ledger service.
func NewService(store domain.Store, notifier Notifier, opts Options) *Service {
	if opts.Policy.Max.IsZero() {
		opts.Policy = DefaultAdmissionPolicy()
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 5
	}
	if opts.IDs == nil {
		opts.IDs = NewULIDMinter()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 10 * time.Millisecond
	}
	logger := opts.Logger.With().Str("component", "ledger").Logger()
	return &Service{
		store:      store,
		notifier:   notifier,
		logger:     logger,
		policy:     opts.Policy,
		maxRetries: opts.MaxRetries,
		ids:        opts.IDs,
		now:        opts.Now,
		retryEvery: opts.RetryInterval,
		tracer:     otel.Tracer(instrumentationName),
		metrics:    newInstruments(logger),
	}
}

func newInstruments(logger zerolog.Logger) instruments {
	meter := otel.Meter(instrumentationName)
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			logger.Warn().Err(err).Str("instrument", name).Msg("metric disabled")
			return noop.Int64Counter{}
		}
		return c
	}
	return instruments{
		submitted:   counter("ledger.contributions.submitted", "Contributions accepted for review"),
		approved:    counter("ledger.contributions.approved", "Contributions confirmed"),
		rejected:    counter("ledger.contributions.rejected", "Contributions rejected"),
		conflicts:   counter("ledger.pool.conflicts", "Pool version conflicts retried"),
		corrections: counter("ledger.pool.corrections", "Pool aggregates restated by reconciliation"),
	}
}

// retry runs op until it succeeds, fails with anything but a version
// conflict, or exhausts the retry budget.
func retry[T any](ctx context.Context, s *Service, span trace.Span, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryEvery
	b.MaxInterval = 50 * s.retryEvery

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		out, err := op()
		if err == nil {
			return out, nil
		}
		if isConflict(err) {
			s.metrics.conflicts.Add(ctx, 1)
			span.AddEvent("pool.version_conflict")
			s.logger.Debug().Err(err).Int("attempt", attempt).Msg("retrying after version conflict")
			return out, err
		}
		return out, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(s.maxRetries)))
}

func fail(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
