// Package kdf implements the scrypt derivation entry point: options are
// resolved on the caller's goroutine, everything fallible runs on the
// worker pool, and the caller receives one hex-or-error outcome.
package kdf

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/TheMichaelB/scryptbridge/internal/codec"
	"github.com/TheMichaelB/scryptbridge/internal/crypto"
	"github.com/TheMichaelB/scryptbridge/internal/dispatch"
	"github.com/TheMichaelB/scryptbridge/internal/events"
	"github.com/TheMichaelB/scryptbridge/internal/metrics"
	"github.com/TheMichaelB/scryptbridge/internal/models"
)

// Service dispatches scrypt derivations.
type Service struct {
	dispatcher *dispatch.Dispatcher
	deriver    crypto.Deriver
	logger     *events.Logger
	metrics    *metrics.Recorder
	tracer     trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records submissions and outcomes on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Service) {
		s.metrics = rec
	}
}

// WithTracer starts one span per derivation on tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// NewService creates a derivation service.
func NewService(dispatcher *dispatch.Dispatcher, deriver crypto.Deriver, logger *events.Logger, opts ...Option) *Service {
	s := &Service{
		dispatcher: dispatcher,
		deriver:    deriver,
		logger:     logger.WithField("service", "kdf"),
		tracer:     noop.NewTracerProvider().Tracer("scryptbridge/kdf"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// inputs yields the password and salt once the task runs.
type inputs func() (password, salt models.RawInput, err error)

// Derive submits a typed request.
func (s *Service) Derive(ctx context.Context, req models.DerivationRequest, callback dispatch.Callback) *dispatch.Result {
	return s.submit(ctx, func() (models.RawInput, models.RawInput, error) {
		return req.Password, req.Salt, nil
	}, req.Params, callback)
}

// DeriveRaw submits loosely typed caller values. The option bag is
// resolved before returning; password and salt are parsed inside the task,
// so an unsupported shape surfaces as an EncodingError outcome.
func (s *Service) DeriveRaw(ctx context.Context, password, salt interface{}, options map[string]interface{}, callback dispatch.Callback) *dispatch.Result {
	params := codec.ResolveParams(options)

	return s.submit(ctx, func() (models.RawInput, models.RawInput, error) {
		pw, err := codec.ParseRawInput(password)
		if err != nil {
			return models.RawInput{}, models.RawInput{}, err
		}
		sa, err := codec.ParseRawInput(salt)
		if err != nil {
			return models.RawInput{}, models.RawInput{}, err
		}
		return pw, sa, nil
	}, params, callback)
}

// InFlight returns the number of derivations without an outcome.
func (s *Service) InFlight() int {
	return s.dispatcher.InFlight()
}

func (s *Service) submit(ctx context.Context, in inputs, params models.DerivationParams, callback dispatch.Callback) *dispatch.Result {
	s.metrics.Submitted()
	ctx = events.WithLogger(ctx, s.logger)

	return s.dispatcher.Submit(ctx, func(ctx context.Context) (string, error) {
		return s.run(ctx, in, params)
	}, s.observe(callback))
}

// observe wraps callback with metrics and failure logging.
func (s *Service) observe(callback dispatch.Callback) dispatch.Callback {
	submitted := time.Now()

	return func(outcome models.Outcome) {
		kind := ""
		if !outcome.OK {
			kind = kindOf(outcome.Message)
		}
		s.metrics.Completed(outcome.OK, kind, time.Since(submitted))

		if callback != nil {
			callback(outcome)
		}
	}
}

// run is the task body: coerce, check parameters, derive, encode.
func (s *Service) run(ctx context.Context, in inputs, params models.DerivationParams) (string, error) {
	logger := events.FromContext(ctx)

	ctx, span := s.tracer.Start(ctx, "scrypt.derive")
	defer span.End()

	hex, err := s.derive(ctx, in, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, models.Kind(err))
		logger.WithFields(map[string]interface{}{
			"kind":  models.Kind(err),
			"error": err.Error(),
		}).Warn("Scrypt derivation failed")
		return "", err
	}

	span.SetStatus(codes.Ok, "")
	logger.WithField("dk_len", params.DKLen.Value).Debug("Scrypt derivation complete")
	return hex, nil
}

func (s *Service) derive(ctx context.Context, in inputs, params models.DerivationParams) (string, error) {
	rawPassword, rawSalt, err := in()
	if err != nil {
		return "", err
	}

	password, err := codec.Coerce(rawPassword)
	if err != nil {
		return "", err
	}
	defer wipe(password)

	salt, err := codec.Coerce(rawSalt)
	if err != nil {
		return "", err
	}

	if missing := params.Missing(); len(missing) > 0 {
		return "", models.NewMissingParameterError(missing...)
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("scrypt.n", params.N.Value),
		attribute.Int("scrypt.r", params.R.Value),
		attribute.Int("scrypt.p", params.P.Value),
		attribute.Int("scrypt.dk_len", params.DKLen.Value),
		attribute.Int("scrypt.salt_len", len(salt)),
	)

	key, err := s.deriver.DeriveKey(password, salt,
		params.N.Value, params.R.Value, params.P.Value, params.DKLen.Value)
	if err != nil {
		if models.Kind(err) == "" {
			err = models.NewDerivationError("scrypt key derivation", err)
		}
		return "", err
	}
	defer wipe(key)

	return codec.HexEncode(key), nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// kindOf recovers the error kind from a Failure message.
func kindOf(message string) string {
	for _, kind := range []string{
		models.ErrCodeEncoding,
		models.ErrCodeMissingParameter,
		models.ErrCodeDerivation,
		models.ErrCodeDispatch,
	} {
		if strings.HasPrefix(message, kind) {
			return kind
		}
	}
	return "unknown"
}
