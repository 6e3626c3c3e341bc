// Package pipeline implements tiered generation: an ordered list of providers tried in
// priority order, backed by a local fallback that produces an artifact when every tier fails.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eternisai/taleweaver/internal/logger"
)

// Provider produces one artifact for a request. Any error it returns is treated as a
// recoverable ProviderError. Files must be created through the workspace so they are
// removed when the attempt fails.
type Provider[T any] interface {
	Name() string
	Attempt(ctx context.Context, req Request, ws *Workspace) (T, error)
}

// Status is the outcome of one attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Attempt is the diagnostic record of one provider invocation.
type Attempt struct {
	Provider string        `json:"provider"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Fallback bool          `json:"fallback,omitempty"`
}

// Result is the outcome of Generate. Exactly one is produced per successful call.
type Result[T any] struct {
	Modality       Modality  `json:"modality"`
	Artifact       T         `json:"artifact"`
	SourceProvider string    `json:"source_provider"`
	IsFallback     bool      `json:"is_fallback"`
	Attempts       []Attempt `json:"attempts"`
}

// Pipeline runs the tiers for one modality. It holds no per-request state and is safe for
// concurrent use.
type Pipeline[T any] struct {
	modality  Modality
	providers []Provider[T]
	fallback  Provider[T]

	validate func(Request) error
	dir      string
	logger   *logger.Logger
	metrics  *Metrics
	now      func() time.Time
}

type options struct {
	validate func(Request) error
	dir      string
	logger   *logger.Logger
	metrics  *Metrics
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*options)

// WithValidator sets the request check that runs before any tier. Errors that are not
// already a ValidationError are wrapped into one.
func WithValidator(fn func(Request) error) Option {
	return func(o *options) { o.validate = fn }
}

// WithWorkspaceDir sets the directory artifact files are written to.
func WithWorkspaceDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the collectors attempts are recorded in.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides the time source used for file names.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds a pipeline. providers may be empty (for example when no credentials are
// configured) but fallback is required, so the effective tier list is never empty.
func New[T any](modality Modality, providers []Provider[T], fallback Provider[T], opts ...Option) (*Pipeline[T], error) {
	if !modality.Valid() {
		return nil, fmt.Errorf("unknown modality %q", modality)
	}
	if fallback == nil {
		return nil, errors.New("a terminal fallback provider is required")
	}

	seen := make(map[string]struct{}, len(providers))
	for i, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("provider %d is nil", i)
		}
		if p.Name() == "" {
			return nil, fmt.Errorf("provider %d has no name", i)
		}
		if _, dup := seen[p.Name()]; dup {
			return nil, fmt.Errorf("duplicate provider %q", p.Name())
		}
		seen[p.Name()] = struct{}{}
	}

	o := options{
		dir: ".",
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Discard()
	}

	return &Pipeline[T]{
		modality:  modality,
		providers: append([]Provider[T](nil), providers...),
		fallback:  fallback,
		validate:  o.validate,
		dir:       o.dir,
		logger:    o.logger.WithComponent("pipeline"),
		metrics:   o.metrics,
		now:       o.now,
	}, nil
}

// Modality returns the modality this pipeline serves.
func (p *Pipeline[T]) Modality() Modality { return p.modality }

// Providers returns the configured tier names in priority order.
func (p *Pipeline[T]) Providers() []string {
	names := make([]string, 0, len(p.providers))
	for _, provider := range p.providers {
		names = append(names, provider.Name())
	}
	return names
}

// Fallback returns the name of the terminal fallback.
func (p *Pipeline[T]) Fallback() string { return p.fallback.Name() }

// Generate tries each tier in order and returns the first success. When every tier fails,
// the fallback produces the artifact and the result is marked IsFallback.
//
// Errors: a ValidationError when the request is malformed (no tier runs), ctx.Err() when
// the caller cancels (no result, no fallback), and FallbackExhaustionError when the
// fallback itself fails.
func (p *Pipeline[T]) Generate(ctx context.Context, req Request) (Result[T], error) {
	var zero Result[T]

	if err := p.check(req); err != nil {
		return zero, err
	}

	ctx = logger.WithModality(logger.WithRequestID(ctx, req.ID()), string(p.modality))
	log := p.logger.WithContext(ctx)

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	base := fileBase(req, p.now())
	result := Result[T]{Modality: p.modality}

	for _, provider := range p.tiers(req, log) {
		if err := ctx.Err(); err != nil {
			log.Info("generation cancelled", slog.Int("attempts", len(result.Attempts)))
			return zero, err
		}

		actx := logger.WithProvider(ctx, provider.Name())
		alog := p.logger.WithContext(actx)

		ws := newWorkspace(p.dir, base, provider.Name())
		start := time.Now()
		artifact, err := safeAttempt(actx, provider, req, ws)
		elapsed := time.Since(start)

		if ctxErr := ctx.Err(); ctxErr != nil {
			p.discard(ws, alog)
			alog.Info("generation cancelled during attempt")
			return zero, ctxErr
		}

		if err != nil {
			p.discard(ws, alog)
			perr := &ProviderError{Provider: provider.Name(), Err: err}
			result.Attempts = append(result.Attempts, Attempt{
				Provider: provider.Name(),
				Status:   StatusFailure,
				Error:    perr.Error(),
				Duration: elapsed,
			})
			p.metrics.observe(p.modality, provider.Name(), StatusFailure, elapsed)
			alog.Warn("provider attempt failed",
				slog.Duration("duration", elapsed),
				slog.String("error", err.Error()),
			)
			continue
		}

		result.Attempts = append(result.Attempts, Attempt{
			Provider: provider.Name(),
			Status:   StatusSuccess,
			Duration: elapsed,
		})
		p.metrics.observe(p.modality, provider.Name(), StatusSuccess, elapsed)
		alog.Info("provider attempt succeeded", slog.Duration("duration", elapsed))

		result.Artifact = artifact
		result.SourceProvider = provider.Name()
		return result, nil
	}

	return p.runFallback(ctx, req, base, result)
}

func (p *Pipeline[T]) runFallback(ctx context.Context, req Request, base string, result Result[T]) (Result[T], error) {
	var zero Result[T]
	name := p.fallback.Name()
	ctx = logger.WithProvider(ctx, name)
	log := p.logger.WithContext(ctx)

	ws := newWorkspace(p.dir, base, name)
	start := time.Now()
	artifact, err := safeAttempt(ctx, p.fallback, req, ws)
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		p.discard(ws, log)
		return zero, ctxErr
	}

	if err != nil {
		p.discard(ws, log)
		p.metrics.observe(p.modality, name, StatusFailure, elapsed)
		p.logger.LogError(ctx, err, "fallback failed", slog.Int("failed_tiers", len(result.Attempts)))
		return zero, &FallbackExhaustionError{Provider: name, Err: err}
	}

	result.Attempts = append(result.Attempts, Attempt{
		Provider: name,
		Status:   StatusSuccess,
		Duration: elapsed,
		Fallback: true,
	})
	p.metrics.observe(p.modality, name, StatusSuccess, elapsed)
	p.metrics.fallback(p.modality)
	log.Warn("serving fallback artifact", slog.Int("failed_tiers", len(result.Attempts)-1))

	result.Artifact = artifact
	result.SourceProvider = name
	result.IsFallback = true
	return result, nil
}

func (p *Pipeline[T]) check(req Request) error {
	if req.ID() == "" {
		return &ValidationError{Reason: "request was not built with NewRequest"}
	}
	if req.Modality() != p.modality {
		return &ValidationError{
			Field:  "modality",
			Reason: fmt.Sprintf("%s pipeline cannot serve %q requests", p.modality, req.Modality()),
		}
	}
	if p.validate == nil {
		return nil
	}

	err := p.validate(req)
	if err == nil || IsValidation(err) {
		return err
	}
	return &ValidationError{Reason: err.Error()}
}

// tiers returns the providers to try for req. A pinned provider narrows the list to that
// one tier; an unknown or unconfigured pin leaves only the fallback.
func (p *Pipeline[T]) tiers(req Request, log *logger.Logger) []Provider[T] {
	pinned := req.PreferredProvider()
	if pinned == "" {
		return p.providers
	}

	for _, provider := range p.providers {
		if provider.Name() == pinned {
			return []Provider[T]{provider}
		}
	}

	log.Warn("requested provider is not configured, using fallback",
		slog.String("provider", pinned),
	)
	return nil
}

func (p *Pipeline[T]) discard(ws *Workspace, log *logger.Logger) {
	if err := ws.discard(); err != nil {
		log.Error("failed to remove files of failed attempt", slog.String("error", err.Error()))
	}
}

func safeAttempt[T any](ctx context.Context, provider Provider[T], req Request, ws *Workspace) (artifact T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			artifact = zero
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return provider.Attempt(ctx, req, ws)
}
