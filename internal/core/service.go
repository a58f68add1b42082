package core

import (
	"context"
	"time"

	"siteforge/pkg/domain"
)

// Logger is the minimal logging surface the service needs. It is satisfied
// by *charmbracelet/log.Logger without an adapter.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// MetricsRecorder observes the outcome and duration of service operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan finalizes one traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopSpan struct{}

func (noopSpan) End(error) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type serviceOptions struct {
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	clock   func() time.Time
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// ServiceOption customizes service construction.
type ServiceOption func(*serviceOptions)

// WithLogger overrides the no-op logger.
func WithLogger(l Logger) ServiceOption {
	return func(o *serviceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsRecorder overrides the no-op metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer overrides the no-op tracer.
func WithTracer(t Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// Service exposes the instrumented editing operations the UI layer calls
// in response to user gestures. Every gesture maps to one transaction and
// therefore one undo step.
type Service struct {
	store *SiteStore
	opts  serviceOptions
}

// NewService wraps a store with instrumentation.
func NewService(store *SiteStore, options ...ServiceOption) *Service {
	opts := defaultServiceOptions()
	for _, apply := range options {
		apply(&opts)
	}
	return &Service{store: store, opts: opts}
}

// Store returns the underlying site store.
func (s *Service) Store() *SiteStore { return s.store }

func (s *Service) run(ctx context.Context, operation string, fn func(tx *Transaction) error) (Result, error) {
	ctx, span := s.opts.tracer.Start(ctx, operation)
	start := s.opts.clock()
	res, err := s.store.RunInTransaction(ctx, operation, fn)
	s.finish(ctx, operation, span, start, res, err)
	return res, err
}

func (s *Service) finish(ctx context.Context, operation string, span TraceSpan, start time.Time, res Result, err error) {
	duration := s.opts.clock().Sub(start)
	span.End(err)
	s.opts.metrics.Observe(ctx, operation, err == nil, duration)
	if err != nil {
		s.opts.logger.Errorf("%s failed: %v", operation, err)
		return
	}
	s.opts.logger.Debugf("%s committed in %s", operation, duration.Round(time.Microsecond))
	for _, d := range res.Diagnostics {
		if d.Severity == domain.SeverityWarn {
			s.opts.logger.Warnf("validator %s: %s", d.Rule, d.Message)
		}
	}
}

// AddLevel commits a new level.
func (s *Service) AddLevel(ctx context.Context, name string, elevation float32) (Level, Result, error) {
	var created Level
	res, err := s.run(ctx, "add_level", func(tx *Transaction) error {
		var err error
		created, err = tx.CreateLevel(name, elevation)
		return err
	})
	return created, res, err
}

// AddAnchor commits a new anchor on a level.
func (s *Service) AddAnchor(ctx context.Context, level LevelID, name string, position Vec2) (Anchor, Result, error) {
	var created Anchor
	res, err := s.run(ctx, "add_anchor", func(tx *Transaction) error {
		var err error
		created, err = tx.CreateAnchor(level, name, position, domain.AnchorRoleGeneral)
		return err
	})
	return created, res, err
}

// AddFiducial commits a new calibration marker on a level.
func (s *Service) AddFiducial(ctx context.Context, level LevelID, name string, position Vec2) (Anchor, Result, error) {
	var created Anchor
	res, err := s.run(ctx, "add_fiducial", func(tx *Transaction) error {
		var err error
		created, err = tx.CreateAnchor(level, name, position, domain.AnchorRoleFiducial)
		return err
	})
	return created, res, err
}

// MoveAnchor commits a drag gesture's final anchor position, including the
// lift pair propagation, as one undo step.
func (s *Service) MoveAnchor(ctx context.Context, id AnchorID, position Vec2) (Anchor, Result, error) {
	var moved Anchor
	res, err := s.run(ctx, "move_anchor", func(tx *Transaction) error {
		var err error
		moved, err = tx.MoveAnchor(id, position)
		return err
	})
	return moved, res, err
}

// DeleteAnchor commits an anchor removal, subject to the in-use gate.
func (s *Service) DeleteAnchor(ctx context.Context, id AnchorID) (Result, error) {
	return s.run(ctx, "delete_anchor", func(tx *Transaction) error {
		return tx.DeleteAnchor(id)
	})
}

// AddEdge commits a new topology element.
func (s *Service) AddEdge(ctx context.Context, kind EdgeKind, level LevelID, anchors []AnchorID, props EdgeProps) (Edge, Result, error) {
	var created Edge
	res, err := s.run(ctx, "add_edge", func(tx *Transaction) error {
		var err error
		created, err = tx.CreateEdge(kind, level, anchors, props)
		return err
	})
	return created, res, err
}

// DeleteEdge commits removal of a topology element.
func (s *Service) DeleteEdge(ctx context.Context, id EdgeID) (Result, error) {
	return s.run(ctx, "delete_edge", func(tx *Transaction) error {
		return tx.DeleteEdge(id)
	})
}

// AddLift commits a new lift pairing anchors across two levels.
func (s *Service) AddLift(ctx context.Context, name string, levelA LevelID, anchorA AnchorID, levelB LevelID, anchorB AnchorID, cabin CabinShape) (Lift, Result, error) {
	var created Lift
	res, err := s.run(ctx, "add_lift", func(tx *Transaction) error {
		var err error
		created, err = tx.CreateLift(name, levelA, anchorA, levelB, anchorB, cabin)
		return err
	})
	return created, res, err
}

// MoveLift commits a horizontal move of a lift and both paired anchors.
func (s *Service) MoveLift(ctx context.Context, id LiftID, position Vec2) (Lift, Result, error) {
	var moved Lift
	res, err := s.run(ctx, "move_lift", func(tx *Transaction) error {
		var err error
		moved, err = tx.MoveLiftAnchor(id, position)
		return err
	})
	return moved, res, err
}

// DeleteLift commits removal of a lift.
func (s *Service) DeleteLift(ctx context.Context, id LiftID) (Result, error) {
	return s.run(ctx, "delete_lift", func(tx *Transaction) error {
		return tx.DeleteLift(id)
	})
}

// Batch commits an arbitrary multi-entity gesture staged by fn as a single
// undo step.
func (s *Service) Batch(ctx context.Context, label string, fn func(tx *Transaction) error) (Result, error) {
	return s.run(ctx, label, fn)
}

// Undo rolls back the most recent committed transaction.
func (s *Service) Undo(ctx context.Context) (Result, error) {
	ctx, span := s.opts.tracer.Start(ctx, "undo")
	start := s.opts.clock()
	res, err := s.store.Undo(ctx)
	s.finish(ctx, "undo", span, start, res, err)
	return res, err
}

// Redo re-applies the most recently undone transaction.
func (s *Service) Redo(ctx context.Context) (Result, error) {
	ctx, span := s.opts.tracer.Start(ctx, "redo")
	start := s.opts.clock()
	res, err := s.store.Redo(ctx)
	s.finish(ctx, "redo", span, start, res, err)
	return res, err
}

// Snapshot returns the committed site aggregate.
func (s *Service) Snapshot() Site { return s.store.Snapshot() }

// Diagnostics returns the latest validator findings.
func (s *Service) Diagnostics() Result { return s.store.Diagnostics() }
