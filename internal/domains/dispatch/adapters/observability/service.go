package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	dispatchdomain "github.com/vendibd/vendi-server/internal/domains/dispatch/domain"
	dispatchports "github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
)

const tracerName = "github.com/vendibd/vendi-server/internal/domains/dispatch/adapters/observability/service"

// Service decorates the dispatch service with tracing, logging, and metrics.
// Polls are high-frequency and mostly empty, so only non-empty instructions log.
type Service struct {
	inner   dispatchports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core dispatch service.
func New(inner dispatchports.Service, opts ...Option) dispatchports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) EnqueueVend(ctx context.Context, deviceID string, orderID uuid.UUID, productID string) (uuid.UUID, error) {
	ctx, span := s.tracer.Start(ctx, "DispatchService.EnqueueVend",
		trace.WithAttributes(
			attribute.String("command.device_id", deviceID),
			attribute.String("command.order_id", orderID.String()),
		))
	defer span.End()

	id, err := s.inner.EnqueueVend(ctx, deviceID, orderID, productID)
	if err != nil {
		return uuid.Nil, s.handleError(ctx, span, err, "failed to enqueue vend command",
			slog.String("device_id", deviceID), slog.String("order_id", orderID.String()))
	}
	s.metrics.recordEnqueued(ctx)
	s.logInfo(ctx, "vend command enqueued",
		slog.String("command_id", id.String()),
		slog.String("device_id", deviceID),
		slog.String("order_id", orderID.String()))
	return id, nil
}

func (s *Service) Poll(ctx context.Context, deviceID string) (*dispatchports.Instruction, error) {
	ctx, span := s.tracer.Start(ctx, "DispatchService.Poll",
		trace.WithAttributes(attribute.String("command.device_id", deviceID)))
	defer span.End()

	instruction, err := s.inner.Poll(ctx, deviceID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "poll failed", slog.String("device_id", deviceID))
	}
	span.SetAttributes(attribute.String("poll.instruction", string(instruction.Kind)))
	s.metrics.recordPoll(ctx, instruction.Kind)
	if instruction.Kind != dispatchports.InstructionNone {
		s.logInfo(ctx, "instruction handed to device",
			slog.String("device_id", deviceID),
			slog.String("instruction", string(instruction.Kind)),
			slog.String("order_id", instruction.OrderID.String()))
	}
	return instruction, nil
}

func (s *Service) ReportStatus(ctx context.Context, commandID uuid.UUID, status dispatchdomain.Status, message string) error {
	ctx, span := s.tracer.Start(ctx, "DispatchService.ReportStatus",
		trace.WithAttributes(
			attribute.String("command.id", commandID.String()),
			attribute.String("command.status", string(status)),
		))
	defer span.End()

	if err := s.inner.ReportStatus(ctx, commandID, status, message); err != nil {
		return s.handleError(ctx, span, err, "status report rejected",
			slog.String("command_id", commandID.String()), slog.String("status", string(status)))
	}
	s.metrics.recordReported(ctx, status)
	s.logInfo(ctx, "command status reported",
		slog.String("command_id", commandID.String()),
		slog.String("status", string(status)))
	return nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	commandsEnqueued metric.Int64Counter
	polls            metric.Int64Counter
	reports          metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	enqueued, _ := m.Int64Counter("dispatch.service.commands_enqueued", metric.WithDescription("Number of vend commands enqueued"))
	polls, _ := m.Int64Counter("dispatch.service.polls", metric.WithDescription("Number of device polls answered"))
	reports, _ := m.Int64Counter("dispatch.service.reports", metric.WithDescription("Number of command status reports"))
	return serviceMetrics{commandsEnqueued: enqueued, polls: polls, reports: reports}
}

func (m serviceMetrics) recordEnqueued(ctx context.Context) {
	if m.commandsEnqueued != nil {
		m.commandsEnqueued.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordPoll(ctx context.Context, kind dispatchports.InstructionKind) {
	if m.polls != nil {
		instruction := string(kind)
		if instruction == "" {
			instruction = "none"
		}
		m.polls.Add(ctx, 1, metric.WithAttributes(attribute.String("instruction", instruction)))
	}
}

func (m serviceMetrics) recordReported(ctx context.Context, status dispatchdomain.Status) {
	if m.reports != nil {
		m.reports.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	}
}

var _ dispatchports.Service = (*Service)(nil)
