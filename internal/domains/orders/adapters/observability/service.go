package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordersdomain "github.com/vendibd/vendi-server/internal/domains/orders/domain"
	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

const tracerName = "github.com/vendibd/vendi-server/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   ordersports.Service
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

// New wraps the core orders service.
func New(inner ordersports.Service, opts ...Option) ordersports.Service {
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

func (s *Service) CreateOrder(ctx context.Context, input ordersports.CreateOrderInput) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(
			attribute.String("order.product_id", input.ProductID),
			attribute.String("order.device_id", input.DeviceID),
			attribute.String("order.payment_method", string(input.PaymentMethod)),
		))
	defer span.End()

	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order",
			slog.String("product_id", input.ProductID), slog.String("device_id", input.DeviceID))
	}
	s.metrics.recordCreated(ctx, result.PaymentMethod)
	s.logInfo(ctx, "order created",
		slog.String("order_id", result.ID.String()),
		slog.String("device_id", result.DeviceID),
		slog.String("payment_method", string(result.PaymentMethod)),
		slog.String("price", result.Price.StringFixed(2)))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder",
		trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order_id", id.String()))
	}
	return result, nil
}

func (s *Service) ConfirmExternalPayment(ctx context.Context, amount decimal.Decimal, payerRef string) (*ordersports.PaymentMatch, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ConfirmExternalPayment",
		trace.WithAttributes(attribute.String("payment.amount", amount.StringFixed(2))))
	defer span.End()

	result, err := s.inner.ConfirmExternalPayment(ctx, amount, payerRef)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "payment confirmation unmatched",
			slog.String("amount", amount.StringFixed(2)))
	}
	s.metrics.recordReconciled(ctx)
	s.logInfo(ctx, "payment reconciled",
		slog.String("order_id", result.OrderID.String()),
		slog.String("amount", amount.StringFixed(2)))
	return result, nil
}

func (s *Service) SubmitCashImage(ctx context.Context, orderID uuid.UUID, image []byte) (*ordersports.CashImageResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.SubmitCashImage",
		trace.WithAttributes(
			attribute.String("order.id", orderID.String()),
			attribute.Int("image.bytes", len(image)),
		))
	defer span.End()

	result, err := s.inner.SubmitCashImage(ctx, orderID, image)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "cash image submission failed", slog.String("order_id", orderID.String()))
	}
	s.metrics.recordCashVerdict(ctx, result.Accepted)
	span.SetAttributes(attribute.Bool("cash.accepted", result.Accepted))
	s.logInfo(ctx, "cash image processed",
		slog.String("order_id", orderID.String()),
		slog.Bool("accepted", result.Accepted),
		slog.String("message", result.Message))
	return result, nil
}

func (s *Service) Redeem(ctx context.Context, dispenseCode, deviceID string) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Redeem",
		trace.WithAttributes(attribute.String("order.device_id", deviceID)))
	defer span.End()

	result, err := s.inner.Redeem(ctx, dispenseCode, deviceID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "redemption rejected", slog.String("device_id", deviceID))
	}
	s.metrics.recordRedeemed(ctx)
	s.logInfo(ctx, "dispense code redeemed",
		slog.String("order_id", result.ID.String()),
		slog.String("device_id", deviceID))
	return result, nil
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
	ordersCreated   metric.Int64Counter
	paymentsMatched metric.Int64Counter
	cashVerdicts    metric.Int64Counter
	codesRedeemed   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	matched, _ := m.Int64Counter("orders.service.payments_matched", metric.WithDescription("Number of bKash confirmations reconciled"))
	verdicts, _ := m.Int64Counter("orders.service.cash_verdicts", metric.WithDescription("Number of banknote verification verdicts"))
	redeemed, _ := m.Int64Counter("orders.service.codes_redeemed", metric.WithDescription("Number of dispense codes redeemed"))
	return serviceMetrics{ordersCreated: created, paymentsMatched: matched, cashVerdicts: verdicts, codesRedeemed: redeemed}
}

func (m serviceMetrics) recordCreated(ctx context.Context, method ordersdomain.PaymentMethod) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("payment.method", string(method))))
	}
}

func (m serviceMetrics) recordReconciled(ctx context.Context) {
	if m.paymentsMatched != nil {
		m.paymentsMatched.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordCashVerdict(ctx context.Context, accepted bool) {
	if m.cashVerdicts != nil {
		m.cashVerdicts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("accepted", accepted)))
	}
}

func (m serviceMetrics) recordRedeemed(ctx context.Context) {
	if m.codesRedeemed != nil {
		m.codesRedeemed.Add(ctx, 1)
	}
}

var _ ordersports.Service = (*Service)(nil)
