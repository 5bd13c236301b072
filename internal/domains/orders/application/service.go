package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendibd/vendi-server/internal/domains/orders/domain"
	"github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

// codeRetries bounds how often order creation re-rolls a colliding dispense code.
const codeRetries = 5

// Service orchestrates the order lifecycle: creation, payment reconciliation
// (bKash confirmation and banknote verification), and code redemption.
type Service struct {
	repo     ports.Repository
	catalog  ports.ProductCatalog
	verifier ports.BanknoteVerifier
	enqueuer ports.CommandEnqueuer
}

func NewService(repo ports.Repository, catalog ports.ProductCatalog, verifier ports.BanknoteVerifier, enqueuer ports.CommandEnqueuer) *Service {
	return &Service{repo: repo, catalog: catalog, verifier: verifier, enqueuer: enqueuer}
}

func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	input.ProductID = strings.TrimSpace(input.ProductID)
	input.DeviceID = strings.TrimSpace(input.DeviceID)
	if input.ProductID == "" {
		return nil, mapError(domain.ErrInvalidProductID)
	}
	if input.DeviceID == "" {
		return nil, mapError(domain.ErrInvalidDeviceID)
	}
	if !domain.IsValidMethod(input.PaymentMethod) {
		return nil, mapError(domain.ErrInvalidMethod)
	}
	product, err := s.catalog.Lookup(ctx, input.ProductID)
	if err != nil {
		return nil, mapError(err)
	}

	for attempt := 0; attempt < codeRetries; attempt++ {
		order, err := domain.NewOrder(product.ID, product.Name, product.Price, input.DeviceID, input.PaymentMethod, input.CustomerPhone)
		if err != nil {
			return nil, mapError(err)
		}
		saved, err := s.repo.Create(ctx, order)
		if errors.Is(err, ports.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return saved, nil
	}
	return nil, fmt.Errorf("could not allocate a unique dispense code after %d attempts", codeRetries)
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ConfirmExternalPayment settles the single oldest pending bKash order whose
// price equals the confirmed amount exactly. The claim is one conditional
// update in the repository, so two confirmations for the same amount can never
// settle the same order, and one confirmation can never settle two.
func (s *Service) ConfirmExternalPayment(ctx context.Context, amount decimal.Decimal, payerRef string) (*ports.PaymentMatch, error) {
	payerRef = strings.TrimSpace(payerRef)
	if !amount.IsPositive() {
		return nil, mapError(domain.ErrInvalidPrice)
	}
	if payerRef == "" {
		return nil, ErrMissingPayerRef
	}
	order, err := s.repo.ClaimOldestPendingByAmount(ctx, amount, payerRef)
	if err != nil {
		return nil, err
	}
	return &ports.PaymentMatch{OrderID: order.ID, DispenseCode: order.DispenseCode}, nil
}

// SubmitCashImage confirms a cash payment at the machine itself. This is the
// only path where confirmation and command creation live in one handler: the
// banknote is already inside the device, so a genuine note of the exact
// denomination vends immediately.
func (s *Service) SubmitCashImage(ctx context.Context, orderID uuid.UUID, image []byte) (*ports.CashImageResult, error) {
	if len(image) == 0 {
		return nil, ErrMissingImage
	}
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != domain.MethodCash {
		return nil, ErrNotCashOrder
	}
	if order.Settled() {
		return nil, ErrAlreadySettled
	}

	verdict := s.verifier.Verify(ctx, image)
	if !verdict.IsGenuine {
		// Keep the order retryable: the customer can insert another note.
		_ = s.repo.RevertCashCapture(ctx, orderID)
		return &ports.CashImageResult{Accepted: false, Message: rejectionMessage(verdict.Reason, "banknote not recognized as genuine")}, nil
	}
	if !verdict.Denomination.Equal(order.Price) {
		_ = s.repo.RevertCashCapture(ctx, orderID)
		msg := fmt.Sprintf("banknote of %s does not match the price %s", verdict.Denomination.StringFixed(2), order.Price.StringFixed(2))
		return &ports.CashImageResult{Accepted: false, Message: msg}, nil
	}

	settled, err := s.repo.SettleCashPayment(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.enqueuer.EnqueueVend(ctx, settled.DeviceID, settled.ID, settled.ProductID); err != nil && !errors.Is(err, ports.ErrOrderAlreadyQueued) {
		return nil, err
	}
	return &ports.CashImageResult{Accepted: true, Message: "payment accepted, dispensing"}, nil
}

// Redeem exchanges a dispense code at a device. The paid -> redeemed transition
// is won atomically in the repository, so a code authorizes dispensing at most
// once no matter how many redemption attempts race.
func (s *Service) Redeem(ctx context.Context, dispenseCode, deviceID string) (*domain.Order, error) {
	dispenseCode = strings.TrimSpace(dispenseCode)
	deviceID = strings.TrimSpace(deviceID)
	if dispenseCode == "" || deviceID == "" {
		return nil, ErrMissingRedeemFields
	}
	order, err := s.repo.Redeem(ctx, dispenseCode, deviceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.enqueuer.EnqueueVend(ctx, order.DeviceID, order.ID, order.ProductID); err != nil && !errors.Is(err, ports.ErrOrderAlreadyQueued) {
		return nil, err
	}
	return order, nil
}

func rejectionMessage(reason, fallback string) string {
	if strings.TrimSpace(reason) != "" {
		return reason
	}
	return fallback
}

var _ ports.Service = (*Service)(nil)
