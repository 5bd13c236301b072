package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vendibd/vendi-server/internal/domains/dispatch/domain"
	"github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
)

// Service implements the command queue and the device poll decision.
type Service struct {
	repo     ports.Repository
	captures ports.CaptureSource
}

func NewService(repo ports.Repository, captures ports.CaptureSource) *Service {
	return &Service{repo: repo, captures: captures}
}

func (s *Service) EnqueueVend(ctx context.Context, deviceID string, orderID uuid.UUID, productID string) (uuid.UUID, error) {
	cmd, err := domain.NewVendCommand(strings.TrimSpace(deviceID), orderID, strings.TrimSpace(productID))
	if err != nil {
		return uuid.Nil, mapError(err)
	}
	saved, err := s.repo.Enqueue(ctx, cmd)
	if err != nil {
		return uuid.Nil, err
	}
	return saved.ID, nil
}

// Poll evaluates the instruction priority per call. A device must finish an
// already-paid dispense before being asked to start a new cash-capture cycle,
// otherwise a paid product starves behind an unrelated cash prompt.
func (s *Service) Poll(ctx context.Context, deviceID string) (*ports.Instruction, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}
	cmd, err := s.repo.ClaimNext(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if cmd != nil {
		return &ports.Instruction{
			Kind:      ports.InstructionVend,
			CommandID: cmd.ID,
			OrderID:   cmd.OrderID,
			ProductID: cmd.ProductID,
		}, nil
	}
	if s.captures != nil {
		capture, err := s.captures.NextCashCapture(ctx, deviceID)
		if err != nil {
			return nil, err
		}
		if capture != nil {
			return &ports.Instruction{Kind: ports.InstructionWaitForCash, OrderID: capture.OrderID}, nil
		}
	}
	return &ports.Instruction{Kind: ports.InstructionNone}, nil
}

func (s *Service) ReportStatus(ctx context.Context, commandID uuid.UUID, status domain.Status, message string) error {
	if !status.Terminal() {
		return mapError(domain.ErrInvalidStatus)
	}
	return s.repo.ReportStatus(ctx, commandID, status, strings.TrimSpace(message))
}

var _ ports.Service = (*Service)(nil)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidDeviceID) ||
		errors.Is(err, domain.ErrInvalidOrderID) ||
		errors.Is(err, domain.ErrInvalidProductID) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
