package workflows

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.temporal.io/sdk/temporal"

	"github.com/vendibd/vendi-server/internal/domains/orders/application"
	"github.com/vendibd/vendi-server/internal/domains/orders/ports"
	settlementworkflows "github.com/vendibd/vendi-server/internal/platform/temporal/workflows/settlement"
)

func TestSettlementError_RestoresSentinels(t *testing.T) {
	cases := []struct {
		name     string
		errType  string
		sentinel error
	}{
		{"unknown order", settlementworkflows.ErrTypeOrderNotFound, ports.ErrNotFound},
		{"order left payable states", settlementworkflows.ErrTypeOrderNotSettleable, ports.ErrNotPayable},
		{"bkash order", settlementworkflows.ErrTypeOrderNotCash, application.ErrNotCashOrder},
		{"already settled", settlementworkflows.ErrTypeAlreadySettled, application.ErrAlreadySettled},
		{"invalid submission", settlementworkflows.ErrTypeInvalidSubmission, application.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wireErr := temporal.NewNonRetryableApplicationError(tc.sentinel.Error(), tc.errType, tc.sentinel)
			restored := settlementError(fmt.Errorf("workflow execution error: %w", wireErr))
			assert.ErrorIs(t, restored, tc.sentinel)
		})
	}
}

func TestSettlementError_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("temporal unavailable")
	assert.ErrorIs(t, settlementError(plain), plain)

	unknownType := temporal.NewApplicationError("boom", "SomethingElse")
	assert.ErrorIs(t, settlementError(unknownType), unknownType)
}
