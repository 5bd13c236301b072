package vendiserver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dispatchports "github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
	ordersapp "github.com/vendibd/vendi-server/internal/domains/orders/application"
	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

func TestMapOrdersError_StatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown order", ordersports.ErrNotFound, http.StatusNotFound},
		{"no payment match", ordersports.ErrNoMatch, http.StatusNotFound},
		{"unknown product", ordersports.ErrUnknownProduct, http.StatusNotFound},
		{"code already redeemed", ordersports.ErrCodeRedeemed, http.StatusConflict},
		{"already settled", ordersapp.ErrAlreadySettled, http.StatusConflict},
		{"settlement race lost", ordersports.ErrNotPayable, http.StatusConflict},
		{"unpaid redemption", ordersports.ErrNotPaid, http.StatusForbidden},
		{"cash image on bkash order", ordersapp.ErrNotCashOrder, http.StatusBadRequest},
		{"invalid input", ordersapp.ErrMissingImage, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problem, ok := mapOrdersError(fmt.Errorf("submit cash image: %w", tc.err))
			require.True(t, ok)
			assert.Equal(t, tc.status, problem.Status)
			assert.Contains(t, problem.Detail, tc.err.Error())
		})
	}
}

func TestMapOrdersError_UnknownErrorFallsThrough(t *testing.T) {
	_, ok := mapOrdersError(errors.New("store unavailable"))
	assert.False(t, ok)
}

func TestMapDispatchError_StatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown command", dispatchports.ErrNotFound, http.StatusNotFound},
		{"divergent status report", dispatchports.ErrStatusConflict, http.StatusConflict},
		{"order already queued", dispatchports.ErrOrderAlreadyQueued, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problem, ok := mapDispatchError(tc.err)
			require.True(t, ok)
			assert.Equal(t, tc.status, problem.Status)
		})
	}
}
