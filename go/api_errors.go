package vendiserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	dispatchapp "github.com/vendibd/vendi-server/internal/domains/dispatch/application"
	dispatchports "github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
	ordersapp "github.com/vendibd/vendi-server/internal/domains/orders/application"
	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
	apierrors "github.com/vendibd/vendi-server/internal/shared/errors"
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// ordersResponder maps order lifecycle sentinels to RFC 7807 problems.
var ordersResponder = apierrors.NewChainedResponder("", mapOrdersError)

// dispatchResponder maps dispatch sentinels to RFC 7807 problems.
var dispatchResponder = apierrors.NewChainedResponder("", mapDispatchError)

func mapOrdersError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrNoMatch):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrUnknownProduct):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrCodeRedeemed):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrNotPaid):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrAlreadySettled):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrNotPayable):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrNotCashOrder):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}

func mapDispatchError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, dispatchports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, dispatchports.ErrStatusConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, dispatchports.ErrOrderAlreadyQueued):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, dispatchapp.ErrMissingDeviceID):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, dispatchapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}
