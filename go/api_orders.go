package vendiserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orderhttpmapper "github.com/vendibd/vendi-server/internal/domains/orders/adapters/http/mapper"
	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
	apierrors "github.com/vendibd/vendi-server/internal/shared/errors"
)

// OrderAPI wires HTTP transport with the orders bounded context service and workflows.
type OrderAPI struct {
	service   ordersports.Service
	workflows ordersports.SettlementOrchestrator
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service ordersports.Service, workflows ordersports.SettlementOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Post /v1/orders
// Create a purchase order for a product at a device
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload orderhttpmapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	order, err := api.service.CreateOrder(c.Request.Context(), orderhttpmapper.ToCreateInput(payload))
	if err != nil {
		ordersResponder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromCreated(order))
}

// Get /v1/orders/:orderId
// Read-only order status view
func (api *OrderAPI) GetOrderById(c *gin.Context) {
	id, ok := parseOrderIDParam(c)
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		ordersResponder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrder(order))
}

// bkashConfirmation is the relayed payment notification payload. Amount arrives
// as a JSON number or string; json.Number keeps the exact decimal text.
type bkashConfirmation struct {
	Amount   json.Number `json:"amount"`
	PayerRef string      `json:"payerRef"`
}

// Post /v1/payments/bkash/confirm
// Reconcile a relayed bKash confirmation against pending orders
func (api *OrderAPI) ConfirmBkashPayment(c *gin.Context) {
	var payload bkashConfirmation
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	amount, err := decimal.NewFromString(payload.Amount.String())
	if err != nil {
		respondProblem(c, apierrors.ErrValidation.WithDetail("amount must be a decimal number"))
		return
	}
	match, err := api.service.ConfirmExternalPayment(c.Request.Context(), amount, payload.PayerRef)
	if err != nil {
		ordersResponder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromPaymentMatch(match))
}

// Post /v1/orders/:orderId/cash-image
// Submit a captured banknote image for verification
func (api *OrderAPI) SubmitCashImage(c *gin.Context) {
	id, ok := parseOrderIDParam(c)
	if !ok {
		return
	}
	image, ok := readBanknoteImage(c)
	if !ok {
		return
	}
	result, err := api.submitCashImage(c.Request.Context(), id, image)
	if err != nil {
		ordersResponder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromCashImageResult(result))
}

func (api *OrderAPI) submitCashImage(ctx context.Context, orderID uuid.UUID, image []byte) (*ordersports.CashImageResult, error) {
	if api.workflows != nil {
		return api.workflows.SubmitCashImage(ctx, orderID, image)
	}
	return api.service.SubmitCashImage(ctx, orderID, image)
}

// redeemRequest carries a dispense code typed at a machine keypad.
type redeemRequest struct {
	DispenseCode string `json:"dispenseCode" binding:"required"`
	DeviceID     string `json:"deviceId" binding:"required"`
}

// Post /v1/redeem
// Exchange a dispense code for a vend command, exactly once
func (api *OrderAPI) RedeemCode(c *gin.Context) {
	var payload redeemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	order, err := api.service.Redeem(c.Request.Context(), payload.DispenseCode, payload.DeviceID)
	if err != nil {
		ordersResponder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "code redeemed, dispensing " + order.ProductName})
}

func parseOrderIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail("orderId must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// readBanknoteImage accepts the image as a multipart file field or a base64
// JSON body, whichever the device firmware sends.
func readBanknoteImage(c *gin.Context) ([]byte, bool) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/") {
		file, err := c.FormFile("image")
		if err != nil {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail("multipart field 'image' is required"))
			return nil, false
		}
		opened, err := file.Open()
		if err != nil {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
			return nil, false
		}
		defer opened.Close()
		data, err := io.ReadAll(opened)
		if err != nil {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
			return nil, false
		}
		return data, true
	}
	var payload struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload.Image)
	if err != nil {
		respondProblem(c, apierrors.ErrValidation.WithDetail("image must be base64 encoded"))
		return nil, false
	}
	return data, true
}
