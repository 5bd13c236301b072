// Package mapper translates between HTTP payloads and the orders domain.
package mapper

import (
	"time"

	"github.com/vendibd/vendi-server/internal/domains/orders/domain"
	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

// CreateOrderRequest captures the inbound order creation payload.
type CreateOrderRequest struct {
	ProductID     string `json:"productId" binding:"required"`
	DeviceID      string `json:"deviceId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
	CustomerPhone string `json:"customerPhone,omitempty"`
}

// ToCreateInput maps the transport payload into the application input.
func ToCreateInput(req CreateOrderRequest) ordersports.CreateOrderInput {
	return ordersports.CreateOrderInput{
		ProductID:     req.ProductID,
		DeviceID:      req.DeviceID,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		CustomerPhone: req.CustomerPhone,
	}
}

// OrderCreated is the response for a freshly created order.
type OrderCreated struct {
	OrderID      string `json:"orderId"`
	DispenseCode string `json:"dispenseCode"`
	Message      string `json:"message"`
}

// FromCreated builds the creation response. The dispense code travels back to
// the customer exactly once here; the status view never repeats it.
func FromCreated(order *domain.Order) OrderCreated {
	message := "order created, awaiting payment"
	if order.PaymentMethod == domain.MethodCash {
		message = "order created, insert banknote at the machine"
	}
	return OrderCreated{
		OrderID:      order.ID.String(),
		DispenseCode: order.DispenseCode,
		Message:      message,
	}
}

// PaymentMatched is the response for a reconciled bKash confirmation.
type PaymentMatched struct {
	OrderID      string `json:"orderId"`
	DispenseCode string `json:"dispenseCode"`
}

// FromPaymentMatch builds the payment confirmation response.
func FromPaymentMatch(match *ordersports.PaymentMatch) PaymentMatched {
	return PaymentMatched{
		OrderID:      match.OrderID.String(),
		DispenseCode: match.DispenseCode,
	}
}

// CashImageOutcome is the response for a banknote verification attempt.
type CashImageOutcome struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// FromCashImageResult builds the banknote outcome response.
func FromCashImageResult(result *ordersports.CashImageResult) CashImageOutcome {
	return CashImageOutcome{Accepted: result.Accepted, Message: result.Message}
}

// OrderView is the read-only order status representation.
type OrderView struct {
	OrderID       string     `json:"orderId"`
	ProductID     string     `json:"productId"`
	ProductName   string     `json:"productName"`
	Price         string     `json:"price"`
	DeviceID      string     `json:"deviceId"`
	PaymentMethod string     `json:"paymentMethod"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

// FromOrder maps the aggregate into its status view.
func FromOrder(order *domain.Order) OrderView {
	return OrderView{
		OrderID:       order.ID.String(),
		ProductID:     order.ProductID,
		ProductName:   order.ProductName,
		Price:         order.Price.StringFixed(2),
		DeviceID:      order.DeviceID,
		PaymentMethod: string(order.PaymentMethod),
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
		PaidAt:        order.PaidAt,
	}
}
