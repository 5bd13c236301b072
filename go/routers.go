// Package vendiserver exposes the HTTP transport for the vending coordination API.
package vendiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc returns 501 Not Implemented.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions bundles the per-context API handlers for router assembly.
type ApiHandleFunctions struct {
	OrderAPI   OrderAPI
	DeviceAPI  DeviceAPI
	ProductAPI ProductAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"CreateOrder",
			http.MethodPost,
			"/v1/orders",
			handleFunctions.OrderAPI.CreateOrder,
		},
		{
			"GetOrderById",
			http.MethodGet,
			"/v1/orders/:orderId",
			handleFunctions.OrderAPI.GetOrderById,
		},
		{
			"ConfirmBkashPayment",
			http.MethodPost,
			"/v1/payments/bkash/confirm",
			handleFunctions.OrderAPI.ConfirmBkashPayment,
		},
		{
			"SubmitCashImage",
			http.MethodPost,
			"/v1/orders/:orderId/cash-image",
			handleFunctions.OrderAPI.SubmitCashImage,
		},
		{
			"RedeemCode",
			http.MethodPost,
			"/v1/redeem",
			handleFunctions.OrderAPI.RedeemCode,
		},
		{
			"PollDevice",
			http.MethodGet,
			"/v1/devices/:deviceId/poll",
			handleFunctions.DeviceAPI.PollDevice,
		},
		{
			"ReportCommandStatus",
			http.MethodPost,
			"/v1/commands/:commandId/status",
			handleFunctions.DeviceAPI.ReportCommandStatus,
		},
		{
			"ListProducts",
			http.MethodGet,
			"/v1/products",
			handleFunctions.ProductAPI.ListProducts,
		},
	}
}
