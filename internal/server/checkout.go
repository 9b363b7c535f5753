package server

import (
	"github.com/gin-gonic/gin"

	"github.com/skintellect/storefront/internal/checkout"
	"github.com/skintellect/storefront/internal/store"
)

func GetQuote(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok(c, svc.Quote(currentSession(c).Cart))
	}
}

// PlaceOrder handles POST /api/session/checkout. The payment is simulated.
func PlaceOrder(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkout.PlaceOrderRequest
		if !bindJSON(c, &req) {
			return
		}
		sess := currentSession(c)
		order, err := svc.PlaceOrder(c.Request.Context(), sess.ID, sess.Cart, req)
		if err != nil {
			sess.Toasts.Show(errMessage(err), store.ToastError)
			fail(c, err)
			return
		}
		sess.Toasts.Show("Order "+order.OrderNumber+" placed", store.ToastSuccess)
		ok(c, order)
	}
}

func ListOrders(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.Orders(c.Request.Context(), currentSession(c).ID)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, orders)
	}
}
