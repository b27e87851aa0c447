package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mescude1/skinly-ecomm/internal/http/middleware"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/service"
)

// IdempotencyKeyHeader lets clients retry a checkout without placing the order twice.
const IdempotencyKeyHeader = "Idempotency-Key"

type checkoutRequest struct {
	ShippingAddressID string `json:"shipping_address_id"`
	PaymentMethod     string `json:"payment_method"`
	CouponCode        string `json:"coupon_code" validate:"max=50"`
}

// CheckoutPreview prices the cart before the order is placed.
// @Summary Checkout preview
// @Tags checkout
// @Param coupon query string false "coupon code"
// @Success 200 {object} service.CheckoutPreview
// @Security BearerAuth
// @Router /checkout [get]
func CheckoutPreview(svc service.CheckoutService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		preview, err := svc.Preview(c.UserContext(), middleware.UserID(c), strings.TrimSpace(c.Query("coupon")))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(preview)
	}
}

// PlaceOrder turns the cart into an order.
// @Summary Place order
// @Tags checkout
// @Accept json
// @Param Idempotency-Key header string false "retry key"
// @Param body body checkoutRequest true "checkout form"
// @Success 201 {object} model.Order
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Security BearerAuth
// @Router /checkout [post]
func PlaceOrder(svc service.CheckoutService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req checkoutRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}

		order, err := svc.PlaceOrder(c.UserContext(), middleware.UserID(c), service.CheckoutRequest{
			ShippingAddressID: strings.TrimSpace(req.ShippingAddressID),
			PaymentMethod:     model.PaymentMethodType(strings.ToUpper(strings.TrimSpace(req.PaymentMethod))),
			CouponCode:        strings.TrimSpace(req.CouponCode),
			IdempotencyKey:    strings.TrimSpace(c.Get(IdempotencyKeyHeader)),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(order)
	}
}

// ListOrders returns the caller's orders, newest first.
// @Summary Order history
// @Tags orders
// @Success 200 {array} model.Order
// @Security BearerAuth
// @Router /orders [get]
func ListOrders(svc service.CheckoutService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orders, err := svc.ListOrders(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(orders)
	}
}

// GetOrder returns one of the caller's orders.
// @Summary Order detail
// @Tags orders
// @Param id path string true "order id"
// @Success 200 {object} model.Order
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /orders/{id} [get]
func GetOrder(svc service.CheckoutService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		order, err := svc.GetOrder(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(order)
	}
}

// CancelOrder cancels a pending order.
// @Summary Cancel order
// @Tags orders
// @Param id path string true "order id"
// @Success 200 {object} model.Order
// @Failure 409 {object} errorPayload
// @Security BearerAuth
// @Router /orders/{id}/cancel [post]
func CancelOrder(svc service.CheckoutService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		order, err := svc.CancelOrder(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(order)
	}
}
