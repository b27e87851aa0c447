package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mescude1/skinly-ecomm/internal/http/middleware"
	"github.com/mescude1/skinly-ecomm/internal/service"
)

type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  *int   `json:"quantity" validate:"omitempty,max=999"`
}

// updateCartItemRequest: zero or negative quantities remove the item.
type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"max=999"`
}

// GetCart returns the caller's cart with totals and suggestions.
// @Summary View cart
// @Tags cart
// @Success 200 {object} service.CartView
// @Security BearerAuth
// @Router /cart [get]
func GetCart(svc service.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.View(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(view)
	}
}

// AddToCart adds a product; quantity defaults to 1.
// @Summary Add to cart
// @Tags cart
// @Accept json
// @Param body body addToCartRequest true "product and quantity"
// @Success 201 {object} model.CartItem
// @Failure 409 {object} errorPayload
// @Security BearerAuth
// @Router /cart/items [post]
func AddToCart(svc service.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addToCartRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		qty := 1
		if req.Quantity != nil {
			qty = *req.Quantity
		}

		item, err := svc.Add(c.UserContext(), middleware.UserID(c), req.ProductID, qty)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// UpdateCartItem sets a line's quantity; zero or less removes it.
// @Summary Update cart line
// @Tags cart
// @Accept json
// @Param id path string true "cart item id"
// @Param body body updateCartItemRequest true "new quantity"
// @Success 204
// @Security BearerAuth
// @Router /cart/items/{id} [patch]
func UpdateCartItem(svc service.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req updateCartItemRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		if err := svc.Update(c.UserContext(), middleware.UserID(c), id, req.Quantity); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RemoveCartItem deletes a line from the caller's cart.
// @Summary Remove cart line
// @Tags cart
// @Param id path string true "cart item id"
// @Success 204
// @Security BearerAuth
// @Router /cart/items/{id} [delete]
func RemoveCartItem(svc service.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		if err := svc.Remove(c.UserContext(), middleware.UserID(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
