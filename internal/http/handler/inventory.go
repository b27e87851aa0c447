package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mescude1/skinly-ecomm/internal/service"
)

type stockRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// UpdateStock overwrites a product's stock.
// @Summary Set stock
// @Tags staff
// @Accept json
// @Param productId path string true "product id"
// @Param body body stockRequest true "new stock"
// @Success 204
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /inventory/{productId} [put]
func UpdateStock(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "productId")
		if !ok {
			return invalidID(c)
		}
		var req stockRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		if err := svc.UpdateStock(c.UserContext(), id, *req.Quantity); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// LowStock lists products at or below ?threshold= (default 10).
// @Summary Low stock report
// @Tags staff
// @Param threshold query int false "threshold"
// @Success 200 {array} model.Product
// @Security BearerAuth
// @Router /inventory/low-stock [get]
func LowStock(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		threshold := 0
		if raw := c.Query("threshold"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_THRESHOLD", "threshold must be a non-negative integer")
			}
			threshold = n
		}
		products, err := svc.LowStock(c.UserContext(), threshold)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(products)
	}
}
