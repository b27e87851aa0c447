package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mescude1/skinly-ecomm/internal/validation"
)

// pathID returns the named path parameter when it is a UUID.
func pathID(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}

// queryPage parses ?page=, treating anything that is not a number as page 1.
func queryPage(c *fiber.Ctx) int {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		return 1
	}
	return page
}

// queryDecimal parses an optional decimal query parameter.
func queryDecimal(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// bindJSON decodes and validates the request body into dst.
// It writes the error response itself and reports whether the handler should continue.
func bindJSON(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
	}
	if err := validation.Struct(dst); err != nil {
		if verr, ok := err.(*validation.Error); ok {
			return false, writeValidationError(c, verr)
		}
		return false, writeServiceError(c, err)
	}
	return true, nil
}
