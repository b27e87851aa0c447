package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mescude1/skinly-ecomm/internal/http/middleware"
	"github.com/mescude1/skinly-ecomm/internal/logging"
	"github.com/mescude1/skinly-ecomm/internal/service"
	"github.com/mescude1/skinly-ecomm/internal/storage"
	"github.com/mescude1/skinly-ecomm/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

func writeValidationError(c *fiber.Ctx, verr *validation.Error) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    "VALIDATION_ERROR",
			Message: verr.Error(),
			Fields:  verr.Fields,
		},
	})
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var serviceErrors = []errorMapping{
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "resource not found"},
	{service.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "quantity must be at least 1"},
	{service.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "not enough stock available"},
	{service.ErrCartEmpty, fiber.StatusBadRequest, "CART_EMPTY", "your cart is empty"},
	{service.ErrShippingAddressRequired, fiber.StatusBadRequest, "SHIPPING_ADDRESS_REQUIRED", "please select a shipping address"},
	{service.ErrInvalidShippingAddress, fiber.StatusBadRequest, "INVALID_SHIPPING_ADDRESS", "invalid shipping address selected"},
	{service.ErrInvalidPaymentMethod, fiber.StatusBadRequest, "INVALID_PAYMENT_METHOD", "unsupported payment method"},
	{service.ErrCouponInvalid, fiber.StatusBadRequest, "COUPON_INVALID", "coupon is not valid for this order"},
	{service.ErrDuplicateRequest, fiber.StatusConflict, "DUPLICATE_REQUEST", "this order is already being processed"},
	{service.ErrOrderNotCancelable, fiber.StatusConflict, "ORDER_NOT_CANCELABLE", "only pending orders can be canceled"},
	{service.ErrInvalidRating, fiber.StatusBadRequest, "INVALID_RATING", "rating must be between 1 and 5"},
	{service.ErrUserExists, fiber.StatusConflict, "USER_EXISTS", "username or email already exists"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password"},
	{service.ErrPasswordMismatch, fiber.StatusBadRequest, "PASSWORD_MISMATCH", "passwords do not match"},
	{service.ErrPasswordTooShort, fiber.StatusBadRequest, "PASSWORD_TOO_SHORT", "password is too short"},
	{service.ErrInvalidPriceRange, fiber.StatusBadRequest, "INVALID_PRICE_RANGE", "invalid price range"},
	{service.ErrInvalidChoice, fiber.StatusBadRequest, "INVALID_CHOICE", "unsupported value"},
	{service.ErrAddressIncomplete, fiber.StatusBadRequest, "ADDRESS_INCOMPLETE", "please fill in all required address fields"},
	{service.ErrEmailRequired, fiber.StatusBadRequest, "EMAIL_REQUIRED", "email is required"},
	{service.ErrSubscriptionFailed, fiber.StatusInternalServerError, "SUBSCRIPTION_FAILED", "an error occurred, please try again"},
	{storage.ErrUnsupportedImage, fiber.StatusBadRequest, "UNSUPPORTED_IMAGE", "image must be jpeg, png, gif or webp"},
}

// writeServiceError translates a service error into the error envelope.
// Unknown errors are logged and reported as INTERNAL_ERROR.
func writeServiceError(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return writeValidationError(c, verr)
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return writeError(c, m.status, m.code, m.message)
		}
	}

	logging.Ctx(c.UserContext()).Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("request_failed")
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "insufficient permissions")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "TOO_MANY_REQUESTS", "too many requests")
		default:
			logging.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("unhandled_error")
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
