package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mescude1/skinly-ecomm/internal/logging"
)

const (
	RequestIDHeader   = "X-Request-ID"
	RequestIDLocalKey = "request_id"

	maxRequestIDLen = 64
)

// RequestID tags every request with an id, echoed in X-Request-ID.
//
// A client-supplied id is kept when it is short and made of [A-Za-z0-9._-];
// anything else is replaced by a fresh UUID so it cannot pollute the logs.
// The id is reachable from handlers (Locals), from services (logging.Ctx on
// the user context) and from traces (request.id on the active span).
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		ctx := logging.ContextWithRequestID(c.UserContext(), id)
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("request.id", id))
		c.SetUserContext(ctx)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
