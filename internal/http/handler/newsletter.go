package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mescude1/skinly-ecomm/internal/service"
)

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=100"`
}

var subscribeMessages = map[string]string{
	service.Subscribed:        "Successfully subscribed to newsletter!",
	service.AlreadySubscribed: "You are already subscribed to our newsletter.",
	service.Reactivated:       "Welcome back! Your subscription has been reactivated.",
}

// Subscribe adds an address to the weekly newsletter.
// @Summary Subscribe to newsletter
// @Tags newsletter
// @Accept json
// @Param body body subscribeRequest true "subscriber"
// @Success 200 {object} map[string]string
// @Router /newsletter/subscribe [post]
func Subscribe(svc service.NewsletterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req subscribeRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		status, err := svc.Subscribe(c.UserContext(), req.Email, req.Name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"status": status, "message": subscribeMessages[status]})
	}
}

// Unsubscribe deactivates a subscription. The email comes from the body or
// from ?email=, which is what the List-Unsubscribe link carries.
// @Summary Unsubscribe from newsletter
// @Tags newsletter
// @Param email query string false "subscriber email"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /newsletter/unsubscribe [post]
func Unsubscribe(svc service.NewsletterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.Query("email")
		if email == "" && len(c.Body()) > 0 {
			var req subscribeRequest
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
			}
			email = req.Email
		}
		if err := svc.Unsubscribe(c.UserContext(), email); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
