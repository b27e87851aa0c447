package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/mescude1/skinly-ecomm/internal/http/middleware"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/service"
)

const recommendationsLimit = 10

type signupRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Email           string `json:"email" validate:"required,email"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	FirstName             string           `json:"first_name" validate:"max=150"`
	LastName              string           `json:"last_name" validate:"max=150"`
	Email                 string           `json:"email" validate:"required,email"`
	SkinTone              string           `json:"skin_tone" validate:"omitempty,skintone"`
	SkinType              string           `json:"skin_type" validate:"omitempty,skintype"`
	PreferredProductTypes []string         `json:"preferred_product_types" validate:"dive,producttype"`
	PreferredFinishTypes  []string         `json:"preferred_finish_types" validate:"dive,finishtype"`
	PreferredColorIDs     []string         `json:"preferred_color_ids" validate:"dive,uuid"`
	PreferredBrandIDs     []string         `json:"preferred_brand_ids" validate:"dive,uuid"`
	MinPrice              *decimal.Decimal `json:"min_price"`
	MaxPrice              *decimal.Decimal `json:"max_price"`
}

type addressRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	FirstName    string `json:"first_name" validate:"required,max=100"`
	LastName     string `json:"last_name" validate:"required,max=100"`
	AddressLine1 string `json:"address_line_1" validate:"required,max=255"`
	AddressLine2 string `json:"address_line_2" validate:"max=255"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"required,max=100"`
	PostalCode   string `json:"postal_code" validate:"required,max=20"`
	Country      string `json:"country" validate:"max=100"`
	Phone        string `json:"phone" validate:"max=20"`
	IsDefault    bool   `json:"is_default"`
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Signup registers a shopper and returns a session token.
// @Summary Sign up
// @Tags auth
// @Accept json
// @Param body body signupRequest true "account"
// @Success 201 {object} service.Session
// @Failure 409 {object} errorPayload
// @Router /auth/signup [post]
func Signup(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signupRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		sess, err := svc.Signup(c.UserContext(), service.SignupInput{
			Username:        req.Username,
			Email:           req.Email,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			Password:        req.Password,
			PasswordConfirm: req.PasswordConfirm,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

// Login accepts a username or email.
// @Summary Log in
// @Tags auth
// @Accept json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} service.Session
// @Failure 401 {object} errorPayload
// @Router /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		sess, err := svc.Login(c.UserContext(), req.Login, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sess)
	}
}

// GetProfile returns the profile page data.
// @Summary Profile page
// @Tags profile
// @Success 200 {object} service.ProfileView
// @Security BearerAuth
// @Router /profile [get]
func GetProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.Get(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(view)
	}
}

// UpdateProfile replaces the personal details and taste preferences.
// @Summary Update profile
// @Tags profile
// @Accept json
// @Param body body profileRequest true "profile"
// @Success 200 {object} model.User
// @Failure 400 {object} errorPayload
// @Security BearerAuth
// @Router /profile [put]
func UpdateProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req profileRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}

		in := service.ProfileUpdate{
			FirstName:             req.FirstName,
			LastName:              req.LastName,
			Email:                 req.Email,
			SkinTone:              model.SkinTone(req.SkinTone),
			SkinType:              model.SkinType(req.SkinType),
			PreferredProductTypes: toChoices[model.ProductType](req.PreferredProductTypes),
			PreferredFinishTypes:  toChoices[model.FinishType](req.PreferredFinishTypes),
			PreferredColorIDs:     req.PreferredColorIDs,
			PreferredBrandIDs:     req.PreferredBrandIDs,
		}
		switch {
		case req.MinPrice != nil && req.MaxPrice != nil:
			in.PriceRange = &model.PriceRange{Min: *req.MinPrice, Max: *req.MaxPrice}
		case req.MinPrice != nil || req.MaxPrice != nil:
			return writeError(c, fiber.StatusBadRequest, "INVALID_PRICE_RANGE", "min_price and max_price go together")
		}

		user, err := svc.Update(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(user)
	}
}

func toChoices[T ~string](in []string) []T {
	out := make([]T, 0, len(in))
	for _, s := range in {
		out = append(out, T(s))
	}
	return out
}

// ListAddresses returns the saved addresses, default first.
// @Summary Saved shipping addresses
// @Tags profile
// @Success 200 {array} model.ShippingAddress
// @Security BearerAuth
// @Router /profile/addresses [get]
func ListAddresses(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		addrs, err := svc.Addresses(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(addrs)
	}
}

// AddAddress saves a shipping address.
// @Summary Add shipping address
// @Tags profile
// @Accept json
// @Param body body addressRequest true "address"
// @Success 201 {object} model.ShippingAddress
// @Security BearerAuth
// @Router /profile/addresses [post]
func AddAddress(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addressRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		addr, err := svc.AddAddress(c.UserContext(), middleware.UserID(c), model.ShippingAddress{
			Name:         req.Name,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			AddressLine1: req.AddressLine1,
			AddressLine2: req.AddressLine2,
			City:         req.City,
			State:        req.State,
			PostalCode:   req.PostalCode,
			Country:      req.Country,
			Phone:        req.Phone,
			IsDefault:    req.IsDefault,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(addr)
	}
}

// ListCoupons returns the caller's unused, active coupons.
// @Summary Available coupons
// @Tags profile
// @Success 200 {array} model.AvailableCoupon
// @Security BearerAuth
// @Router /coupons [get]
func ListCoupons(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		coupons, err := svc.Coupons(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(coupons)
	}
}

// Recommendations returns products matching the taste profile.
// @Summary Personal recommendations
// @Tags profile
// @Success 200 {array} model.Product
// @Security BearerAuth
// @Router /recommendations [get]
func Recommendations(svc service.RecommendationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.Generate(c.UserContext(), middleware.UserID(c), recommendationsLimit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(products)
	}
}

// ListWishlist returns the wishlisted products.
// @Summary Wishlist
// @Tags wishlist
// @Success 200 {array} model.Product
// @Security BearerAuth
// @Router /wishlist [get]
func ListWishlist(svc service.WishlistService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(products)
	}
}

// ToggleWishlist adds or removes a product.
// @Summary Toggle wishlist entry
// @Tags wishlist
// @Param productId path string true "product id"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /wishlist/{productId}/toggle [post]
func ToggleWishlist(svc service.WishlistService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "productId")
		if !ok {
			return invalidID(c)
		}
		status, err := svc.Toggle(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"status": status})
	}
}

// AddReview creates or replaces the caller's review of a product.
// @Summary Review product
// @Tags reviews
// @Accept json
// @Param id path string true "product id"
// @Param body body reviewRequest true "review"
// @Success 200 {object} service.ReviewResult
// @Success 201 {object} service.ReviewResult
// @Failure 400 {object} errorPayload
// @Security BearerAuth
// @Router /products/{id}/reviews [post]
func AddReview(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req reviewRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		res, err := svc.Add(c.UserContext(), middleware.UserID(c), id, req.Rating, strings.TrimSpace(req.Comment))
		if err != nil {
			return writeServiceError(c, err)
		}
		status := fiber.StatusOK
		if res.Created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(res)
	}
}
