package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mescude1/skinly-ecomm/internal/http/middleware"
	"github.com/mescude1/skinly-ecomm/internal/model"
	"github.com/mescude1/skinly-ecomm/internal/partner"
	"github.com/mescude1/skinly-ecomm/internal/service"
)

// PartnerFeed lists the allied store's products. It never fails; an
// unavailable partner yields an empty list.
type PartnerFeed interface {
	Products(ctx context.Context) []partner.Product
}

// Home returns featured products plus recommendations for signed-in users.
// @Summary Landing page
// @Tags catalog
// @Produce json
// @Success 200 {object} service.Home
// @Router /home [get]
func Home(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		home, err := svc.Home(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(home)
	}
}

// ListProducts returns one page of in-stock products.
// @Summary List products
// @Tags catalog
// @Produce json
// @Param q query string false "search text"
// @Param brand query string false "brand id"
// @Param product_type query string false "product type"
// @Param finish_type query string false "finish type"
// @Param skin_type query string false "skin type"
// @Param min_price query number false "minimum price"
// @Param max_price query number false "maximum price"
// @Param page query int false "page number"
// @Success 200 {object} service.ProductPage
// @Failure 400 {object} errorPayload
// @Router /products [get]
func ListProducts(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := service.ProductQuery{
			Query:       strings.TrimSpace(c.Query("q")),
			BrandID:     c.Query("brand"),
			ProductType: model.ProductType(c.Query("product_type")),
			FinishType:  model.FinishType(c.Query("finish_type")),
			SkinType:    model.SkinType(c.Query("skin_type")),
			Page:        queryPage(c),
		}
		var err error
		if q.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PRICE", "min_price must be a number")
		}
		if q.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PRICE", "max_price must be a number")
		}

		page, err := svc.List(c.UserContext(), q)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(page)
	}
}

// GetProduct returns the product detail page.
// @Summary Product detail
// @Tags catalog
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} service.ProductDetail
// @Failure 404 {object} errorPayload
// @Router /products/{id} [get]
func GetProduct(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}
		detail, err := svc.Get(c.UserContext(), id, middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(detail)
	}
}

// QuickSearch serves search-as-you-type.
// @Summary Quick search
// @Tags catalog
// @Produce json
// @Param q query string true "at least two characters"
// @Success 200 {object} map[string][]service.SearchHit
// @Router /search [get]
func QuickSearch(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hits, err := svc.QuickSearch(c.UserContext(), c.Query("q"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"results": hits})
	}
}

// ProductFeed serves the public feed consumed by partner stores.
// @Summary Public product feed
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string][]service.FeedProduct
// @Router /api/products [get]
func ProductFeed(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := svc.Feed(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}
}

// ListBrands returns every brand, alphabetically.
// @Summary List brands
// @Tags catalog
// @Success 200 {array} model.Brand
// @Router /brands [get]
func ListBrands(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		brands, err := svc.Brands(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(brands)
	}
}

// ListColors returns the shade catalog.
// @Summary List colors
// @Tags catalog
// @Success 200 {array} model.Color
// @Router /colors [get]
func ListColors(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		colors, err := svc.Colors(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(colors)
	}
}

// UploadProductImage replaces a product's image (multipart/form-data, field name: image).
// @Summary Upload product image
// @Tags staff
// @Accept multipart/form-data
// @Param id path string true "product id"
// @Param image formData file true "image file"
// @Success 200 {object} model.Product
// @Failure 400 {object} errorPayload
// @Security BearerAuth
// @Router /products/{id}/image [post]
func UploadProductImage(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}

		fh, err := c.FormFile("image")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "image is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		product, err := svc.UploadImage(c.UserContext(), id, service.ImageUpload{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(product)
	}
}

// AlliedProducts proxies the partner store's feed.
// @Summary Allied store products
// @Tags catalog
// @Success 200 {object} map[string][]partner.Product
// @Router /allied-products [get]
func AlliedProducts(feed PartnerFeed) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"products": feed.Products(c.UserContext())})
	}
}
