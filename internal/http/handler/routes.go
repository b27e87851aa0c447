package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mescude1/skinly-ecomm/internal/http/middleware"
	"github.com/mescude1/skinly-ecomm/internal/service"
)

// Deps carries everything the routes need. Metrics may be nil to skip /metrics.
type Deps struct {
	DB      *sql.DB
	Tokens  middleware.TokenParser
	Metrics prometheus.Gatherer

	Catalog         service.CatalogService
	Recommendations service.RecommendationService
	Cart            service.CartService
	Checkout        service.CheckoutService
	Inventory       service.InventoryService
	Reviews         service.ReviewService
	Wishlist        service.WishlistService
	Profile         service.ProfileService
	Auth            service.AuthService
	Newsletter      service.NewsletterService
	Partner         PartnerFeed
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	optional := middleware.OptionalAuth(d.Tokens)
	signedIn := middleware.RequireAuth(d.Tokens)
	staff := []fiber.Handler{signedIn, middleware.RequireStaff()}

	authGroup := app.Group("/auth", middleware.RateLimit(20, time.Minute))
	authGroup.Post("/signup", Signup(d.Auth))
	authGroup.Post("/login", Login(d.Auth))

	// Catalog
	app.Get("/home", optional, Home(d.Catalog))
	app.Get("/products", ListProducts(d.Catalog))
	app.Get("/products/:id", optional, GetProduct(d.Catalog))
	app.Post("/products/:id/reviews", signedIn, AddReview(d.Reviews))
	app.Post("/products/:id/image", append(staff, UploadProductImage(d.Catalog))...)
	app.Get("/search", QuickSearch(d.Catalog))
	app.Get("/api/products", ProductFeed(d.Catalog))
	app.Get("/brands", ListBrands(d.Catalog))
	app.Get("/colors", ListColors(d.Catalog))
	app.Get("/allied-products", AlliedProducts(d.Partner))

	// Cart and checkout
	app.Get("/cart", signedIn, GetCart(d.Cart))
	app.Post("/cart/items", signedIn, AddToCart(d.Cart))
	app.Patch("/cart/items/:id", signedIn, UpdateCartItem(d.Cart))
	app.Delete("/cart/items/:id", signedIn, RemoveCartItem(d.Cart))
	app.Get("/checkout", signedIn, CheckoutPreview(d.Checkout))
	app.Post("/checkout", signedIn, PlaceOrder(d.Checkout))
	app.Get("/orders", signedIn, ListOrders(d.Checkout))
	app.Get("/orders/:id", signedIn, GetOrder(d.Checkout))
	app.Post("/orders/:id/cancel", signedIn, CancelOrder(d.Checkout))

	// Account
	app.Get("/profile", signedIn, GetProfile(d.Profile))
	app.Put("/profile", signedIn, UpdateProfile(d.Profile))
	app.Get("/profile/addresses", signedIn, ListAddresses(d.Profile))
	app.Post("/profile/addresses", signedIn, AddAddress(d.Profile))
	app.Get("/coupons", signedIn, ListCoupons(d.Profile))
	app.Get("/recommendations", signedIn, Recommendations(d.Recommendations))
	app.Get("/wishlist", signedIn, ListWishlist(d.Wishlist))
	app.Post("/wishlist/:productId/toggle", signedIn, ToggleWishlist(d.Wishlist))

	app.Post("/newsletter/subscribe", Subscribe(d.Newsletter))
	app.Post("/newsletter/unsubscribe", Unsubscribe(d.Newsletter))

	// Staff
	app.Put("/inventory/:productId", append(staff, UpdateStock(d.Inventory))...)
	app.Get("/inventory/low-stock", append(staff, LowStock(d.Inventory))...)
}
