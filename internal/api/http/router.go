package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Users       *handlers.UsersHandler
	Products    *handlers.ProductsHandler
	Categories  *handlers.CategoriesHandler
	Orders      *handlers.OrdersHandler
	APIKeys     *handlers.APIKeysHandler
	Catalog     *handlers.CatalogHandler
	SessionAuth *auth.SessionAuth
	KeyAuth     *auth.KeyAuth
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Get("/me", cfg.SessionAuth.Handle, cfg.Auth.Me)
	authGroup.Post("/password/change", cfg.SessionAuth.Handle, cfg.Auth.ChangePassword)

	api := app.Group("/api", cfg.SessionAuth.Handle)

	users := api.Group("/users", auth.RequireAdmin())
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)

	products := api.Group("/products", auth.RequireStaff())
	products.Get("/", cfg.Products.List)
	products.Post("/", cfg.Products.Create)
	products.Get("/:id", cfg.Products.Get)
	products.Put("/:id", cfg.Products.Update)
	products.Delete("/:id", cfg.Products.Delete)

	categories := api.Group("/categories", auth.RequireStaff())
	categories.Get("/", cfg.Categories.List)
	categories.Post("/", cfg.Categories.Create)
	categories.Get("/:id", cfg.Categories.Get)
	categories.Put("/:id", cfg.Categories.Update)
	categories.Delete("/:id", cfg.Categories.Delete)

	orders := api.Group("/orders")
	orders.Post("/", cfg.Orders.Create)
	orders.Get("/", cfg.Orders.List)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Put("/:id/status", auth.RequireStaff(), cfg.Orders.UpdateStatus)

	keys := api.Group("/api-keys", auth.RequireStaff())
	keys.Get("/", cfg.APIKeys.List)
	keys.Post("/", cfg.APIKeys.Create)
	keys.Get("/:id", cfg.APIKeys.Get)
	keys.Put("/:id", cfg.APIKeys.Update)
	keys.Post("/:id/regenerate", cfg.APIKeys.Regenerate)
	keys.Delete("/:id", cfg.APIKeys.Delete)

	public := app.Group("/public", cfg.KeyAuth.Handle)
	public.Get("/products", cfg.Catalog.ListProducts)
	public.Get("/products/:id", cfg.Catalog.GetProduct)
}
