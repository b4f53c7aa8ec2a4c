package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthHandler      *AuthHandler
	DashboardHandler *DashboardHandler
	ProductHandler   *ProductHandler
	CustomerHandler  *CustomerHandler
	SaleHandler      *SaleHandler
	UserHandler      *UserHandler
	TransferHandler  *TransferHandler
	JWTSecret        string
	Sessions         SessionChecker
	Logger           zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	const (
		admin      = entity.RoleAdmin
		editor     = entity.RoleEditor
		supervisor = entity.RoleSupervisor
	)
	readers := RequireRole(admin, editor, supervisor)
	writers := RequireRole(admin, editor)
	adminOnly := RequireRole(admin)

	api := app.Group("/api", RequestLogger(deps.Logger))

	// Auth (público)
	api.Post("/auth/login", deps.AuthHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.Sessions))

	protected.Get("/dashboard", deps.DashboardHandler.GetStats)

	// Products
	products := protected.Group("/products")
	ph := deps.ProductHandler
	products.Get("/", readers, ph.List)
	products.Get("/search", readers, ph.Search)
	products.Get("/download", adminOnly, deps.TransferHandler.DownloadProducts)
	products.Post("/upload", writers, deps.TransferHandler.UploadProducts)
	products.Get("/:id", readers, ph.GetByID)
	products.Post("/", writers, ph.Create)
	products.Put("/:id", writers, ph.Update)
	products.Delete("/:id", writers, ph.Delete)

	// Customers (solo lectura; se crean al vender)
	customers := protected.Group("/customers")
	ch := deps.CustomerHandler
	customers.Get("/", readers, ch.List)
	customers.Get("/search", readers, ch.Search)
	customers.Get("/by-email", readers, ch.GetByEmail)
	customers.Get("/download", adminOnly, deps.TransferHandler.DownloadCustomers)
	customers.Get("/:id", readers, ch.GetByID)

	// Sales
	sales := protected.Group("/sales")
	sh := deps.SaleHandler
	sales.Get("/", readers, sh.List)
	sales.Get("/search", readers, sh.Search)
	sales.Get("/download", adminOnly, deps.TransferHandler.DownloadSales)
	sales.Post("/upload", writers, deps.TransferHandler.UploadSales)
	sales.Get("/:id", readers, sh.GetByID)
	sales.Get("/:id/receipt", readers, sh.Receipt)
	sales.Post("/", writers, sh.Create)
	sales.Put("/:id", writers, sh.Update)
	sales.Delete("/:id", writers, sh.Delete)

	// Users y roles
	users := protected.Group("/users")
	uh := deps.UserHandler
	users.Get("/", RequireRole(admin, supervisor), uh.List)
	users.Get("/search", RequireRole(admin, supervisor), uh.Search)
	users.Get("/:id", RequireRole(admin, supervisor), uh.GetByID)
	users.Post("/", adminOnly, uh.Create)
	users.Put("/:id", adminOnly, uh.Update)
	users.Delete("/:id", adminOnly, uh.Delete)

	protected.Get("/roles", RequireRole(admin, supervisor), uh.ListRoles)
}
