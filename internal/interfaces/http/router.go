package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/deyirman-ledger/internal/application/engine"
	"github.com/jhoicas/deyirman-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine    *engine.Engine
	JWTSecret string
	JWTIssuer string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las escrituras además un rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	adminOnly := RequireRole(jwt.RoleAdmin)
	producers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	sellers := RequireRole(jwt.RoleAdmin, jwt.RoleVendedor)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.Engine.Products)
	inventoryHandler := NewInventoryHandler(deps.Engine)
	products.Get("/", productHandler.List)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Get("/:id/stock", inventoryHandler.StockLevel)
	products.Get("/:id/moves", inventoryHandler.ListMoves)
	api.Get("/stock-moves", inventoryHandler.ListByRef)

	// Customers
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.Engine.Customers)
	customers.Get("/", customerHandler.List)
	customers.Post("/", sellers, customerHandler.Create)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", sellers, customerHandler.Update)
	customers.Delete("/:id", adminOnly, customerHandler.Delete)

	// Productions
	productions := api.Group("/productions")
	productionHandler := NewProductionHandler(deps.Engine)
	productions.Post("/", producers, productionHandler.Create)
	productions.Get("/:id", productionHandler.GetByID)
	productions.Put("/:id", producers, productionHandler.Update)
	productions.Delete("/:id", adminOnly, productionHandler.Delete)
	productions.Post("/:id/confirm", producers, productionHandler.Confirm)

	// Sales y pagos
	sales := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.Engine)
	sales.Post("/", sellers, saleHandler.Create)
	sales.Get("/next-number", saleHandler.NextNumber)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Put("/:id", sellers, saleHandler.Update)
	sales.Delete("/:id", adminOnly, saleHandler.Delete)
	sales.Post("/:id/confirm", sellers, saleHandler.Confirm)
	sales.Post("/:id/cancel", sellers, saleHandler.Cancel)
	sales.Get("/:id/payments", saleHandler.ListPayments)
	sales.Post("/:id/payments", sellers, saleHandler.AddPayment)
}
