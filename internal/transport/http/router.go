package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mandoni/retail-ordering/internal/handlers"
	"github.com/mandoni/retail-ordering/internal/middleware/auth"
)

type Deps struct {
	Gate            *auth.Gate
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	OrderHandler    *handlers.OrderAdminHandler
	CustomerHandler *handlers.CustomerHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authGroup := e.Group("/auth")
	authGroup.POST("/signup", d.AuthHandler.Signup)
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/refresh", d.AuthHandler.Refresh)
	authGroup.POST("/logout", d.AuthHandler.Logout)
	authGroup.PUT("/users/:id/make-admin", d.AuthHandler.MakeAdmin, d.Gate.RequireAdmin)

	admin := e.Group("/admin", d.Gate.RequireAdmin)
	admin.POST("/add-product", d.ProductHandler.CreateProduct)
	admin.GET("/get-products", d.ProductHandler.GetProducts)
	admin.GET("/get-product/:id", d.ProductHandler.GetProduct)
	admin.PUT("/update-product/:id", d.ProductHandler.UpdateProduct)
	admin.DELETE("/delete-product/:id", d.ProductHandler.DeleteProduct)
	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.GET("/get-order/:id", d.OrderHandler.GetOrder)

	customer := e.Group("/customer")
	customer.GET("/products", d.CustomerHandler.ListProducts)
	customer.GET("/search", d.SearchHandler.SearchProducts)
	customer.POST("/make-order", d.CustomerHandler.MakeOrder, d.Gate.RequireUser)
	customer.GET("/get-order/:id", d.CustomerHandler.GetCustomerOrders)
	customer.GET("/get-order/:id/status", d.CustomerHandler.GetOrderStatus)
}
