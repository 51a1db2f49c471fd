package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopzone/ecommerce-api/internal/handlers"
	"github.com/shopzone/ecommerce-api/internal/middleware"
	"github.com/shopzone/ecommerce-api/internal/token"
)

type Deps struct {
	AuthHandler     *handlers.AuthHandler
	CategoryHandler *handlers.CategoryHandler
	ProductHandler  *handlers.ProductHandler
	SearchHandler   *handlers.SearchHandler
	Tokens          *token.Service
	UploadDir       string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	// Uploaded product photos are served straight from the image root.
	e.Static("/storage", d.UploadDir)

	api := e.Group("/api")

	api.POST("/signup", d.AuthHandler.Signup)
	api.POST("/signin", d.AuthHandler.Signin)

	auth := api.Group("", middleware.RequireAuth(d.Tokens))
	auth.GET("/signout", d.AuthHandler.Signout)
	auth.GET("/profile", d.AuthHandler.Profile)

	categories := auth.Group("/categories")
	categories.GET("", d.CategoryHandler.List)
	categories.POST("", d.CategoryHandler.Create)
	categories.GET("/:id", d.CategoryHandler.Get)
	categories.PUT("/:id", d.CategoryHandler.Update)
	categories.DELETE("/:id", d.CategoryHandler.Delete)

	products := auth.Group("/products")
	products.GET("", d.ProductHandler.List)
	products.POST("", d.ProductHandler.Create)
	products.GET("/search", d.SearchHandler.Search)
	products.GET("/related/:id", d.ProductHandler.Related)
	products.POST("/by/search", d.ProductHandler.SearchProducts)
	products.GET("/:id", d.ProductHandler.Get)
	products.PUT("/:id", d.ProductHandler.Update)
	products.DELETE("/:id", d.ProductHandler.Delete)
}
