package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/paperman/internal/models"
	authmw "github.com/Skotchmaster/paperman/pkg/middleware/auth"
	"github.com/Skotchmaster/paperman/pkg/middleware/csrf"
)

const APIPrefix = "/api/v1"

type Deps struct {
	Health    *HealthHTTP
	Auth      *AuthHTTP
	Category  *CategoryHTTP
	Product   *ProductHTTP
	Inventory *InventoryHTTP
	Customer  *CustomerHTTP
	Lead      *LeadHTTP
	User      *UserHTTP
	Stock     *StockHTTP
	Dashboard *DashboardHTTP

	JWTSecret []byte
	// CSRF is nil when double-submit protection is off.
	CSRF *csrf.Config
}

// PublicPosts are the state-changing routes reachable without a session.
func PublicPosts() []string {
	return []string{
		APIPrefix + "/auth/login",
		APIPrefix + "/auth/refresh",
		APIPrefix + "/enquiry",
		APIPrefix + "/quote",
	}
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.Health.Live)
	e.GET("/health/ready", d.Health.Ready)

	var mws []echo.MiddlewareFunc
	if d.CSRF != nil {
		cfg := *d.CSRF
		cfg.SkipPaths = append(cfg.SkipPaths, PublicPosts()...)
		mws = append(mws, csrf.Middleware(cfg))
	}
	v1 := e.Group(APIPrefix, mws...)
	auth := authmw.RequireAuth(d.JWTSecret)

	v1.POST("/auth/login", d.Auth.Login)
	v1.POST("/auth/refresh", d.Auth.Refresh)
	v1.POST("/auth/logout", d.Auth.Logout)
	v1.GET("/auth/me", d.Auth.Me, auth)

	v1.GET("/stock", d.Stock.List)
	v1.GET("/stock/search", d.Stock.Search)
	v1.GET("/stock/:id", d.Stock.Get)

	v1.POST("/enquiry", d.Lead.SubmitEnquiry)
	v1.POST("/quote", d.Lead.SubmitQuote)

	categories := v1.Group("/categories", auth)
	categories.GET("", d.Category.List)
	categories.POST("", d.Category.Create)
	categories.GET("/:id", d.Category.Get)
	categories.PUT("/:id", d.Category.Update)
	categories.DELETE("/:id", d.Category.Delete)

	products := v1.Group("/products", auth)
	products.GET("", d.Product.List)
	products.POST("", d.Product.Create)
	products.GET("/export", d.Product.Export)
	products.GET("/:id", d.Product.Get)
	products.PUT("/:id", d.Product.Update)
	products.DELETE("/:id", d.Product.Delete)

	inventory := v1.Group("/inventory", auth)
	inventory.GET("", d.Inventory.List)
	inventory.POST("", d.Inventory.Create)
	inventory.GET("/export", d.Inventory.Export)
	inventory.GET("/:id", d.Inventory.Get)
	inventory.PUT("/:id", d.Inventory.Update)
	inventory.DELETE("/:id", d.Inventory.Delete)

	customers := v1.Group("/customers", auth)
	customers.GET("", d.Customer.List)
	customers.POST("", d.Customer.Create)
	customers.GET("/export", d.Customer.Export)
	customers.GET("/:id", d.Customer.Get)
	customers.GET("/:id/leads", d.Customer.Leads)
	customers.PUT("/:id", d.Customer.Update)
	customers.DELETE("/:id", d.Customer.Delete)

	leads := v1.Group("/enquiry", auth)
	leads.GET("", d.Lead.List)
	leads.GET("/export", d.Lead.Export)
	leads.GET("/:id", d.Lead.Get)
	leads.GET("/:id/availability", d.Lead.Availability)
	leads.PUT("/:id", d.Lead.Update)
	leads.PATCH("/:id", d.Lead.Update)
	leads.DELETE("/:id", d.Lead.Delete)

	users := v1.Group("/users", auth, authmw.RequireRole(models.RoleAdmin))
	users.GET("", d.User.List)
	users.POST("", d.User.Create)
	users.GET("/:id", d.User.Get)
	users.PUT("/:id", d.User.Update)
	users.DELETE("/:id", d.User.Delete)

	v1.GET("/dashboard", d.Dashboard.Get, auth)
}
