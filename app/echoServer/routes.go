package echoServer

import (
	"net/http"

	"pkgrental/app/echoServer/controller/auth"
	"pkgrental/app/echoServer/controller/customer"
	"pkgrental/app/echoServer/controller/inventory"
	"pkgrental/app/echoServer/controller/redeem"
	"pkgrental/app/echoServer/controller/webhook"
	jwtutil "pkgrental/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Webhook   *webhook.Controller
	Redeem    *redeem.Controller
	Customer  *customer.Controller
	Inventory *inventory.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/login", c.Auth.Login)

	// form provider webhook
	pub.POST("/webhook/submission", c.Webhook.Submission)

	// Auth
	g := e.Group("/v1")
	g.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// username + role extraction
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := jwtutil.ParseAuth(ctx.Request().Header.Get("Authorization"), c.JWTSecret)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			sub, ok := claims["sub"].(string)
			if !ok || sub == "" {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			role, _ := claims["role"].(string)

			ctx.Set("username", sub)
			ctx.Set("role", role)
			return next(ctx)
		}
	})

	// Scanning
	g.GET("/redeem/:code", c.Redeem.Resolve)
	g.GET("/search", c.Redeem.Search)

	// Customers
	g.GET("/customers", c.Customer.List)
	g.GET("/customers/:id", c.Customer.Detail)
	g.PUT("/customers/:id/notes", c.Customer.SaveNotes)
	g.GET("/customers/:id/emails", c.Customer.Emails)
	g.POST("/customers/:id/qrcode", c.Webhook.Reissue)

	// Packages
	g.GET("/customers/:id/packages", c.Inventory.List)
	g.POST("/customers/:id/packages", c.Inventory.AddUnits)
	g.DELETE("/customers/:id/packages", c.Inventory.RemoveUnits)
	g.POST("/customers/:id/packages/action", c.Inventory.Action)
	g.POST("/customers/:id/packages/reset", c.Inventory.Reset)
	g.PUT("/packages/:id/status", c.Inventory.SetStatus)

	// Admin only
	adm := g.Group("")
	adm.Use(RequireAdmin)
	adm.DELETE("/customers/:id", c.Customer.Delete)
	adm.GET("/stats", c.Customer.Stats)
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if role, _ := ctx.Get("role").(string); role != "admin" {
			return ctx.JSON(http.StatusForbidden, echo.Map{"message": "admin only"})
		}
		return next(ctx)
	}
}
