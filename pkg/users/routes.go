package users

import (
	"github.com/bookbridge/bookbridge/pkg/auth"
	"github.com/bookbridge/bookbridge/pkg/token"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers user management routes on a
// pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, signer token.Signer, authMiddleware *auth.Middleware) {
	userService := NewService(db, signer)

	h := &handler{
		userService: userService,
	}

	g.GET("", h.list, authMiddleware.RequireOperation(auth.OpManageUsers))
	g.GET("/by-login/:login", h.retrieveByLogin, authMiddleware.RequireOperation(auth.OpManageUsers))
	g.GET("/:id", h.retrieve, authMiddleware.RequireOperation(auth.OpManageUsers))
	g.POST("", h.create, authMiddleware.RequireOperation(auth.OpManageUsers))
	g.PATCH("/:id", h.update, authMiddleware.RequireOperation(auth.OpManageUsers))
	g.DELETE("/:id", h.deleteUser, authMiddleware.RequireOperation(auth.OpManageUsers))
}

// RegisterAuthRoutes registers the unauthenticated login and token exchange
// endpoints.
func RegisterAuthRoutes(e *echo.Echo, db *bun.DB, signer token.Signer) {
	userService := NewService(db, signer)

	h := &handler{
		userService: userService,
	}

	e.POST("/auth/login", h.login)
	e.POST("/validation/validate", h.validate)
}
