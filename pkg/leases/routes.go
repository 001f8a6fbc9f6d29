package leases

import (
	"github.com/bookbridge/bookbridge/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers lease routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	leaseService := NewService(db)

	h := &handler{
		leaseService: leaseService,
	}

	g.GET("", h.list, authMiddleware.RequireOperation(auth.OpReadLeases))
	g.GET("/available", h.listAvailable, authMiddleware.RequireOperation(auth.OpReadLeases))
	g.GET("/:bookId", h.retrieve, authMiddleware.RequireOperation(auth.OpReadLeases))
	g.POST("/:bookId/lease", h.lease, authMiddleware.RequireOperation(auth.OpWriteLeases))
	g.POST("/:bookId/return", h.returnLease, authMiddleware.RequireOperation(auth.OpWriteLeases))
}

// RegisterInternalRoutes registers the book lifecycle updates endpoint. It is
// called service-to-service by the bookstore and carries no end-user token,
// so it is registered outside the authenticated groups.
func RegisterInternalRoutes(e *echo.Echo, db *bun.DB) {
	leaseService := NewService(db)

	h := &handler{
		leaseService: leaseService,
	}

	e.POST("/internal-books-lease/updates", h.bookUpdate)
}
