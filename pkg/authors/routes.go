package authors

import (
	"github.com/bookbridge/bookbridge/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers author routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	authorService := NewService(db)

	h := &handler{
		authorService: authorService,
	}

	g.GET("", h.list, authMiddleware.RequireOperation(auth.OpReadCatalog))
	g.GET("/:id", h.retrieve, authMiddleware.RequireOperation(auth.OpReadCatalog))
	g.POST("", h.create, authMiddleware.RequireOperation(auth.OpWriteCatalog))
	g.PATCH("/:id", h.update, authMiddleware.RequireOperation(auth.OpWriteCatalog))
	g.DELETE("/:id", h.deleteAuthor, authMiddleware.RequireOperation(auth.OpWriteCatalog))
}
