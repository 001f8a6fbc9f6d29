package books

import (
	"github.com/bookbridge/bookbridge/pkg/auth"
	"github.com/bookbridge/bookbridge/pkg/propagation"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, notifier propagation.LeaseNotifier, authMiddleware *auth.Middleware) {
	bookService := NewService(db, propagation.NewCoordinator(notifier))

	h := &handler{
		bookService: bookService,
	}

	g.GET("", h.list, authMiddleware.RequireOperation(auth.OpReadCatalog))
	g.GET("/by-isbn/:isbn", h.retrieveByISBN, authMiddleware.RequireOperation(auth.OpReadCatalog))
	g.GET("/by-author/:authorId", h.listByAuthor, authMiddleware.RequireOperation(auth.OpReadCatalog))
	g.GET("/:id", h.retrieve, authMiddleware.RequireOperation(auth.OpReadCatalog))
	g.POST("", h.create, authMiddleware.RequireOperation(auth.OpWriteCatalog))
	g.PATCH("/:id", h.update, authMiddleware.RequireOperation(auth.OpWriteCatalog))
	g.DELETE("/:id", h.deleteBook, authMiddleware.RequireOperation(auth.OpWriteCatalog))
}
