package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bookbridge/bookbridge/pkg/auth"
	"github.com/bookbridge/bookbridge/pkg/authors"
	"github.com/bookbridge/bookbridge/pkg/binder"
	"github.com/bookbridge/bookbridge/pkg/books"
	"github.com/bookbridge/bookbridge/pkg/config"
	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/bookbridge/bookbridge/pkg/gateway"
	"github.com/bookbridge/bookbridge/pkg/leases"
	"github.com/bookbridge/bookbridge/pkg/libraryclient"
	"github.com/bookbridge/bookbridge/pkg/testutils"
	"github.com/bookbridge/bookbridge/pkg/token"
	"github.com/bookbridge/bookbridge/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func newEcho() (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func newHTTPServer(cfg *config.Config, port int, e *echo.Echo) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, port),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Bookstore builds the HTTP server for the books and authors service.
func Bookstore(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := newEcho()
	if err != nil {
		return nil, err
	}

	signer := token.NewSigner(cfg.JWTSecret, cfg.SessionTokenExpiry, cfg.InternalTokenExpiry)
	authMiddleware := auth.NewMiddleware(signer, auth.DefaultPolicy)
	notifier := libraryclient.New(cfg.LibraryURL, cfg.NotifyTimeout)

	booksGroup := e.Group("/books")
	booksGroup.Use(authMiddleware.Authenticate)
	books.RegisterRoutesWithGroup(booksGroup, db, notifier, authMiddleware)

	authorsGroup := e.Group("/authors")
	authorsGroup.Use(authMiddleware.Authenticate)
	authors.RegisterRoutesWithGroup(authorsGroup, db, authMiddleware)

	return newHTTPServer(cfg, cfg.BookstorePort, e), nil
}

// Library builds the HTTP server for the lease service. The internal updates
// endpoint sits outside the authenticated group; only the other services call
// it.
func Library(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := newEcho()
	if err != nil {
		return nil, err
	}

	signer := token.NewSigner(cfg.JWTSecret, cfg.SessionTokenExpiry, cfg.InternalTokenExpiry)
	authMiddleware := auth.NewMiddleware(signer, auth.DefaultPolicy)

	leasesGroup := e.Group("/books-lease/leases")
	leasesGroup.Use(authMiddleware.Authenticate)
	leases.RegisterRoutesWithGroup(leasesGroup, db, authMiddleware)

	leases.RegisterInternalRoutes(e, db)

	return newHTTPServer(cfg, cfg.LibraryPort, e), nil
}

// Identity builds the HTTP server for the user and token service.
func Identity(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := newEcho()
	if err != nil {
		return nil, err
	}

	signer := token.NewSigner(cfg.JWTSecret, cfg.SessionTokenExpiry, cfg.InternalTokenExpiry)
	authMiddleware := auth.NewMiddleware(signer, auth.DefaultPolicy)

	users.RegisterAuthRoutes(e, db, signer)

	usersGroup := e.Group("/users")
	usersGroup.Use(authMiddleware.Authenticate)
	users.RegisterRoutesWithGroup(usersGroup, db, signer, authMiddleware)

	if cfg.Environment == "test" {
		testutils.RegisterRoutes(e, db, signer)
	}

	return newHTTPServer(cfg, cfg.IdentityPort, e), nil
}

// Gateway builds the public-facing reverse proxy. The exchange cache TTL
// stays at half the internal token lifetime so cached tokens are always
// forwarded with time left on them.
func Gateway(cfg *config.Config) (*http.Server, error) {
	e, err := newEcho()
	if err != nil {
		return nil, err
	}

	exchanger := gateway.NewExchanger(cfg.IdentityURL, cfg.ValidateTimeout, cfg.TokenCacheSize, cfg.InternalTokenExpiry/2)
	if err := gateway.RegisterRoutes(e, cfg, exchanger); err != nil {
		return nil, err
	}

	return newHTTPServer(cfg, cfg.GatewayPort, e), nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
