package gateway

import (
	"net/url"

	"github.com/bookbridge/bookbridge/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

// RegisterRoutes wires the proxy groups. Catalog, lease, and user traffic
// goes through the token exchange; login and validation are forwarded to the
// identity service as-is since their callers don't hold a token yet.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, exchanger *Exchanger) error {
	bookstore, err := proxyTarget(cfg.BookstoreURL)
	if err != nil {
		return err
	}
	library, err := proxyTarget(cfg.LibraryURL)
	if err != nil {
		return err
	}
	identity, err := proxyTarget(cfg.IdentityURL)
	if err != nil {
		return err
	}

	for _, prefix := range []string{"/books", "/authors"} {
		g := e.Group(prefix, exchanger.Middleware)
		g.Use(middleware.Proxy(bookstore))
	}

	leases := e.Group("/books-lease", exchanger.Middleware)
	leases.Use(middleware.Proxy(library))

	users := e.Group("/users", exchanger.Middleware)
	users.Use(middleware.Proxy(identity))

	for _, prefix := range []string{"/auth", "/validation"} {
		g := e.Group(prefix)
		g.Use(middleware.Proxy(identity))
	}

	return nil
}

func proxyTarget(rawURL string) (middleware.ProxyBalancer, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{URL: u}}), nil
}
