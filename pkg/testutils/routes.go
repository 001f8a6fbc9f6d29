// Package testutils provides test-only API endpoints for seeding the
// identity database during end-to-end runs.
// These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/bookbridge/bookbridge/pkg/token"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db *bun.DB, signer token.Signer) {
	h := &handler{db: db, signer: signer}

	test := e.Group("/test")
	test.POST("/users", h.createUser)
	test.DELETE("/users", h.deleteAllUsers)
}
