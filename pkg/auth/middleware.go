package auth

import (
	"strings"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/bookbridge/bookbridge/pkg/token"
	"github.com/labstack/echo/v4"
)

const identityContextKey = "identity"

// Identity is the authenticated caller extracted from an internal identity
// token. Services trust it as-is; the gateway already exchanged and verified
// the session token upstream.
type Identity struct {
	UserID int
	Login  string
	Name   string
	Role   string
}

// Middleware provides authentication middleware backed by a token signer and
// a role policy table.
type Middleware struct {
	signer token.Signer
	policy Policy
}

// NewMiddleware creates an auth middleware.
func NewMiddleware(signer token.Signer, policy Policy) *Middleware {
	return &Middleware{
		signer: signer,
		policy: policy,
	}
}

// Authenticate parses the internal identity token from the Authorization
// header, if present. A missing header lets the request continue
// unauthenticated so that RequireOperation can decide what's allowed; a
// present but invalid token is rejected outright.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return next(c)
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header {
			return errcodes.Unauthorized("Invalid authorization header")
		}

		claims, err := m.signer.VerifyInternalToken(raw)
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired token")
		}

		userID, err := claims.UserID()
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired token")
		}

		c.Set(identityContextKey, &Identity{
			UserID: userID,
			Login:  claims.Login,
			Name:   claims.Name,
			Role:   claims.Role,
		})

		return next(c)
	}
}

// RequireOperation returns middleware that rejects requests whose caller's
// role is not permitted the given operation. Must be used after Authenticate.
func (m *Middleware) RequireOperation(operation string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFromEchoContext(c)
			if identity == nil {
				return errcodes.Unauthorized("Authentication required")
			}

			if !m.policy.Allows(operation, identity.Role) {
				return errcodes.Forbidden(strings.ReplaceAll(operation, "_", " "))
			}

			return next(c)
		}
	}
}

// IdentityFromEchoContext retrieves the authenticated caller, or nil when the
// request is unauthenticated.
func IdentityFromEchoContext(c echo.Context) *Identity {
	identity, _ := c.Get(identityContextKey).(*Identity)
	return identity
}
