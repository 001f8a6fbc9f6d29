package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ValidatePath is the identity service endpoint that trades session tokens
// for internal identity tokens.
const ValidatePath = "/validation/validate"

// Exchanger swaps end-user session tokens for the short-lived internal
// identity tokens the downstream services expect. Successful exchanges are
// cached so a burst of requests on one session costs one identity call; the
// cache TTL must stay below the internal token lifetime or the gateway would
// forward expired tokens.
type Exchanger struct {
	identityURL string
	httpClient  *http.Client
	cache       *expirable.LRU[string, string]
}

// NewExchanger creates an Exchanger against the identity service at
// identityURL.
func NewExchanger(identityURL string, timeout time.Duration, cacheSize int, cacheTTL time.Duration) *Exchanger {
	return &Exchanger{
		identityURL: strings.TrimRight(identityURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		cache:       expirable.NewLRU[string, string](cacheSize, nil, cacheTTL),
	}
}

// Exchange returns the internal token for the session token, or "" when the
// identity service reports the session token as unusable. Only transport
// failures surface as errors.
func (ex *Exchanger) Exchange(ctx context.Context, sessionToken string) (string, error) {
	if internal, ok := ex.cache.Get(sessionToken); ok {
		return internal, nil
	}

	body, err := json.Marshal(map[string]string{"token": sessionToken})
	if err != nil {
		return "", errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ex.identityURL+ValidatePath, bytes.NewReader(body))
	if err != nil {
		return "", errors.WithStack(err)
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	resp, err := ex.httpClient.Do(req)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", errors.Errorf("identity service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Token *string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.WithStack(err)
	}

	if payload.Token == nil {
		// rejected sessions aren't cached; a user who just logged in again
		// shouldn't be stuck behind a negative entry
		return "", nil
	}

	ex.cache.Add(sessionToken, *payload.Token)
	return *payload.Token, nil
}

// Middleware exchanges the bearer session token before the request is
// proxied. Requests without a token pass through untouched; the downstream
// role check rejects them. A token the identity service won't exchange
// short-circuits to 401 without ever reaching the backend.
func (ex *Exchanger) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return next(c)
		}

		sessionToken := strings.TrimPrefix(header, "Bearer ")
		if sessionToken == header {
			return errcodes.Unauthorized("Invalid authorization header")
		}

		internal, err := ex.Exchange(c.Request().Context(), sessionToken)
		if err != nil {
			return errors.WithStack(err)
		}
		if internal == "" {
			return errcodes.Unauthorized("Invalid or expired session token")
		}

		c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+internal)
		return next(c)
	}
}
