package libraryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bookbridge/bookbridge/pkg/propagation"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UpdatesPath is the internal endpoint the library service listens on for
// book lifecycle updates.
const UpdatesPath = "/internal-books-lease/updates"

// Client delivers book lifecycle updates to the library service over HTTP.
// It implements propagation.LeaseNotifier.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the library service at baseURL. The timeout bounds
// each notification attempt end to end.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NotifyBookUpdate posts the update to the library service. Any transport
// error or non-2xx response counts as a failed notification.
func (c *Client) NotifyBookUpdate(ctx context.Context, update propagation.Update) error {
	body, err := json.Marshal(update)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UpdatesPath, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("library service returned status %d for book %d", resp.StatusCode, update.BookID)
	}
	return nil
}
