package leases

import (
	"net/http"
	"strconv"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/bookbridge/bookbridge/pkg/propagation"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	leaseService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLeasesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	leases, total, err := h.leaseService.ListLeasesWithTotal(ctx, ListLeasesOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"leases": leases,
		"total":  total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) listAvailable(c echo.Context) error {
	ctx := c.Request().Context()

	leases, err := h.leaseService.ListLeases(ctx, ListLeasesOptions{AvailableOnly: true})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, leases))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Lease")
	}

	lease, err := h.leaseService.RetrieveLease(ctx, bookID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, lease))
}

func (h *handler) lease(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Lease")
	}

	params := LeasePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if params.LeaseDate == nil || params.ReturnDate == nil {
		return errcodes.BadFieldContents("lease_date and return_date are required.")
	}

	lease, err := h.leaseService.Lease(ctx, bookID, *params.LeaseDate, *params.ReturnDate)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, lease))
}

func (h *handler) returnLease(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Lease")
	}

	lease, err := h.leaseService.Return(ctx, bookID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, lease))
}

// bookUpdate applies a lifecycle event propagated from the bookstore service.
// CREATED brings the paired lease row into existence; DELETED removes it and
// is idempotent so the bookstore can safely replay deletions.
func (h *handler) bookUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	params := propagation.Update{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	switch params.UpdateType {
	case propagation.UpdateCreated:
		if _, err := h.leaseService.CreateLease(ctx, params.BookID); err != nil {
			return errors.WithStack(err)
		}
	case propagation.UpdateDeleted:
		if err := h.leaseService.DeleteLease(ctx, params.BookID); err != nil {
			return errors.WithStack(err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}
