package books

import (
	"net/http"
	"strconv"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/bookbridge/bookbridge/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	bookService *Service
}

func requireBookFields(params *CreateBookPayload) error {
	if params.Title == nil {
		return errcodes.MissingField("title is required.")
	}
	if params.ISBN == nil {
		return errcodes.MissingField("isbn is required.")
	}
	if params.AuthorID == nil {
		return errcodes.MissingField("author_id is required.")
	}
	return nil
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if err := requireBookFields(&params); err != nil {
		return err
	}

	book := &models.Book{
		Title:       *params.Title,
		ISBN:        *params.ISBN,
		Description: params.Description,
		Genre:       params.Genre,
		AuthorID:    *params.AuthorID,
	}
	if _, err := h.bookService.CreateBook(ctx, book); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) retrieveByISBN(c echo.Context) error {
	ctx := c.Request().Context()
	isbn := c.Param("isbn")

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ISBN: &isbn})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) listByAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	authorID, err := strconv.Atoi(c.Param("authorId"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	books, err := h.bookService.ListBooksByAuthor(ctx, authorID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"books": books,
		"total": total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if err := requireBookFields(&params); err != nil {
		return err
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	book.Title = *params.Title
	book.ISBN = *params.ISBN
	book.AuthorID = *params.AuthorID
	book.Description = params.Description
	book.Genre = params.Genre

	columns := []string{"title", "isbn", "author_id", "description", "genre"}
	if err := h.bookService.UpdateBook(ctx, book, UpdateBookOptions{Columns: columns}); err != nil {
		return errors.WithStack(err)
	}

	book, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	if _, err := h.bookService.DeleteBook(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
