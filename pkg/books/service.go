package books

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/bookbridge/bookbridge/pkg/models"
	"github.com/bookbridge/bookbridge/pkg/propagation"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID   *int
	ISBN *string
}

type ListBooksOptions struct {
	Limit    *int
	Offset   *int
	AuthorID *int
	Search   *string

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns []string
}

type Service struct {
	db          *bun.DB
	coordinator *propagation.Coordinator
}

func NewService(db *bun.DB, coordinator *propagation.Coordinator) *Service {
	return &Service{db, coordinator}
}

// CreateBook inserts the book and propagates the creation to the library
// service so a lease row comes into existence alongside it. If the library
// can't be notified the insert is rolled back and the notify error returned;
// the caller never observes a book without its lease row.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book) (propagation.Result, error) {
	if err := svc.ensureAuthorExists(ctx, book.AuthorID); err != nil {
		return propagation.Result{}, err
	}

	save := func(ctx context.Context) (propagation.Update, error) {
		now := time.Now()
		if book.CreatedAt.IsZero() {
			book.CreatedAt = now
		}
		book.UpdatedAt = book.CreatedAt

		_, err := svc.db.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				return propagation.Update{}, errcodes.Conflict("A book with this ISBN already exists.")
			}
			return propagation.Update{}, errors.WithStack(err)
		}
		return propagation.Update{BookID: book.ID, UpdateType: propagation.UpdateCreated}, nil
	}

	compensate := func(ctx context.Context) error {
		_, err := svc.db.NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", book.ID).
			Exec(ctx)
		return errors.WithStack(err)
	}

	return svc.coordinator.SaveThenNotify(ctx, save, compensate)
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Author")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.ISBN != nil {
		q = q.Where("b.isbn = ?", *opts.ISBN)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	var books []*models.Book
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Author").
		Order("b.title ASC")

	if opts.AuthorID != nil {
		q = q.Where("b.author_id = ?", *opts.AuthorID)
	}
	if opts.Search != nil && *opts.Search != "" {
		search := "%" + strings.ToLower(*opts.Search) + "%"
		q = q.Where("LOWER(b.title) LIKE ?", search)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

// ListBooksByAuthor lists the author's books, failing with NotFound when the
// author itself doesn't exist so an empty shelf and a bad ID are
// distinguishable.
func (svc *Service) ListBooksByAuthor(ctx context.Context, authorID int) ([]*models.Book, error) {
	if err := svc.ensureAuthorExists(ctx, authorID); err != nil {
		return nil, err
	}
	return svc.ListBooks(ctx, ListBooksOptions{AuthorID: &authorID})
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	if err := svc.ensureAuthorExists(ctx, book.AuthorID); err != nil {
		return err
	}

	book.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return errcodes.Conflict("A book with this ISBN already exists.")
		}
		return errors.WithStack(err)
	}
	return nil
}

// DeleteBook propagates the deletion to the library service before removing
// the local row, so a lease row never outlives its book. Deleting a book that
// doesn't exist is a silent no-op and sends nothing.
func (svc *Service) DeleteBook(ctx context.Context, bookID int) (propagation.Result, error) {
	exists, err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Where("id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return propagation.Result{}, errors.WithStack(err)
	}
	if !exists {
		return propagation.Result{}, nil
	}

	apply := func(ctx context.Context) error {
		_, err := svc.db.NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", bookID).
			Exec(ctx)
		return errors.WithStack(err)
	}

	update := propagation.Update{BookID: bookID, UpdateType: propagation.UpdateDeleted}
	return svc.coordinator.NotifyThenApply(ctx, update, apply)
}

func (svc *Service) ensureAuthorExists(ctx context.Context, authorID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.Author)(nil)).
		Where("id = ?", authorID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Author")
	}
	return nil
}
