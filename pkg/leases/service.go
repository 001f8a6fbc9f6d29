package leases

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/bookbridge/bookbridge/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type ListLeasesOptions struct {
	Limit         *int
	Offset        *int
	AvailableOnly bool

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateLease inserts the lease row that pairs with a newly created book. The
// row starts available. A second create for the same book is a Conflict; the
// primary key makes the check atomic under concurrent propagation.
func (svc *Service) CreateLease(ctx context.Context, bookID int) (*models.BookLease, error) {
	now := time.Now()
	lease := &models.BookLease{
		BookID:    bookID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := svc.db.
		NewInsert().
		Model(lease).
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, errcodes.Conflict("A lease for this book already exists.")
		}
		return nil, errors.WithStack(err)
	}
	return lease, nil
}

// DeleteLease removes the lease row for a deleted book. Absent rows are a
// no-op so replayed deletions stay idempotent.
func (svc *Service) DeleteLease(ctx context.Context, bookID int) error {
	_, err := svc.db.NewDelete().
		Model((*models.BookLease)(nil)).
		Where("book_id = ?", bookID).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveLease(ctx context.Context, bookID int) (*models.BookLease, error) {
	lease := &models.BookLease{}

	err := svc.db.
		NewSelect().
		Model(lease).
		Where("bl.book_id = ?", bookID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Lease")
		}
		return nil, errors.WithStack(err)
	}

	return lease, nil
}

func (svc *Service) ListLeases(ctx context.Context, opts ListLeasesOptions) ([]*models.BookLease, error) {
	l, _, err := svc.listLeasesWithTotal(ctx, opts)
	return l, errors.WithStack(err)
}

func (svc *Service) ListLeasesWithTotal(ctx context.Context, opts ListLeasesOptions) ([]*models.BookLease, int, error) {
	opts.includeTotal = true
	return svc.listLeasesWithTotal(ctx, opts)
}

func (svc *Service) listLeasesWithTotal(ctx context.Context, opts ListLeasesOptions) ([]*models.BookLease, int, error) {
	var leases []*models.BookLease
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&leases).
		Order("bl.book_id ASC")

	if opts.AvailableOnly {
		q = q.Where("bl.lease_date IS NULL")
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

	return leases, total, nil
}

// Lease transitions the book from available to leased. Both dates are stored;
// a book that is already out can't be leased again until it's returned.
func (svc *Service) Lease(ctx context.Context, bookID int, leaseDate, returnDate time.Time) (*models.BookLease, error) {
	if !returnDate.After(leaseDate) {
		return nil, errcodes.BadFieldContents("return_date must be after lease_date.")
	}

	lease, err := svc.RetrieveLease(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !lease.Available() {
		return nil, errcodes.IllegalLeaseState("Book is already leased.")
	}

	lease.LeaseDate = &leaseDate
	lease.ReturnDate = &returnDate
	lease.UpdatedAt = time.Now()

	_, err = svc.db.
		NewUpdate().
		Model(lease).
		Column("lease_date", "return_date", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return lease, nil
}

// Return transitions the book back to available by clearing both dates.
func (svc *Service) Return(ctx context.Context, bookID int) (*models.BookLease, error) {
	lease, err := svc.RetrieveLease(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if lease.Available() {
		return nil, errcodes.IllegalLeaseState("Book is not leased.")
	}

	lease.LeaseDate = nil
	lease.ReturnDate = nil
	lease.UpdatedAt = time.Now()

	_, err = svc.db.
		NewUpdate().
		Model(lease).
		Column("lease_date", "return_date", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return lease, nil
}
