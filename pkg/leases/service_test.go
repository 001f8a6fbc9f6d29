package leases

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/bookbridge/bookbridge/pkg/migrations/librarydb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = librarydb.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestCreateLease(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	lease, err := svc.CreateLease(ctx, 1)
	require.NoError(t, err)
	assert.True(t, lease.Available())

	// a second create for the same book must be rejected
	_, err = svc.CreateLease(ctx, 1)
	var appErr *errcodes.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "conflict", appErr.Code)
}

func TestDeleteLeaseIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	_, err := svc.CreateLease(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLease(ctx, 1))
	_, err = svc.RetrieveLease(ctx, 1)
	assert.ErrorIs(t, err, errcodes.NotFound("Lease"))

	// deleting again is a no-op
	require.NoError(t, svc.DeleteLease(ctx, 1))
}

func TestLeaseAndReturn(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	_, err := svc.CreateLease(ctx, 1)
	require.NoError(t, err)

	leaseDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	returnDate := leaseDate.AddDate(0, 0, 14)

	lease, err := svc.Lease(ctx, 1, leaseDate, returnDate)
	require.NoError(t, err)
	assert.False(t, lease.Available())
	require.NotNil(t, lease.LeaseDate)
	require.NotNil(t, lease.ReturnDate)
	assert.True(t, lease.LeaseDate.Equal(leaseDate))
	assert.True(t, lease.ReturnDate.Equal(returnDate))

	lease, err = svc.Return(ctx, 1)
	require.NoError(t, err)
	assert.True(t, lease.Available())
	assert.Nil(t, lease.LeaseDate)
	assert.Nil(t, lease.ReturnDate)

	// returned books can be leased again
	_, err = svc.Lease(ctx, 1, leaseDate, returnDate)
	require.NoError(t, err)
}

func TestLeaseAlreadyLeased(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	_, err := svc.CreateLease(ctx, 1)
	require.NoError(t, err)

	leaseDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	returnDate := leaseDate.AddDate(0, 0, 14)
	_, err = svc.Lease(ctx, 1, leaseDate, returnDate)
	require.NoError(t, err)

	_, err = svc.Lease(ctx, 1, leaseDate, returnDate)
	var appErr *errcodes.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "illegal_lease_state", appErr.Code)
}

func TestReturnNotLeased(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	_, err := svc.CreateLease(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Return(ctx, 1)
	var appErr *errcodes.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "illegal_lease_state", appErr.Code)
}

func TestLeaseDateValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	_, err := svc.CreateLease(ctx, 1)
	require.NoError(t, err)

	leaseDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	_, err = svc.Lease(ctx, 1, leaseDate, leaseDate)
	var appErr *errcodes.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "bad_field_contents", appErr.Code)

	_, err = svc.Lease(ctx, 1, leaseDate, leaseDate.AddDate(0, 0, -1))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "bad_field_contents", appErr.Code)

	// the failed attempts left the lease available
	lease, err := svc.RetrieveLease(ctx, 1)
	require.NoError(t, err)
	assert.True(t, lease.Available())
}

func TestLeaseUnknownBook(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	leaseDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Lease(ctx, 999, leaseDate, leaseDate.AddDate(0, 0, 14))
	assert.ErrorIs(t, err, errcodes.NotFound("Lease"))

	_, err = svc.Return(ctx, 999)
	assert.ErrorIs(t, err, errcodes.NotFound("Lease"))
}

func TestListAvailable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	for bookID := 1; bookID <= 3; bookID++ {
		_, err := svc.CreateLease(ctx, bookID)
		require.NoError(t, err)
	}

	leaseDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Lease(ctx, 2, leaseDate, leaseDate.AddDate(0, 0, 14))
	require.NoError(t, err)

	available, err := svc.ListLeases(ctx, ListLeasesOptions{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, 1, available[0].BookID)
	assert.Equal(t, 3, available[1].BookID)

	all, total, err := svc.ListLeasesWithTotal(ctx, ListLeasesOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)
}
