package models

import (
	"time"

	"github.com/uptrace/bun"
)

// BookLease is the library-side record paired one-to-one with a book in the
// bookstore service. The row's existence mirrors the book's existence; the
// pairing is maintained by lifecycle propagation, not by a foreign key, since
// the two live in different databases.
type BookLease struct {
	bun.BaseModel `bun:"table:book_leases,alias:bl"`

	BookID     int        `bun:",pk" json:"book_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LeaseDate  *time.Time `json:"lease_date"`
	ReturnDate *time.Time `json:"return_date"`
}

// Available reports whether the book can currently be leased. A null lease
// date means the book is on the shelf.
func (l *BookLease) Available() bool {
	return l.LeaseDate == nil
}
