package leases

import "time"

type ListLeasesQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

// LeasePayload carries both dates of a lease. They're pointers so absence is
// reported as bad_field_contents rather than a zero time slipping through.
type LeasePayload struct {
	LeaseDate  *time.Time `json:"lease_date,omitempty"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}
