package books

// Payload fields are pointers so the handlers can tell an absent attribute
// (missing_field, 400) apart from a present but invalid one (422).

type ListBooksQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type CreateBookPayload struct {
	Title       *string `json:"title,omitempty" mod:"trim" validate:"omitempty,min=1,max=500"`
	ISBN        *string `json:"isbn,omitempty" mod:"trim" validate:"omitempty,min=10,max=17"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Genre       *string `json:"genre,omitempty" mod:"trim" validate:"omitempty,max=100"`
	AuthorID    *int    `json:"author_id,omitempty" validate:"omitempty,min=1"`
}

// UpdateBookPayload mirrors CreateBookPayload: updates require title, isbn,
// and author_id and overwrite description and genre with whatever was sent,
// including nothing.
type UpdateBookPayload = CreateBookPayload
