package users

type ListUsersQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

type CreateUserPayload struct {
	Name     *string `json:"name,omitempty" mod:"trim" validate:"omitempty,min=1,max=300"`
	Login    *string `json:"login,omitempty" mod:"trim" validate:"omitempty,min=1,max=100"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	Role     *string `json:"role,omitempty" validate:"omitempty,role"`
}

type UpdateUserPayload struct {
	Name     *string `json:"name,omitempty" mod:"trim" validate:"omitempty,min=1,max=300"`
	Login    *string `json:"login,omitempty" mod:"trim" validate:"omitempty,min=1,max=100"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	Role     *string `json:"role,omitempty" validate:"omitempty,role"`
}

type LoginPayload struct {
	Login    *string `json:"login,omitempty" mod:"trim"`
	Password *string `json:"password,omitempty"`
}

type ValidatePayload struct {
	Token *string `json:"token,omitempty"`
}
