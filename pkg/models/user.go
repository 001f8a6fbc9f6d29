package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Role names, in ascending order of privilege.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// ValidRole reports whether name is a known role.
func ValidRole(name string) bool {
	switch name {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	Login     string    `bun:",nullzero" json:"login"`
	// Never expose credentials. TokenSalt is embedded in session tokens and
	// compared on every verification; rotating it revokes all outstanding
	// sessions.
	PasswordHash string `json:"-"`
	TokenSalt    string `json:"-"`
	Role         string `bun:",nullzero" json:"role"`
}
