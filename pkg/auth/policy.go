package auth

import "github.com/bookbridge/bookbridge/pkg/models"

// Operation names route groups for authorization purposes. Routes declare
// which operation they belong to and the policy table maps operations to the
// roles allowed to perform them.
const (
	OpReadCatalog  = "read_catalog"
	OpWriteCatalog = "write_catalog"
	OpReadLeases   = "read_leases"
	OpWriteLeases  = "write_leases"
	OpManageUsers  = "manage_users"
)

// Policy maps an operation to the roles permitted to perform it.
type Policy map[string][]string

// DefaultPolicy is the role table used by every service. Keeping it in one
// place makes the authorization rules reviewable at a glance.
var DefaultPolicy = Policy{
	OpReadCatalog:  {models.RoleViewer, models.RoleEditor, models.RoleAdmin},
	OpWriteCatalog: {models.RoleEditor, models.RoleAdmin},
	OpReadLeases:   {models.RoleViewer, models.RoleEditor, models.RoleAdmin},
	OpWriteLeases:  {models.RoleEditor, models.RoleAdmin},
	OpManageUsers:  {models.RoleAdmin},
}

// Allows reports whether the role may perform the operation. Unknown
// operations allow nothing.
func (p Policy) Allows(operation, role string) bool {
	for _, allowed := range p[operation] {
		if allowed == role {
			return true
		}
	}
	return false
}
