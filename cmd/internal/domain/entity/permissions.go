package entity

// Permission is a custom type for bitwise flags
type Permission int64

const (
	// PermissionAdministrator grants god-mode over user records.
	// Administrators may edit or delete any user, but never another administrator's
	// permissions through the API.
	PermissionAdministrator Permission = 1 << iota
)

// Has checks if the permission bitmask contains ALL bits
// requested in 'target'.
// Logic: (p & target) == target
func (p Permission) Has(target Permission) bool {
	return (p & target) == target
}

// Add appends a permission to the bitmask
func (p Permission) Add(perm Permission) Permission {
	return p | perm
}

// Remove clears a permission from the bitmask
func (p Permission) Remove(perm Permission) Permission {
	return p &^ perm
}
