package types

import "time"

// Roles assigned to accounts. Sellers are auto-provisioned during imports,
// the first admin is created by the seed command.
const (
	RoleAdmin    = "ADMIN"
	RoleVendedor = "VENDEDOR"
)

// User represents an account in the system, identified by its Chilean RUT.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Rut is the user's national ID in canonical form (digits-checkdigit,
	// no thousands separators, uppercase check character). Unique.
	Rut string `json:"rut" db:"rut"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Rol indicates the user's authorization level (ADMIN or VENDEDOR).
	Rol string `json:"rol" db:"rol"`

	// MustChangePassword forces a password rotation on next login. It defaults
	// to true for auto-provisioned seller accounts and is cleared when the
	// user changes their password.
	MustChangePassword bool `json:"mustChangePassword" db:"must_change_password"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
