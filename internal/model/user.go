package model

import "time"

// Role is the closed set of account roles. Authorization decisions are
// made over this type rather than raw strings so that an unknown role
// can never be granted access by accident.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDriver, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// SelfAssignable reports whether a role may be chosen at registration.
// Admin accounts are never created through the public register endpoint.
func (r Role) SelfAssignable() bool {
	return r == RoleCustomer || r == RoleDriver || r == RoleOwner
}

// Allowed is the authorization decision: it reports whether role is a
// member of the allowed set. It never inspects tokens; callers must run
// it only on an identity that already passed authentication.
func Allowed(role Role, allowed ...Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// User represents an account record as stored in the `users` table.
// Accounts are soft-deleted: IsDeleted is flipped by admin action and
// the row is never physically removed.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – account role (customer, driver, owner or admin).
//  IsDeleted    – soft-delete flag; deleted users cannot authenticate.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	IsDeleted    bool      // users.is_deleted
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
