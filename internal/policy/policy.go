// Package policy holds the authenticated caller identity and the visibility rule shared
// by every contract operation.
package policy

import "github.com/counselflow/counselflow-api/internal/models"

// Caller is the authenticated identity a request acts on behalf of,
// plus the request origin recorded in the audit trail
type Caller struct {
	UserID    string
	Email     string
	Role      string
	IPAddress string
	UserAgent string
}

// IsElevated reports whether the role sees every record regardless of ownership
func IsElevated(role string) bool {
	return role == models.RoleAdmin || role == models.RolePartner
}

// IsElevated reports whether the caller holds an elevated role
func (c Caller) IsElevated() bool {
	return IsElevated(c.Role)
}

// CanAccess is the visibility predicate: the caller owns the resource or holds an elevated role
func CanAccess(caller Caller, ownerID string) bool {
	if caller.UserID == "" {
		return false
	}
	return caller.UserID == ownerID || caller.IsElevated()
}
