// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the account namespace a credential belongs to.
//
// The two namespaces are DISJOINT: an admin token never grants member
// access and vice versa. Authorization checks compare for exact equality,
// there is no hierarchy.
type UserRole string

const (
	// Operates the catalog: creates courses, reads analytics
	RoleAdmin UserRole = "admin"

	// Default role for learners purchasing and reviewing courses
	RoleUser UserRole = "user"
)

// Valid reports whether the role is one of the closed set of variants.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Is checks for an exact role match.
func (r UserRole) Is(target UserRole) bool {
	return r == target
}

// In checks whether the role matches any of the allowed variants.
func (r UserRole) In(allowed ...UserRole) bool {
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}
