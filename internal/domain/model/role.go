package model

import "strings"

// Role is the scalar role stored on a profile.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleMedia   Role = "media"
	RoleHR      Role = "hr"
)

// ParseRole returns the known role matching s, case-insensitively.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := roleCapabilities[r]
	return r, ok
}

// Roles lists every known role in display order.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleTeacher, RoleMedia, RoleHR}
}

// Capability is a permission consumed by route guards and menu construction.
type Capability string

const (
	CapViewDashboard  Capability = "view_dashboard"
	CapRedeemCode     Capability = "redeem_code"
	CapViewAdmin      Capability = "view_admin"
	CapManageCodes    Capability = "manage_codes"
	CapManageUsers    Capability = "manage_users"
	CapManagePrograms Capability = "manage_programs"
	CapManageContent  Capability = "manage_content"
	// CapGrantAdmin allows promoting to, or changing the role of, an administrator.
	CapGrantAdmin Capability = "grant_admin"
)

var learner = []Capability{CapViewDashboard, CapRedeemCode}

var roleCapabilities = map[Role][]Capability{
	RoleUser:    learner,
	RoleAdmin:   append([]Capability{CapViewAdmin, CapManageCodes, CapManageUsers, CapManagePrograms, CapManageContent, CapGrantAdmin}, learner...),
	RoleTeacher: append([]Capability{CapViewAdmin, CapManagePrograms}, learner...),
	RoleMedia:   append([]Capability{CapViewAdmin, CapManageContent}, learner...),
	RoleHR:      append([]Capability{CapViewAdmin, CapManageUsers}, learner...),
}

// Can is the only permission check in the codebase.
func Can(role Role, c Capability) bool {
	for _, have := range roleCapabilities[role] {
		if have == c {
			return true
		}
	}
	return false
}
