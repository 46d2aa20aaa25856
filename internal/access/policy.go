// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package access implements role-based view authorization for the qvault
// client. The policy is a single declarative table consulted both by the
// route guard and by navigation rendering, so the two can never disagree.
package access

// Role is a user role as issued by the authentication service.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleService Role = "SERVICE"
	RoleAuditor Role = "AUDITOR"
)

// Valid reports whether the role is one the service issues.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleService, RoleAuditor:
		return true
	}
	return false
}

// Roles lists the selectable roles in login-form order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleService, RoleAuditor}
}

// View identifies a protected view of the client.
type View int

const (
	ViewOverview View = iota // system overview landing page
	ViewEncrypt
	ViewDecrypt
	ViewLedger
	ViewAlerts
)

// String returns the navigation label for the view.
func (v View) String() string {
	switch v {
	case ViewOverview:
		return "Overview"
	case ViewEncrypt:
		return "Encrypt Data"
	case ViewDecrypt:
		return "Decrypt Data"
	case ViewLedger:
		return "Audit Ledger"
	case ViewAlerts:
		return "Security Alerts"
	default:
		return "Unknown"
	}
}

// AllViews lists every view in navigation order.
func AllViews() []View {
	return []View{ViewOverview, ViewEncrypt, ViewDecrypt, ViewLedger, ViewAlerts}
}

// policy maps each view to the set of roles allowed to enter it. This table
// mirrors the server-side RoleChecker configuration; keep the two in sync.
var policy = map[View]map[Role]bool{
	ViewOverview: {RoleAdmin: true, RoleService: true, RoleAuditor: true},
	ViewEncrypt:  {RoleAdmin: true, RoleService: true},
	ViewDecrypt:  {RoleAdmin: true},
	ViewLedger:   {RoleAdmin: true, RoleAuditor: true},
	ViewAlerts:   {RoleAdmin: true},
}

// CanEnter reports whether a user holding role may enter view. It always
// denies when the caller is not authenticated, regardless of role. The guard
// is enforced on direct navigation too, not only via menu visibility.
func CanEnter(view View, role Role, authenticated bool) bool {
	if !authenticated {
		return false
	}
	allowed, ok := policy[view]
	if !ok {
		return false
	}
	return allowed[role]
}

// VisibleViews returns the views a user holding role may navigate to, in
// navigation order. Views the role cannot enter are hidden entirely.
func VisibleViews(role Role, authenticated bool) []View {
	if !authenticated {
		return nil
	}
	var views []View
	for _, v := range AllViews() {
		if CanEnter(v, role, true) {
			views = append(views, v)
		}
	}
	return views
}
