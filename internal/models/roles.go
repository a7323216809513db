// internal/models/roles.go

package models

// UserRole представляє роль користувача в системі
type UserRole string

// Константи для ролей
const (
	RoleCitizen UserRole = "citizen"
	RoleOfficer UserRole = "officer"
	RoleAdmin   UserRole = "admin"
)

// Permission - дозвіл на виконання операції через API
type Permission string

const (
	PermissionSubmitApplication  Permission = "applications.submit"
	PermissionViewOwnDocuments   Permission = "documents.view_own"
	PermissionReviewDocuments    Permission = "documents.review"
	PermissionViewAllDocuments   Permission = "documents.view_all"
	PermissionViewAnalytics      Permission = "analytics.view"
	PermissionManageUsers        Permission = "users.manage"
	PermissionSendNotifications  Permission = "notifications.send"
	PermissionVerifyCertificates Permission = "certificates.verify"
)

var rolePermissions = map[UserRole][]Permission{
	RoleCitizen: {
		PermissionSubmitApplication,
		PermissionViewOwnDocuments,
		PermissionVerifyCertificates,
	},
	RoleOfficer: {
		PermissionViewOwnDocuments,
		PermissionReviewDocuments,
		PermissionViewAllDocuments,
		PermissionVerifyCertificates,
	},
	RoleAdmin: {
		PermissionViewOwnDocuments,
		PermissionViewAllDocuments,
		PermissionViewAnalytics,
		PermissionManageUsers,
		PermissionSendNotifications,
		PermissionVerifyCertificates,
	},
}

// View - екран порталу, доступний ролі
type View struct {
	Path    string `json:"path"`
	NameKey string `json:"-"`
	Name    string `json:"name"`
}

const (
	ViewLogin  = "/"
	ViewVerify = "/verify"
)

var roleViews = map[UserRole][]View{
	RoleCitizen: {
		{Path: "/citizen", NameKey: "nav.dashboard"},
		{Path: "/citizen/apply", NameKey: "nav.apply"},
		{Path: "/citizen/applications", NameKey: "nav.my_applications"},
		{Path: ViewVerify, NameKey: "nav.verify"},
	},
	RoleOfficer: {
		{Path: "/officer", NameKey: "nav.dashboard"},
		{Path: "/officer/pending", NameKey: "nav.pending_reviews"},
		{Path: "/officer/verified", NameKey: "nav.verified_documents"},
		{Path: ViewVerify, NameKey: "nav.verify"},
	},
	RoleAdmin: {
		{Path: "/admin", NameKey: "nav.dashboard"},
		{Path: "/admin/applications", NameKey: "nav.all_applications"},
		{Path: "/admin/officers", NameKey: "nav.officers"},
		{Path: "/admin/settings", NameKey: "nav.settings"},
		{Path: ViewVerify, NameKey: "nav.verify"},
	},
}

// IsValid перевіряє чи роль валідна
func (r UserRole) IsValid() bool {
	switch r {
	case RoleCitizen, RoleOfficer, RoleAdmin:
		return true
	}
	return false
}

// HasPermission перевіряє чи роль має дозвіл
func (r UserRole) HasPermission(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// Root повертає кореневий екран ролі
func (r UserRole) Root() string {
	return "/" + string(r)
}

// Views повертає копію списку екранів ролі
func (r UserRole) Views() []View {
	views := roleViews[r]
	out := make([]View, len(views))
	copy(out, views)
	return out
}

// CanView перевіряє чи роль має доступ до екрану
func (r UserRole) CanView(path string) bool {
	for _, v := range roleViews[r] {
		if v.Path == path {
			return true
		}
	}
	return false
}

// Рівні ролей для ієрархічних перевірок
var roleLevels = map[UserRole]int{
	RoleCitizen: 1,
	RoleOfficer: 2,
	RoleAdmin:   3,
}

// Level повертає рівень ролі, 0 для невідомої
func (r UserRole) Level() int {
	return roleLevels[r]
}

// IsHigherOrEqual перевіряє чи роль не нижча за other
func (r UserRole) IsHigherOrEqual(other UserRole) bool {
	return r.IsValid() && other.IsValid() && r.Level() >= other.Level()
}

// String повертає строкове представлення ролі
func (r UserRole) String() string {
	return string(r)
}

// AllRoles повертає список всіх доступних ролей
func AllRoles() []UserRole {
	return []UserRole{
		RoleCitizen,
		RoleOfficer,
		RoleAdmin,
	}
}

// FromString конвертує string в UserRole
func FromString(role string) (UserRole, bool) {
	r := UserRole(role)
	if r.IsValid() {
		return r, true
	}
	return "", false
}

// IsKnownView перевіряє чи шлях є екраном хоча б однієї ролі
func IsKnownView(path string) bool {
	for _, role := range AllRoles() {
		if role.CanView(path) {
			return true
		}
	}
	return false
}

// ViewDecision - результат маршрутизації екрану
type ViewDecision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// ResolveView вирішує чи може користувач відкрити екран, або куди його
// перенаправити. user == nil означає неавтентифікований запит.
func ResolveView(user *User, path string) ViewDecision {
	if user == nil {
		if path == ViewLogin {
			return ViewDecision{Allowed: true}
		}
		return ViewDecision{Redirect: ViewLogin}
	}

	role := user.Role
	if path == ViewLogin {
		return ViewDecision{Redirect: role.Root()}
	}
	if !IsKnownView(path) {
		return ViewDecision{Redirect: ViewLogin}
	}
	if !role.CanView(path) {
		return ViewDecision{Redirect: role.Root()}
	}
	return ViewDecision{Allowed: true}
}
