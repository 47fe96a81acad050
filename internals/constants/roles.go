package constants

import "fmt"

const (
	RoleAdmin    = "admin"
	RoleOwner    = "owner"
	RoleEmployee = "employee"
	RoleCustomer = "customer"
)

// Template pesan error role
const (
	ErrOnlyStaffCanAccess  = "❌ Hanya admin, owner, atau employee yang boleh mengakses fitur %s."
	ErrOnlyOwnersCanAccess = "❌ Hanya owner yang boleh mengakses fitur %s."
	ErrOnlyAdminsCanAccess = "❌ Hanya admin yang boleh mengakses fitur %s."
)

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

func RoleErrorOwner(feature string) string {
	return fmt.Sprintf(ErrOnlyOwnersCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleAdmin,
		RoleOwner,
		RoleEmployee,
		RoleCustomer,
	}

	// staff boleh mengelola data operasional cabang
	StaffRoles = []string{
		RoleAdmin,
		RoleOwner,
		RoleEmployee,
	}

	OwnerAndAbove = []string{
		RoleOwner,
		RoleAdmin,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)

func RoleIn(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
