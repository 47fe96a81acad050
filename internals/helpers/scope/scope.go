// file: internals/helpers/scope/scope.go
package scope

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kosku_backend/internals/constants"
	branchModel "kosku_backend/internals/features/branches/model"
	"kosku_backend/internals/helpers/errs"
)

// Actor: identitas caller hasil resolve Access-Control Gate (middleware auth).
// Dibawa eksplisit sebagai parameter, bukan lewat state global.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == constants.RoleAdmin }
func (a Actor) IsStaff() bool { return constants.RoleIn(a.Role, constants.StaffRoles) }

// FromLocals mengambil identitas yang disimpan auth middleware di c.Locals.
func FromLocals(c *fiber.Ctx) (Actor, error) {
	uid, ok := c.Locals("user_id").(uint)
	if !ok {
		return Actor{}, errs.Forbidden("Identitas caller tidak ditemukan di context")
	}
	role, _ := c.Locals("role").(string)
	if role == "" {
		return Actor{}, errs.Forbidden("Role caller tidak ditemukan di context")
	}
	return Actor{UserID: uid, Role: role}, nil
}

// BranchIDs: daftar cabang yang boleh disentuh actor. nil berarti tanpa batasan (admin).
func BranchIDs(db *gorm.DB, a Actor) ([]uint, error) {
	switch a.Role {
	case constants.RoleAdmin:
		return nil, nil
	case constants.RoleOwner:
		var ids []uint
		if err := db.Model(&branchModel.Branch{}).
			Where("owner_id = ?", a.UserID).
			Pluck("id", &ids).Error; err != nil {
			return nil, errs.Persist("scope.BranchIDs(owner)", err)
		}
		return ids, nil
	case constants.RoleEmployee:
		var ids []uint
		if err := db.Model(&branchModel.EmployeeAssignment{}).
			Where("employee_id = ?", a.UserID).
			Pluck("branch_id", &ids).Error; err != nil {
			return nil, errs.Persist("scope.BranchIDs(employee)", err)
		}
		return ids, nil
	default:
		return []uint{}, nil
	}
}

// CanAccessBranch: predicate cabang untuk operasi tulis.
func CanAccessBranch(db *gorm.DB, a Actor, branchID uint) error {
	if a.IsAdmin() {
		return nil
	}
	ids, err := BranchIDs(db, a)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == branchID {
			return nil
		}
	}
	return errs.Forbidden("Tidak punya akses ke cabang %d", branchID)
}

// ApplyBranchScope membatasi query list sesuai role; column contoh: "contracts.branch_id".
func ApplyBranchScope(q *gorm.DB, a Actor, column string) *gorm.DB {
	switch a.Role {
	case constants.RoleAdmin:
		return q
	case constants.RoleOwner:
		return q.Where(column+" IN (SELECT id FROM branches WHERE owner_id = ? AND deleted_at IS NULL)", a.UserID)
	case constants.RoleEmployee:
		return q.Where(column+" IN (SELECT branch_id FROM employee_assignments WHERE employee_id = ? AND deleted_at IS NULL)", a.UserID)
	default:
		// customer tidak pernah query lewat scope cabang
		return q.Where("1 = 0")
	}
}
