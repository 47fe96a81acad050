// internals/features/utilities/service/service_catalog.go
package service

import (
	"errors"

	"gorm.io/gorm"

	utilDTO "kosku_backend/internals/features/utilities/dto"
	utilModel "kosku_backend/internals/features/utilities/model"
	helper "kosku_backend/internals/helpers"
	"kosku_backend/internals/helpers/errs"
	"kosku_backend/internals/helpers/scope"
)

// CreateService menambah layanan berbayar (listrik/air/lainnya) ke sebuah cabang.
func CreateService(db *gorm.DB, actor scope.Actor, req utilDTO.CreateServiceRequest) (*utilModel.Service, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak mengelola layanan")
	}
	if err := scope.CanAccessBranch(db, actor, req.BranchID); err != nil {
		return nil, err
	}

	svc := utilModel.Service{
		BranchID: req.BranchID,
		Name:     req.Name,
		Type:     req.Type,
		Price:    helper.Round2(req.Price),
		Unit:     req.Unit,
	}
	if err := db.Create(&svc).Error; err != nil {
		return nil, errs.Persist("utilities.CreateService", err)
	}
	return &svc, nil
}

func UpdateService(db *gorm.DB, actor scope.Actor, serviceID uint, req utilDTO.UpdateServiceRequest) (*utilModel.Service, error) {
	if !actor.IsStaff() {
		return nil, errs.Forbidden("Tidak punya hak mengelola layanan")
	}

	var svc utilModel.Service
	if err := db.First(&svc, serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("Layanan %d tidak ditemukan", serviceID)
		}
		return nil, errs.Persist("utilities.UpdateService(load)", err)
	}
	if err := scope.CanAccessBranch(db, actor, svc.BranchID); err != nil {
		return nil, err
	}

	if req.Name != "" {
		svc.Name = req.Name
	}
	if req.Type != "" {
		if !utilModel.ValidServiceType(req.Type) {
			return nil, errs.Validation("Tipe layanan tidak dikenal: %s", req.Type)
		}
		svc.Type = req.Type
	}
	if req.Price > 0 {
		svc.Price = helper.Round2(req.Price)
	}
	if req.Unit != "" {
		svc.Unit = req.Unit
	}

	if err := db.Save(&svc).Error; err != nil {
		return nil, errs.Persist("utilities.UpdateService", err)
	}
	return &svc, nil
}

func DeleteService(db *gorm.DB, actor scope.Actor, serviceID uint) error {
	if !actor.IsStaff() {
		return errs.Forbidden("Tidak punya hak mengelola layanan")
	}
	var svc utilModel.Service
	if err := db.First(&svc, serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("Layanan %d tidak ditemukan", serviceID)
		}
		return errs.Persist("utilities.DeleteService(load)", err)
	}
	if err := scope.CanAccessBranch(db, actor, svc.BranchID); err != nil {
		return err
	}
	if err := db.Delete(&svc).Error; err != nil {
		return errs.Persist("utilities.DeleteService", err)
	}
	return nil
}

func ListServices(db *gorm.DB, actor scope.Actor, branchID uint, p helper.PageParams) ([]utilModel.Service, int64, error) {
	q := scope.ApplyBranchScope(db.Model(&utilModel.Service{}), actor, "services.branch_id")
	if branchID != 0 {
		q = q.Where("services.branch_id = ?", branchID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Persist("utilities.ListServices(count)", err)
	}

	var services []utilModel.Service
	if err := q.Order("services.id").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&services).Error; err != nil {
		return nil, 0, errs.Persist("utilities.ListServices", err)
	}
	return services, total, nil
}
