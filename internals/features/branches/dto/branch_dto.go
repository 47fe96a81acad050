// internals/features/branches/dto/branch_dto.go
package dto

type CreateBranchRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Address string `json:"address" validate:"omitempty,max=255"`
}

type UpdateBranchRequest struct {
	Name    string `json:"name" validate:"omitempty,min=2,max=100"`
	Address string `json:"address" validate:"omitempty,max=255"`
}

type AssignEmployeeRequest struct {
	EmployeeID uint `json:"employee_id" validate:"required"`
	BranchID   uint `json:"branch_id" validate:"required"`
}
