// internals/features/users/dto/user_dto.go
package dto

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,min=8,max=20"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin owner employee customer"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"` // username atau email
	Password   string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone       string `json:"phone" validate:"omitempty,min=8,max=20"`
	QRCodeURL   string `json:"qr_code_url" validate:"omitempty,url"`
	BankDetails string `json:"bank_details" validate:"omitempty,json"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}
