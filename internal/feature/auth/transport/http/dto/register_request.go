package dto

// RegisterReq represents the request body for the /register endpoint.
// It uses Gin's binding tags for validation (required, email format,
// password length and confirmation). notblank rejects whitespace-only names.
type RegisterReq struct {
	Name                 string `json:"name" binding:"required,notblank,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=8,max=72"` // bcrypt input limit
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}
