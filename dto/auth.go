package dto

type SignupRequest struct {
	FirstName     string `json:"firstname"`
	LastName      string `json:"lastname"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	ContactNumber string `json:"contactNumber"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	TOTP     string `json:"totp"`
}

type ResetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type VerifyTwoFactorRequest struct {
	Code string `json:"code" binding:"required"`
}
