package dto

type SignupRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Name     string `form:"name" validate:"required"`
	Password string `form:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type MFAVerifyRequest struct {
	Token string `form:"token" validate:"required"`
	Code  string `form:"code" validate:"required"`
}

type EnableMFARequest struct {
	Secret string `form:"secret" validate:"required"`
	Code   string `form:"code" validate:"required"`
}

type DisableMFARequest struct {
	Code string `form:"code" validate:"required"`
}
