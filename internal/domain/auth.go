package domain

type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
	Name  string `json:"name"`
}
