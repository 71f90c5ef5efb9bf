package dto

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
