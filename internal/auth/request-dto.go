package auth

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=1,max=255"`
}

type VerifyGoogleTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
