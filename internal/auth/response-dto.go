package auth

import "time"

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

type GoogleVerificationResponse struct {
	Verified bool   `json:"verified"`
	Email    string `json:"email,omitempty"`
}
