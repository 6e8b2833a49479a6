package auth

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"isAdmin"`
}

func toAuthResponse(s Session, isAdmin bool) AuthResponse {
	return AuthResponse{
		ID:      s.UserID,
		Email:   s.Email,
		Name:    s.Name,
		Role:    string(s.Role),
		IsAdmin: isAdmin,
	}
}
