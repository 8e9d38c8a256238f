package dto

// CreateUserRequest payload for new users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUserResponse is returned after a successful registration.
type CreateUserResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// VerifyTokenResponse identifies the token holder.
type VerifyTokenResponse struct {
	UserID string `json:"user_id"`
}
