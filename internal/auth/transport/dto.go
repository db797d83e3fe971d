// Package transport defines the wire DTOs for the auth module.
package transport

// AuthRequest is the body of POST /api/auth.
type AuthRequest struct {
	Token string `json:"token" validate:"required"`
}

// AuthResponse signals overall success or failure. The resolved identity is
// deliberately not returned to the caller.
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TokenMissingResponse is the 400 body when the token field is absent.
type TokenMissingResponse struct {
	Message string `json:"message"`
}
