package dto

import "time"

// LoginResponse carries the issued bearer token. The token appears here
// exactly once and is never retrievable again.
type LoginResponse struct {
	Token     string     `json:"token"`
	UserID    string     `json:"user_id"`
	Context   string     `json:"context"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// SessionResponse describes the authenticated session for introspection.
type SessionResponse struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
	Context string `json:"context"`
}
