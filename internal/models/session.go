package models

// Identity is the authenticated principal resolved from the session store and
// attached to the request context by the authorization gate.
type Identity struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
}
