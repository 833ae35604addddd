package models

// ClientEntry is one row of the client directory search.
type ClientEntry struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Hospital string `json:"hospital"`
	Role     Role   `json:"role,omitempty"`
}
