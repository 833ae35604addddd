package models

// Credentials is the body of /login/.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of /signup/.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Hospital string `json:"hospital"`
	Role     Role   `json:"role"`
}
