package auth

import "time"

type Role string

const (
	RoleRecruiter Role = "recruiter"
	RoleHRAdmin   Role = "hr_admin"
	RoleCandidate Role = "candidate"
)

// User is the domain representation of an authenticated staff account.
// It mirrors the users table and carries no JSON annotations so it can be
// reused by different presentation layers. Candidates are not users: they get
// short-lived session tokens bound to an employee record instead.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterRequest contains staff registration data supplied by callers.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// LoginRequest contains staff login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Claims is the verified content of a token.
type Claims struct {
	// UserID is set for staff tokens.
	UserID string
	Role   Role
	// EmployeeID is set for candidate session tokens.
	EmployeeID string
}
