package model

import "time"

// User represents a registered CourseMe user. Administrators curate the
// system-wide objective catalogue; regular users author their own.
type User struct {
	ID             int       `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	PasswordHash   string    `json:"-"`
	SubjectID      int       `json:"subject_id"`
	IsAdmin        bool      `json:"is_admin"`
	TimeRegistered time.Time `json:"time_registered"`
	LastSeen       time.Time `json:"last_seen"`
}

// SignupRequest is the payload for registering a new user.
type SignupRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Password  string `json:"password" binding:"required,min=6,max=128"`
	SubjectID int    `json:"subject_id" binding:"required,min=1"`
}

// LoginRequest is the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after a successful login or signup.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
