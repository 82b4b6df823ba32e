package models

import "fmt"

// LoginAttempt holds the current values of the login form. It is never
// persisted and lives only as long as the form that produced it.
type LoginAttempt struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"password123"`
}

// String never includes the password.
func (a LoginAttempt) String() string {
	return fmt.Sprintf("LoginAttempt{Email: %q}", a.Email)
}

func (a LoginAttempt) GoString() string {
	return a.String()
}
