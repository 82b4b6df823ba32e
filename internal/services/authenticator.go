package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/frontinsight/loginpage/internal/models"
)

// Outcome is the result of a successful submission.
type Outcome struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Authenticator is the submission capability behind the login form.
// Implementations must return when ctx is done.
type Authenticator interface {
	Authenticate(ctx context.Context, attempt models.LoginAttempt) (Outcome, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, attempt models.LoginAttempt) (Outcome, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, attempt models.LoginAttempt) (Outcome, error) {
	return f(ctx, attempt)
}

type FailureKind string

const (
	FailureInvalidCredentials FailureKind = "invalid_credentials"
	FailureNetwork            FailureKind = "network"
)

// AuthError is a typed submission failure.
type AuthError struct {
	Kind FailureKind
	Err  error
}

var (
	ErrInvalidCredentials = &AuthError{Kind: FailureInvalidCredentials}
	ErrNetwork            = &AuthError{Kind: FailureNetwork}
)

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authenticate: %s: %v", e.Kind, e.Err)
	}
	return "authenticate: " + string(e.Kind)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches any AuthError of the same kind, so wrapped failures still
// satisfy errors.Is(err, ErrNetwork).
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

// FailureMessage turns a submission error into the text shown on the form.
func FailureMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrNetwork):
		return "Unable to reach the server. Please try again."
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "The request was interrupted. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// FailureLabel is a low-cardinality name for err, used in logs and metrics.
func FailureLabel(err error) string {
	var authErr *AuthError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &authErr):
		return string(authErr.Kind)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
