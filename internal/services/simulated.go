package services

import (
	"context"
	"time"

	"github.com/frontinsight/loginpage/internal/logger"
	"github.com/frontinsight/loginpage/internal/models"
)

const DefaultSubmitDelay = 1500 * time.Millisecond

// SimulatedAuthenticator stands in for a real authentication backend. It
// waits Delay and accepts every attempt.
type SimulatedAuthenticator struct {
	Delay time.Duration
	log   logger.Logger
}

func NewSimulatedAuthenticator(delay time.Duration, log logger.Logger) *SimulatedAuthenticator {
	if log == nil {
		log = logger.NewNop()
	}
	return &SimulatedAuthenticator{Delay: delay, log: log}
}

func (a *SimulatedAuthenticator) Authenticate(ctx context.Context, attempt models.LoginAttempt) (Outcome, error) {
	a.log.Info("Login form submitted", "email", attempt.Email)

	if a.Delay > 0 {
		timer := time.NewTimer(a.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	return Outcome{Email: attempt.Email, Message: "Login successful."}, nil
}
