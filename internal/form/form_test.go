package form

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontinsight/loginpage/internal/models"
	"github.com/frontinsight/loginpage/internal/services"
	"github.com/frontinsight/loginpage/internal/validation"
)

type recordingAuth struct {
	calls    atomic.Int32
	mu       sync.Mutex
	attempts []models.LoginAttempt
	started  chan struct{}
	release  chan struct{}
	err      error
}

func newRecordingAuth() *recordingAuth {
	return &recordingAuth{started: make(chan struct{}, 8)}
}

func (a *recordingAuth) Authenticate(ctx context.Context, attempt models.LoginAttempt) (services.Outcome, error) {
	a.calls.Add(1)
	a.mu.Lock()
	a.attempts = append(a.attempts, attempt)
	a.mu.Unlock()
	a.started <- struct{}{}
	if a.release != nil {
		select {
		case <-a.release:
		case <-ctx.Done():
			return services.Outcome{}, ctx.Err()
		}
	}
	if a.err != nil {
		return services.Outcome{}, a.err
	}
	return services.Outcome{Email: attempt.Email, Message: "Login successful."}, nil
}

type recordingObserver struct {
	mu          sync.Mutex
	transitions [][2]State
	failed      []string
	results     []string
}

func (o *recordingObserver) Transition(from, to State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, [2]State{from, to})
}

func (o *recordingObserver) ValidationFailed(field string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, field)
}

func (o *recordingObserver) SubmissionFinished(result string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}

func fill(t *testing.T, f *Form, email, password string) {
	t.Helper()
	require.NoError(t, f.SetField(validation.FieldEmail, email))
	require.NoError(t, f.SetField(validation.FieldPassword, password))
}

func TestSubmit_ValidCredentials(t *testing.T) {
	auth := newRecordingAuth()
	obs := &recordingObserver{}
	f := New(auth, WithObserver(obs))
	fill(t, f, "a@b.com", "x")

	out, err := f.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), auth.calls.Load())
	assert.Equal(t, []models.LoginAttempt{{Email: "a@b.com", Password: "x"}}, auth.attempts)
	assert.Equal(t, "a@b.com", out.Email)

	v := f.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Empty(t, v.Errors)
	assert.Equal(t, "Login successful.", v.Message)
	assert.False(t, v.Failed)
	assert.Equal(t, LabelIdle, v.SubmitLabel)
	assert.False(t, v.SubmitDisabled)

	assert.Equal(t, [][2]State{
		{StateIdle, StateValidating},
		{StateValidating, StateSubmitting},
		{StateSubmitting, StateIdle},
	}, obs.transitions)
	assert.Equal(t, []string{"success"}, obs.results)
}

func TestSubmit_InvalidEmailBlocksSubmission(t *testing.T) {
	auth := newRecordingAuth()
	obs := &recordingObserver{}
	f := New(auth, WithObserver(obs))
	fill(t, f, "not-an-email", "x")

	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)

	assert.Zero(t, auth.calls.Load())
	v := f.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Equal(t, validation.MsgInvalidEmail, v.Errors[validation.FieldEmail])
	assert.Empty(t, v.Errors[validation.FieldPassword])
	assert.Equal(t, []string{validation.FieldEmail}, obs.failed)
	assert.Equal(t, [][2]State{
		{StateIdle, StateValidating},
		{StateValidating, StateInvalid},
		{StateInvalid, StateIdle},
	}, obs.transitions)
}

func TestSubmit_EmptyPasswordBlocksSubmission(t *testing.T) {
	auth := newRecordingAuth()
	f := New(auth)
	fill(t, f, "a@b.com", "")

	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)

	assert.Zero(t, auth.calls.Load())
	v := f.View()
	assert.Equal(t, validation.MsgPasswordRequired, v.Errors[validation.FieldPassword])
	assert.Empty(t, v.Errors[validation.FieldEmail])
}

func TestSubmit_EmptyFormReportsBothFields(t *testing.T) {
	f := New(newRecordingAuth())

	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)

	v := f.View()
	assert.Equal(t, validation.MsgInvalidEmail, v.Errors[validation.FieldEmail])
	assert.Equal(t, validation.MsgPasswordRequired, v.Errors[validation.FieldPassword])
}

func TestValidationTiming(t *testing.T) {
	f := New(newRecordingAuth())

	// Untouched fields are not validated while typing.
	require.NoError(t, f.SetField(validation.FieldEmail, "a@"))
	assert.Empty(t, f.View().Errors)

	// Blur validates.
	require.NoError(t, f.Blur(validation.FieldEmail))
	assert.Equal(t, validation.MsgInvalidEmail, f.View().Errors[validation.FieldEmail])

	// Touched fields revalidate on every edit.
	require.NoError(t, f.SetField(validation.FieldEmail, "a@b.com"))
	assert.Empty(t, f.View().Errors[validation.FieldEmail])

	// After a submit attempt, untouched fields revalidate on edit too.
	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, validation.MsgPasswordRequired, f.View().Errors[validation.FieldPassword])
	require.NoError(t, f.SetField(validation.FieldPassword, "x"))
	assert.Empty(t, f.View().Errors[validation.FieldPassword])
}

func TestSetField_UnknownField(t *testing.T) {
	f := New(newRecordingAuth())
	require.ErrorIs(t, f.SetField("username", "bob"), validation.ErrUnknownField)
	require.ErrorIs(t, f.Blur("username"), validation.ErrUnknownField)
}

func TestSubmit_LoadingIndicatorWhileInFlight(t *testing.T) {
	auth := newRecordingAuth()
	auth.release = make(chan struct{})
	f := New(auth)
	fill(t, f, "a@b.com", "x")

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-auth.started

	v := f.View()
	assert.Equal(t, StateSubmitting, v.State)
	assert.Equal(t, LabelSubmitting, v.SubmitLabel)
	assert.True(t, v.SubmitDisabled)

	close(auth.release)
	require.NoError(t, <-done)

	v = f.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Equal(t, LabelIdle, v.SubmitLabel)
	assert.False(t, v.SubmitDisabled)
}

func TestSubmit_DoubleSubmitInvokesAuthenticatorOnce(t *testing.T) {
	auth := newRecordingAuth()
	auth.release = make(chan struct{})
	f := New(auth)
	fill(t, f, "a@b.com", "x")

	first := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		first <- err
	}()
	<-auth.started

	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrBusy)

	close(auth.release)
	require.NoError(t, <-first)
	assert.Equal(t, int32(1), auth.calls.Load())
}

func TestSetField_RefusedWhileSubmitting(t *testing.T) {
	auth := newRecordingAuth()
	auth.release = make(chan struct{})
	f := New(auth)
	fill(t, f, "a@b.com", "x")

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-auth.started

	require.ErrorIs(t, f.SetField(validation.FieldEmail, "other@b.com"), ErrBusy)
	require.ErrorIs(t, f.SetField(validation.FieldPassword, ""), ErrBusy)
	v := f.View()
	assert.Equal(t, "a@b.com", v.Email)
	assert.Empty(t, v.Errors)

	close(auth.release)
	require.NoError(t, <-done)
	assert.Equal(t, "a@b.com", f.View().Email)
	require.NoError(t, f.SetField(validation.FieldEmail, "other@b.com"))
}

func TestView_Attempted(t *testing.T) {
	f := New(newRecordingAuth())
	assert.False(t, f.View().Attempted)

	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)
	assert.True(t, f.View().Attempted)
}

func TestSubmit_ConcurrentSubmitsRaceToOne(t *testing.T) {
	auth := newRecordingAuth()
	auth.release = make(chan struct{})
	f := New(auth)
	fill(t, f, "a@b.com", "x")

	const clicks = 8
	var wg sync.WaitGroup
	var busy atomic.Int32
	results := make(chan error, clicks)
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Submit(context.Background())
			if errors.Is(err, ErrBusy) {
				busy.Add(1)
			}
			results <- err
		}()
	}
	<-auth.started
	// Wait until every click except the winner was turned away.
	require.Eventually(t, func() bool { return busy.Load() == clicks-1 }, time.Second, time.Millisecond)
	close(auth.release)
	wg.Wait()

	assert.Equal(t, int32(1), auth.calls.Load())
}

func TestSubmit_FailureReturnsToIdleAndAllowsRetry(t *testing.T) {
	auth := newRecordingAuth()
	auth.err = services.ErrInvalidCredentials
	obs := &recordingObserver{}
	f := New(auth, WithObserver(obs))
	fill(t, f, "a@b.com", "wrong")

	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, services.ErrInvalidCredentials)

	v := f.View()
	assert.Equal(t, StateIdle, v.State)
	assert.True(t, v.Failed)
	assert.Equal(t, "Invalid email or password.", v.Message)
	assert.Equal(t, "a@b.com", v.Email)
	assert.False(t, v.SubmitDisabled)

	auth.err = nil
	require.NoError(t, f.SetField(validation.FieldPassword, "right"))
	_, err = f.Submit(context.Background())
	require.NoError(t, err)

	v = f.View()
	assert.False(t, v.Failed)
	assert.Equal(t, "Login successful.", v.Message)
	assert.Equal(t, int32(2), auth.calls.Load())
	assert.Equal(t, []string{"invalid_credentials", "success"}, obs.results)
}

func TestSubmit_AuthenticatorPanicRestoresIdle(t *testing.T) {
	f := New(services.AuthenticatorFunc(func(context.Context, models.LoginAttempt) (services.Outcome, error) {
		panic("backend exploded")
	}))
	fill(t, f, "a@b.com", "x")

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend exploded")

	v := f.View()
	assert.Equal(t, StateIdle, v.State)
	assert.True(t, v.Failed)
	assert.Equal(t, "Something went wrong. Please try again.", v.Message)
}

func TestSubmit_CallerCancellation(t *testing.T) {
	auth := newRecordingAuth()
	auth.release = make(chan struct{})
	f := New(auth)
	fill(t, f, "a@b.com", "x")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(ctx)
		done <- err
	}()
	<-auth.started
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
	v := f.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Equal(t, "The request was interrupted. Please try again.", v.Message)
}

func TestDispose_CancelsInFlightAndIgnoresCompletion(t *testing.T) {
	auth := newRecordingAuth()
	auth.release = make(chan struct{})
	obs := &recordingObserver{}
	f := New(auth, WithObserver(obs))
	fill(t, f, "a@b.com", "x")

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-auth.started

	f.Dispose()
	require.ErrorIs(t, <-done, ErrDisposed)

	// Dispose finished the submission; the completion changed nothing.
	v := f.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Empty(t, v.Message)
	assert.False(t, v.Failed)
	assert.Equal(t, []string{"canceled"}, obs.results)
	assert.Equal(t, [2]State{StateSubmitting, StateIdle}, obs.transitions[len(obs.transitions)-1])

	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrDisposed)
	require.ErrorIs(t, f.SetField(validation.FieldEmail, "c@d.com"), ErrDisposed)
	require.ErrorIs(t, f.Blur(validation.FieldEmail), ErrDisposed)

	f.Dispose()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "validating", StateValidating.String())
	assert.Equal(t, "invalid", StateInvalid.String())
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "state(9)", State(9).String())
}
