package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/frontinsight/loginpage/internal/logger"
	"github.com/frontinsight/loginpage/internal/models"
	"github.com/frontinsight/loginpage/internal/services"
	"github.com/frontinsight/loginpage/internal/validation"
)

// State is the lifecycle position of a form.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	LabelIdle       = "Login"
	LabelSubmitting = "Logging in..."
)

var (
	ErrInvalid  = errors.New("form has invalid fields")
	ErrBusy     = errors.New("submission already in progress")
	ErrDisposed = errors.New("form disposed")
)

// Observer receives lifecycle events. Calls are made with the form lock
// held and must not call back into the form.
type Observer interface {
	Transition(from, to State)
	ValidationFailed(field string)
	SubmissionFinished(result string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) Transition(State, State)                  {}
func (nopObserver) ValidationFailed(string)                  {}
func (nopObserver) SubmissionFinished(string, time.Duration) {}

type Option func(*Form)

func WithSchema(s *validation.Schema) Option {
	return func(f *Form) { f.schema = s }
}

func WithObserver(o Observer) Option {
	return func(f *Form) {
		if o != nil {
			f.observer = o
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.log = l
		}
	}
}

// Form is the login form: its field values, field errors and submission
// lifecycle. It is safe for concurrent use.
type Form struct {
	schema   *validation.Schema
	auth     services.Authenticator
	observer Observer
	log      logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	values    map[string]string
	touched   map[string]bool
	errors    map[string]string
	attempted bool
	message   string
	failed    bool
	disposed  bool
	started   time.Time
}

func New(auth services.Authenticator, opts ...Option) *Form {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Form{
		schema:   validation.LoginSchema(),
		auth:     auth,
		observer: nopObserver{},
		log:      logger.NewNop(),
		ctx:      ctx,
		cancel:   cancel,
		values:   map[string]string{},
		touched:  map[string]bool{},
		errors:   map[string]string{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetField records an edit. Once the field was blurred or a submit was
// attempted, the edit is validated immediately. Edits are refused with
// ErrBusy while a submission is in flight.
func (f *Form) SetField(field, value string) error {
	if !f.schema.Has(field) {
		return fmt.Errorf("set %q: %w", field, validation.ErrUnknownField)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return ErrDisposed
	}
	if f.state == StateSubmitting {
		return ErrBusy
	}
	f.values[field] = value
	if f.touched[field] || f.attempted {
		f.validateFieldLocked(field)
	}
	return nil
}

// Blur marks field as touched and validates it.
func (f *Form) Blur(field string) error {
	if !f.schema.Has(field) {
		return fmt.Errorf("blur %q: %w", field, validation.ErrUnknownField)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return ErrDisposed
	}
	f.touched[field] = true
	f.validateFieldLocked(field)
	return nil
}

func (f *Form) validateFieldLocked(field string) {
	// Validation is synchronous: Validating is entered and left within
	// the same critical section, and never while a submission is running.
	if f.state == StateSubmitting {
		f.applyFieldLocked(field)
		return
	}
	f.setStateLocked(StateValidating)
	if !f.applyFieldLocked(field) {
		f.setStateLocked(StateInvalid)
	}
	f.setStateLocked(StateIdle)
}

func (f *Form) applyFieldLocked(field string) bool {
	msg, _ := f.schema.ValidateField(field, f.values[field])
	if msg == "" {
		delete(f.errors, field)
		return true
	}
	f.errors[field] = msg
	f.observer.ValidationFailed(field)
	return false
}

// Submit validates every field and, when they all pass, hands the
// attempt to the authenticator. The form is back in Idle when Submit
// returns, whatever the outcome. A Submit made while another one is in
// flight fails with ErrBusy without reaching the authenticator.
func (f *Form) Submit(ctx context.Context) (services.Outcome, error) {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return services.Outcome{}, ErrDisposed
	}
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return services.Outcome{}, ErrBusy
	}

	f.attempted = true
	f.message = ""
	f.failed = false
	f.setStateLocked(StateValidating)
	errs := f.schema.Validate(f.values)
	f.errors = errs.Map()
	if !errs.Valid() {
		for _, fe := range errs {
			f.observer.ValidationFailed(fe.Field)
		}
		f.setStateLocked(StateInvalid)
		f.setStateLocked(StateIdle)
		f.mu.Unlock()
		return services.Outcome{}, fmt.Errorf("%w: %v", ErrInvalid, errs)
	}

	attempt := models.LoginAttempt{
		Email:    f.values[validation.FieldEmail],
		Password: f.values[validation.FieldPassword],
	}
	f.started = time.Now()
	start := f.started
	f.setStateLocked(StateSubmitting)
	f.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(f.ctx, cancel)
	defer stop()

	outcome, err := f.authenticate(runCtx, attempt)
	elapsed := time.Since(start)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		// Dispose already finished the submission.
		f.log.Debug("Dropping completion of disposed form", "email", attempt.Email)
		return services.Outcome{}, ErrDisposed
	}
	f.observer.SubmissionFinished(services.FailureLabel(err), elapsed)
	f.setStateLocked(StateIdle)
	if err != nil {
		f.failed = true
		f.message = services.FailureMessage(err)
		f.log.Warn("Login submission failed", "email", attempt.Email, "reason", services.FailureLabel(err), "error", err)
		return services.Outcome{}, fmt.Errorf("submit: %w", err)
	}
	f.message = outcome.Message
	f.log.Info("Login submission completed", "email", attempt.Email, "elapsed", elapsed)
	return outcome, nil
}

func (f *Form) authenticate(ctx context.Context, attempt models.LoginAttempt) (outcome services.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("authenticator panic: %v", r)
		}
	}()
	return f.auth.Authenticate(ctx, attempt)
}

// Dispose releases the form. An in-flight submission is canceled and
// reported as such, the form returns to Idle, and the submission's
// completion no longer changes the form. Dispose is idempotent.
func (f *Form) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return
	}
	f.disposed = true
	f.cancel()
	if f.state == StateSubmitting {
		f.observer.SubmissionFinished(services.FailureLabel(context.Canceled), time.Since(f.started))
		f.setStateLocked(StateIdle)
	}
}

func (f *Form) setStateLocked(to State) {
	if f.state == to {
		return
	}
	from := f.state
	f.state = to
	f.observer.Transition(from, to)
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// View is a snapshot of what the form shows. It never carries the
// password.
type View struct {
	State          State
	Email          string
	Errors         map[string]string
	Message        string
	Failed         bool
	Attempted      bool
	SubmitLabel    string
	SubmitDisabled bool
}

func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	errs := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		errs[k] = v
	}
	v := View{
		State:       f.state,
		Email:       f.values[validation.FieldEmail],
		Errors:      errs,
		Message:     f.message,
		Failed:      f.failed,
		Attempted:   f.attempted,
		SubmitLabel: LabelIdle,
	}
	if f.state == StateSubmitting {
		v.SubmitLabel = LabelSubmitting
		v.SubmitDisabled = true
	}
	return v
}
