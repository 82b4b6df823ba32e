package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"

	"github.com/frontinsight/loginpage/internal/form"
	"github.com/frontinsight/loginpage/internal/validation"
)

// Prompt drives a form.Form from the terminal.
type Prompt struct {
	Form              *form.Form
	Output            io.Writer
	Width             int
	Height            int
	Accessible        bool
	ForgotPasswordURL string
	SignUpURL         string

	email    string
	password string
}

// FieldValidator returns a huh validation func that feeds value into
// field of f and reports the field's error, if any. huh calls it when the
// field loses focus and again before the form completes.
func FieldValidator(f *form.Form, field string) func(string) error {
	return func(value string) error {
		if err := f.SetField(field, value); err != nil {
			return err
		}
		if err := f.Blur(field); err != nil {
			return err
		}
		if msg := f.View().Errors[field]; msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

// SetEmail prefills the email input.
func (p *Prompt) SetEmail(email string) {
	p.email = email
}

func (p *Prompt) fields() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome").
				Description(fmt.Sprintf("Forgot Password: %s\nDon't have an account? Sign Up: %s", p.ForgotPasswordURL, p.SignUpURL)),
			huh.NewInput().
				Title("Email Address").
				Value(&p.email).
				Validate(FieldValidator(p.Form, validation.FieldEmail)),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&p.password).
				Validate(FieldValidator(p.Form, validation.FieldPassword)),
		),
	).WithAccessible(p.Accessible)
}

// Run asks for credentials until a submission succeeds or the user
// gives up. A failed submission keeps the email and offers a retry.
func (p *Prompt) Run(ctx context.Context) error {
	for {
		if err := p.fields().RunWithContext(ctx); err != nil {
			return err
		}

		submitErr, err := p.submit(ctx)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		v := p.Form.View()
		switch {
		case submitErr == nil:
			p.show(Card("Welcome", Notice(v.Message, false)))
			return nil
		case errors.Is(submitErr, form.ErrDisposed):
			return submitErr
		case errors.Is(submitErr, form.ErrInvalid), errors.Is(submitErr, form.ErrBusy):
			continue
		}

		p.show(Card("Welcome", Notice(v.Message, true)))
		retry := true
		confirm := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Try again?").
				Affirmative("Retry").
				Negative("Quit").
				Value(&retry),
		)).WithAccessible(p.Accessible)
		if err := confirm.RunWithContext(ctx); err != nil {
			return err
		}
		if !retry {
			return submitErr
		}
		p.password = ""
	}
}

// submit runs the form submission behind a spinner. The first result is
// the submission error, the second a failure of the spinner itself.
func (p *Prompt) submit(ctx context.Context) (error, error) {
	var submitErr error
	if p.Accessible {
		if p.Output != nil {
			fmt.Fprintln(p.Output, form.LabelSubmitting)
		}
		_, submitErr = p.Form.Submit(ctx)
		return submitErr, nil
	}
	err := spinner.New().
		Title(form.LabelSubmitting).
		Context(ctx).
		Action(func() { _, submitErr = p.Form.Submit(ctx) }).
		Run()
	return submitErr, err
}

func (p *Prompt) show(card string) {
	if p.Output == nil {
		return
	}
	if p.Width > 0 && p.Height > 0 {
		card = Center(p.Width, p.Height, card)
	}
	fmt.Fprintln(p.Output, card)
}
