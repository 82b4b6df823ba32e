package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/frontinsight/loginpage/internal/form"
	"github.com/frontinsight/loginpage/internal/services"
	"github.com/frontinsight/loginpage/internal/validation"
	"github.com/frontinsight/loginpage/internal/views"
)

type loginRequest struct {
	Token    string `json:"token" form:"token" example:"6f1c2a5e-8d4b-4c39-9f0e-2b7d1a3c5e90"`
	Email    string `json:"email" form:"email" example:"user@example.com"`
	Password string `json:"password" form:"password" example:"password123"`
}

type simpleResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Invalid payload"`
}

type loginResponse struct {
	Success        bool              `json:"success" example:"true"`
	Message        string            `json:"message" example:"Login successful."`
	Token          string            `json:"token" example:"6f1c2a5e-8d4b-4c39-9f0e-2b7d1a3c5e90"`
	State          string            `json:"state" example:"idle"`
	Errors         map[string]string `json:"errors,omitempty"`
	SubmitLabel    string            `json:"submit_label" example:"Login"`
	SubmitDisabled bool              `json:"submit_disabled" example:"false"`
}

type validateRequest struct {
	Email    *string  `json:"email" example:"user@example.com"`
	Password *string  `json:"password" example:"password123"`
	Fields   []string `json:"fields" example:"email"`
}

type validateResponse struct {
	Valid  bool              `json:"valid" example:"false"`
	Errors map[string]string `json:"errors"`
}

func (s *Server) page(token string, v form.View) views.Page {
	return views.Page{
		Title: "Login",
		Form: views.LoginForm{
			Title:             "Welcome",
			Token:             token,
			View:              v,
			ForgotPasswordURL: s.Cfg.ForgotPasswordURL,
			SignUpURL:         s.Cfg.SignUpURL,
		},
	}
}

// LoginPage renders the login page with a fresh form.
func (s *Server) LoginPage(c echo.Context) error {
	token, f := s.Forms.Create()
	return c.Render(http.StatusOK, "page", s.page(token, f.View()))
}

// Login handles the HTML form post and renders the page again with the
// form's resulting state.
func (s *Server) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		token, f := s.Forms.Create()
		v := f.View()
		v.Message = "Invalid request, please try again"
		v.Failed = true
		return c.Render(http.StatusBadRequest, "page", s.page(token, v))
	}
	token, f := s.Forms.Resolve(req.Token)
	err := s.submit(c.Request().Context(), f, req)
	return c.Render(submitStatus(err), "page", s.page(token, f.View()))
}

// LoginJSON godoc
// @Summary Submit the login form
// @Description Validate the credentials and hand them to the configured authenticator. The form identified by token returns to idle whatever the outcome; a submission made while another one is in flight is rejected.
// @Tags Login
// @Accept json
// @Produce json
// @Param request body loginRequest true "Login form values"
// @Success 200 {object} loginResponse
// @Failure 400 {object} simpleResponse
// @Failure 401 {object} loginResponse
// @Failure 409 {object} loginResponse
// @Failure 422 {object} loginResponse
// @Failure 502 {object} loginResponse
// @Router /api/login [post]
func (s *Server) LoginJSON(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Invalid payload"})
	}
	token, f := s.Forms.Resolve(req.Token)
	err := s.submit(c.Request().Context(), f, req)

	v := f.View()
	resp := loginResponse{
		Success:        err == nil,
		Message:        v.Message,
		Token:          token,
		State:          v.State.String(),
		Errors:         v.Errors,
		SubmitLabel:    v.SubmitLabel,
		SubmitDisabled: v.SubmitDisabled,
	}
	switch {
	case errors.Is(err, form.ErrInvalid):
		resp.Message = "Please correct the highlighted fields."
	case errors.Is(err, form.ErrBusy):
		resp.Message = "A login is already in progress."
	case errors.Is(err, form.ErrDisposed):
		resp.Message = "This form has expired. Please reload the page."
	}
	return c.JSON(submitStatus(err), resp)
}

// ValidateLogin godoc
// @Summary Validate login fields
// @Description Check the named fields (all fields when none are named) without submitting anything.
// @Tags Login
// @Accept json
// @Produce json
// @Param request body validateRequest true "Field values"
// @Success 200 {object} validateResponse
// @Failure 400 {object} simpleResponse
// @Router /api/login/validate [post]
func (s *Server) ValidateLogin(c echo.Context) error {
	var req validateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Invalid payload"})
	}
	fields := req.Fields
	if len(fields) == 0 {
		fields = s.Schema.Fields()
	}
	values := map[string]string{}
	if req.Email != nil {
		values[validation.FieldEmail] = *req.Email
	}
	if req.Password != nil {
		values[validation.FieldPassword] = *req.Password
	}

	resp := validateResponse{Valid: true, Errors: map[string]string{}}
	for _, field := range fields {
		msg, err := s.Schema.ValidateField(field, values[field])
		if err != nil {
			return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: err.Error()})
		}
		if msg != "" {
			resp.Valid = false
			resp.Errors[field] = msg
			s.Metrics.ValidationFailed(field)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) submit(ctx context.Context, f *form.Form, req loginRequest) error {
	if err := f.SetField(validation.FieldEmail, req.Email); err != nil {
		return err
	}
	if err := f.SetField(validation.FieldPassword, req.Password); err != nil {
		return err
	}
	_, err := f.Submit(ctx)
	return err
}

func submitStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, form.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, form.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, form.ErrDisposed):
		return http.StatusGone
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
