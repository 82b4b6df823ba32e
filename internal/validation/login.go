package validation

const (
	FieldEmail    = "email"
	FieldPassword = "password"

	MsgInvalidEmail     = "Please enter a valid email address."
	MsgPasswordRequired = "Password is required."
)

// LoginSchema returns the rules of the login form.
func LoginSchema() *Schema {
	return NewSchema(
		Rule{
			Field:    FieldEmail,
			Type:     TypeEmail,
			Required: true,
			Message:  MsgInvalidEmail,
		},
		Rule{
			Field:     FieldPassword,
			Type:      TypeText,
			Required:  true,
			MinLength: 1,
			Message:   MsgPasswordRequired,
		},
	)
}
