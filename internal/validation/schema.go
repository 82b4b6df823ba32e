package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldType selects the shape check applied to a field value.
type FieldType string

const (
	TypeText  FieldType = "text"
	TypeEmail FieldType = "email"
)

var ErrUnknownField = errors.New("unknown field")

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail reports whether email has the local@domain.tld shape.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Rule describes the constraints of one field. Every failing constraint
// reports the same Message.
type Rule struct {
	Field     string
	Type      FieldType
	Required  bool
	MinLength int
	Pattern   *regexp.Regexp
	Message   string
}

func (r Rule) check(value string) bool {
	if value == "" {
		// An empty email never has the email shape, required or not.
		return !r.Required && r.Type != TypeEmail
	}
	if r.Type == TypeEmail && !ValidateEmail(value) {
		return false
	}
	if r.MinLength > 0 && utf8.RuneCountInString(value) < r.MinLength {
		return false
	}
	if r.Pattern != nil && !r.Pattern.MatchString(value) {
		return false
	}
	return true
}

// FieldError is a failed rule for a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors holds field errors in schema order.
type Errors []FieldError

func (e Errors) Valid() bool {
	return len(e) == 0
}

// Get returns the message for field, or "" when the field passed.
func (e Errors) Get(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Map returns the errors keyed by field name.
func (e Errors) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, fe := range e {
		m[fe.Field] = fe.Message
	}
	return m
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

// Schema is an ordered set of field rules.
type Schema struct {
	rules []Rule
	index map[string]int
}

func NewSchema(rules ...Rule) *Schema {
	s := &Schema{
		rules: append([]Rule(nil), rules...),
		index: make(map[string]int, len(rules)),
	}
	for i, r := range s.rules {
		s.index[r.Field] = i
	}
	return s
}

// Fields lists the field names in schema order.
func (s *Schema) Fields() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.Field
	}
	return names
}

func (s *Schema) Has(field string) bool {
	_, ok := s.index[field]
	return ok
}

// ValidateField checks one value against its rule. It returns the
// rule's message when the value fails and "" when it passes.
func (s *Schema) ValidateField(field, value string) (string, error) {
	i, ok := s.index[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if r := s.rules[i]; !r.check(value) {
		return r.Message, nil
	}
	return "", nil
}

// Validate checks every field of the schema. Missing values are treated
// as empty strings; values for fields outside the schema are ignored.
func (s *Schema) Validate(values map[string]string) Errors {
	var errs Errors
	for _, r := range s.rules {
		if !r.check(values[r.Field]) {
			errs = append(errs, FieldError{Field: r.Field, Message: r.Message})
		}
	}
	return errs
}
