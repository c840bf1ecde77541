package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form field names, shared with the remote API's error bodies
const (
	FieldName  = "name"
	FieldEmail = "email"
)

// Messages shown next to the form fields
const (
	MsgNameRequired  = "Name is required"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Invalid email format"
)

// emailRegex is the basic local@domain.tld shape, no whitespace or extra @
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

// userForm is what gets validated: presence is checked on trimmed values,
// the format on the email exactly as typed
type userForm struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required"`
	RawEmail string `form:"email" validate:"omitempty,basic_email"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators
func RegisterValidators(v *validator.Validate) {
	v.RegisterValidation("basic_email", validateBasicEmail)
}

// validateBasicEmail checks the email against emailRegex
func validateBasicEmail(fl validator.FieldLevel) bool {
	return IsValidEmail(fl.Field().String())
}

// IsValidEmail reports whether email has the local@domain.tld shape
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateUser checks a user form and returns one message per failing field.
// An empty map means the input may be submitted.
func ValidateUser(name, email string) map[string]string {
	form := userForm{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		RawEmail: email,
	}

	errs := map[string]string{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs[FieldName] = err.Error()
		return errs
	}

	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		errs[field] = message(field, fe.Tag())
	}
	return errs
}

func message(field, tag string) string {
	switch {
	case field == FieldName && tag == "required":
		return MsgNameRequired
	case field == FieldEmail && tag == "required":
		return MsgEmailRequired
	case field == FieldEmail && tag == "basic_email":
		return MsgEmailInvalid
	}
	return field + " is invalid"
}
