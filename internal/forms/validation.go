package forms

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	gmailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@gmail\.com$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// FieldError is one failed rule, keyed by the form's JSON field name
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("gmail", func(fl validator.FieldLevel) bool {
		return gmailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	// bcrypt limits the encoded length, not the rune count
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	return v
}

// Validate checks a form and returns one error per failing field, in field order.
// A nil result means the form is valid.
func Validate(form interface{}) []FieldError {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Message: err.Error()}}
	}

	errs := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		errs = append(errs, FieldError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return errs
}

// formatValidationError converts a validator FieldError to the screen's message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "gmail":
		return "Only Gmail addresses are allowed"
	case "phone10":
		return "Phone number must be 10 digits"
	case "min":
		return fmt.Sprintf("Password must be at least %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Password must be at most %s bytes", fe.Param())
	case "eqfield":
		return "Passwords must match"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
