package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return v
}

// message renders a failed rule the way API clients expect to read it.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "Invalid value."
	}
}

// collect adds the failures in err to verr. Errors that are not validation
// failures are returned as is.
func collect(verr *common.ValidationError, err error) error {
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}
	for _, fe := range fes {
		verr.Add(fe.Field(), message(fe))
	}
	return nil
}

// validateStruct checks s against its validate tags.
func validateStruct(s any) error {
	verr := &common.ValidationError{}
	if err := collect(verr, validate.Struct(s)); err != nil {
		return err
	}
	return verr.OrNil()
}

// checkVar validates a single value and files failures under field.
func checkVar(verr *common.ValidationError, field string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}
	for _, fe := range fes {
		verr.Add(field, message(fe))
	}
	return nil
}
