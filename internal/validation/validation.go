// Package validation builds the struct validators used for sign-up and
// checkout forms. Rules shared by several forms are registered here; form
// specific rules are added by the owning package.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their json name and knows the
// notblank and cep rules.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "cep", func(fl validator.FieldLevel) bool {
		return len(OnlyDigits(fl.Field().String())) == 8
	})
	return v
}

// Register adds a rule to v. Rule names are constants, so a failure is a
// programming error.
func Register(v *validator.Validate, tag string, fn validator.Func) {
	mustRegister(v, tag, fn)
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// FirstError returns the first failed field of a validate.Struct error, or
// false when err carries no field errors.
func FirstError(err error) (validator.FieldError, bool) {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return nil, false
	}
	return vErrs[0], true
}

// OnlyDigits drops every non digit rune of s.
func OnlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}
