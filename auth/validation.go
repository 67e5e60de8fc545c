package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-storefront/internal/validation"
)

// fieldErrors maps the struct fields of the sign-up forms to the error shown
// to the user.
var fieldErrors = map[string]error{
	"Name":            MissingNameErr,
	"Email":           InvalidEmailErr,
	"CPF":             InvalidCPFErr,
	"CNPJ":            InvalidCNPJErr,
	"Phone":           InvalidPhoneErr,
	"BirthDate":       InvalidBirthDateErr,
	"Password":        WeakPasswordErr,
	"ConfirmPassword": PasswordsDontMatchErr,
	"AcceptTerms":     TermsNotAcceptedErr,
	"BankDataURL":     InvalidBankDataURLErr,
}

// Validator checks sign-up and login forms before they are sent to the API.
type Validator struct {
	now      func() time.Time
	validate *validator.Validate
}

// NewValidator creates a Validator instance
func NewValidator() *Validator {
	v := &Validator{now: time.Now, validate: validation.New()}
	validation.Register(v.validate, "cpf", func(fl validator.FieldLevel) bool {
		return ValidCPF(fl.Field().String())
	})
	validation.Register(v.validate, "cnpj", func(fl validator.FieldLevel) bool {
		return ValidCNPJ(fl.Field().String())
	})
	validation.Register(v.validate, "phone", func(fl validator.FieldLevel) bool {
		// +55 plus area code plus at least eight digits
		return len(validation.OnlyDigits(NormalisePhone(fl.Field().String()))) >= 12
	})
	validation.Register(v.validate, "birthdate", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(time.Time)
		return ok && !d.IsZero() && d.Year() >= 1900 && !d.After(v.now())
	})
	return v
}

// WithClock pins the time used for birth date checks.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// ValidateCredentials checks a login attempt has both fields.
func (v *Validator) ValidateCredentials(c Credentials) error {
	return v.check(c)
}

// ValidateRegistration applies the customer sign-up rules.
func (v *Validator) ValidateRegistration(r Registration) error {
	return v.check(r)
}

// ValidateSupplier applies the supplier rules plus the rules of its user.
func (v *Validator) ValidateSupplier(r SupplierRegistration) error {
	return v.check(r)
}

// check reports the first failing field as its sentinel error. Errors of the
// supplier half are prefixed so the form can tell both e-mails apart.
func (v *Validator) check(form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}
	fe, ok := validation.FirstError(err)
	if !ok {
		return fmt.Errorf("validate %T: %w", form, err)
	}
	sentinel, ok := fieldErrors[fe.StructField()]
	if !ok {
		return fmt.Errorf("%s failed %q", fe.Namespace(), fe.Tag())
	}
	if strings.Contains(fe.StructNamespace(), ".Supplier.") {
		return fmt.Errorf("supplier: %w", sentinel)
	}
	if fe.Tag() == "required" {
		return fmt.Errorf("%w: %s is empty", sentinel, fe.Field())
	}
	return sentinel
}

var emailValidator = validation.New()

// ValidEmail performs the e-mail check of the sign-up form.
func ValidEmail(email string) bool {
	return emailValidator.Var(email, "required,email") == nil
}

// ValidCPF verifies the two check digits of a Brazilian CPF. Punctuation is
// ignored.
func ValidCPF(cpf string) bool {
	d := validation.OnlyDigits(cpf)
	if len(d) != 11 || repeated(d) {
		return false
	}
	return cpfCheckDigit(d[:9], 10) == d[9] && cpfCheckDigit(d[:10], 11) == d[10]
}

func cpfCheckDigit(digits string, weight int) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	check := (sum * 10) % 11
	if check == 10 {
		check = 0
	}
	return byte('0' + check)
}

// ValidCNPJ verifies the two check digits of a Brazilian CNPJ.
func ValidCNPJ(cnpj string) bool {
	d := validation.OnlyDigits(cnpj)
	if len(d) != 14 || repeated(d) {
		return false
	}
	first := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	second := append([]int{6}, first...)
	return cnpjCheckDigit(d[:12], first) == d[12] && cnpjCheckDigit(d[:13], second) == d[13]
}

func cnpjCheckDigit(digits string, weights []int) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * weights[i]
	}
	rest := sum % 11
	if rest < 2 {
		return '0'
	}
	return byte('0' + 11 - rest)
}

// NormalisePhone renders a phone number in the +55DDNNNNNNNN form the API
// expects. Local numbers (area code plus number) get the country code.
func NormalisePhone(phone string) string {
	d := validation.OnlyDigits(phone)
	if d == "" {
		return ""
	}
	if len(d) >= 10 && len(d) <= 11 && !strings.HasPrefix(d, "55") {
		d = "55" + d
	}
	return "+" + d
}

func repeated(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}
