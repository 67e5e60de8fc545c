package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/validation"
	"github.com/jrsteele09/go-storefront/token"
)

// UserID accepts both the numeric ids of the storefront API and string ids
// issued by federated providers.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("user id %s: not an integer", n)
	}
	*id = UserID(n.String())
	return nil
}

// User is the signed-in customer as reported by the API.
type User struct {
	ID            UserID   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Picture       string   `json:"picture,omitempty"`
	EmailVerified bool     `json:"email_verified,omitempty"`
	Roles         []string `json:"roles,omitempty"`
}

// userFromClaims is used when the login response carries no user object.
func userFromClaims(c token.Claims) User {
	return User{
		ID:    UserID(c.Subject),
		Name:  c.Name,
		Email: c.Email,
		Roles: c.Roles,
	}
}

// LoginResponse is the body of /auth/login and /auth/firebase.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

func (r LoginResponse) validate() error {
	if r.AccessToken == "" || r.RefreshToken == "" {
		return storeerrors.Wrapf(storeerrors.ErrMalformedResponse, "login response without token pair")
	}
	return nil
}

func (r LoginResponse) pair() token.Pair {
	return token.Pair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

const birthDateLayout = "2006-01-02"

// Registration describes a new customer account.
type Registration struct {
	Name            string    `validate:"notblank"`
	Email           string    `validate:"required,email"`
	Password        string    `validate:"min=6"`
	ConfirmPassword string    `validate:"eqfield=Password"`
	Phone           string    `validate:"phone"`
	CPF             string    `validate:"cpf"`
	BirthDate       time.Time `validate:"birthdate"`
	ReceiveNews     bool
	AcceptTerms     bool `validate:"eq=true"`
}

type registrationPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	CPF         string `json:"cpf"`
	BirthDate   string `json:"birthDate"`
	ReceiveNews bool   `json:"receiveNews"`
}

func (r Registration) payload() registrationPayload {
	return registrationPayload{
		Name:        r.Name,
		Email:       r.Email,
		Password:    r.Password,
		Phone:       NormalisePhone(r.Phone),
		CPF:         validation.OnlyDigits(r.CPF),
		BirthDate:   r.BirthDate.Format(birthDateLayout),
		ReceiveNews: r.ReceiveNews,
	}
}

// ParseBirthDate reads the DD/MM/YYYY form used by the storefront.
func ParseBirthDate(s string) (time.Time, error) {
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", InvalidBirthDateErr, s)
	}
	return t, nil
}

// Supplier is the company half of a supplier registration.
type Supplier struct {
	Name           string `json:"name" validate:"notblank"`
	CNPJ           string `json:"cnpj" validate:"cnpj"`
	BankDataURL    string `json:"dbUrl" validate:"omitempty,url"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"phone"`
	CommissionRate string `json:"commissionRate"`
}

// SupplierRegistration creates a supplier together with its owning user.
type SupplierRegistration struct {
	Supplier Supplier
	User     Registration
}

type supplierPayload struct {
	Supplier Supplier            `json:"supplier"`
	User     registrationPayload `json:"user"`
}

func (r SupplierRegistration) payload() supplierPayload {
	s := r.Supplier
	s.CNPJ = validation.OnlyDigits(s.CNPJ)
	s.Phone = NormalisePhone(s.Phone)
	return supplierPayload{Supplier: s, User: r.User.payload()}
}
