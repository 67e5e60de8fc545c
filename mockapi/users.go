package mockapi

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleCustomer = "customer"
	RoleSupplier = "supplier"
)

type user struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	CPF          string
	BirthDate    string
	ReceiveNews  bool
	Picture      string
	Roles        []string
	Favorites    []int64
	DateJoined   time.Time
}

// userResponse is the user object embedded in login responses.
type userResponse struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Picture       string   `json:"picture,omitempty"`
	EmailVerified bool     `json:"email_verified,omitempty"`
	Roles         []string `json:"roles,omitempty"`
}

func (u *user) response() userResponse {
	return userResponse{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Picture: u.Picture,
		Roles:   append([]string(nil), u.Roles...),
	}
}

type supplier struct {
	ID             int64  `json:"id"`
	OwnerID        int64  `json:"ownerId"`
	Name           string `json:"name"`
	CNPJ           string `json:"cnpj"`
	BankDataURL    string `json:"dbUrl"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	CommissionRate string `json:"commissionRate"`
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
