package mockapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type federatedRequest struct {
	IDToken string `json:"idToken"`
}

type loginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         userResponse `json:"user"`
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	CPF         string `json:"cpf"`
	BirthDate   string `json:"birthDate"`
	ReceiveNews bool   `json:"receiveNews"`
}

type supplierRequest struct {
	Supplier supplier        `json:"supplier"`
	User     registerRequest `json:"user"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeBody(w, r, &req) {
			return
		}
		u, ok := s.store.userByEmail(req.Email)
		if !ok || !CheckPasswordHash(req.Password, u.PasswordHash) {
			writeError(w, http.StatusUnauthorized, "Bad credentials")
			return
		}
		s.writeLogin(w, u)
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if !decodeBody(w, r, &req) {
			return
		}
		pair, u, err := s.tokens.rotate(req.RefreshToken, s.store.userByID)
		if err != nil {
			log.Debug().Err(err).Msg("refresh rejected")
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: u.response()})
	}
}

// FederatedLoginHandler signs in (and on first use registers) the owner of a
// verified Google ID token.
func (s *Server) FederatedLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.verifier == nil {
			writeError(w, http.StatusNotImplemented, "federated login is not configured")
			return
		}
		var req federatedRequest
		if !decodeBody(w, r, &req) {
			return
		}
		id, err := s.verifier.Verify(r.Context(), req.IDToken)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid id token")
			return
		}

		u, ok := s.store.userByEmail(id.Email)
		if !ok {
			// The random password is never disclosed; the account signs in
			// through the provider only.
			hash, err := HashPassword(uuid.NewString())
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			u, err = s.store.createUser(user{
				Name:         id.Name,
				Email:        id.Email,
				PasswordHash: hash,
				Picture:      id.Picture,
				Roles:        []string{RoleCustomer},
			})
			if err != nil {
				writeStoreError(w, err)
				return
			}
		}
		s.writeLogin(w, u)
	}
}

func (s *Server) writeLogin(w http.ResponseWriter, u *user) {
	pair, err := s.tokens.issue(u)
	if err != nil {
		log.Err(err).Msg("failed to issue tokens")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: u.response()})
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeBody(w, r, &req) {
			return
		}
		u, err := s.createAccount(req, RoleCustomer)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, u.response())
	}
}

func (s *Server) RegisterSupplierHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req supplierRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Supplier.Name) == "" || req.Supplier.CNPJ == "" {
			writeError(w, http.StatusBadRequest, "supplier name and cnpj are required")
			return
		}
		u, err := s.createAccount(req.User, RoleCustomer, RoleSupplier)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		sp := req.Supplier
		sp.OwnerID = u.ID
		writeJSON(w, http.StatusCreated, s.store.createSupplier(sp))
	}
}

func (s *Server) createAccount(req registerRequest, roles ...string) (*user, error) {
	if strings.TrimSpace(req.Name) == "" || !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("%w: name and a valid email are required", errInvalidInput)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: password must have at least 6 characters", errInvalidInput)
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return s.store.createUser(user{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		CPF:          req.CPF,
		BirthDate:    req.BirthDate,
		ReceiveNews:  req.ReceiveNews,
		Roles:        roles,
	})
}
