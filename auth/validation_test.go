package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront/auth"
	"github.com/stretchr/testify/require"
)

func TestValidCPF(t *testing.T) {
	require.True(t, auth.ValidCPF("529.982.247-25"))
	require.True(t, auth.ValidCPF("52998224725"))
	require.False(t, auth.ValidCPF("529.982.247-24"))
	require.False(t, auth.ValidCPF("111.111.111-11"))
	require.False(t, auth.ValidCPF("1234"))
	require.False(t, auth.ValidCPF(""))
}

func TestValidCNPJ(t *testing.T) {
	require.True(t, auth.ValidCNPJ("11.222.333/0001-81"))
	require.False(t, auth.ValidCNPJ("11.222.333/0001-80"))
	require.False(t, auth.ValidCNPJ("00000000000000"))
	require.False(t, auth.ValidCNPJ("112223330001"))
}

func TestNormalisePhone(t *testing.T) {
	require.Equal(t, "+5511999998888", auth.NormalisePhone("(11) 99999-8888"))
	require.Equal(t, "+551133334444", auth.NormalisePhone("11 3333-4444"))
	require.Equal(t, "+5511999998888", auth.NormalisePhone("+55 11 99999-8888"))
	require.Equal(t, "", auth.NormalisePhone("--"))
}

func TestParseBirthDate(t *testing.T) {
	d, err := auth.ParseBirthDate("17/05/1990")
	require.NoError(t, err)
	require.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), d)

	_, err = auth.ParseBirthDate("1990-05-17")
	require.ErrorIs(t, err, auth.InvalidBirthDateErr)
}

func TestValidator_ValidateRegistration(t *testing.T) {
	v := auth.NewValidator().WithClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.ValidateRegistration(validRegistration()))
	})

	cases := []struct {
		name   string
		mutate func(*auth.Registration)
		want   error
	}{
		{"missing name", func(r *auth.Registration) { r.Name = "  " }, auth.MissingNameErr},
		{"bad email", func(r *auth.Registration) { r.Email = "ana.example.com" }, auth.InvalidEmailErr},
		{"bad cpf", func(r *auth.Registration) { r.CPF = "529.982.247-20" }, auth.InvalidCPFErr},
		{"short phone", func(r *auth.Registration) { r.Phone = "9999-8888" }, auth.InvalidPhoneErr},
		{"missing birth date", func(r *auth.Registration) { r.BirthDate = time.Time{} }, auth.InvalidBirthDateErr},
		{"born before 1900", func(r *auth.Registration) { r.BirthDate = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC) }, auth.InvalidBirthDateErr},
		{"born in the future", func(r *auth.Registration) { r.BirthDate = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }, auth.InvalidBirthDateErr},
		{"short password", func(r *auth.Registration) { r.Password, r.ConfirmPassword = "12345", "12345" }, auth.WeakPasswordErr},
		{"confirmation differs", func(r *auth.Registration) { r.ConfirmPassword = "other-secret" }, auth.PasswordsDontMatchErr},
		{"terms not accepted", func(r *auth.Registration) { r.AcceptTerms = false }, auth.TermsNotAcceptedErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validRegistration()
			tc.mutate(&r)
			require.ErrorIs(t, v.ValidateRegistration(r), tc.want)
		})
	}
}

func TestValidator_ValidateSupplier(t *testing.T) {
	v := auth.NewValidator().WithClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })
	r := auth.SupplierRegistration{
		Supplier: auth.Supplier{
			Name:           "Ana Doces LTDA",
			CNPJ:           "11.222.333/0001-81",
			Email:          "contato@anadoces.com.br",
			Phone:          "(11) 3333-4444",
			CommissionRate: "10",
		},
		User: validRegistration(),
	}
	require.NoError(t, v.ValidateSupplier(r))

	r.Supplier.CNPJ = "11.222.333/0001-82"
	require.ErrorIs(t, v.ValidateSupplier(r), auth.InvalidCNPJErr)

	r.Supplier.CNPJ = "11.222.333/0001-81"
	r.User.CPF = ""
	require.ErrorIs(t, v.ValidateSupplier(r), auth.InvalidCPFErr)
}

func TestUserIDAcceptsNumbersAndStrings(t *testing.T) {
	var u auth.User
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42}`), &u))
	require.Equal(t, auth.UserID("42"), u.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "g-1"}`), &u))
	require.Equal(t, auth.UserID("g-1"), u.ID)

	require.Error(t, json.Unmarshal([]byte(`{"id": 4.5}`), &u))
	require.Error(t, json.Unmarshal([]byte(`{"id": true}`), &u))
}

func TestValidator_ValidateCredentials(t *testing.T) {
	v := auth.NewValidator()
	require.NoError(t, v.ValidateCredentials(auth.Credentials{Email: "ana@example.com", Password: "x"}))
	require.ErrorIs(t, v.ValidateCredentials(auth.Credentials{Email: "ana@", Password: "x"}), auth.InvalidEmailErr)

	err := v.ValidateCredentials(auth.Credentials{Email: "ana@example.com"})
	require.ErrorIs(t, err, auth.WeakPasswordErr)
	require.Contains(t, err.Error(), "password is empty")
}

func TestValidator_SupplierErrorsArePrefixed(t *testing.T) {
	v := auth.NewValidator().WithClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })
	r := auth.SupplierRegistration{
		Supplier: auth.Supplier{
			Name:  "Ana Doces LTDA",
			CNPJ:  "11.222.333/0001-81",
			Email: "contato-anadoces",
			Phone: "(11) 3333-4444",
		},
		User: validRegistration(),
	}
	err := v.ValidateSupplier(r)
	require.ErrorIs(t, err, auth.InvalidEmailErr)
	require.Contains(t, err.Error(), "supplier:")

	r.Supplier.Email = "contato@anadoces.com.br"
	r.Supplier.BankDataURL = "not a url"
	require.ErrorIs(t, v.ValidateSupplier(r), auth.InvalidBankDataURLErr)

	r.Supplier.BankDataURL = "https://bank.example.com/acc/1"
	require.NoError(t, v.ValidateSupplier(r))
}

func TestValidEmail(t *testing.T) {
	require.True(t, auth.ValidEmail("ana@example.com"))
	require.False(t, auth.ValidEmail("ana.example.com"))
	require.False(t, auth.ValidEmail(""))
}
