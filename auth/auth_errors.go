package auth

import "errors"

var (
	MissingNameErr            = errors.New("name is required")
	InvalidEmailErr           = errors.New("invalid email")
	InvalidCPFErr             = errors.New("invalid cpf")
	InvalidCNPJErr            = errors.New("invalid cnpj")
	InvalidPhoneErr           = errors.New("invalid phone number")
	InvalidBirthDateErr       = errors.New("invalid birth date")
	WeakPasswordErr           = errors.New("password must have at least 6 characters")
	PasswordsDontMatchErr     = errors.New("passwords do not match")
	TermsNotAcceptedErr       = errors.New("terms of use not accepted")
	InvalidBankDataURLErr     = errors.New("invalid bank data url")
	FederatedLoginDisabledErr = errors.New("federated login is not configured")
)
