package cart

import (
	"context"
	"fmt"
	"time"

	storeerrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/jrsteele09/go-storefront/internal/validation"
)

// Address is the delivery address collected in the first checkout step.
type Address struct {
	Name       string `json:"name" validate:"notblank"`
	Street     string `json:"street" validate:"notblank"`
	Number     string `json:"number" validate:"notblank"`
	District   string `json:"district" validate:"notblank"`
	City       string `json:"city" validate:"notblank"`
	State      string `json:"state" validate:"notblank"`
	PostalCode string `json:"postalCode" validate:"cep"`
}

var addressValidator = validation.New()

// Validate checks that every field is filled and that the postal code has
// eight digits once punctuation is stripped (e.g. "01310-100").
func (a Address) Validate() error {
	err := addressValidator.Struct(a)
	if err == nil {
		return nil
	}
	fe, ok := validation.FirstError(err)
	if !ok {
		return fmt.Errorf("%w: %w", storeerrors.ErrInvalidAddress, err)
	}
	if fe.Tag() == "cep" {
		return fmt.Errorf("%w: postal code %q", storeerrors.ErrInvalidAddress, a.PostalCode)
	}
	return fmt.Errorf("%w: %s is required", storeerrors.ErrInvalidAddress, fe.Field())
}

// NormalisePostalCode keeps only the digits of code.
func NormalisePostalCode(code string) string {
	return validation.OnlyDigits(code)
}

// Checkout is the confirmed order summary shown on the confirmation step.
type Checkout struct {
	OrderID    int64
	Lines      []Line
	Total      float64
	Address    Address
	CapturedAt time.Time
}

// Checkout re-reads the pending order so the summary uses the server's current
// prices, then captures it together with the delivery address.
func (e *Engine) Checkout(ctx context.Context, address Address) (Checkout, error) {
	if err := address.Validate(); err != nil {
		return Checkout{}, err
	}
	if err := e.Fetch(ctx); err != nil {
		return Checkout{}, err
	}

	snap := e.Snapshot()
	if snap.OrderID == nil || len(snap.Items) == 0 {
		return Checkout{}, storeerrors.ErrEmptyCart
	}
	address.PostalCode = NormalisePostalCode(address.PostalCode)
	return Checkout{
		OrderID:    utils.Value(snap.OrderID),
		Lines:      snap.Items,
		Total:      snap.Total(),
		Address:    address,
		CapturedAt: time.Now().UTC(),
	}, nil
}
