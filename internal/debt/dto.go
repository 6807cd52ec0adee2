package debt

import "errors"

type PaymentDTO struct {
	AmountCents     int64  `json:"amount_cents"`
	PaymentMethod   string `json:"payment_method,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

func (dto PaymentDTO) Validate() error {
	if dto.AmountCents <= 0 {
		return errors.New("payment amount must be positive")
	}
	return nil
}

func (dto PaymentDTO) Method() string {
	if dto.PaymentMethod == "" {
		return DefaultPaymentMethod
	}
	return dto.PaymentMethod
}

// SettleFullDTO settles whatever balance remains; the amount is computed
// from the debt itself.
type SettleFullDTO struct {
	PaymentMethod   string `json:"payment_method,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

func (dto SettleFullDTO) Method() string {
	if dto.PaymentMethod == "" {
		return DefaultPaymentMethod
	}
	return dto.PaymentMethod
}
