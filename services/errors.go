package services

import "errors"

var (
	// ErrCorruptState marks persisted JSON that could not be decoded. Callers
	// treat the value as absent.
	ErrCorruptState = errors.New("corrupt persisted state")

	ErrNotAtPayment         = errors.New("checkout is not at the payment step")
	ErrPaymentIncomplete    = errors.New("payment details are incomplete")
	ErrSettlementInProgress = errors.New("payment is already being processed")
	ErrEmptyCart            = errors.New("cart is empty")
)
