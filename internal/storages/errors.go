package storages

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrTripExists        = errors.New("trip with the same route already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidRate       = errors.New("rate must be positive")
)
