package domain

import "errors"

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrAlreadySettled = errors.New("checkout already settled")
	ErrNotFound       = errors.New("checkout not found")
)
