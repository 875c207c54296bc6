package domain

import (
	"errors"
	"fmt"
)

var (
	ErrExpiredItem       = errors.New("item has expired")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnknownItem       = errors.New("unknown item")
)

type ExpiredItemError struct {
	ItemID ItemID
	Name   string
}

func (e *ExpiredItemError) Error() string {
	return fmt.Sprintf("product %s has expired", e.Name)
}

func (e *ExpiredItemError) Is(target error) bool { return target == ErrExpiredItem }

type InsufficientStockError struct {
	ItemID    ItemID
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.Name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
