package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoItems             = errors.New("no_items")
	ErrInvalidDeliveryDate = errors.New("invalid_delivery_date")
	ErrInvalidOrderNumber  = errors.New("invalid_order_number")
	ErrInvalidItem         = errors.New("invalid_item")
	ErrNotFound            = errors.New("not_found")
)

// ValidationError is a local check that failed before anything was sent to
// the backend. Message is safe to show to the user.
type ValidationError struct {
	Field   string
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error, message string) error {
	return &ValidationError{Field: field, Err: err, Message: message}
}

// NoItems rejects an order without lines.
func NoItems() error {
	return invalid("lines", ErrNoItems, "No items in the order.")
}

func PastDeliveryDate(item string) error {
	return invalid("delivery_date", ErrInvalidDeliveryDate, "Delivery date for "+item+" must be today or later.")
}

func MissingOrderNumber() error {
	return invalid("order_number", ErrInvalidOrderNumber, "Order number is required.")
}

func MissingItem(row int) error {
	return invalid("item_code", ErrInvalidItem, fmt.Sprintf("Select an item for row %d.", row))
}
