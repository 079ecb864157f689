package domain

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("item not found")
	ErrItemNotAvailable  = errors.New("item not available")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPersistence       = errors.New("persistence failure")
)

// Error is a store failure whose Message is suitable for showing to the operator.
// Kind is one of the Err* sentinels and is matched through errors.Is.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(name string) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("%s is not in the inventory", capitalize(name))}
}

func ItemNotAvailable(name string) error {
	return &Error{Kind: ErrItemNotAvailable, Message: fmt.Sprintf("%s is not available in the store", capitalize(name))}
}

func InsufficientStock(name string) error {
	return &Error{Kind: ErrInsufficientStock, Message: fmt.Sprintf("Not enough %s available in the store", name)}
}

func InsufficientFunds(name string) error {
	return &Error{Kind: ErrInsufficientFunds, Message: fmt.Sprintf("Not enough money to purchase %s", name)}
}

func Persistence(message string, err error) error {
	return &Error{Kind: ErrPersistence, Message: message, Err: err}
}

// Message returns the operator-facing text of err, falling back to err.Error()
// for errors that did not originate in the store.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
