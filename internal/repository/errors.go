package repository

import (
	"errors"
	"fmt"

	"snp/internal/infra"
)

// StoreWriteError means the ticket was not persisted. Body carries the store's
// response text for diagnostics.
type StoreWriteError struct {
	Key    string
	Status int
	Body   string
	Err    error
}

func (e *StoreWriteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("Error al guardar el ticket %s (status %d): %s", e.Key, e.Status, e.Body)
	}
	return fmt.Sprintf("Error al guardar el ticket %s: %v", e.Key, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// StoreReadError means the ticket collection could not be read.
type StoreReadError struct {
	Status int
	Body   string
	Err    error
}

func (e *StoreReadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("Error al leer tickets (status %d): %s", e.Status, e.Body)
	}
	return fmt.Sprintf("Error al leer tickets: %v", e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

func writeError(key string, err error) error {
	var se *infra.HTTPStatusError
	if errors.As(err, &se) {
		return &StoreWriteError{Key: key, Status: se.Status, Body: se.Body, Err: err}
	}
	return &StoreWriteError{Key: key, Err: err}
}

func readError(err error) error {
	var se *infra.HTTPStatusError
	if errors.As(err, &se) {
		return &StoreReadError{Status: se.Status, Body: se.Body, Err: err}
	}
	return &StoreReadError{Err: err}
}
