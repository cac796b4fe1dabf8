package infra

import (
	"errors"
	"fmt"
)

// Email is a single HTML message to one recipient.
type Email struct {
	ToName  string
	ToEmail string
	Subject string
	HTML    string
}

// ErrDestinatarioVacio is reported when a recipient address is blank.
var ErrDestinatarioVacio = errors.New("email destino vacío")

// DeliveryFailure is a non-fatal per-recipient delivery error.
type DeliveryFailure struct {
	Destinatario string
	Status       string // provider status, when one was returned
	Err          error
}

func (e *DeliveryFailure) Error() string {
	switch {
	case e.Err != nil && e.Status != "":
		return fmt.Sprintf("mail: delivery to %s failed (status %q): %v", e.Destinatario, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("mail: delivery to %s failed: %v", e.Destinatario, e.Err)
	default:
		return fmt.Sprintf("mail: delivery to %s failed (status %q)", e.Destinatario, e.Status)
	}
}

func (e *DeliveryFailure) Unwrap() error { return e.Err }
