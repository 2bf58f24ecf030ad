package mail

import (
	"errors"
	"fmt"
)

type ErrInvalidMessage struct{ Reason string }

func (e ErrInvalidMessage) Error() string { return "invalid email message: " + e.Reason }

type ErrUnknownProvider struct{ Name string }

func (e ErrUnknownProvider) Error() string { return fmt.Sprintf("unknown mail provider %q", e.Name) }

// ErrSend wraps a provider failure. Err carries the provider's own message.
type ErrSend struct {
	Provider string
	Err      error
}

func (e ErrSend) Error() string { return fmt.Sprintf("email send failed (%s): %v", e.Provider, e.Err) }
func (e ErrSend) Unwrap() error { return e.Err }

// ProviderMessage returns the provider's message for err, without the
// ErrSend prefix.
func ProviderMessage(err error) string {
	var se ErrSend
	if errors.As(err, &se) && se.Err != nil {
		return se.Err.Error()
	}
	return err.Error()
}
