package profile

import (
	"errors"
	"fmt"
)

// Error exposes methods useful for categorizing profile errors.
type Error interface {
	error

	// Temporary returns true if retrying the call may succeed without any change on the
	// caller's side, for example when the transport rejected an operation because another one
	// was still in flight.
	Temporary() bool

	// InvalidArgument returns true if the caller violated the API contract. Such errors are
	// programming errors and retrying will never succeed.
	InvalidArgument() bool
}

var (
	// ErrNoDevice indicates Connect was called without a device address.
	ErrNoDevice = NewError("no device specified", false, false)
	// ErrNotConnected indicates the profile does not hold a link. Call Connect first.
	ErrNotConnected = NewError("profile is not connected to a device", false, false)
	// ErrServiceNotFound indicates the peer does not expose the profile's service, or that
	// service discovery has not completed yet.
	ErrServiceNotFound = NewError("service not found on device", false, true)
	// ErrCharacteristicNotFound indicates the profile's service lacks a required characteristic.
	ErrCharacteristicNotFound = NewError("characteristic not found in service", false, false)
	// ErrDescriptorNotFound indicates a characteristic lacks a required descriptor.
	ErrDescriptorNotFound = NewError("descriptor not found on characteristic", false, false)
	// ErrTransport wraps errors returned by the transport when it rejects an operation.
	ErrTransport = NewError("transport rejected operation", false, true)
	// ErrUnsupported indicates an operation that belongs to the adapter-wide connection
	// manager rather than to a single-device profile.
	ErrUnsupported = NewError("operation not supported by profile; query the transport manager instead", false, false)
)

type ProfileError struct {
	Err               error
	PossibleTemporary bool
	Invalid           bool
}

func NewError(message string, invalidArgument bool, temporary bool) error {
	return &ProfileError{Err: errors.New(message), Invalid: invalidArgument, PossibleTemporary: temporary}
}

func (e *ProfileError) Error() string {
	return e.Err.Error()
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

func (e *ProfileError) Temporary() bool {
	return e.PossibleTemporary
}

func (e *ProfileError) InvalidArgument() bool {
	return e.Invalid
}

// Temporary returns true if err (or an error it wraps) is an Error indicating that retrying
// might succeed.
func Temporary(err error) bool {
	var profileErr Error
	if errors.As(err, &profileErr) {
		return profileErr.Temporary()
	}
	return false
}

// IsInvalidArgument returns true if err (or an error it wraps) reports a caller contract
// violation.
func IsInvalidArgument(err error) bool {
	var profileErr Error
	if errors.As(err, &profileErr) {
		return profileErr.InvalidArgument()
	}
	return false
}

// TransportError wraps an error returned by the transport when it rejects op, so that
// errors.Is matches both ErrTransport and the underlying cause.
func TransportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}
