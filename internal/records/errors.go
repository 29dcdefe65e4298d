package records

import "github.com/cockroachdb/errors"

var (
	// ErrMissingID is returned when an operation that needs an identifier is started without one.
	ErrMissingID = errors.New("missing record identifier")
	// ErrBusy is returned when the same operation is already in flight on the controller.
	ErrBusy = errors.New("operation already in progress")
	// ErrSuperseded is returned when a response arrives after a newer one was applied.
	ErrSuperseded = errors.New("response superseded by a newer operation")
	// ErrActivationUnsupported is returned when toggling a record type without activation.
	ErrActivationUnsupported = errors.New("record type has no activation toggle")
	// ErrUnknownField is returned when editing a field the schema does not define.
	ErrUnknownField = errors.New("unknown record field")
)
