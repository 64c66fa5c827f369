package termination

import (
	"errors"
	"fmt"
	"time"
)

// Kind distinguishes the termination failure modes.
type Kind string

const (
	KindAlreadyInactive      Kind = "already_inactive"
	KindAlreadyTerminated    Kind = "already_terminated"
	KindDateBeforeStart      Kind = "invalid_date_before_start"
	KindDateBeyondLastPeriod Kind = "invalid_date_beyond_last_period"
)

// Error is a termination precondition or validation failure. The reason is a
// user-facing Spanish message; all validation errors are raised before any
// mutation.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

// AsError returns the typed termination error wrapped in err, or nil.
func AsError(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

func errAlreadyInactive() *Error {
	return &Error{Kind: KindAlreadyInactive, Reason: "El servicio ya está inactivo"}
}

func errAlreadyTerminated() *Error {
	return &Error{Kind: KindAlreadyTerminated, Reason: "El servicio ya ha sido finalizado anteriormente"}
}

func errDateBeforeStart(startDate time.Time) *Error {
	return &Error{
		Kind: KindDateBeforeStart,
		Reason: fmt.Sprintf("La fecha de finalización debe ser posterior al %s",
			startDate.Format("02/01/2006")),
	}
}

func errDateBeyondLastPeriod(maxDate time.Time) *Error {
	return &Error{
		Kind: KindDateBeyondLastPeriod,
		Reason: fmt.Sprintf("No puedes finalizar el servicio más allá del último período creado (%s). "+
			"Si necesitas extender el servicio, primero crea un nuevo período.",
			maxDate.Format("02/01/2006")),
	}
}
