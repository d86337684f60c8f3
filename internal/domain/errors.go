package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports every missing or malformed field at once so the
// operator can fix the whole form in one pass.
type ValidationError struct {
	Fields []string
}

func (e ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "datos del ticket incompletos"
	}
	return "campos faltantes o inválidos: " + strings.Join(e.Fields, ", ")
}

// InvalidTransitionError is raised when an operation is attempted from a
// state that does not permit it.
type InvalidTransitionError struct {
	From      TicketState
	Attempted string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición %q no permitida desde estado %s", e.Attempted, e.From)
}

// AlreadyCancelledError is the specific cancel-twice case.
type AlreadyCancelledError struct{}

func (e AlreadyCancelledError) Error() string { return "el ticket ya está anulado" }

// NotAuthenticatedError is raised by Generate when no operator identity is
// present. Checked before field validation.
type NotAuthenticatedError struct{}

func (e NotAuthenticatedError) Error() string { return "operador no autenticado" }

// ConfirmationRequiredError is raised when a destructive action (cancel,
// reset) runs without the operator's yes/no confirmation.
type ConfirmationRequiredError struct {
	Action string
}

func (e ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("la acción %q requiere confirmación del operador", e.Action)
}

// PersistenceClass distinguishes store failures the caller can act on.
type PersistenceClass string

const (
	PersistenceTransient  PersistenceClass = "transient"
	PersistencePermission PersistenceClass = "permission"
	PersistenceUnknown    PersistenceClass = "unknown"
)

// PersistenceError wraps a store failure after classification (and, for
// transient failures, after retry exhaustion).
type PersistenceError struct {
	Class PersistenceClass
	Err   error
}

func (e PersistenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fallo de persistencia (%s)", e.Class)
	}
	return fmt.Sprintf("fallo de persistencia (%s): %v", e.Class, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// NotReadyError means the store never became ready within the bridge's bound.
type NotReadyError struct{}

func (e NotReadyError) Error() string { return "la base de datos no está lista" }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "no encontrado"
	}
	return fmt.Sprintf("%s no encontrado", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target InvalidTransitionError
	return errors.As(err, &target)
}

func IsAlreadyCancelled(err error) bool {
	var target AlreadyCancelledError
	return errors.As(err, &target)
}

func IsNotAuthenticated(err error) bool {
	var target NotAuthenticatedError
	return errors.As(err, &target)
}

func IsConfirmationRequired(err error) bool {
	var target ConfirmationRequiredError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target PersistenceError
	return errors.As(err, &target)
}

// PersistenceClassOf returns the class of a persistence error, or
// PersistenceUnknown when err is not one.
func PersistenceClassOf(err error) PersistenceClass {
	var target PersistenceError
	if errors.As(err, &target) {
		return target.Class
	}
	return PersistenceUnknown
}

func IsNotReady(err error) bool {
	var target NotReadyError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}
