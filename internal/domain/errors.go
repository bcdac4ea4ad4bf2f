package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrStoreUnavailable  = errors.New("almacenamiento no disponible")
	ErrRequestInProgress = errors.New("solicitud duplicada en curso")
)

// ValidationError campo obligatorio ausente o inválido. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// TransitionError acción no permitida desde el estado actual del comprobante.
// Siempre lleva la acción intentada y el estado encontrado.
type TransitionError struct {
	Action string
	Status string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no se puede ejecutar %q con estado %q", e.Action, e.Status)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// StoreError falla de persistencia o timeout; se propaga tal cual al caller.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// Unavailable envuelve un error del driver como StoreError.
// Los errores de dominio ya tipados se devuelven sin cambios.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
