package services

import (
	"errors"
	"fmt"

	"github.com/recaudoseguro/recaudo-api/internal/lending"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/internal/statemachine"
	"gorm.io/gorm"
)

// ErrorKind classifies service failures for the transport layer
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindIneligible    ErrorKind = "ineligible"
	KindConfiguration ErrorKind = "configuration"
	KindConcurrency   ErrorKind = "concurrency"
	KindNotFound      ErrorKind = "not_found"
	KindForbidden     ErrorKind = "forbidden"
	KindUnauthorized  ErrorKind = "unauthorized"
	KindInternal      ErrorKind = "internal"
)

// AppError is a service error carrying a user-facing message and its kind
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common service errors
var (
	ErrNotFound        = &AppError{Kind: KindNotFound, Message: "registro no encontrado"}
	ErrUnauthorized    = &AppError{Kind: KindUnauthorized, Message: "no autorizado"}
	ErrForbidden       = &AppError{Kind: KindForbidden, Message: "no tiene permiso sobre este recurso"}
	ErrInvalidPassword = &AppError{Kind: KindValidation, Message: "contraseña inválida"}
	ErrConcurrent      = &AppError{Kind: KindConcurrency, Message: "el crédito fue modificado por otra operación, intente de nuevo"}
)

func newError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func notFound(entity string) *AppError {
	return &AppError{Kind: KindNotFound, Message: entity + " no encontrado", Err: ErrNotFound}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors
func KindOf(err error) ErrorKind {
	var appErr *AppError
	var dup *repository.DuplicateError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &appErr):
		return appErr.Kind
	case lending.IsValidation(err), errors.As(err, &dup):
		return KindValidation
	case lending.IsIneligible(err), statemachine.IsTransitionError(err):
		return KindIneligible
	case lending.IsConfiguration(err):
		return KindConfiguration
	case errors.Is(err, repository.ErrStaleVersion):
		return KindConcurrency
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	}
	return KindInternal
}

// IsKind reports whether err is of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// wrapErr turns engine and repository errors into an AppError that keeps the
// original error reachable through errors.Is/As
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	var te *statemachine.TransitionError
	switch kind := KindOf(err); kind {
	case KindConcurrency:
		return &AppError{Kind: kind, Message: ErrConcurrent.Message, Err: err}
	case KindNotFound:
		return &AppError{Kind: kind, Message: ErrNotFound.Message, Err: err}
	case KindIneligible:
		if errors.As(err, &te) {
			return &AppError{Kind: kind, Message: fmt.Sprintf("operación no permitida para un crédito en estado %s", te.From), Err: err}
		}
		return &AppError{Kind: kind, Message: err.Error(), Err: err}
	case KindInternal:
		return err
	default:
		return &AppError{Kind: kind, Message: err.Error(), Err: err}
	}
}
