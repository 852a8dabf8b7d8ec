package httperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidTransition
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalidTransition:
		return "invalid_transition"
	default:
		return "fatal"
	}
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindInvalidTransition:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e BusinessError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// ErrBusiness builds a validation error carrying only a code.
func ErrBusiness(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func New(kind Kind, code, message string) error {
	return BusinessError{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) error {
	return New(KindValidation, code, message)
}

func NotFoundErr(code, message string) error {
	return New(KindNotFound, code, message)
}

func Forbidden(code, message string) error {
	return New(KindForbidden, code, message)
}

func Conflict(code, message string) error {
	return New(KindConflict, code, message)
}

func InvalidTransition(code, message string) error {
	return New(KindInvalidTransition, code, message)
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// KindOf returns KindFatal for anything that is not a BusinessError.
func KindOf(err error) Kind {
	var be BusinessError
	if errors.As(err, &be) && be.Kind != 0 {
		return be.Kind
	}
	return KindFatal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
