// Package apperr clasifica los errores de la tienda para que la capa HTTP
// decida el código de respuesta sin inspeccionar mensajes.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindStorage
	KindTransport
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "internal"
}

// Error lleva un mensaje apto para el usuario (Msg) y la causa técnica (Err).
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Msg: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Msg: msg} }

func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Msg: "error de almacenamiento", Err: err}
}

func Transport(msg string, err error) *Error {
	return &Error{Kind: KindTransport, Msg: msg, Err: err}
}

// KindOf devuelve KindInternal para errores que no son *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message devuelve el texto público del error; nunca expone la causa técnica.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return "error interno"
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
