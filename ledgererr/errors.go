// Package ledgererr defines the typed error kinds from spec §7, each mapping
// to exactly one HTTP status code, in the wrapped-error idiom the teacher uses
// throughout ledger.go/transactions.go ("fmt.Errorf(...: %w", err)").
package ledgererr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one of the error categories from spec §7.
type Kind int

const (
	// Validation covers missing/malformed fields, negative quantities, a
	// non-positive split ratio, or an unknown event type.
	Validation Kind = iota
	// Legality covers a replay that would drive shares negative, including a
	// sell attempted before any holdings exist.
	Legality
	// Duplicate covers a colliding externalId on the same account.
	Duplicate
	// NotFound covers an unknown id on read/edit/delete.
	NotFound
	// DependencyFailure covers an unavailable FX provider or store.
	DependencyFailure
	// Internal covers an unexpected invariant violation.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "ValidationError"
	case Legality:
		return "LegalityError"
	case Duplicate:
		return "DuplicateError"
	case NotFound:
		return "NotFound"
	case DependencyFailure:
		return "DependencyFailure"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Status returns the HTTP status code spec §7 maps this kind to.
func (k Kind) Status() int {
	switch k {
	case Validation, Legality:
		return http.StatusBadRequest
	case Duplicate:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case DependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a Kind-tagged error that wraps an underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validationf builds a Validation error.
func Validationf(format string, args ...any) *Error { return newf(Validation, format, args...) }

// Legalityf builds a Legality error.
func Legalityf(format string, args ...any) *Error { return newf(Legality, format, args...) }

// Duplicatef builds a Duplicate error.
func Duplicatef(format string, args ...any) *Error { return newf(Duplicate, format, args...) }

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...any) *Error { return newf(NotFound, format, args...) }

// Wrap builds an error of the given kind wrapping an underlying cause, such as
// a collaborator failure (FX provider, store) or an internal failure.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// As extracts a *Error from err, the way callers in the api package pick the
// status code to return.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
