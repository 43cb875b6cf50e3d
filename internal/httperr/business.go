package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindUnauthorized    Kind = "unauthorized"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
)

// BusinessError is an expected failure of a single call. It is terminal for
// that call and safe to show to the client.
type BusinessError struct {
	Kind Kind
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(kind Kind, code string) error {
	return BusinessError{Kind: kind, Code: code}
}

func Validation(code string) error      { return ErrBusiness(KindValidation, code) }
func Unauthenticated(code string) error { return ErrBusiness(KindUnauthenticated, code) }
func Unauthorized(code string) error    { return ErrBusiness(KindUnauthorized, code) }
func NotFound(code string) error        { return ErrBusiness(KindNotFound, code) }
func Conflict(code string) error        { return ErrBusiness(KindConflict, code) }

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func IsKind(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

// IsUniqueViolation reports whether err carries a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
