// file: internals/helpers/errs/errs.go
package errs

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind memetakan kategori error domain ke HTTP status.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindPermissionDenied
	KindConflict
	KindMissingUtilityData
	KindPersistence
)

type Error struct {
	Kind    Kind
	Message string
	Err     error

	// Details diisi oleh operasi bulk (daftar error per baris).
	Details []string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindMissingUtilityData:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindPermissionDenied:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

/* =========================
   Constructors
   ========================= */

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// MissingUtilityData: hard stop — penagihan tanpa data meter dilarang.
func MissingUtilityData(contractID, roomID uint, month string) *Error {
	return &Error{
		Kind: KindMissingUtilityData,
		Message: fmt.Sprintf(
			"Belum ada data utility_usage untuk kontrak %d (kamar %d) di bulan %s. Silakan input angka meter listrik/air dulu.",
			contractID, roomID, month,
		),
	}
}

// Persist membungkus error database; pesan internal tidak bocor ke caller.
func Persist(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: "Kesalahan basis data", Err: fmt.Errorf("%s: %w", op, err)}
}

// Bulk menggabungkan error per entry (index 1-based) menjadi satu error validasi.
func Bulk(details []string) *Error {
	return &Error{Kind: KindValidation, Message: "Validasi batch gagal", Details: details}
}

/* =========================
   Inspection helpers
   ========================= */

func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsMissingUtilityData(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindMissingUtilityData
}

func IsConflict(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindConflict
}

func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}
