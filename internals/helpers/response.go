package helper

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"kosku_backend/internals/helpers/errs"
)

// ✅ Success Response tanpa custom code (default 200)
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return SuccessWithCode(c, fiber.StatusOK, message, data)
}

// ✅ Success Response dengan custom code (contoh 201 untuk created)
func SuccessWithCode(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// ✅ Success + pagination (bentuk lama API: current_page/limit/total_records/total_pages)
func SuccessWithPagination(c *fiber.Ctx, message string, data interface{}, p Pagination) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"code":       fiber.StatusOK,
		"status":     "success",
		"message":    message,
		"data":       data,
		"pagination": p,
	})
}

// ✅ Error Response sederhana
func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
	})
}

// ✅ Error Response advance, bisa kirim multiple field error
func ErrorWithDetails(c *fiber.Ctx, code int, message string, details interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
		"errors":  details,
	})
}

// ✅ Khusus error validasi (validator.v10)
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Error(c, fiber.StatusBadRequest, "Invalid input")
	}

	errorsMap := make(map[string]string)
	for _, fieldErr := range ve {
		errorsMap[fieldErr.Field()] = fieldErr.Tag()
	}

	return ErrorWithDetails(c, fiber.StatusBadRequest, "Validasi gagal", errorsMap)
}

// FromError memetakan error domain (errs.Error) ke envelope JSON.
// PersistenceError di-log dengan konteks, caller hanya dapat pesan generik.
func FromError(c *fiber.Ctx, err error) error {
	var e *errs.Error
	if !errors.As(err, &e) {
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
		return Error(c, fiber.StatusInternalServerError, "Terjadi kesalahan internal")
	}

	if e.Kind == errs.KindPersistence {
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), e.Err)
		return Error(c, e.HTTPStatus(), e.Message)
	}
	if len(e.Details) > 0 {
		return ErrorWithDetails(c, e.HTTPStatus(), e.Message, e.Details)
	}
	return Error(c, e.HTTPStatus(), e.Message)
}
