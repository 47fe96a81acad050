package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"kosku_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware dasar dengan urutan tetap.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(GlobalRateLimiter())
}
