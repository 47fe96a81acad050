// internals/middlewares/auth/claim_utils.go
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// extractBearerToken mengambil token dari header Authorization
// dengan fallback ke cookie access_token.
func extractBearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", errors.New("Unauthorized - Invalid Authorization format")
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return "", errors.New("Unauthorized - Empty token")
		}
		return token, nil
	}

	if cookie := c.Cookies("access_token"); cookie != "" {
		return cookie, nil
	}

	return "", errors.New("Unauthorized - No token provided")
}

// validateTokenExpiry mengecek klaim exp secara manual, dengan toleransi skew.
func validateTokenExpiry(claims jwt.MapClaims, skew time.Duration) error {
	expRaw, ok := claims["exp"]
	if !ok {
		return errors.New("missing exp claim")
	}
	expFloat, ok := expRaw.(float64)
	if !ok {
		return errors.New("invalid exp claim")
	}
	expTime := time.Unix(int64(expFloat), 0)
	if time.Now().After(expTime.Add(skew)) {
		return errors.New("token expired")
	}
	return nil
}

// extractIdentity mengambil user_id dan role dari claims.
// user_id ditulis sebagai angka oleh issuer, jadi tiba sebagai float64.
func extractIdentity(claims jwt.MapClaims) (uint, string, error) {
	idRaw, ok := claims["user_id"]
	if !ok {
		return 0, "", errors.New("missing user_id claim")
	}
	idFloat, ok := idRaw.(float64)
	if !ok || idFloat <= 0 {
		return 0, "", errors.New("invalid user_id claim")
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return 0, "", errors.New("missing role claim")
	}

	return uint(idFloat), role, nil
}
