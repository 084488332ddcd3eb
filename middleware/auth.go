package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/TrekLedger/trek-ledger-backend/config"
	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	"github.com/TrekLedger/trek-ledger-backend/logger"
)

// AuthMiddleware validates the Bearer token on every request and stores the
// authenticated user's ID in the gin context. Tokens are HMAC-signed with the
// configured secret; the subject claim carries the user ID.
func AuthMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		header := c.GetHeader("Authorization")
		if header == "" {
			_ = c.Error(apperrors.AuthenticationFailed("Authorization header is required"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			_ = c.Error(apperrors.AuthenticationFailed("Authorization header must be a Bearer token"))
			c.Abort()
			return
		}

		userID, err := validateToken(tokenString, cfg.JwtSecretKey)
		if err != nil {
			log.Debugw("Token validation failed", "error", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func validateToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.AuthenticationFailed("Your session has expired")
		}
		return "", apperrors.AuthenticationFailed("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", apperrors.AuthenticationFailed("Invalid token claims")
	}

	userID, err := claims.GetSubject()
	if err != nil || userID == "" {
		return "", apperrors.AuthenticationFailed("Token is missing a subject")
	}
	return userID, nil
}

// GetUserID returns the authenticated user's ID from the gin context.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
