package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"lookbook-service/internal/models"
)

// ContextUserID is the gin context key holding the authenticated user id
const ContextUserID = "userId"

// Claims are the dashboard token claims
type Claims struct {
	UserID string `json:"userId"`
	Handle string `json:"handle,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a dashboard token for a user. Used by tooling and
// tests; production tokens come from the auth provider with the same
// shape.
func GenerateToken(secret, userID, handle string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Handle: handle,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateToken parses and verifies a dashboard token
func ValidateToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, errors.New("token carries no user id")
	}
	return claims, nil
}

// RequireAuth guards dashboard routes behind a bearer token
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authorization header required")
			return
		}
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		claims, err := ValidateToken(secret, authHeader[7:])
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// UserID reads the authenticated user id set by RequireAuth
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: "UNAUTHORIZED", Message: message},
	})
}
