package middleware

import (
	"net/http"
	"strings"

	"gameon/internal/shared/config"
	"gameon/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// JWTAuth creates a JWT authentication middleware
func JWTAuth() gin.HandlerFunc {
	return JWTAuthWithConfig(config.Load())
}

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, cfg)
		if !ok {
			c.Abort()
			return
		}

		c.Set("user_id", claims["user_id"])
		c.Set("user_email", claims["email"])
		c.Next()
	}
}

// OptionalAuth validates a JWT token if present but doesn't require one,
// for public reads that enrich the response for signed-in users.
func OptionalAuth() gin.HandlerFunc {
	return OptionalAuthWithConfig(config.Load())
}

func OptionalAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		if claims, ok := parseClaims(c.GetHeader("Authorization"), cfg); ok {
			c.Set("user_id", claims["user_id"])
			c.Set("user_email", claims["email"])
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, cfg *config.Config) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
		return nil, false
	}

	claims, ok := parseClaims(authHeader, cfg)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
		return nil, false
	}
	return claims, true
}

func parseClaims(authHeader string, cfg *config.Config) (jwt.MapClaims, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return nil, false
	}
	return claims, true
}
