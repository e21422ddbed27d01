package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin marks portal staff; RoleClient marks a client reading their own
// ledger.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// PortalClaims are the JWT claims issued by the portal's auth provider.
// Session issuance lives outside this service; we only validate.
type PortalClaims struct {
	Role     string `json:"role"`
	ClientID string `json:"clientID,omitempty"`
	jwt.RegisteredClaims
}

const (
	userIDKey = contextKey("userID")
	roleKey   = contextKey("role")
	clientKey = contextKey("clientID")
)

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &PortalClaims{}, func(token *jwt.Token) (interface{}, error) {
			// Check the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			logger.Warn("Invalid token", "error", err)
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		claims, ok := token.Claims.(*PortalClaims)
		if !ok || !token.Valid || claims.Subject == "" {
			logger.Error("Invalid token claims")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		c.Set(string(userIDKey), claims.Subject)
		c.Set(string(roleKey), claims.Role)
		c.Set(string(clientKey), claims.ClientID)
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the authenticated caller has the admin
// role. Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(string(roleKey))
		if role != RoleAdmin {
			GetLoggerFromCtx(c.Request.Context()).Warn("Admin role required")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// RequireClientScope aborts with 403 when a client-role caller addresses a
// ledger that is not their own. Admins pass through.
func RequireClientScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(string(roleKey))
		if role == RoleAdmin {
			c.Next()
			return
		}
		ownClientID, _ := c.Get(string(clientKey))
		if ownClientID != c.Param("clientID") {
			GetLoggerFromCtx(c.Request.Context()).Warn("Client scope mismatch", "requested", c.Param("clientID"))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access to this client's ledger is not allowed"})
			return
		}
		c.Next()
	}
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}
	return userID, true
}
