package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fridman/health-hub/internal/domain"
	"fridman/health-hub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
)

// jwtClaims mirrors the payload produced by the auth service.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the bearer token and stores the principal's id
// and role in the request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, "Invalid token")
			}
			return
		}
		if !token.Valid || claims.UserID == "" || claims.Role == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Next()
	}
}

func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware confines a route group to one role. A principal of a
// different role gets a 403 carrying its own landing path, so a client
// stuck on a stale view knows where to navigate.
func RoleMiddleware(required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "User role not found in context")
			return
		}

		if role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      fmt.Sprintf("Access denied: role '%s' does not have permission", role),
				"redirectTo": domain.DefaultPathForRole(role),
			})
			return
		}
		c.Next()
	}
}

// PendingGate blocks professionals whose account is not yet approved. The
// live status is read per request, not the token's snapshot, so an admin
// approval takes effect immediately. A pending professional gets a 200
// with a gate marker instead of the requested resource; the URL stays
// valid, only the content is replaced. Inactive accounts are locked out.
func PendingGate(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := getUserObjectIDFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "User ID not found in context")
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Account no longer exists")
			return
		}

		switch user.Status {
		case domain.StatusPending:
			c.AbortWithStatusJSON(http.StatusOK, gin.H{
				"gate":    "awaiting_approval",
				"message": "Your account is awaiting admin approval.",
			})
		case domain.StatusInactive:
			abortWithError(c, http.StatusForbidden, "Account has been deactivated")
		default:
			c.Next()
		}
	}
}

func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

func getUserObjectIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(idStr)
}

func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}
