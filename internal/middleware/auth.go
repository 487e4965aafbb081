package middleware

import (
	"net/http"
	"strings"

	"github.com/kantman01/ai-stock-management-sub000/internal/apierror"
	"github.com/kantman01/ai-stock-management-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimsKey = "claims"
)

// JWTClaims are the custom claims embedded in every access token. Tokens are
// issued by the external auth service; this side only verifies them.
type JWTClaims struct {
	UserID     string  `json:"user_id"`
	Role       string  `json:"role"` // staff | admin | supplier
	SupplierID *string `json:"supplier_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*JWTClaims)
		if !ok || !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetActor converts the verified claims into the service-layer actor identity.
func GetActor(c *gin.Context) service.Actor {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	if claims == nil {
		return service.Actor{}
	}
	actor := service.Actor{Role: claims.Role}
	if id, err := uuid.Parse(claims.UserID); err == nil {
		actor.ID = id
	}
	if claims.SupplierID != nil {
		if sid, err := uuid.Parse(*claims.SupplierID); err == nil {
			actor.SupplierID = &sid
		}
	}
	return actor
}
