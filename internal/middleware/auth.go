package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

const ContextActor = "actor"

// AuthMiddleware validates the bearer token and stores the caller as an
// identity.Actor. Expected claims: sub, role and, for owners, salonId or
// freelancerId.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Authorization header must be a bearer token")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid_token", "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Unauthorized(c, "invalid_token_claims", "Invalid token claims")
			return
		}

		sub, ok := claims["sub"].(float64)
		role := identity.Role(stringClaim(claims, "role"))
		if !ok || sub <= 0 || !role.Valid() {
			httperr.Unauthorized(c, "invalid_token_payload", "Token is missing the user or role")
			return
		}

		c.Set(ContextActor, identity.Actor{
			ID:           uint(sub),
			Role:         role,
			SalonID:      uintClaim(claims, "salonId"),
			FreelancerID: uintClaim(claims, "freelancerId"),
		})

		c.Next()
	}
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Actor(c).Is(roles...) {
			httperr.Write(c, http.StatusForbidden, "forbidden", "You do not have access to this resource")
			return
		}
		c.Next()
	}
}

// Actor returns the authenticated caller, or the zero Actor on public routes.
func Actor(c *gin.Context) identity.Actor {
	if v, ok := c.Get(ContextActor); ok {
		if a, ok := v.(identity.Actor); ok {
			return a
		}
	}
	return identity.Actor{}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func uintClaim(claims jwt.MapClaims, key string) uint {
	if f, ok := claims[key].(float64); ok && f > 0 {
		return uint(f)
	}
	return 0
}
