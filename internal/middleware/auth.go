package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	staffKey  = "staff"
	RoleAdmin = "admin"
)

var errNoBearer = errors.New("missing bearer token")

// StaffClaims is the access token issued at staff login.
type StaffClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errNoBearer
	}
	return strings.TrimSpace(token), nil
}

// ParseStaffToken checks signature, algorithm and expiry of an access token.
func ParseStaffToken(secret, raw string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// StaffAuth admits requests carrying a valid staff token whose role is one of
// roles. Any role is accepted when roles is empty.
func StaffAuth(secret string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.TrimSpace(header) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		raw, err := bearerToken(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, err := ParseStaffToken(secret, raw)
		if err != nil {
			log.Debug().Str("component", "auth").Err(err).Str("path", c.FullPath()).Msg("staff token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
			log.Warn().Str("component", "auth").Str("email", claims.Email).Str("role", claims.Role).Msg("staff role not allowed")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set(staffKey, claims)
		c.Next()
	}
}

func AdminAuth(secret string) gin.HandlerFunc {
	return StaffAuth(secret, RoleAdmin)
}

// CurrentStaff returns the claims StaffAuth stored on the request.
func CurrentStaff(c *gin.Context) (*StaffClaims, bool) {
	v, ok := c.Get(staffKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*StaffClaims)
	return claims, ok
}

// StaffEmail is the email of the signed-in staff member, or "".
func StaffEmail(c *gin.Context) string {
	if claims, ok := CurrentStaff(c); ok {
		return claims.Email
	}
	return ""
}
