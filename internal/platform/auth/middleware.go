// Package auth verifies bearer tokens and exposes the caller's role and
// school scope to handlers. Token issuance and refresh live in the
// identity provider, outside this service.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Roles mirror the user profiles of the vaccination tracker: municipal
// administrators, health teams and school staff.
const (
	RoleAdmin  = "ADMIN"
	RoleHealth = "SAUDE"
	RoleSchool = "ESCOLA"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	RoleKey     contextKey = "role"
	SchoolIDKey contextKey = "school_id"
)

// Claims carries the role and, for school users, the school the caller is
// scoped to.
type Claims struct {
	jwt.RegisteredClaims
	Role     string     `json:"role"`
	SchoolID *uuid.UUID `json:"school_id,omitempty"`
	Email    string     `json:"email,omitempty"`
	FullName string     `json:"full_name,omitempty"`
}

// JWTConfig configures bearer token verification. Tokens are HS256-signed
// by the identity provider sharing SigningKey with this service.
type JWTConfig struct {
	SigningKey []byte
	Issuer     string
}

// JWTMiddleware validates the Authorization header and stores the caller's
// identity on the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			opts := []jwt.ParserOption{
				jwt.WithValidMethods([]string{"HS256"}),
			}
			if cfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(cfg.Issuer))
			}

			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return cfg.SigningKey, nil
			}, opts...)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			if claims.SchoolID != nil {
				ctx = context.WithValue(ctx, SchoolIDKey, *claims.SchoolID)
			}
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// DevAuthMiddleware grants every request admin access. Development only.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, "dev-user")
			ctx = context.WithValue(ctx, RoleKey, RoleAdmin)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// UserIDFromContext returns the authenticated subject, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// RoleFromContext returns the caller's role, or "".
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}

// SchoolIDFromContext returns the school a school-role caller is scoped
// to. The second return is false for admin and health callers.
func SchoolIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(SchoolIDKey).(uuid.UUID)
	return id, ok
}
