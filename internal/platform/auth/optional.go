package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
)

// Optional parses a bearer token when one is present and puts the caller's
// identity on the request context, but lets anonymous requests through. Used
// on endpoints that personalize output for signed-in callers.
func Optional(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return next(c)
			}

			claims, err := issuer.Parse(parts[1])
			if err != nil {
				return next(c)
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, UserPhoneKey, claims.Phone)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
