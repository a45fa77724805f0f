package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kata/sweetshop/internal/core/domain"
)

// Keys under which Authenticate stores the caller on the echo context.
const (
	ContextKeyUser  = "user"
	ContextKeyToken = "token"
)

// IdentityResolver turns a bearer token into the user it was issued to.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*domain.User, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// injects the resolved user into the echo and request contexts.
func Authenticate(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided.")
			}

			user, err := resolver.ResolveIdentity(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
				}
				return err
			}

			c.Set(ContextKeyUser, user)
			c.Set(ContextKeyToken, token)
			c.SetRequest(c.Request().WithContext(domain.WithUser(c.Request().Context(), user)))

			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// CurrentUser returns the user injected by Authenticate.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(ContextKeyUser).(*domain.User)
	return u, ok && u != nil
}
