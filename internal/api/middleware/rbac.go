package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kata/sweetshop/internal/core/domain"
)

// RequireRole enforces role-based access control. It must run after Authenticate.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			if _, ok := allowed[user.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}

// RequireAdministrator admits only the admin role.
func RequireAdministrator() echo.MiddlewareFunc {
	return RequireRole(domain.RoleAdmin)
}
