package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthtrack/healthtrack/internal/core/domain"
)

// UserFinder is the subset of the user repository ActiveUser needs.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// ActiveUser rejects tokens whose account no longer exists. It must run
// after Auth.
func ActiveUser(users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(CtxUserID).(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			if _, err := users.FindByID(c.Request().Context(), userID); err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return c.JSON(http.StatusForbidden, map[string]string{"error": "account no longer exists"})
				}
				return err
			}
			return next(c)
		}
	}
}
