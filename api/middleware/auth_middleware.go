package middleware

import (
	"net/http"

	"mfaportal/internal/service"

	"github.com/labstack/echo/v4"
)

const SessionCookieName = "access_token"

type AuthMiddleware struct {
	Tokens service.SessionTokens
}

// RequireSession gates a page behind a valid full-session cookie. An
// mfa-pending token is rejected here like any other invalid token.
func (m AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.Tokens == nil {
			return redirectToLogin(c)
		}
		cookie, err := c.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			return redirectToLogin(c)
		}
		claims, err := m.Tokens.Verify(cookie.Value)
		if err != nil || claims.Purpose != service.PurposeFull {
			return redirectToLogin(c)
		}
		SetAuthContext(c, claims.Subject, cookie.Value)
		return next(c)
	}
}

func redirectToLogin(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/login")
}
