package middleware

import "github.com/labstack/echo/v4"

const (
	contextEmailKey = "auth_email"
	contextTokenKey = "auth_token"
)

func SetAuthContext(c echo.Context, email string, token string) {
	c.Set(contextEmailKey, email)
	c.Set(contextTokenKey, token)
}

func EmailFromContext(c echo.Context) (string, bool) {
	value := c.Get(contextEmailKey)
	email, ok := value.(string)
	return email, ok
}

func TokenFromContext(c echo.Context) (string, bool) {
	value := c.Get(contextTokenKey)
	token, ok := value.(string)
	return token, ok
}
