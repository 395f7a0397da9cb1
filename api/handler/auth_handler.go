package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"time"

	"mfaportal/api/middleware"
	"mfaportal/internal/dto"
	"mfaportal/internal/entity"
	"mfaportal/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Service       *service.AuthService
	Validate      *validator.Validate
	CookieDomain  string
	SecureCookies bool
	SameSite      http.SameSite
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		Service:       svc,
		Validate:      validate,
		SecureCookies: true,
		SameSite:      http.SameSiteStrictMode,
	}
}

func (h *AuthHandler) IndexPage(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", nil)
}

func (h *AuthHandler) SignupPage(c echo.Context) error {
	return c.Render(http.StatusOK, "signup.html", echo.Map{})
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := h.bind(c, &req); err != nil {
		return c.Render(http.StatusBadRequest, "signup.html", echo.Map{"Error": "all fields are required"})
	}
	if _, err := h.Service.Signup(c.Request().Context(), req.Email, req.Name, req.Password); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return c.Render(http.StatusBadRequest, "signup.html", echo.Map{"Error": "email already registered"})
		}
		return writeServiceError(err)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", echo.Map{})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := h.bind(c, &req); err != nil {
		return c.Render(http.StatusBadRequest, "login.html", echo.Map{"Error": "email and password are required"})
	}
	result, err := h.Service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrInvalidInput) {
			// One message for unknown email and wrong password.
			return c.Render(http.StatusUnauthorized, "login.html", echo.Map{"Error": "incorrect email or password"})
		}
		return writeServiceError(err)
	}
	if result.MFARequired {
		return c.Redirect(http.StatusSeeOther, "/mfa-verify?token="+url.QueryEscape(result.Token))
	}
	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) MFAVerifyPage(c echo.Context) error {
	return c.Render(http.StatusOK, "mfa_verify.html", echo.Map{"Token": c.QueryParam("token")})
}

func (h *AuthHandler) MFAVerify(c echo.Context) error {
	var req dto.MFAVerifyRequest
	if err := h.bind(c, &req); err != nil {
		return c.Render(http.StatusBadRequest, "mfa_verify.html", echo.Map{
			"Token": req.Token,
			"Error": "code is required",
		})
	}
	result, err := h.Service.CompleteMFALogin(c.Request().Context(), req.Token, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			return c.Redirect(http.StatusSeeOther, "/login")
		case errors.Is(err, service.ErrInvalidMFACode):
			return c.Render(http.StatusUnauthorized, "mfa_verify.html", echo.Map{
				"Token": req.Token,
				"Error": "invalid code, try again",
			})
		default:
			return writeServiceError(err)
		}
	}
	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) Dashboard(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	return c.Render(http.StatusOK, "dashboard.html", echo.Map{
		"User":         user,
		"MFAEnabled":   user.MFAEnabled,
		"JustEnabled":  c.QueryParam("mfa_enabled") == "true",
		"JustDisabled": c.QueryParam("mfa_disabled") == "true",
	})
}

func (h *AuthHandler) SetupMFAPage(c echo.Context) error {
	token, _ := middleware.TokenFromContext(c)
	setup, err := h.Service.BeginMFAEnrollment(c.Request().Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMFAAlreadyEnabled):
			return c.Render(http.StatusOK, "mfa_already_setup.html", nil)
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
			return c.Redirect(http.StatusSeeOther, "/login")
		default:
			return writeServiceError(err)
		}
	}
	return c.Render(http.StatusOK, "setup_mfa.html", echo.Map{
		"Secret": setup.Secret,
		"QRCode": "data:image/png;base64," + base64.StdEncoding.EncodeToString(setup.Image),
	})
}

func (h *AuthHandler) EnableMFA(c echo.Context) error {
	token, _ := middleware.TokenFromContext(c)
	var req dto.EnableMFARequest
	if err := h.bind(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "secret and code are required")
	}
	if err := h.Service.ConfirmMFAEnrollment(c.Request().Context(), token, req.Secret, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMFACode):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid mfa code")
		case errors.Is(err, service.ErrMFAAlreadyEnabled):
			return c.Redirect(http.StatusSeeOther, "/dashboard")
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
			return c.Redirect(http.StatusSeeOther, "/login")
		default:
			return writeServiceError(err)
		}
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard?mfa_enabled=true")
}

func (h *AuthHandler) DisableMFAPage(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	if !user.MFAEnabled {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return c.Render(http.StatusOK, "disable_mfa.html", echo.Map{})
}

func (h *AuthHandler) DisableMFA(c echo.Context) error {
	token, _ := middleware.TokenFromContext(c)
	var req dto.DisableMFARequest
	if err := h.bind(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}
	if err := h.Service.DisableMFA(c.Request().Context(), token, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrMFANotEnabled):
			return c.Redirect(http.StatusSeeOther, "/dashboard")
		case errors.Is(err, service.ErrInvalidMFACode):
			return c.Render(http.StatusUnauthorized, "disable_mfa.html", echo.Map{"Error": "invalid code, try again"})
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
			return c.Redirect(http.StatusSeeOther, "/login")
		default:
			return writeServiceError(err)
		}
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard?mfa_disabled=true")
}

// Logout deletes the session cookie. Tokens are stateless, so there is
// nothing to revoke server-side.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.clearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) currentUser(c echo.Context) (*entity.User, error) {
	token, ok := middleware.TokenFromContext(c)
	if !ok {
		return nil, service.ErrInvalidToken
	}
	return h.Service.CurrentUser(c.Request().Context(), token)
}

func (h *AuthHandler) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(req)
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func writeServiceError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
}
