package routes

import (
	"mfaportal/api/handler"
	"mfaportal/api/middleware"
	"mfaportal/web"

	"github.com/labstack/echo/v4"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	AuthMiddleware middleware.AuthMiddleware
}

func NewRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware middleware.AuthMiddleware) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		AuthMiddleware: authMiddleware,
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.GET("/", r.Auth.IndexPage)
	e.GET("/signup", r.Auth.SignupPage)
	e.POST("/signup", r.Auth.Signup)
	e.GET("/login", r.Auth.LoginPage)
	e.POST("/login", r.Auth.Login)
	e.GET("/mfa-verify", r.Auth.MFAVerifyPage)
	e.POST("/mfa-verify", r.Auth.MFAVerify)
	e.POST("/logout", r.Auth.Logout)

	e.GET("/dashboard", r.Auth.Dashboard, r.AuthMiddleware.RequireSession)
	e.GET("/setup-mfa", r.Auth.SetupMFAPage, r.AuthMiddleware.RequireSession)
	e.POST("/enable-mfa", r.Auth.EnableMFA, r.AuthMiddleware.RequireSession)
	e.GET("/disable-mfa", r.Auth.DisableMFAPage, r.AuthMiddleware.RequireSession)
	e.POST("/disable-mfa", r.Auth.DisableMFA, r.AuthMiddleware.RequireSession)

	e.StaticFS("/static", web.StaticFS())
}
