package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopora/user-service/internal/container"
	handlers "github.com/shopora/user-service/internal/interface/http"
	"github.com/shopora/user-service/internal/interface/middleware"
	"github.com/shopora/user-service/pkg/helpers"
)

// UserModule wires the account lifecycle routes.
// Public: POST /api/signup, GET /api/activation/:token, POST /api/login
// Protected: POST /api/logout, GET /api/checklogin, POST /api/upload,
// PUT /api/add-address, GET /api/users/search
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	activationLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/signup", signupLimiter, m.Handler.Signup)
	rg.GET("/activation/:token", activationLimiter, m.Handler.Activation)
	rg.POST("/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/checklogin", m.Handler.CheckLogin)
		auth.POST("/upload", m.Handler.Upload)
		auth.PUT("/add-address", m.Handler.AddAddress)
		auth.GET("/users/search", m.Handler.Search)
	}
}
