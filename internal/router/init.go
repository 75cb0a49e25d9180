package router

import (
	userapp "github.com/shopora/user-service/internal/application"
	"github.com/shopora/user-service/internal/container"
	pginfra "github.com/shopora/user-service/internal/infrastructure/postgres"
	handlers "github.com/shopora/user-service/internal/interface/http"
	"github.com/shopora/user-service/internal/router/modules"
	"github.com/shopora/user-service/pkg/helpers"
)

func buildUserModule() *modules.UserModule {
	cfg := container.GetConfig()
	repo := pginfra.NewUserRepository(container.GetPGPool())

	svc := userapp.NewService(repo, container.GetJWT(), container.GetMailer(), cfg.ActivationURL)
	svc.Queue = container.GetRabbitPub()
	svc.GCS = container.GetGCS()
	svc.GCSBucket = cfg.GCSBucket
	svc.Redis = container.GetRedis()
	svc.Logger = container.GetLogger()
	svc.ES = container.GetES()
	svc.ESUsersIndex = cfg.ESUsersIndex

	handler := handlers.NewUserHandler(
		svc,
		container.GetLogger(),
		helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
		cfg.LoginRedirectURL,
	)
	return modules.NewUserModule(handler, container.GetJWT())
}

// InitModules wires all application modules into the router registry. Called
// once during startup.
func InitModules(r *Registry) {
	r.Add(buildUserModule())
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
