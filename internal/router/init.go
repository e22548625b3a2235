package router

import (
	"github.com/automator-io/admin-service/internal/application"
	"github.com/automator-io/admin-service/internal/container"
	"github.com/automator-io/admin-service/internal/infrastructure/docstore"
	pginfra "github.com/automator-io/admin-service/internal/infrastructure/postgres"
	handlers "github.com/automator-io/admin-service/internal/interface/http"
	"github.com/automator-io/admin-service/internal/router/modules"
)

// InitModules builds every feature module from the container singletons and
// registers it. Called once during startup.
func InitModules(r *Registry) {
	store := docstore.New(container.GetPGPool())
	cfg := container.GetConfig()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(store)
	orgs := pginfra.NewOrganizationRepository(store)
	units := pginfra.NewBusinessUnitRepository(store)
	projects := pginfra.NewProjectRepository(store)
	mods := pginfra.NewModuleRepository(store)

	authSvc := application.NewAuthService(users, container.GetHasher(), container.GetCodec(), logger)
	verifySvc := application.NewVerificationService(
		users,
		container.GetHasher(),
		container.GetRedis(),
		container.GetRabbitPub(),
		logger,
		cfg.VerifyEmailURL,
		cfg.ResetPasswordURL,
	)
	orgSvc := application.NewOrganizationService(orgs, units, logger)
	projectSvc := application.NewProjectService(projects, mods, orgs, logger)

	userSvc := application.NewUserAdminService(users, orgs, container.GetHasher(), logger)
	userSvc.ES = container.GetES()
	userSvc.ESUsersIndex = cfg.ESUsersIndex
	userSvc.GCS = container.GetGCS()
	userSvc.GCSBucket = cfg.GCSBucket

	codec := container.GetCodec()
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, verifySvc, logger), codec))
	r.Add(modules.NewOrganizationModule(handlers.NewOrganizationHandler(orgSvc, logger), codec))
	r.Add(modules.NewProjectModule(handlers.NewProjectHandler(projectSvc, logger), codec))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger), codec))
	r.Add(modules.NewDebugModule())
}
