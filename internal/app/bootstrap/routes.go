// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/eventdesk/internal/app/features/auditlog"
	errorsfeature "github.com/dalemusser/eventdesk/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/eventdesk/internal/app/features/events"
	healthfeature "github.com/dalemusser/eventdesk/internal/app/features/health"
	loginfeature "github.com/dalemusser/eventdesk/internal/app/features/login"
	logoutfeature "github.com/dalemusser/eventdesk/internal/app/features/logout"
	registrationsfeature "github.com/dalemusser/eventdesk/internal/app/features/registrations"
	emailtemplatestore "github.com/dalemusser/eventdesk/internal/app/store/emailtemplates"
	eventstore "github.com/dalemusser/eventdesk/internal/app/store/events"
	registrationstore "github.com/dalemusser/eventdesk/internal/app/store/registrations"
	"github.com/dalemusser/eventdesk/internal/app/system/aggregate"
	"github.com/dalemusser/eventdesk/internal/app/system/auth"
	"github.com/dalemusser/eventdesk/internal/app/system/moderation"
	"github.com/dalemusser/eventdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/eventdesk/internal/app/system/tracing"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// buildHandler constructs the root HTTP handler for EventDesk.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// startup have completed. Every endpoint speaks JSON; the registration and
// event routers require a signed-in admin.
func (svc *services) buildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	regStore := registrationstore.New(db, logger)
	agg := aggregate.New(regStore, logger)

	mod := moderation.New(regStore, nil, logger)
	if svc.mail != nil {
		mod.WithNotifier(&moderation.Notifier{
			Details:   agg,
			Templates: emailtemplatestore.New(db, appCfg.MailTemplateTTL),
			Mail:      svc.mail,
			SiteName:  appCfg.SiteName,
		})
	}

	var proofs registrationsfeature.ProofResolver
	if svc.proofs != nil {
		proofs = svc.proofs
	}

	var tracer trace.Tracer
	if svc.tracing != nil && svc.tracing.Enabled() {
		tracer = svc.tracing.Tracer()
	}

	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	r.Use(tracing.Middleware(tracer))
	// Loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, appCfg.StorageType, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, ratelimit.NewLoginLimiter(), logger)
	loginHandler.Audit = svc.audit
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	logoutHandler.Audit = svc.audit
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Registration review
	regHandler := registrationsfeature.NewHandler(agg, mod, proofs, eventstore.New(db), svc.loc, logger)
	r.Mount("/registrations", registrationsfeature.Routes(regHandler, sessionMgr))

	// Event catalogue
	eventsHandler := eventsfeature.NewHandler(db, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))

	// Audit trail (superadmin only)
	auditHandler := auditlogfeature.NewHandler(db, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}
