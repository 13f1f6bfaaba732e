// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	categoriesfeature "github.com/dalemusser/studyplanet/internal/app/features/categories"
	coursesfeature "github.com/dalemusser/studyplanet/internal/app/features/courses"
	errorsfeature "github.com/dalemusser/studyplanet/internal/app/features/errors"
	healthfeature "github.com/dalemusser/studyplanet/internal/app/features/health"
	loginfeature "github.com/dalemusser/studyplanet/internal/app/features/login"
	logoutfeature "github.com/dalemusser/studyplanet/internal/app/features/logout"
	paymentfeature "github.com/dalemusser/studyplanet/internal/app/features/payment"
	"github.com/dalemusser/studyplanet/internal/app/media"
	"github.com/dalemusser/studyplanet/internal/app/payments"
	auditstore "github.com/dalemusser/studyplanet/internal/app/store/audit"
	userstore "github.com/dalemusser/studyplanet/internal/app/store/users"
	"github.com/dalemusser/studyplanet/internal/app/system/auditlog"
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/app/system/ratelimit"
	"github.com/dalemusser/studyplanet/internal/app/system/reqlog"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Every API route lives under /api/v1;
// /health sits at the root for load balancers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	dev := coreCfg.Env == "dev"
	secure := coreCfg.Env == "prod"

	var cookies *auth.CookieCodec
	if appCfg.CookieHashKey != "" {
		var err error
		cookies, err = auth.NewCookieCodec(appCfg.CookieHashKey, appCfg.CookieBlockKey, secure)
		if err != nil {
			logger.Error("cookie codec init failed", zap.Error(err))
			return nil, err
		}
	}

	verifier := auth.NewVerifier(appCfg.JWTSecret, cookies)
	issuer := auth.NewIssuer(appCfg.JWTSecret, appCfg.JWTTTL)
	roles := userstore.NewFetcher(deps.MongoDatabase)
	errLog := errorsfeature.NewErrorLogger(logger, dev)
	audit := auditlog.New(auditstore.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Admin:   appCfg.AuditLogAdmin,
		Payment: appCfg.AuditLogPayment,
	})

	svc := deps.Services
	if svc == nil {
		svc = &Services{}
	}
	ing := svc.Media
	if ing == nil {
		ing = media.Disabled(logger)
	}
	var pay payments.Adapter = payments.Disabled{}
	if svc.Payments != nil {
		pay = svc.Payments
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if appCfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(reqlog.Middleware(logger))
	r.Use(errLog.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorsfeature.Fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorsfeature.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, issuer, cookies,
		ratelimit.NewLoginLimiter(appCfg.LoginRateRPS, appCfg.LoginRateBurst, nil), errLog, logger)
	logoutHandler := logoutfeature.NewHandler(cookies, logger)
	coursesHandler := coursesfeature.NewHandler(deps.MongoDatabase, ing, appCfg.MediaFolder, errLog, logger)
	categoriesHandler := categoriesfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	paymentHandler := paymentfeature.NewHandler(pay, errLog, logger)

	loginHandler.Audit = audit
	logoutHandler.Verifier = verifier
	logoutHandler.Audit = audit
	coursesHandler.Audit = audit
	categoriesHandler.Audit = audit
	paymentHandler.Audit = audit

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			loginfeature.Routes(loginHandler)(ar)
			logoutfeature.Routes(logoutHandler)(ar)
		})

		// Categories share the /course prefix with the course endpoints.
		api.Route("/course", func(cr chi.Router) {
			coursesfeature.Routes(coursesHandler, verifier, roles)(cr)
			categoriesfeature.Routes(categoriesHandler, verifier, roles)(cr)
		})

		api.Route("/payment", paymentfeature.Routes(paymentHandler, verifier, roles))
	})

	return r, nil
}
