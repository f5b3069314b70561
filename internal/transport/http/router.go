package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"passkey-auth/internal/domain"
	obsmw "passkey-auth/internal/observability/middleware"
	"passkey-auth/internal/service"
)

type RouterConfig struct {
	CORSOrigins   []string
	SecureCookies bool
}

func NewRouter(auth service.AuthService, sessions service.SessionService, cfg RouterConfig) http.Handler {
	h := NewHandler(auth, sessions, cfg.SecureCookies)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/auth", func(r chi.Router) {
		// Ceremony endpoints are anonymous by design; rate limiting is the
		// only gate in front of them.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(30, 1*time.Minute))
			r.Post("/register/options", h.registerOptions)
			r.Post("/register/verify", h.registerVerify)
			r.Post("/login/options", h.loginOptions)
			r.Post("/login/verify", h.loginVerify)
		})

		r.Post("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(SessionAuth(sessions))
			r.Get("/me", h.me)
		})
	})

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(SessionAuth(sessions))
		r.Use(RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin))

		r.Get("/invitations", h.listInvitations)
		r.Post("/invitations", h.createInvitation)
		r.Delete("/invitations/{id}", h.deleteInvitation)
	})

	return r
}
