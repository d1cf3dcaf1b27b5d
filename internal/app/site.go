package app

import (
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"kingdojo/internal/admin"
	"kingdojo/internal/auth"
	"kingdojo/internal/config"
	"kingdojo/internal/middleware"
	"kingdojo/internal/site"
)

// SiteDeps are the collaborators behind the public site and the admin panel.
type SiteDeps struct {
	Sessions *auth.SessionManager
	Gate     *admin.Gate
	Admin    *admin.Handler
	Content  site.Content
	// LoginLimit throttles credential posts. Optional.
	LoginLimit func(http.Handler) http.Handler
	Ready      http.Handler
	Static     http.Handler
	// EdgeExclude matches asset paths the edge filter skips.
	EdgeExclude *regexp.Regexp
}

// NewSiteServer assembles the site router:
//
//	edge filter (every path, unknown ones included)
//	├── /api/admin  CORS, login limit, JSON auth
//	└── cross-origin check
//	    ├── /admin  login, signout, then the privilege gate
//	    └── public pages
func NewSiteServer(cfg config.ServiceConfig, logger zerolog.Logger, deps SiteDeps) *HTTPServer {
	edge := middleware.EdgeFilter(
		middleware.DefaultEdgeConfig(deps.Sessions.Cookies().Name, deps.EdgeExclude),
		deps.Sessions,
		logger,
	)
	server := NewHTTPServer(cfg.ServiceName, cfg, logger, edge)
	router := server.Router

	if deps.Ready != nil {
		router.Method(http.MethodGet, "/ready", deps.Ready)
	}
	if deps.Static != nil {
		router.Handle("/static/*", deps.Static)
	}

	var loginMW []func(http.Handler) http.Handler
	if deps.LoginLimit != nil {
		loginMW = append(loginMW, deps.LoginLimit)
	}

	router.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.CORSMiddleware(cfg.Security.AllowedOrigins))
		r.Use(loginMW...)
		auth.RegisterAPIRoutes(r, deps.Sessions, logger)
	})
	router.Group(func(r chi.Router) {
		r.Use(middleware.CrossOrigin([]byte(cfg.Security.CSRFAuthKey), cfg.Security.TrustedOrigins, logger))
		r.Route("/admin", func(ar chi.Router) {
			admin.RegisterRoutes(ar, deps.Admin, deps.Gate, loginMW...)
		})
		site.RegisterRoutes(r, deps.Content, logger)
	})
	router.NotFound(site.NotFound(logger))

	return server
}
