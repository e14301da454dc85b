package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/misedainspect/itpnotify/internal/auth/oauth"
	"github.com/misedainspect/itpnotify/internal/auth/service"
	"github.com/misedainspect/itpnotify/pkg/httpx"
	"github.com/misedainspect/itpnotify/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion  string
	clientURL     string
	secureCookies bool
	startTime     time.Time
	logger        *slog.Logger

	AuthService   *service.AuthService
	TokenService  *service.TokenService
	GithubService *service.GithubService
	GithubClient  *oauth.GithubClient
}

func NewRouter(buildVersion, clientURL string, secureCookies, debug bool, logger *slog.Logger) *Router {
	exposeErrorDetail = debug

	r := &Router{
		Mux:           http.NewServeMux(),
		buildVersion:  buildVersion,
		clientURL:     clientURL,
		secureCookies: secureCookies,
		startTime:     time.Now(),
		logger:        logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.RateLimitByIP(httpx.GlobalLimit),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUser()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Credential endpoints carry the strict limit: they are the brute
	// force targets.
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(&RegisterHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.AuthLimit),
		),
	)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.AuthLimit),
		),
	)

	r.Mux.Handle("POST /auth/verify-email",
		httpx.Chain(&VerifyEmailHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.AuthLimit),
		),
	)
	r.Mux.Handle("POST /auth/verify-sms",
		httpx.Chain(&VerifySMSHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.AuthLimit),
		),
	)

	r.Mux.Handle("POST /auth/logout", LogoutHandler())

	if r.GithubClient != nil {
		githubHandler := &GithubHandler{
			Github:        r.GithubClient,
			GithubService: r.GithubService,
			ClientURL:     r.clientURL,
			SecureCookies: r.secureCookies,
		}
		r.Mux.HandleFunc("GET /auth/github", githubHandler.HandleRedirect)
		r.Mux.HandleFunc("GET /auth/github/callback", githubHandler.HandleCallback)
	}
}

func (r *Router) registerUser() {
	profileHandler := &ProfileHandler{
		AuthService: r.AuthService,
		Tokens:      r.TokenService,
	}
	r.Mux.HandleFunc("GET /user/profile", profileHandler.HandleGet)
	r.Mux.HandleFunc("PUT /user/profile", profileHandler.HandlePut)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /healthz", HealthzHandler(r.startTime, r.buildVersion))
}
