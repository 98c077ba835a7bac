package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/joestump/cleo/docs/swagger"
	"github.com/joestump/cleo/internal/auth"
	"github.com/joestump/cleo/internal/logging"
	"github.com/joestump/cleo/internal/mail"
	"github.com/joestump/cleo/internal/metrics"
	"github.com/joestump/cleo/internal/routes"
	"github.com/joestump/cleo/internal/storage"
	"github.com/joestump/cleo/internal/store"
)

// maxJSONBody bounds request bodies on routes that don't go through
// auth.Authenticate, which applies the same limit itself.
const maxJSONBody = auth.MaxTokenBody

// Deps holds all dependencies required to build the router.
type Deps struct {
	DB      *sqlx.DB
	Logger  *zap.Logger
	Storage storage.System
	Mailer  mail.Sender

	// SMTPPort is combined with the SMTP settings stored in instance_info.
	SMTPPort int
	// MaxUploadSize caps the file part of /files/create, in bytes.
	MaxUploadSize int64
	// CORSOrigins defaults to "*" when empty.
	CORSOrigins []string
}

// NewRouter assembles the chi router serving every path in routes.Table
// and routes.Operational.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	users := store.NewUserStore(deps.DB)
	instance := store.NewInstanceStore(deps.DB)
	keys := store.NewKeyStore(deps.DB)
	posts := store.NewPostStore(deps.DB)
	fields := store.NewFieldStore(deps.DB)
	files := store.NewFileStore(deps.DB)
	tokens := auth.NewSQLTokenStore(deps.DB)
	authn := auth.NewAuthenticator(tokens, users)
	verify := &verifier{mailer: deps.Mailer, smtpPort: deps.SMTPPort}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	general := &generalAPIHandler{db: deps.DB, instance: instance, logger: logger}
	r.Get(routes.Healthz, general.Healthz)
	r.Get(routes.InstanceInfo, general.Info)
	r.Method(http.MethodGet, routes.Metrics, promhttp.Handler())
	r.Get(routes.Swagger, httpSwagger.WrapHandler)

	// Public routes: credentials or single-use secrets travel in the request.
	r.Group(func(r chi.Router) {
		r.Use(limitBody(maxJSONBody))
		registerAccountRoutes(r, &usersAPIHandler{
			db: deps.DB, users: users, files: files, storage: deps.Storage,
			authn: authn, verify: verify, logger: logger,
		})
		registerTokenRoutes(r, &tokensAPIHandler{authn: authn, tokens: tokens, logger: logger})
		registerEmailRoutes(r, &emailAPIHandler{db: deps.DB, logger: logger})
	})

	fh := &filesAPIHandler{
		files: files, instance: instance, storage: deps.Storage,
		authn: authn, maxUpload: deps.MaxUploadSize, logger: logger,
	}
	// /files/create authenticates from its multipart "json" part.
	r.Post(routes.FilesCreate, fh.Create)
	r.Get(routes.FilesServe, fh.Serve)

	// api_token routes.
	r.Group(func(r chi.Router) {
		r.Use(authn.Authenticate)
		registerProfileRoutes(r, &usersAPIHandler{
			db: deps.DB, users: users, authn: authn, verify: verify, logger: logger,
		})
		registerPostRoutes(r, &postsAPIHandler{posts: posts, fields: fields, logger: logger})
		registerFieldRoutes(r, &fieldsAPIHandler{posts: posts, fields: fields, logger: logger})
		registerFileRoutes(r, fh)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			registerKeyRoutes(r, &keysAPIHandler{keys: keys, logger: logger})
			registerAdminRoutes(r, &adminAPIHandler{users: users, instance: instance, logger: logger})
		})
	})

	return r
}

// limitBody caps the request body at n bytes. Reads beyond it fail with
// *http.MaxBytesError, which fail maps to 413.
func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
