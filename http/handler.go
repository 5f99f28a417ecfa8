package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sagarc03/filekeep"
)

// Service is the file API served under /file.
type Service interface {
	ListBuckets(ctx context.Context) ([]filekeep.BucketInfo, error)
	GetPresignedUploadURL(ctx context.Context, fileName, fileType string) (filekeep.PresignedUpload, error)
	SaveFileMetadata(ctx context.Context, filePath, fileName, mimeType string) (filekeep.FileRecord, error)
	GetFile(ctx context.Context, id uuid.UUID) (filekeep.GetFileResult, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error
	ListFiles(ctx context.Context, q filekeep.ListQuery) (filekeep.ListResult, error)
}

// ObjectServer stores and serves object bytes for the local backend. Paths
// are {bucket}/{key}.
type ObjectServer interface {
	Open(ctx context.Context, path string) (io.ReadSeekCloser, filekeep.ObjectInfo, error)
	Write(ctx context.Context, path string, content io.Reader, overwrite bool) (filekeep.ObjectInfo, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
	// Objects enables the /objects routes. Leave nil when a remote provider
	// stores the bytes.
	Objects ObjectServer
	// Verifier checks signed upload URLs on /objects.
	Verifier RequestVerifier
	// MaxUploadSize limits object uploads in bytes. Zero means no limit.
	MaxUploadSize int64
	// Metrics enables /metrics and request instrumentation when set.
	Metrics *Metrics
	Logger  *slog.Logger
}

// Handler provides the HTTP API.
type Handler struct {
	config   HandlerConfig
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		config:   *config,
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

// Router returns an http.Handler with every route mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if h.config.Metrics != nil {
		r.Use(h.config.Metrics.Middleware)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	if h.config.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.config.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/file", func(r chi.Router) {
		r.Get("/", h.handleListFiles)
		r.Get("/buckets", h.handleListBuckets)
		r.Post("/presigned-url", h.handlePresignedURL)
		r.Post("/metadata", h.handleSaveMetadata)
		r.Get("/{id}", h.handleGetFile)
		r.Delete("/{id}", h.handleDeleteFile)
	})

	if h.config.Objects != nil {
		r.Get("/objects/*", h.handleGetObject)
		r.Head("/objects/*", h.handleGetObject)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.config.Verifier))
			r.Put("/objects/*", h.handlePutObject)
			r.Post("/objects/*", h.handlePostObject)
		})
	}

	return r
}

// detach keeps a multi-step operation running after the client disconnects.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
