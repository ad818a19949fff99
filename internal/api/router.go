package api

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/video-stream/whisper-mcp/internal/api/handlers"
	"github.com/video-stream/whisper-mcp/internal/api/middleware"
	"github.com/video-stream/whisper-mcp/internal/auth"
	"github.com/video-stream/whisper-mcp/internal/ffmpeg"
	"github.com/video-stream/whisper-mcp/internal/job"
	"github.com/video-stream/whisper-mcp/internal/logger"
	"github.com/video-stream/whisper-mcp/internal/mcpserver"
	"github.com/video-stream/whisper-mcp/internal/storage"
	"github.com/video-stream/whisper-mcp/internal/tool"
)

type Options struct {
	Tool     handlers.Caller
	Language string                // advertised default language; empty means tool.DefaultLanguage
	Jobs     *job.Queue            // nil disables the job routes
	History  handlers.HistoryStore // nil disables the history routes
	Backend  string
	Media    ffmpeg.Capabilities
	Roots    *storage.Roots // files callers may name; nil or empty allows any

	JWT         *auth.JWTService // nil leaves the API open
	CORSOrigins []string
	RateLimit   int // tool calls per minute per client; <= 0 disables
	Logger      *logger.Logger
}

// NewRouter builds the HTTP surface. ctx bounds background work such as
// the rate limiter's sweeper.
func NewRouter(ctx context.Context, opts Options) *chi.Mux {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(cors.Handler(middleware.CORSHandler(opts.CORSOrigins)))

	lang := opts.Language
	if lang == "" {
		lang = tool.DefaultLanguage
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler(opts.Backend, opts.History != nil, opts.Media)
	authHandler := handlers.NewAuthHandler()
	toolHandler := handlers.NewToolHandler(opts.Tool, mcpserver.Definition(lang), opts.Roots)
	historyHandler := handlers.NewHistoryHandler(opts.History)
	filesHandler := handlers.NewFilesHandler(opts.Roots)
	var jobHandler *handlers.JobHandler
	if opts.Jobs != nil {
		jobHandler = handlers.NewJobHandler(opts.Jobs, opts.Roots)
	}
	limiter := middleware.NewRateLimiter(ctx, opts.RateLimit, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(opts.JWT))

			r.Get("/auth/me", authHandler.Me)

			// Tools
			r.Get("/tools", toolHandler.ListTools)
			r.With(limiter.Handler, middleware.MaxBodySize(middleware.DefaultMaxBody)).
				Post("/tools/transcribe_audio", toolHandler.CallTranscribe)

			// Files
			r.Get("/files/search", filesHandler.Search)

			// Jobs
			if jobHandler != nil {
				r.With(limiter.Handler, middleware.MaxBodySize(middleware.DefaultMaxBody)).
					Post("/jobs", jobHandler.CreateJob)
				r.Get("/jobs", jobHandler.ListJobs)
				r.Get("/jobs/{id}", jobHandler.GetJob)
				r.Delete("/jobs/{id}", jobHandler.CancelJob)
			}

			// History
			r.Get("/transcriptions", historyHandler.ListTranscriptions)
			r.Get("/transcriptions/{id}", historyHandler.GetTranscription)
		})
	})

	return r
}
