package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/video-stream/whisper-mcp/internal/api"
	"github.com/video-stream/whisper-mcp/internal/api/handlers"
	"github.com/video-stream/whisper-mcp/internal/auth"
	"github.com/video-stream/whisper-mcp/internal/config"
	"github.com/video-stream/whisper-mcp/internal/db"
	"github.com/video-stream/whisper-mcp/internal/ffmpeg"
	"github.com/video-stream/whisper-mcp/internal/job"
	"github.com/video-stream/whisper-mcp/internal/logger"
	"github.com/video-stream/whisper-mcp/internal/mcpserver"
	"github.com/video-stream/whisper-mcp/internal/storage"
	"github.com/video-stream/whisper-mcp/internal/tool"
	"github.com/video-stream/whisper-mcp/internal/transcribe"
	"github.com/video-stream/whisper-mcp/internal/whisper"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(runToken(os.Args[2:]))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrMissingAPIKey) {
			fmt.Fprintln(os.Stderr, config.MissingKeyHelp)
		}
		os.Exit(1)
	}

	log := logger.New(cfg.Debug)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorf("Server failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	runner := ffmpeg.ExecRunner{}
	prober := ffmpeg.NewProber(runner, cfg.FFprobePath)
	segmenter := ffmpeg.NewSegmenter(runner, cfg.FFmpegPath)
	backend := newBackend(cfg, log)
	service := transcribe.NewService(prober, segmenter, backend, log)

	opts := tool.Options{
		Pipeline:        service,
		Prober:          prober,
		WorkDirRoot:     cfg.WorkDirRoot,
		DefaultLanguage: cfg.DefaultLanguage,
		Logger:          log,
	}

	var history handlers.HistoryStore
	if cfg.DBPath != "" {
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		database, err := db.NewSQLite(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close()
		opts.Recorder = database
		history = database
		log.Infof("Transcription history: %s", cfg.DBPath)
	}

	t := tool.New(opts)
	log.Infof("Backend: %s (model %s)", backend.Name(), cfg.Model)

	media := ffmpeg.DetectCapabilities(ctx, runner, cfg.FFprobePath, cfg.FFmpegPath, log)
	log.Infof("Media tools: ffprobe=%v ffmpeg=%v libmp3lame=%v", media.FFprobe, media.FFmpeg, media.MP3Encoder)

	switch cfg.Transport {
	case config.TransportHTTP:
		var jwtService *auth.JWTService
		if cfg.AuthSecret != "" {
			jwtService = auth.NewJWTService(cfg.AuthSecret)
		} else {
			log.Warn("AUTH_SECRET not set, HTTP API is unauthenticated")
		}
		roots, err := storage.NewRoots(cfg.AudioRoots)
		if err != nil {
			return err
		}
		if !roots.Restricted() {
			log.Warn("AUDIO_ROOTS not set, HTTP callers may transcribe any readable file")
		}
		jobs := job.NewQueue(ctx, t, job.DefaultCapacity, log)
		defer jobs.Stop()
		router := api.NewRouter(ctx, api.Options{
			Tool:        t,
			Language:    t.DefaultLanguage(),
			Jobs:        jobs,
			History:     history,
			Backend:     backend.Name(),
			Media:       media,
			Roots:       roots,
			JWT:         jwtService,
			CORSOrigins: cfg.CORSOrigins,
			RateLimit:   cfg.RateLimit,
			Logger:      log,
		})
		return serveHTTP(ctx, fmt.Sprintf(":%d", cfg.Port), router, log)
	default:
		err := mcpserver.New(t, log).Serve(ctx, os.Stdin, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Info("Shutting down...")
		return nil
	}
}

func newBackend(cfg *config.Config, log *logger.Logger) whisper.Transcriber {
	if cfg.Backend == config.BackendWhisperCpp {
		return whisper.NewWhisperCppClient(cfg.WhisperCppURL, &http.Client{Timeout: cfg.BackendTimeout}, log)
	}
	return whisper.NewOpenAIClient(whisper.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.Model,
		Timeout: cfg.BackendTimeout,
	}, log)
}

func serveHTTP(ctx context.Context, addr string, h http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runToken mints a bearer token for the HTTP API.
func runToken(args []string) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "mcp-client", "token subject")
	ttl := fs.Duration("ttl", 30*24*time.Hour, "token lifetime, 0 for no expiry")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	secret, err := config.AuthSecret()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	token, err := auth.NewJWTService(secret).GenerateToken(*subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(token)
	return 0
}
