package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configEnvVars = []string{
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "WHISPER_MODEL", "WHISPER_BACKEND_TIMEOUT",
	"WHISPER_DEFAULT_LANGUAGE", "FFPROBE_PATH", "FFMPEG_PATH", "WORK_DIR_ROOT",
	"TRANSPORT", "PORT", "AUTH_SECRET", "CORS_ORIGINS", "RATE_LIMIT", "AUDIO_ROOTS",
	"DATA_PATH", "DB_PATH", "DEBUG", "WHISPER_CONFIG", "WHISPER_BACKEND", "WHISPER_CPP_URL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Load() error = %v, want ErrMissingAPIKey", err)
	}
	if cfg != nil {
		t.Errorf("Load() cfg = %+v, want nil", cfg)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("OpenAIAPIKey = %q, want sk-test", cfg.OpenAIAPIKey)
	}
	if cfg.Model != "whisper-1" {
		t.Errorf("Model = %q, want whisper-1", cfg.Model)
	}
	if cfg.BackendTimeout != 10*time.Minute {
		t.Errorf("BackendTimeout = %v, want 10m", cfg.BackendTimeout)
	}
	if cfg.DefaultLanguage != "pt" {
		t.Errorf("DefaultLanguage = %q, want pt", cfg.DefaultLanguage)
	}
	if cfg.FFprobePath != "ffprobe" || cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("binaries = %q/%q, want ffprobe/ffmpeg", cfg.FFprobePath, cfg.FFmpegPath)
	}
	if cfg.WorkDirRoot != os.TempDir() {
		t.Errorf("WorkDirRoot = %q, want %q", cfg.WorkDirRoot, os.TempDir())
	}
	if cfg.Transport != TransportStdio {
		t.Errorf("Transport = %q, want stdio", cfg.Transport)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.RateLimit != 30 {
		t.Errorf("RateLimit = %d, want 30", cfg.RateLimit)
	}
	if want := filepath.Join("./data", "transcriptions.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, want)
	}
	if cfg.Debug {
		t.Error("Debug = true, want false")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9000/v1")
	t.Setenv("WHISPER_MODEL", "gpt-4o-mini-transcribe")
	t.Setenv("WHISPER_BACKEND_TIMEOUT", "90s")
	t.Setenv("WHISPER_DEFAULT_LANGUAGE", "en")
	t.Setenv("TRANSPORT", "HTTP")
	t.Setenv("PORT", "3000")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("DB_PATH", "off")
	t.Setenv("DEBUG", "true")
	t.Setenv("AUDIO_ROOTS", "/srv/audio,/home/me/aulas")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OpenAIBaseURL != "http://localhost:9000/v1" {
		t.Errorf("OpenAIBaseURL = %q", cfg.OpenAIBaseURL)
	}
	if cfg.Model != "gpt-4o-mini-transcribe" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.BackendTimeout != 90*time.Second {
		t.Errorf("BackendTimeout = %v, want 90s", cfg.BackendTimeout)
	}
	if cfg.DefaultLanguage != "en" {
		t.Errorf("DefaultLanguage = %q, want en", cfg.DefaultLanguage)
	}
	if cfg.Transport != TransportHTTP {
		t.Errorf("Transport = %q, want http", cfg.Transport)
	}
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if len(cfg.AudioRoots) != 2 || cfg.AudioRoots[0] != "/srv/audio" {
		t.Errorf("AudioRoots = %v", cfg.AudioRoots)
	}
	if cfg.RateLimit != 5 {
		t.Errorf("RateLimit = %d, want 5", cfg.RateLimit)
	}
	if cfg.DBPath != "" {
		t.Errorf("DBPath = %q, want disabled", cfg.DBPath)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "whisper.yaml")
	body := "openai_api_key: sk-file\nwhisper_model: whisper-large\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WHISPER_CONFIG", path)
	t.Setenv("WHISPER_MODEL", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-file" {
		t.Errorf("OpenAIAPIKey = %q, want sk-file", cfg.OpenAIAPIKey)
	}
	if cfg.Model != "from-env" {
		t.Errorf("Model = %q, want env to win over file", cfg.Model)
	}
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TRANSPORT", "grpc")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want unknown transport error")
	}
}

func TestAuthSecretWithoutAPIKey(t *testing.T) {
	clearEnv(t)

	if _, err := AuthSecret(); err == nil {
		t.Error("AuthSecret() error = nil with AUTH_SECRET unset")
	}

	t.Setenv("AUTH_SECRET", "s3cret")
	got, err := AuthSecret()
	if err != nil {
		t.Fatalf("AuthSecret() error = %v", err)
	}
	if got != "s3cret" {
		t.Errorf("AuthSecret() = %q, want s3cret", got)
	}
}

func TestLoadWhisperCppBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("WHISPER_BACKEND", "whisper.cpp")
	t.Setenv("WHISPER_CPP_URL", "http://gpu-box:8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want no key requirement", err)
	}
	if cfg.Backend != BackendWhisperCpp || cfg.WhisperCppURL != "http://gpu-box:8080" {
		t.Errorf("Backend = %q URL = %q", cfg.Backend, cfg.WhisperCppURL)
	}

	t.Setenv("WHISPER_BACKEND", "vosk")
	if _, err := Load(); err == nil {
		t.Error("Load() error = nil for unknown backend")
	}
}
