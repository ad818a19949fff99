package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Load when OPENAI_API_KEY is not set.
// The process must not start without it.
var ErrMissingAPIKey = errors.New("missing required environment variable: OPENAI_API_KEY")

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	BackendOpenAI     = "openai"
	BackendWhisperCpp = "whisper.cpp"
)

type Config struct {
	// Backend
	Backend        string
	WhisperCppURL  string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	Model          string
	BackendTimeout time.Duration

	// Tool
	DefaultLanguage string
	FFprobePath     string
	FFmpegPath      string
	WorkDirRoot     string

	// Surfaces
	Transport   string
	Port        int
	AuthSecret  string
	CORSOrigins []string
	RateLimit   int
	AudioRoots  []string // HTTP callers may only name files under these

	// Storage
	DataPath string
	DBPath   string // empty disables transcription history

	Debug bool
}

// Load reads configuration from the environment. When WHISPER_CONFIG names
// a YAML file its keys are used as fallbacks for unset variables.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(v.GetString("WHISPER_BACKEND"))
	if backend != BackendOpenAI && backend != BackendWhisperCpp {
		return nil, fmt.Errorf("unknown WHISPER_BACKEND %q (want %s or %s)", backend, BackendOpenAI, BackendWhisperCpp)
	}

	apiKey := strings.TrimSpace(v.GetString("OPENAI_API_KEY"))
	if apiKey == "" && backend == BackendOpenAI {
		return nil, ErrMissingAPIKey
	}

	dataPath := v.GetString("DATA_PATH")
	dbPath := v.GetString("DB_PATH")
	switch strings.ToLower(dbPath) {
	case "":
		dbPath = filepath.Join(dataPath, "transcriptions.db")
	case "off", "none", "disabled":
		dbPath = ""
	}

	transport := strings.ToLower(v.GetString("TRANSPORT"))
	if transport != TransportStdio && transport != TransportHTTP {
		return nil, fmt.Errorf("unknown TRANSPORT %q (want %s or %s)", transport, TransportStdio, TransportHTTP)
	}

	return &Config{
		Backend:         backend,
		WhisperCppURL:   v.GetString("WHISPER_CPP_URL"),
		OpenAIAPIKey:    apiKey,
		OpenAIBaseURL:   v.GetString("OPENAI_BASE_URL"),
		Model:           v.GetString("WHISPER_MODEL"),
		BackendTimeout:  v.GetDuration("WHISPER_BACKEND_TIMEOUT"),
		DefaultLanguage: v.GetString("WHISPER_DEFAULT_LANGUAGE"),
		FFprobePath:     v.GetString("FFPROBE_PATH"),
		FFmpegPath:      v.GetString("FFMPEG_PATH"),
		WorkDirRoot:     v.GetString("WORK_DIR_ROOT"),
		Transport:       transport,
		Port:            v.GetInt("PORT"),
		AuthSecret:      v.GetString("AUTH_SECRET"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		RateLimit:       v.GetInt("RATE_LIMIT"),
		AudioRoots:      splitList(v.GetString("AUDIO_ROOTS")),
		DataPath:        dataPath,
		DBPath:          dbPath,
		Debug:           v.GetBool("DEBUG"),
	}, nil
}

// AuthSecret returns AUTH_SECRET from the same sources as Load. It does not
// require an OpenAI key.
func AuthSecret() (string, error) {
	v, err := newViper()
	if err != nil {
		return "", err
	}
	secret := v.GetString("AUTH_SECRET")
	if secret == "" {
		return "", errors.New("AUTH_SECRET is not set")
	}
	return secret, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("WHISPER_BACKEND", BackendOpenAI)
	v.SetDefault("WHISPER_CPP_URL", "http://127.0.0.1:8080")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("WHISPER_MODEL", "whisper-1")
	v.SetDefault("WHISPER_BACKEND_TIMEOUT", "10m")
	v.SetDefault("WHISPER_DEFAULT_LANGUAGE", "pt")
	v.SetDefault("FFPROBE_PATH", "ffprobe")
	v.SetDefault("FFMPEG_PATH", "ffmpeg")
	v.SetDefault("WORK_DIR_ROOT", os.TempDir())
	v.SetDefault("TRANSPORT", TransportStdio)
	v.SetDefault("PORT", 8080)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT", 30)
	v.SetDefault("DATA_PATH", "./data")
	v.SetDefault("DEBUG", false)

	if path := v.GetString("WHISPER_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// MissingKeyHelp is printed when startup fails on ErrMissingAPIKey.
const MissingKeyHelp = "  OPENAI_API_KEY is required for Whisper transcription.\n" +
	"  Get your API key at: https://platform.openai.com/api-keys"

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
