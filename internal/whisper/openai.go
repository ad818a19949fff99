package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/video-stream/whisper-mcp/internal/logger"
)

const DefaultModel = "whisper-1"

type OpenAIConfig struct {
	APIKey  string
	BaseURL string // OpenAI-compatible server; empty means api.openai.com
	Model   string
	Timeout time.Duration
}

// OpenAIClient uses the OpenAI audio transcription API. It is built once at
// startup and shared read-only by every tool call.
type OpenAIClient struct {
	client openai.Client
	model  string
	logger *logger.Logger
}

func NewOpenAIClient(cfg OpenAIConfig, log *logger.Logger) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Failures go straight back to the caller.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
		logger: log,
	}
}

func (c *OpenAIClient) Name() string {
	return "openai"
}

// verboseResponse is the part of a verbose_json answer the SDK type
// does not expose directly.
type verboseResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (c *OpenAIClient) Transcribe(ctx context.Context, req Request) (Transcript, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		File:           f,
		Model:          openai.AudioModel(c.model),
		ResponseFormat: openai.AudioResponseFormatJSON,
	}
	if req.Timestamps {
		params.ResponseFormat = openai.AudioResponseFormatVerboseJSON
	}
	if req.Language != "" && req.Language != "auto" {
		params.Language = openai.String(req.Language)
	}

	c.logger.Debugf("[whisper-openai] sending %s (model=%s format=%s)", req.FilePath, c.model, params.ResponseFormat)

	resp, err := c.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, err
	}

	if !req.Timestamps {
		return Plain{Text: resp.Text}, nil
	}

	timed, err := decodeVerbose(resp.Text, []byte(resp.RawJSON()))
	if err != nil {
		return nil, err
	}
	return timed, nil
}

// decodeVerbose builds a Timed from a verbose_json body. A body without
// segments yields an empty, non-nil Segments.
func decodeVerbose(text string, raw []byte) (Timed, error) {
	timed := Timed{Text: text, Segments: []Segment{}}
	if len(raw) == 0 {
		return timed, nil
	}
	var verbose verboseResponse
	if err := json.Unmarshal(raw, &verbose); err != nil {
		return Timed{}, fmt.Errorf("decode verbose transcription: %w", err)
	}
	if timed.Text == "" {
		timed.Text = verbose.Text
	}
	for _, s := range verbose.Segments {
		timed.Segments = append(timed.Segments, Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	return timed, nil
}
