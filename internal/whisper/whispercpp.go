package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/video-stream/whisper-mcp/internal/logger"
)

// WhisperCppClient talks to a whisper.cpp server (whisper-server). The
// server must run with --convert to accept the mp3 chunks the splitter
// writes.
type WhisperCppClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewWhisperCppClient(baseURL string, httpClient *http.Client, log *logger.Logger) *WhisperCppClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logger.Nop()
	}
	return &WhisperCppClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     log,
	}
}

func (c *WhisperCppClient) Name() string {
	return "whisper.cpp"
}

func (c *WhisperCppClient) Transcribe(ctx context.Context, req Request) (Transcript, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	audioFile, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer audioFile.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audioFile); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	format := "json"
	if req.Timestamps {
		format = "verbose_json"
	}
	writer.WriteField("response_format", format)
	writer.WriteField("temperature", "0.0")
	if req.Language != "" && req.Language != "auto" {
		writer.WriteField("language", req.Language)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	url := c.baseURL + "/inference"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debugf("[whisper-cpp] sending %s to %s (format=%s)", req.FilePath, url, format)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper server request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper server error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var plain struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &plain); err != nil {
		return nil, fmt.Errorf("decode transcription: %w", err)
	}
	if plain.Error != "" {
		return nil, fmt.Errorf("whisper server error: %s", plain.Error)
	}
	if !req.Timestamps {
		return Plain{Text: strings.TrimSpace(plain.Text)}, nil
	}
	timed, err := decodeVerbose(strings.TrimSpace(plain.Text), body)
	if err != nil {
		return nil, err
	}
	return timed, nil
}
