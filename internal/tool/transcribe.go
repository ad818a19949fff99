package tool

import (
	"context"
	"fmt"
	"os"

	"github.com/video-stream/whisper-mcp/internal/db"
	"github.com/video-stream/whisper-mcp/internal/logger"
	"github.com/video-stream/whisper-mcp/internal/transcribe"
	"github.com/video-stream/whisper-mcp/internal/workdir"
)

const (
	Name        = "transcribe_audio"
	Title       = "Transcribe Audio"
	Description = "Transcribe a local audio file using OpenAI Whisper API. Supports any audio format (mp3, wav, m4a, etc.). " +
		"Handles files larger than 25MB by automatically splitting into chunks. " +
		"Optimized for Portuguese (PT-BR) but supports any language."

	FilePathDescription          = "Absolute path to a local audio file (mp3, wav, m4a, etc.)"
	LanguageDescription          = "Language code for transcription (default: 'pt' for Portuguese)"
	IncludeTimestampsDescription = "Include segment-level timestamps in output"

	DefaultLanguage = "pt"

	errorPrefix = "Failed to transcribe audio: "
)

// Pipeline is the transcription core the tool drives.
type Pipeline interface {
	Transcribe(ctx context.Context, req transcribe.Request, workDir string) (*transcribe.Result, error)
}

// Recorder keeps a history of tool calls. Failures to record are logged and
// never change a call's outcome.
type Recorder interface {
	StartTranscription(t *db.Transcription) error
	FinishTranscription(t *db.Transcription) error
}

type Options struct {
	Pipeline        Pipeline
	Prober          transcribe.Prober // duration metadata on the single-shot path
	Recorder        Recorder          // optional
	WorkDirRoot     string
	DefaultLanguage string
	Logger          *logger.Logger
}

// Tool is the transcribe_audio operation. It is safe for concurrent use;
// every call owns its own work dir.
type Tool struct {
	pipeline        Pipeline
	prober          transcribe.Prober
	recorder        Recorder
	workDirRoot     string
	defaultLanguage string
	logger          *logger.Logger
}

func New(opts Options) *Tool {
	lang := opts.DefaultLanguage
	if lang == "" {
		lang = DefaultLanguage
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Tool{
		pipeline:        opts.Pipeline,
		prober:          opts.Prober,
		recorder:        opts.Recorder,
		workDirRoot:     opts.WorkDirRoot,
		defaultLanguage: lang,
		logger:          log,
	}
}

// DefaultLanguage is the language used when a call leaves it empty.
func (t *Tool) DefaultLanguage() string { return t.defaultLanguage }

type Input struct {
	FilePath          string `json:"file_path"`
	Language          string `json:"language,omitempty"`
	IncludeTimestamps bool   `json:"include_timestamps,omitempty"`
}

// Call runs one transcription. It never fails out of band: every error is
// reported in the returned Outcome.
func (t *Tool) Call(ctx context.Context, in Input) Outcome {
	lang := in.Language
	if lang == "" {
		lang = t.defaultLanguage
	}

	wd, err := workdir.Create(t.workDirRoot, t.logger)
	if err != nil {
		return t.fail(err)
	}
	defer wd.Release()

	if in.FilePath == "" {
		return t.fail(fmt.Errorf("file_path is required"))
	}
	info, err := os.Stat(in.FilePath)
	if err != nil {
		return t.fail(err)
	}
	if info.IsDir() {
		return t.fail(fmt.Errorf("%s is a directory", in.FilePath))
	}

	rec := &db.Transcription{
		FilePath:          in.FilePath,
		FileSize:          info.Size(),
		Language:          lang,
		IncludeTimestamps: in.IncludeTimestamps,
	}
	t.recordStart(rec)

	res, err := t.pipeline.Transcribe(ctx, transcribe.Request{
		FilePath:          in.FilePath,
		FileSize:          info.Size(),
		Language:          lang,
		IncludeTimestamps: in.IncludeTimestamps,
	}, wd.Path)
	if err != nil {
		rec.Status = db.StatusFailed
		rec.WasChunked = transcribe.NeedsSplit(info.Size())
		rec.Error = err.Error()
		t.recordFinish(rec)
		return t.fail(err)
	}

	duration := res.Duration
	if duration == nil {
		duration = t.probeDuration(ctx, in.FilePath)
	}

	rec.Status = db.StatusCompleted
	rec.WasChunked = res.Chunked
	rec.ChunkCount = res.Chunks
	rec.Duration = duration
	t.recordFinish(rec)

	t.logger.Infof("[tool] transcribed %s (%d bytes, chunked=%v, %d chars)", in.FilePath, info.Size(), res.Chunked, len(res.Text))

	return Outcome{
		ID: rec.ID,
		Payload: &Payload{
			Transcript: res.Text,
			Segments:   res.Segments,
			Metadata: Metadata{
				Language:   lang,
				Duration:   duration,
				FilePath:   in.FilePath,
				FileSize:   info.Size(),
				WasChunked: res.Chunked,
			},
		},
	}
}

// probeDuration is best-effort metadata: any failure, or a zero duration,
// is reported as unknown.
func (t *Tool) probeDuration(ctx context.Context, path string) *float64 {
	if t.prober == nil {
		return nil
	}
	d, err := t.prober.Duration(ctx, path)
	if err != nil {
		t.logger.Debugf("[tool] duration probe for %s skipped: %v", path, err)
		return nil
	}
	if d <= 0 {
		return nil
	}
	return &d
}

func (t *Tool) fail(err error) Outcome {
	msg := errorPrefix + err.Error()
	t.logger.Warnf("[tool] %s", msg)
	return Outcome{IsError: true, Message: msg}
}

func (t *Tool) recordStart(rec *db.Transcription) {
	if t.recorder == nil {
		return
	}
	if err := t.recorder.StartTranscription(rec); err != nil {
		t.logger.Warnf("[tool] recording transcription start failed: %v", err)
	}
}

func (t *Tool) recordFinish(rec *db.Transcription) {
	if t.recorder == nil || rec.ID == "" {
		return
	}
	if err := t.recorder.FinishTranscription(rec); err != nil {
		t.logger.Warnf("[tool] recording transcription %s failed: %v", rec.ID, err)
	}
}
