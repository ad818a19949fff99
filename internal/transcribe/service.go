package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/video-stream/whisper-mcp/internal/logger"
	"github.com/video-stream/whisper-mcp/internal/whisper"
)

// Prober reads a media file's duration in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Segmenter writes [offset, offset+length) of src to dst.
type Segmenter interface {
	Extract(ctx context.Context, src string, offset, length float64, dst string) error
}

type Request struct {
	FilePath          string
	FileSize          int64
	Language          string
	IncludeTimestamps bool
}

// Segment is a span of speech with timestamps relative to the start of the
// source file.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Result struct {
	Text string
	// Segments is nil unless timestamps were requested.
	Segments []Segment
	Chunked  bool
	Chunks   int
	// Duration is set when the split path probed the file.
	Duration *float64
}

// Service turns one audio file into one transcript, splitting it first when
// it exceeds the backend upload limit. Chunks run strictly in order.
type Service struct {
	prober    Prober
	segmenter Segmenter
	backend   whisper.Transcriber
	logger    *logger.Logger
}

func NewService(prober Prober, segmenter Segmenter, backend whisper.Transcriber, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		prober:    prober,
		segmenter: segmenter,
		backend:   backend,
		logger:    log,
	}
}

// Transcribe runs the pipeline for req. Chunk files are written to
// workDir, which the caller owns and removes. Any failure aborts the whole
// request; a partial transcript is never returned.
func (s *Service) Transcribe(ctx context.Context, req Request, workDir string) (*Result, error) {
	if !NeedsSplit(req.FileSize) {
		return s.transcribeSingle(ctx, req)
	}
	return s.transcribeChunked(ctx, req, workDir)
}

func (s *Service) transcribeSingle(ctx context.Context, req Request) (*Result, error) {
	s.logger.Infof("[whisper] transcribing %s in one request (%d bytes)", req.FilePath, req.FileSize)

	tr, err := s.backend.Transcribe(ctx, whisper.Request{
		FilePath:   req.FilePath,
		Language:   req.Language,
		Timestamps: req.IncludeTimestamps,
	})
	if err != nil {
		return nil, err
	}

	m := newMerger(req.IncludeTimestamps)
	if err := m.add(tr, 0); err != nil {
		return nil, err
	}
	res := m.result()
	res.Chunks = 1
	return res, nil
}

func (s *Service) transcribeChunked(ctx context.Context, req Request, workDir string) (*Result, error) {
	duration, err := s.prober.Duration(ctx, req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("probe duration: %w", err)
	}
	plan, err := PlanChunks(duration)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("[whisper] splitting %s (%d bytes, %.1fs) into %d chunks", req.FilePath, req.FileSize, duration, len(plan))

	m := newMerger(req.IncludeTimestamps)
	for _, c := range plan {
		chunkPath := filepath.Join(workDir, fmt.Sprintf("chunk_%d.mp3", c.Index))
		if err := s.segmenter.Extract(ctx, req.FilePath, c.Offset, ChunkSeconds, chunkPath); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", c.Index, err)
		}

		tr, err := s.backend.Transcribe(ctx, whisper.Request{
			FilePath:   chunkPath,
			Language:   req.Language,
			Timestamps: req.IncludeTimestamps,
		})
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", c.Index, err)
		}
		if err := m.add(tr, c.Offset); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", c.Index, err)
		}
		s.logger.Debugf("[whisper] chunk %d/%d done (offset %.0fs)", c.Index+1, len(plan), c.Offset)
	}

	res := m.result()
	res.Chunked = true
	res.Chunks = len(plan)
	res.Duration = &duration
	return res, nil
}

// merger accumulates per-chunk transcripts into one result.
type merger struct {
	timestamps bool
	text       strings.Builder
	segments   []Segment
}

func newMerger(timestamps bool) *merger {
	m := &merger{timestamps: timestamps}
	if timestamps {
		m.segments = []Segment{}
	}
	return m
}

// add appends tr, shifting its chunk-relative segment times by offset.
func (m *merger) add(tr whisper.Transcript, offset float64) error {
	switch t := tr.(type) {
	case whisper.Plain:
		m.appendText(t.Text)
	case whisper.Timed:
		if m.timestamps {
			for _, seg := range t.Segments {
				m.segments = append(m.segments, Segment{
					Start: seg.Start + offset,
					End:   seg.End + offset,
					Text:  strings.TrimSpace(seg.Text),
				})
			}
		}
		m.appendText(t.Text)
	default:
		return fmt.Errorf("unexpected transcript type %T", tr)
	}
	return nil
}

func (m *merger) appendText(s string) {
	m.text.WriteString(s)
	m.text.WriteString(" ")
}

func (m *merger) result() *Result {
	return &Result{
		Text:     strings.TrimSpace(m.text.String()),
		Segments: m.segments,
	}
}
