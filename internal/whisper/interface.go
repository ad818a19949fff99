package whisper

import "context"

// Request is one file sent to the backend.
type Request struct {
	FilePath   string // local audio file, at most the backend upload limit
	Language   string // ISO-639-1 code; "" or "auto" lets the backend detect
	Timestamps bool   // ask for segment-level timing
}

// Transcript is the backend's answer for one Request. It is a Plain when
// Request.Timestamps was false and a Timed when it was true.
type Transcript interface {
	transcript()
}

type Plain struct {
	Text string
}

// Timed carries segments relative to the start of the uploaded file.
// Segments is empty when the backend supplied no timing.
type Timed struct {
	Text     string
	Segments []Segment
}

type Segment struct {
	Start float64
	End   float64
	Text  string
}

func (Plain) transcript() {}
func (Timed) transcript() {}

// Transcriber is a speech-to-text backend.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (Transcript, error)
	Name() string
}
