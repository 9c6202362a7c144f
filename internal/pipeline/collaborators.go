package pipeline

import "context"

// Prompt is the synthesized music brief handed to the generation service.
type Prompt struct {
	Prompt       string
	Tags         string
	NegativeTags string
}

// GenerationHandle is an opaque identifier for one in-flight audio
// generation request.
type GenerationHandle string

// Generation statuses reported by the audio generation service. Anything
// else is treated as still pending.
const (
	GenerationSubmitted = "submitted"
	GenerationStreaming = "streaming"
	GenerationComplete  = "complete"
	GenerationError     = "error"
)

// GenerationStatus is one poll result for an in-flight generation.
type GenerationStatus struct {
	Status       string
	AudioURL     string
	ErrorMessage string
}

// Analyzer produces a textual description of the video's content.
type Analyzer interface {
	Analyze(ctx context.Context, videoPath string) (string, error)
}

// PromptWriter turns a video description into a music brief.
type PromptWriter interface {
	WritePrompt(ctx context.Context, videoContext string, duration float64) (Prompt, error)
}

// Generator is the asynchronous music generation collaborator. Submit
// starts a generation, Poll reports its status, and Fetch downloads the
// finished audio to a local file.
type Generator interface {
	Submit(ctx context.Context, prompt Prompt, duration float64) (GenerationHandle, error)
	Poll(ctx context.Context, handle GenerationHandle) (GenerationStatus, error)
	Fetch(ctx context.Context, audioURL string) (string, error)
}

// Combiner muxes the generated audio onto the source video.
type Combiner interface {
	Combine(ctx context.Context, videoPath, audioPath, outputPath string) error
}
