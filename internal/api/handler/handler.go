package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/bruno-ai/bruno-be/internal/pipeline"
	"github.com/bruno-ai/bruno-be/internal/ratelimit"
)

// JobRunner runs one accepted job to a terminal state.
type JobRunner interface {
	Run(ctx context.Context, job pipeline.Job, emit pipeline.EmitFunc) (pipeline.Result, error)
}

// DurationProbe measures the duration of an uploaded media file.
type DurationProbe interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Limits holds upload validation and admission control settings.
type Limits struct {
	MaxVideoDuration time.Duration
	MaxRequests      int
	DebugRequests    int
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	Runner    JobRunner
	Probe     DurationProbe
	Analyzer  pipeline.Analyzer
	Prompter  pipeline.PromptWriter
	Limiter   *ratelimit.Limiter
	Limits    Limits
	UploadDir string
	OutputDir string
}

// GenerateHandler handles video upload, pipeline execution, and artifact
// retrieval requests.
type GenerateHandler struct {
	logger    *slog.Logger
	runner    JobRunner
	probe     DurationProbe
	analyzer  pipeline.Analyzer
	prompter  pipeline.PromptWriter
	limits    Limits
	uploadDir string
	outputDir string
}

// NewGenerateHandler creates a new GenerateHandler instance
func NewGenerateHandler(deps *Dependencies) *GenerateHandler {
	return &GenerateHandler{
		logger:    deps.Logger,
		runner:    deps.Runner,
		probe:     deps.Probe,
		analyzer:  deps.Analyzer,
		prompter:  deps.Prompter,
		limits:    deps.Limits,
		uploadDir: deps.UploadDir,
		outputDir: deps.OutputDir,
	}
}
