package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultPollInterval      = 5 * time.Second
	defaultGenerationTimeout = 300 * time.Second
)

// Job is one accepted video processing request. The caller validates the
// media type and duration before handing the job to the runner.
type Job struct {
	VideoPath string
	Filename  string
	Duration  float64
}

// Result references the combined output artifact of a successful run.
type Result struct {
	OutputPath string
	OutputName string
}

// Config holds runner tuning knobs.
type Config struct {
	OutputDir         string
	PollInterval      time.Duration
	GenerationTimeout time.Duration
}

// Runner drives the fixed stage sequence for a single job. Each stage
// delegates to one collaborator; a stage event is emitted before each
// collaborator call starts.
type Runner struct {
	logger    *slog.Logger
	analyzer  Analyzer
	prompter  PromptWriter
	generator Generator
	combiner  Combiner

	outputDir         string
	pollInterval      time.Duration
	generationTimeout time.Duration

	// Injected for tests.
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	removeFile func(path string) error
}

// NewRunner wires a runner with its four stage collaborators.
func NewRunner(logger *slog.Logger, analyzer Analyzer, prompter PromptWriter, generator Generator, combiner Combiner, cfg Config) *Runner {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	generationTimeout := cfg.GenerationTimeout
	if generationTimeout <= 0 {
		generationTimeout = defaultGenerationTimeout
	}

	return &Runner{
		logger:            logger,
		analyzer:          analyzer,
		prompter:          prompter,
		generator:         generator,
		combiner:          combiner,
		outputDir:         cfg.OutputDir,
		pollInterval:      pollInterval,
		generationTimeout: generationTimeout,
		now:               time.Now,
		sleep:             sleepContext,
		removeFile:        os.Remove,
	}
}

// Run executes uploading → analyzing → prompting → generating → combining,
// emitting one event before each stage and a terminal done or error event.
// Intermediate audio is released on every terminal path, before the error
// event is surfaced.
func (r *Runner) Run(ctx context.Context, job Job, emit EmitFunc) (result Result, err error) {
	var audioPath string

	defer func() {
		if err != nil {
			emit(Event{Stage: StageError, Message: err.Error()})
		}
	}()
	defer func() {
		if audioPath != "" {
			if removeErr := r.removeFile(audioPath); removeErr != nil {
				r.logger.Warn("Failed to remove intermediate audio",
					slog.String("path", audioPath),
					slog.String("error", removeErr.Error()),
				)
			}
		}
	}()

	emit(Event{Stage: StageUploading, Message: "Video uploaded successfully", Progress: 10})

	emit(Event{Stage: StageAnalyzing, Message: "Analyzing video content...", Progress: 15})
	videoContext, err := r.analyzer.Analyze(ctx, job.VideoPath)
	if err != nil {
		return Result{}, &PipelineError{Stage: StageAnalyzing, Err: err}
	}
	r.logger.Info("Video analysis complete",
		slog.Int("context_chars", len(videoContext)),
	)

	emit(Event{Stage: StagePrompting, Message: "Crafting music prompt...", Progress: 40})
	prompt, err := r.prompter.WritePrompt(ctx, videoContext, job.Duration)
	if err != nil {
		return Result{}, &PipelineError{Stage: StagePrompting, Err: err}
	}
	r.logger.Info("Music prompt generated",
		slog.String("tags", prompt.Tags),
		slog.String("negative_tags", prompt.NegativeTags),
	)

	emit(Event{Stage: StageGenerating, Message: "Generating audio...", Progress: 60})
	audioPath, err = r.generate(ctx, prompt, job.Duration)
	if err != nil {
		return Result{}, &PipelineError{Stage: StageGenerating, Err: err}
	}
	r.logger.Info("Audio generated",
		slog.String("audio_path", audioPath),
	)

	emit(Event{Stage: StageCombining, Message: "Combining video and audio...", Progress: 85})
	outputName := outputFileName(job.Filename)
	outputPath := filepath.Join(r.outputDir, outputName)
	if err := r.combiner.Combine(ctx, job.VideoPath, audioPath, outputPath); err != nil {
		// A failed mux can leave a partial file in the served output
		// directory; it must not be retrievable.
		if removeErr := r.removeFile(outputPath); removeErr != nil && !os.IsNotExist(removeErr) {
			r.logger.Warn("Failed to remove partial output",
				slog.String("path", outputPath),
				slog.String("error", removeErr.Error()),
			)
		}
		return Result{}, &PipelineError{Stage: StageCombining, Err: err}
	}
	r.logger.Info("Pipeline complete",
		slog.String("output", outputPath),
	)

	emit(Event{Stage: StageDone, Message: fmt.Sprintf("Complete! File: %s", outputName), Progress: 100})
	return Result{OutputPath: outputPath, OutputName: outputName}, nil
}

// generate submits the generation request and polls on a fixed interval
// until the service reports complete, the service reports a failure, or the
// wall-clock ceiling is reached. The finished audio is fetched exactly once.
func (r *Runner) generate(ctx context.Context, prompt Prompt, duration float64) (string, error) {
	handle, err := r.generator.Submit(ctx, prompt, duration)
	if err != nil {
		return "", err
	}
	r.logger.Info("Audio generation submitted",
		slog.String("generation_id", string(handle)),
	)

	deadline := r.now().Add(r.generationTimeout)
	for {
		if r.now().After(deadline) {
			return "", fmt.Errorf("%w after %s", ErrGenerationTimeout, r.generationTimeout)
		}
		if err := r.sleep(ctx, r.pollInterval); err != nil {
			return "", err
		}

		status, err := r.generator.Poll(ctx, handle)
		if err != nil {
			r.logger.Warn("Generation status check failed, retrying",
				slog.String("generation_id", string(handle)),
				slog.String("error", err.Error()),
			)
			continue
		}

		switch status.Status {
		case GenerationComplete:
			if status.AudioURL == "" {
				continue
			}
			return r.generator.Fetch(ctx, status.AudioURL)
		case GenerationError:
			msg := status.ErrorMessage
			if msg == "" {
				msg = "unknown error"
			}
			return "", fmt.Errorf("generation failed: %s", msg)
		default:
			// submitted, streaming, or anything unrecognized: still pending.
		}
	}
}

// outputFileName derives the served artifact name from the upload filename.
func outputFileName(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if stem == "" || stem == "." {
		stem = "output"
	}
	return fmt.Sprintf("output_%s.mp4", stem)
}

// sleepContext waits for d or until ctx is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
