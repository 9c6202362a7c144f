package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock advances virtual time whenever the runner sleeps.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.sleeps++
	c.now = c.now.Add(d)
	return nil
}

type stubAnalyzer struct {
	context string
	err     error
	calls   int
}

func (a *stubAnalyzer) Analyze(_ context.Context, _ string) (string, error) {
	a.calls++
	return a.context, a.err
}

type stubPromptWriter struct {
	prompt Prompt
	err    error
	calls  int
}

func (p *stubPromptWriter) WritePrompt(_ context.Context, _ string, _ float64) (Prompt, error) {
	p.calls++
	return p.prompt, p.err
}

type pollResult struct {
	status GenerationStatus
	err    error
}

type stubGenerator struct {
	submitErr   error
	pollResults []pollResult
	pollCalls   int
	fetchPath   string
	fetchErr    error
	fetchCalls  int
	fetchedURL  string
}

func (g *stubGenerator) Submit(_ context.Context, _ Prompt, _ float64) (GenerationHandle, error) {
	if g.submitErr != nil {
		return "", g.submitErr
	}
	return GenerationHandle("gen-123"), nil
}

func (g *stubGenerator) Poll(_ context.Context, _ GenerationHandle) (GenerationStatus, error) {
	i := g.pollCalls
	g.pollCalls++
	if len(g.pollResults) == 0 {
		return GenerationStatus{Status: GenerationSubmitted}, nil
	}
	if i >= len(g.pollResults) {
		i = len(g.pollResults) - 1
	}
	return g.pollResults[i].status, g.pollResults[i].err
}

func (g *stubGenerator) Fetch(_ context.Context, audioURL string) (string, error) {
	g.fetchCalls++
	g.fetchedURL = audioURL
	return g.fetchPath, g.fetchErr
}

type stubCombiner struct {
	err        error
	calls      int
	videoPath  string
	audioPath  string
	outputPath string
}

func (c *stubCombiner) Combine(_ context.Context, videoPath, audioPath, outputPath string) error {
	c.calls++
	c.videoPath = videoPath
	c.audioPath = audioPath
	c.outputPath = outputPath
	return c.err
}

type runnerFixture struct {
	runner    *Runner
	analyzer  *stubAnalyzer
	prompter  *stubPromptWriter
	generator *stubGenerator
	combiner  *stubCombiner
	clock     *fakeClock
	removed   []string
	events    []Event
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()

	f := &runnerFixture{
		analyzer:  &stubAnalyzer{context: "a red fox runs across a snowy field"},
		prompter:  &stubPromptWriter{prompt: Prompt{Prompt: "P", Tags: "x", NegativeTags: "y"}},
		generator: &stubGenerator{fetchPath: "/tmp/suno_audio.mp3"},
		combiner:  &stubCombiner{},
		clock:     &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}

	f.runner = NewRunner(discardLogger(), f.analyzer, f.prompter, f.generator, f.combiner, Config{
		OutputDir:         "/outputs",
		PollInterval:      5 * time.Second,
		GenerationTimeout: 300 * time.Second,
	})
	f.runner.now = f.clock.Now
	f.runner.sleep = f.clock.Sleep
	f.runner.removeFile = func(path string) error {
		f.removed = append(f.removed, path)
		return nil
	}

	return f
}

func (f *runnerFixture) run(t *testing.T) (Result, error) {
	t.Helper()
	job := Job{VideoPath: "/uploads/clip.mp4", Filename: "clip.mp4", Duration: 17.4}
	return f.runner.Run(context.Background(), job, func(ev Event) {
		f.events = append(f.events, ev)
	})
}

func stagesOf(events []Event) []Stage {
	stages := make([]Stage, len(events))
	for i, ev := range events {
		stages[i] = ev.Stage
	}
	return stages
}

func TestRunnerHappyPath(t *testing.T) {
	f := newRunnerFixture(t)
	f.generator.pollResults = []pollResult{
		{status: GenerationStatus{Status: GenerationSubmitted}},
		{status: GenerationStatus{Status: GenerationComplete, AudioURL: "https://cdn.example.com/audio.mp3"}},
	}

	result, err := f.run(t)
	require.NoError(t, err)

	assert.Equal(t, []Stage{
		StageUploading, StageAnalyzing, StagePrompting, StageGenerating, StageCombining, StageDone,
	}, stagesOf(f.events))

	assert.Equal(t, "output_clip.mp4", result.OutputName)
	assert.Equal(t, filepath.Join("/outputs", "output_clip.mp4"), result.OutputPath)
	assert.Contains(t, f.events[len(f.events)-1].Message, "output_clip.mp4")

	assert.Equal(t, 1, f.analyzer.calls)
	assert.Equal(t, 1, f.prompter.calls)
	assert.Equal(t, 2, f.generator.pollCalls)
	assert.Equal(t, 1, f.generator.fetchCalls)
	assert.Equal(t, "https://cdn.example.com/audio.mp3", f.generator.fetchedURL)

	assert.Equal(t, "/uploads/clip.mp4", f.combiner.videoPath)
	assert.Equal(t, "/tmp/suno_audio.mp3", f.combiner.audioPath)

	// Intermediate audio is released after the terminal state.
	assert.Equal(t, []string{"/tmp/suno_audio.mp3"}, f.removed)
}

func TestRunnerFailureShortCircuits(t *testing.T) {
	boom := errors.New("collaborator exploded")

	tests := []struct {
		name       string
		setup      func(f *runnerFixture)
		wantStages []Stage
	}{
		{
			name:       "analysis failure",
			setup:      func(f *runnerFixture) { f.analyzer.err = boom },
			wantStages: []Stage{StageUploading, StageAnalyzing, StageError},
		},
		{
			name:       "prompt failure",
			setup:      func(f *runnerFixture) { f.prompter.err = boom },
			wantStages: []Stage{StageUploading, StageAnalyzing, StagePrompting, StageError},
		},
		{
			name:       "generation submit failure",
			setup:      func(f *runnerFixture) { f.generator.submitErr = boom },
			wantStages: []Stage{StageUploading, StageAnalyzing, StagePrompting, StageGenerating, StageError},
		},
		{
			name: "combine failure",
			setup: func(f *runnerFixture) {
				f.generator.pollResults = []pollResult{
					{status: GenerationStatus{Status: GenerationComplete, AudioURL: "https://cdn.example.com/a.mp3"}},
				}
				f.combiner.err = boom
			},
			wantStages: []Stage{StageUploading, StageAnalyzing, StagePrompting, StageGenerating, StageCombining, StageError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRunnerFixture(t)
			tt.setup(f)

			_, err := f.run(t)
			require.Error(t, err)

			assert.Equal(t, tt.wantStages, stagesOf(f.events))
			assert.Contains(t, f.events[len(f.events)-1].Message, "collaborator exploded")

			var stageErr *PipelineError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.wantStages[len(tt.wantStages)-2], stageErr.Stage)
		})
	}
}

func TestRunnerGenerationTimeout(t *testing.T) {
	f := newRunnerFixture(t)
	// Status never leaves submitted, so only the clock can end the stage.
	f.generator.pollResults = []pollResult{
		{status: GenerationStatus{Status: GenerationSubmitted}},
	}

	start := f.clock.now
	_, err := f.run(t)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationTimeout)

	elapsed := f.clock.now.Sub(start)
	assert.GreaterOrEqual(t, elapsed, 300*time.Second)
	assert.Less(t, elapsed, 310*time.Second)

	// No audio fetch once the ceiling fires.
	assert.Equal(t, 0, f.generator.fetchCalls)

	last := f.events[len(f.events)-1]
	assert.Equal(t, StageError, last.Stage)
	assert.Contains(t, last.Message, "timed out")
}

func TestRunnerUnrecognizedStatusKeepsPolling(t *testing.T) {
	f := newRunnerFixture(t)
	f.generator.pollResults = []pollResult{
		{status: GenerationStatus{Status: "queued"}},
		{status: GenerationStatus{Status: GenerationStreaming}},
		{status: GenerationStatus{Status: GenerationComplete, AudioURL: "https://cdn.example.com/a.mp3"}},
	}

	_, err := f.run(t)
	require.NoError(t, err)
	assert.Equal(t, 3, f.generator.pollCalls)
	assert.Equal(t, 1, f.generator.fetchCalls)
}

func TestRunnerPollErrorIsRetried(t *testing.T) {
	f := newRunnerFixture(t)
	f.generator.pollResults = []pollResult{
		{err: errors.New("connection reset")},
		{status: GenerationStatus{Status: GenerationComplete, AudioURL: "https://cdn.example.com/a.mp3"}},
	}

	_, err := f.run(t)
	require.NoError(t, err)
	assert.Equal(t, 2, f.generator.pollCalls)
}

func TestRunnerGenerationFailureStatus(t *testing.T) {
	f := newRunnerFixture(t)
	f.generator.pollResults = []pollResult{
		{status: GenerationStatus{Status: GenerationError, ErrorMessage: "content policy violation"}},
	}

	_, err := f.run(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content policy violation")
	assert.Equal(t, 0, f.generator.fetchCalls)
}

func TestRunnerReleasesAudioBeforeErrorEvent(t *testing.T) {
	f := newRunnerFixture(t)
	f.generator.pollResults = []pollResult{
		{status: GenerationStatus{Status: GenerationComplete, AudioURL: "https://cdn.example.com/a.mp3"}},
	}
	f.combiner.err = errors.New("mux failed")

	var trace []string
	f.runner.removeFile = func(path string) error {
		trace = append(trace, "remove:"+path)
		return nil
	}

	job := Job{VideoPath: "/uploads/clip.mp4", Filename: "clip.mp4", Duration: 17.4}
	_, err := f.runner.Run(context.Background(), job, func(ev Event) {
		if ev.Stage == StageError {
			trace = append(trace, "event:error")
		}
	})
	require.Error(t, err)

	// Temp artifacts are gone before the error is surfaced to the observer.
	require.Equal(t, []string{
		"remove:" + filepath.Join("/outputs", "output_clip.mp4"),
		"remove:/tmp/suno_audio.mp3",
		"event:error",
	}, trace)
}

func TestRunnerRemovesPartialOutputOnCombineFailure(t *testing.T) {
	f := newRunnerFixture(t)
	f.generator.pollResults = []pollResult{
		{status: GenerationStatus{Status: GenerationComplete, AudioURL: "https://cdn.example.com/a.mp3"}},
	}
	f.combiner.err = errors.New("mux failed")

	_, err := f.run(t)
	require.Error(t, err)

	// A half-written mux result must not stay in the served output dir.
	assert.Contains(t, f.removed, filepath.Join("/outputs", "output_clip.mp4"))
	assert.Contains(t, f.removed, "/tmp/suno_audio.mp3")
}

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"clip.mp4", "output_clip.mp4"},
		{"holiday video.mov", "output_holiday video.mp4"},
		{"", "output_output.mp4"},
		{"../../etc/passwd", "output_passwd.mp4"},
		{"noext", "output_noext.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, outputFileName(tt.filename))
		})
	}
}
