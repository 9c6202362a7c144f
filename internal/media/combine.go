package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Muxer combines an audioless video with a generated audio track. It
// implements pipeline.Combiner.
type Muxer struct {
	ffmpegPath string
	runner     commandRunner
	logger     *slog.Logger
}

// NewMuxer constructs a muxer using the ffmpeg binary on PATH.
func NewMuxer(logger *slog.Logger) *Muxer {
	return &Muxer{
		ffmpegPath: "ffmpeg",
		runner:     &execRunner{},
		logger:     logger,
	}
}

// Combine muxes audioPath onto videoPath and writes the result to
// outputPath. The video stream is copied untouched; -shortest trims the
// audio so the output never runs longer than the source video.
func (m *Muxer) Combine(ctx context.Context, videoPath, audioPath, outputPath string) error {
	args := buildCombineArgs(videoPath, audioPath, outputPath)

	m.logger.Info("Muxing video and audio",
		slog.String("video", videoPath),
		slog.String("audio", audioPath),
		slog.String("output", outputPath),
	)

	result, err := m.runner.Run(ctx, m.ffmpegPath, args...)
	if err != nil {
		m.logger.Error("ffmpeg mux failed",
			slog.Int("exit_code", result.ExitCode),
			slog.String("stderr", tail(result.Stderr, 2048)),
		)
		return fmt.Errorf("ffmpeg mux failed (exit=%d): %s", result.ExitCode, lastLine(result.Stderr))
	}

	return nil
}

// buildCombineArgs assembles the ffmpeg invocation for the mux.
func buildCombineArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		"-movflags", "+faststart",
		"-y", outputPath,
	}
}

// lastLine extracts the final non-empty stderr line, which is where ffmpeg
// puts its actual complaint.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no error output"
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
