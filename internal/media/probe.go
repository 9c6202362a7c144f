package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Probe reports media durations via ffprobe.
type Probe struct {
	ffprobePath string
	runner      commandRunner
}

// NewProbe constructs a probe using the ffprobe binary on PATH.
func NewProbe() *Probe {
	return &Probe{
		ffprobePath: "ffprobe",
		runner:      &execRunner{},
	}
}

// Duration returns the duration of the media file in seconds.
func (p *Probe) Duration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	result, err := p.runner.Run(ctx, p.ffprobePath, args...)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed (exit=%d): %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	raw := strings.TrimSpace(result.Stdout)
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse media duration %q: %w", raw, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("media reports non-positive duration %.2fs", duration)
	}

	return duration, nil
}
