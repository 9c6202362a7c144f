package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and plays back canned results.
type fakeRunner struct {
	name   string
	args   []string
	result commandResult
	err    error
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (commandResult, error) {
	r.name = name
	r.args = args
	return r.result, r.err
}

func TestProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		result  commandResult
		err     error
		want    float64
		wantErr string
	}{
		{
			name:   "valid duration",
			result: commandResult{Stdout: "17.433000\n"},
			want:   17.433,
		},
		{
			name:   "integer duration",
			result: commandResult{Stdout: "60\n"},
			want:   60,
		},
		{
			name:    "ffprobe failure",
			result:  commandResult{ExitCode: 1, Stderr: "moov atom not found"},
			err:     errors.New("exit status 1"),
			wantErr: "ffprobe failed",
		},
		{
			name:    "garbage output",
			result:  commandResult{Stdout: "N/A\n"},
			wantErr: "could not parse media duration",
		},
		{
			name:    "zero duration",
			result:  commandResult{Stdout: "0.000000\n"},
			wantErr: "non-positive duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: tt.result, err: tt.err}
			probe := &Probe{ffprobePath: "ffprobe", runner: runner}

			got, err := probe.Duration(context.Background(), "/tmp/in.mp4")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
			assert.Equal(t, "ffprobe", runner.name)
			assert.Contains(t, runner.args, "/tmp/in.mp4")
		})
	}
}

func TestMuxerCombine(t *testing.T) {
	runner := &fakeRunner{}
	muxer := &Muxer{
		ffmpegPath: "ffmpeg",
		runner:     runner,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	err := muxer.Combine(context.Background(), "/tmp/in.mp4", "/tmp/audio.mp3", "/outputs/out.mp4")
	require.NoError(t, err)

	assert.Equal(t, "ffmpeg", runner.name)
	assert.Equal(t, []string{
		"-i", "/tmp/in.mp4",
		"-i", "/tmp/audio.mp3",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		"-movflags", "+faststart",
		"-y", "/outputs/out.mp4",
	}, runner.args)
}

func TestMuxerCombineFailure(t *testing.T) {
	runner := &fakeRunner{
		result: commandResult{
			ExitCode: 1,
			Stderr:   "frame dropped\nError while opening encoder\n",
		},
		err: errors.New("exit status 1"),
	}
	muxer := &Muxer{
		ffmpegPath: "ffmpeg",
		runner:     runner,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	err := muxer.Combine(context.Background(), "in.mp4", "a.mp3", "out.mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error while opening encoder")
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "second", lastLine("first\nsecond\n"))
	assert.Equal(t, "only", lastLine("only"))
	assert.Equal(t, "no error output", lastLine("  \n \n"))
}
