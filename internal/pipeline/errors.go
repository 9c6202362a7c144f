package pipeline

import (
	"errors"
	"fmt"
)

// ErrGenerationTimeout is returned when the audio generation service does not
// report completion within the configured wall-clock ceiling.
var ErrGenerationTimeout = errors.New("audio generation timed out")

// PipelineError records which stage a pipeline failure occurred in.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err.Error())
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
