package pipeline

// Stage identifies one step of the fixed processing sequence.
type Stage string

const (
	StageUploading  Stage = "uploading"
	StageAnalyzing  Stage = "analyzing"
	StagePrompting  Stage = "prompting"
	StageGenerating Stage = "generating"
	StageCombining  Stage = "combining"
	StageDone       Stage = "done"
	StageError      Stage = "error"
)

// Event is a progress notification emitted at each stage transition.
// Events are produced in the exact order the stages execute.
type Event struct {
	Stage    Stage  `json:"stage"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

// EmitFunc receives stage events synchronously, before the stage's
// collaborator call begins.
type EmitFunc func(Event)
