package models

// Stage is a named phase of pipeline progress reported to the caller.
type Stage string

const (
	StageEncoding   Stage = "encoding"
	StageSending    Stage = "sending"
	StageProcessing Stage = "processing"
	StageParsing    Stage = "parsing"
	StageComplete   Stage = "complete"
)

// StagePercentage maps each stage to its fixed completion estimate.
// Percentages are monotonically non-decreasing in stage order and
// terminate at 100.
var StagePercentage = map[Stage]int{
	StageEncoding:   10,
	StageSending:    25,
	StageProcessing: 50,
	StageParsing:    75,
	StageComplete:   100,
}

// ProgressUpdate announces a pipeline stage transition. Updates are
// ephemeral and never persisted.
type ProgressUpdate struct {
	Stage      Stage  `json:"stage"`
	Message    string `json:"message"`
	Percentage int    `json:"percentage"`
}
