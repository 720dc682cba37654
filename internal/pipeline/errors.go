package pipeline

import "fmt"

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageDecode  Stage = "decode"
	StageUpload  Stage = "upload"
	StageSubmit  Stage = "submit"
	StageResolve Stage = "resolve"
	StageWrite   Stage = "write"
)

// StageError ties an underlying collaborator error to the stage and segment
// that produced it. Index is -1 when the failure is not segment specific.
type StageError struct {
	Stage Stage
	Index int
	Err   error
}

func (e *StageError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s segment %d: %v", e.Stage, e.Index, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err, returning nil when err is nil.
func NewStageError(stage Stage, index int, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Index: index, Err: err}
}
