package convert

import (
	"errors"
	"fmt"
)

// Stage names a step of the import pipeline.
type Stage string

const (
	StageRead      Stage = "read"
	StageParse     Stage = "parse"
	StageIndex     Stage = "index"
	StageTransform Stage = "transform"
	StageWrite     Stage = "write"
)

// StageError is returned by Run when a stage fails. Nothing has been written
// when the failing stage precedes StageWrite.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func failed(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// ErrorMessage formats an error returned by the import command for the
// terminal.
func ErrorMessage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return errorStyle.Render(fmt.Sprintf("import failed at %s stage:", se.Stage)) + " " + se.Err.Error()
	}
	return errorStyle.Render("error:") + " " + err.Error()
}
