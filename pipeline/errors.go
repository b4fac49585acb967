package pipeline

// Stage names used in StageError
const (
	StageParse    = "parse"
	StageExtract  = "extract"
	StageBuild    = "build"
	StageValidate = "validate"
	StageWrite    = "write"
)

// StageEmit returns the stage name of one target's emitter
func StageEmit(target string) string {
	return "emit:" + target
}

// StageError names the pipeline stage a failure happened in
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage string, err error) error {
	if err == nil {
		return nil
	}

	return &StageError{Stage: stage, Err: err}
}
