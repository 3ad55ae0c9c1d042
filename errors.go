package unveil

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying a failed build attempt.
var (
	ErrRead      = errors.New("read error")
	ErrTransform = errors.New("transform error")
	ErrCompile   = errors.New("compile error")
	ErrWrite     = errors.New("write error")
	ErrWatch     = errors.New("watch error")
)

// Stage identifies a step of the build pipeline.
type Stage int

const (
	StageIdle Stage = iota
	StageReading
	StageRendering
	StageTransforming
	StageStyleCompiling
	StageWriting
)

var stageNames = [...]string{
	StageIdle:           "idle",
	StageReading:        "reading",
	StageRendering:      "rendering",
	StageTransforming:   "transforming",
	StageStyleCompiling: "style-compiling",
	StageWriting:        "writing",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// sentinel returns the error class a failure in this stage belongs to.
func (s Stage) sentinel() error {
	switch s {
	case StageReading:
		return ErrRead
	case StageRendering, StageTransforming:
		return ErrTransform
	case StageStyleCompiling:
		return ErrCompile
	case StageWriting:
		return ErrWrite
	}
	return nil
}

// BuildError reports the stage and path at which a build attempt failed.
// It matches ErrRead, ErrCompile, ErrWrite or ErrTransform with errors.Is
// depending on Stage.
type BuildError struct {
	Stage Stage  // Stage that failed
	Path  string // Offending file, optional
	Err   error  // Underlying cause
}

// NewBuildError creates a BuildError for the given stage.
func NewBuildError(stage Stage, path string, err error) *BuildError {
	return &BuildError{Stage: stage, Path: path, Err: err}
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	var b strings.Builder
	b.WriteString(e.Stage.String())
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the failing stage.
func (e *BuildError) Is(target error) bool {
	s := e.Stage.sentinel()
	return s != nil && target == s
}

// Diagnostic is a non-fatal warning raised while transforming HTML.
type Diagnostic struct {
	Offset  int    // Byte offset in the transformed input
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at offset %d", d.Message, d.Offset)
}
