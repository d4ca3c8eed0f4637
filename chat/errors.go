package chat

import (
	"errors"
	"fmt"
)

// Stage names the step of a query that failed.
type Stage string

const (
	StageDiscovery Stage = "list tools"
	StageModel     Stage = "model call"
	StageArguments Stage = "parse tool arguments"
	StageTool      Stage = "tool call"
	StageFollowUp  Stage = "follow-up model call"
)

// ConnectionError reports a query attempted without a usable session.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("connection: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

// QueryError is a failure inside one query. ToolName is set for the argument
// and tool stages.
type QueryError struct {
	Stage    Stage
	ToolName string
	Cause    error
}

func (e *QueryError) Error() string {
	if e == nil {
		return ""
	}
	if e.ToolName != "" {
		return fmt.Sprintf("%s %q: %v", e.Stage, e.ToolName, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

func (e *QueryError) Unwrap() error { return e.Cause }

// IsStage reports whether err is a QueryError from stage.
func IsStage(err error, stage Stage) bool {
	var qe *QueryError
	return errors.As(err, &qe) && qe.Stage == stage
}
