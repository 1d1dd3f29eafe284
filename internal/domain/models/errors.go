package models

import (
	"errors"
	"fmt"
)

// OracleError wraps a transport or auth failure talking to the language model.
// It is fatal to the dispatch turn: the caller must be able to distinguish
// "the oracle found nothing" from "the oracle was unreachable".
type OracleError struct {
	Op  string // "extract", "select", "synthesize"
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Op, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// IsOracleError reports whether err is (or wraps) an OracleError.
func IsOracleError(err error) bool {
	var oe *OracleError
	return errors.As(err, &oe)
}

// UnknownToolError means the oracle selected a tool name absent from the
// registry. The registry mapping is closed, so this indicates a contract
// mismatch between the advertised catalog and the registry and must abort the
// turn before any tool runs.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %q", e.Name)
}

// IsUnknownTool reports whether err is (or wraps) an UnknownToolError.
func IsUnknownTool(err error) bool {
	var ue *UnknownToolError
	return errors.As(err, &ue)
}
