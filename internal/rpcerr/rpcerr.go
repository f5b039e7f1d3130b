// Package rpcerr maps the error kinds named in the specification (§7) to
// the wire-level error objects the LSP and DAP facades return. It has no
// transport dependency of its own — sourcegraph/jsonrpc2 accepts any error
// implementing the code/message shape via *jsonrpc2.Error, which the LSP
// and DAP facades construct from the values here.
package rpcerr

import "fmt"

// Code is an LSP/JSON-RPC error code.
type Code int

// Standard JSON-RPC / LSP error codes this server produces. Values match
// the LSP specification so clients render them without translation.
const (
	CodeInvalidParams  Code = -32602
	CodeInternal       Code = -32603
	CodeServerNotReady Code = -32002
	// CodeNoProgramSpecified is the DAP-specific code spec.md §7 assigns
	// to ChildSpawnFailure when launch.program is missing.
	CodeNoProgramSpecified Code = 1001
)

// Error is a code+message pair ready for transport-level wrapping.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// InvalidParams builds the error used for rename on an empty name or a
// non-renameable node (spec.md §7).
func InvalidParams(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected internal failure.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: err.Error()}
}

// NoProgramSpecified is returned by the DAP facade's launch handler when
// the required `program` argument is missing.
func NoProgramSpecified() *Error {
	return &Error{Code: CodeNoProgramSpecified, Message: "No program specified to debug."}
}
