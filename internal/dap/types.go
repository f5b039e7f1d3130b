// Package dap is the DAP Facade (spec.md C9): it maps Debug Adapter
// Protocol requests onto the Perl Process Driver (C7) and Debugger
// Output Parser (C8), holding the breakpoint table, the variable
// handle table, and the stop-on-entry heuristic. Grounded on the
// jsonrpc2.HandlerWithError dispatch shape the retrieval pack's
// LSP servers use (other_examples' saibing/bingo `langserver/handler.go`:
// one `handle(ctx, conn, req) (interface{}, error)` method switching on
// req.Method), adapted to DAP's request/response/event vocabulary
// instead of LSP's.
package dap

// Capabilities is this server's `initialize` response body. Field names
// match the DAP wire shape exactly so a direct JSON marshal is correct.
type Capabilities struct {
	SupportsConfigurationDoneRequest      bool     `json:"supportsConfigurationDoneRequest"`
	SupportsEvaluateForHovers             bool     `json:"supportsEvaluateForHovers"`
	SupportsConditionalBreakpoints        bool     `json:"supportsConditionalBreakpoints"`
	SupportsLogPoints                     bool     `json:"supportsLogPoints"`
	CompletionTriggerCharacters           []string `json:"completionTriggerCharacters"`
	SupportsBreakpointLocationsRequest    bool     `json:"supportsBreakpointLocationsRequest"`
	SupportsFunctionBreakpoints           bool     `json:"supportsFunctionBreakpoints"`
	SupportsStepInTargetsRequest          bool     `json:"supportsStepInTargetsRequest"`
	SupportsExceptionInfoRequest          bool     `json:"supportsExceptionInfoRequest"`
	SupportsSetVariable                   bool     `json:"supportsSetVariable"`
	SupportsSetExpression                 bool     `json:"supportsSetExpression"`
	SupportsDisassembleRequest            bool     `json:"supportsDisassembleRequest"`
	SupportsSteppingGranularity           bool     `json:"supportsSteppingGranularity"`
	SupportsInstructionBreakpoints        bool     `json:"supportsInstructionBreakpoints"`
	SupportsReadMemoryRequest             bool     `json:"supportsReadMemoryRequest"`
	SupportsWriteMemoryRequest            bool     `json:"supportsWriteMemoryRequest"`
	SupportSuspendDebuggee                bool     `json:"supportSuspendDebuggee"`
	SupportTerminateDebuggee              bool     `json:"supportTerminateDebuggee"`
	SupportsDelayedStackTraceLoading      bool     `json:"supportsDelayedStackTraceLoading"`
}

// AdvertisedCapabilities implements spec.md §4.9's advertised capability set.
// Step-in targets are advertised off (SupportsStepInTargetsRequest is
// false); the facade still answers a stepInTargets request with an
// empty target list — see facade.go.
func AdvertisedCapabilities() Capabilities {
	return Capabilities{
		SupportsConfigurationDoneRequest:   true,
		SupportsEvaluateForHovers:          true,
		SupportsConditionalBreakpoints:     true,
		SupportsLogPoints:                  true,
		CompletionTriggerCharacters:        []string{".", ":", "$", "%", "@"},
		SupportsBreakpointLocationsRequest: true,
		SupportsFunctionBreakpoints:        true,
		SupportsStepInTargetsRequest:       false,
		SupportsExceptionInfoRequest:       true,
		SupportsSetVariable:                true,
		SupportsSetExpression:              true,
		SupportsDisassembleRequest:         true,
		SupportsSteppingGranularity:        true,
		SupportsInstructionBreakpoints:     true,
		SupportsReadMemoryRequest:          true,
		SupportsWriteMemoryRequest:         true,
		SupportSuspendDebuggee:             true,
		SupportTerminateDebuggee:           true,
		SupportsDelayedStackTraceLoading:   true,
	}
}

// LaunchArgs is this server's `launch` request body.
type LaunchArgs struct {
	Program      string   `json:"program"`
	Args         []string `json:"args,omitempty"`
	Cwd          string   `json:"cwd,omitempty"`
	Env          []string `json:"env,omitempty"`
	StopOnEntry  bool     `json:"stopOnEntry,omitempty"`
}

// SourceBreakpoint is one requested breakpoint from setBreakpoints.
type SourceBreakpoint struct {
	Line      int    `json:"line"`
	Condition string `json:"condition,omitempty"`
}

// Breakpoint is this server's reply for one requested breakpoint.
type Breakpoint struct {
	Verified bool   `json:"verified"`
	Line     int    `json:"line"`
	Message  string `json:"message,omitempty"`
}

// Scope is one entry of the `scopes` response.
type Scope struct {
	Name               string `json:"name"`
	VariablesReference int    `json:"variablesReference"`
	Expensive          bool   `json:"expensive"`
}

// Variable is one entry of the `variables` response.
type Variable struct {
	Name               string `json:"name"`
	Value              string `json:"value"`
	VariablesReference int    `json:"variablesReference"`
}

// Source identifies a stack frame's originating file.
type Source struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// StackFrame is one entry of the `stackTrace` response.
type StackFrame struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Source Source `json:"source"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Thread is this server's single logical thread (spec.md §4.9).
type Thread struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MainThread is the only thread this server ever reports.
var MainThread = Thread{ID: 1, Name: "main thread"}

// EvaluateResult is the `evaluate` response body.
type EvaluateResult struct {
	Result             string `json:"result"`
	VariablesReference int    `json:"variablesReference"`
}
