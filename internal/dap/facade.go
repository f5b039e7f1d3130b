package dap

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/perl-language-tools/perl-ls/internal/logging"
	"github.com/perl-language-tools/perl-ls/internal/perlproc"
)

// Facade wires one DAP connection to one Session, following the
// jsonrpc2.HandlerWithError dispatch pattern the retrieval pack's LSP
// servers use (other_examples' saibing/bingo `langserver/handler.go`:
// NewHandler wraps a single `handle(ctx, conn, req) (interface{},
// error)` method). Every method below is a thin decode/call/encode
// shim around a Session method, which carries the actual logic so it
// can be unit tested without a real jsonrpc2.Conn.
type Facade struct {
	session *Session
	logger  logging.Logger
}

// NewFacade constructs a Facade ready to serve one DAP connection.
func NewFacade(logger logging.Logger) *Facade {
	return &Facade{session: NewSession(logger), logger: logger}
}

// Handler returns the jsonrpc2.Handler to hand to jsonrpc2.NewConn.
func (f *Facade) Handler() jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(f.handle)
}

func (f *Facade) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		return AdvertisedCapabilities(), nil

	case "configurationDone":
		f.session.ConfigurationDone()
		return struct{}{}, nil

	case "launch":
		var args LaunchArgs
		if err := unmarshalParams(req, &args); err != nil {
			return nil, err
		}
		if err := f.session.Launch(ctx, args); err != nil {
			return nil, err
		}
		go f.pumpEvents(conn)
		_ = conn.Notify(ctx, "initialized", struct{}{})
		return struct{}{}, nil

	case "threads":
		return struct {
			Threads []Thread `json:"threads"`
		}{Threads: []Thread{MainThread}}, nil

	case "setBreakpoints":
		var params struct {
			Source      Source             `json:"source"`
			Breakpoints []SourceBreakpoint `json:"breakpoints"`
		}
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		bps, err := f.session.SetBreakpoints(ctx, params.Source.Path, params.Breakpoints)
		if err != nil {
			return nil, err
		}
		return struct {
			Breakpoints []Breakpoint `json:"breakpoints"`
		}{Breakpoints: bps}, nil

	case "scopes":
		return struct {
			Scopes []Scope `json:"scopes"`
		}{Scopes: f.session.Scopes()}, nil

	case "variables":
		var params struct {
			VariablesReference int `json:"variablesReference"`
		}
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		vars, err := f.session.Variables(ctx, params.VariablesReference)
		if err != nil {
			return nil, err
		}
		return struct {
			Variables []Variable `json:"variables"`
		}{Variables: vars}, nil

	case "stackTrace":
		var params struct {
			StartFrame int `json:"startFrame"`
		}
		_ = unmarshalParams(req, &params)
		if params.StartFrame != 0 {
			return struct {
				StackFrames []StackFrame `json:"stackFrames"`
				TotalFrames int          `json:"totalFrames"`
			}{}, nil
		}
		frames, err := f.session.StackTrace(ctx)
		if err != nil {
			return nil, err
		}
		return struct {
			StackFrames []StackFrame `json:"stackFrames"`
			TotalFrames int          `json:"totalFrames"`
		}{StackFrames: frames, TotalFrames: len(frames)}, nil

	case "evaluate":
		var params struct {
			Expression string `json:"expression"`
		}
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return f.session.Evaluate(ctx, params.Expression)

	case "continue":
		driver, err := f.session.driverOrErr()
		if err != nil {
			return nil, err
		}
		_, err = driver.Continue(ctx)
		return struct{}{}, err

	case "next":
		driver, err := f.session.driverOrErr()
		if err != nil {
			return nil, err
		}
		_, err = driver.Next(ctx)
		return struct{}{}, err

	case "stepIn":
		driver, err := f.session.driverOrErr()
		if err != nil {
			return nil, err
		}
		_, err = driver.SingleStep(ctx)
		return struct{}{}, err

	case "stepOut":
		driver, err := f.session.driverOrErr()
		if err != nil {
			return nil, err
		}
		_, err = driver.StepOut(ctx)
		return struct{}{}, err

	case "restart":
		driver, err := f.session.driverOrErr()
		if err != nil {
			return nil, err
		}
		_, err = driver.Restart(ctx)
		return struct{}{}, err

	case "pause":
		driver, err := f.session.driverOrErr()
		if err != nil {
			return nil, err
		}
		return struct{}{}, driver.Pause()

	case "stepInTargets":
		return struct {
			Targets []struct{} `json:"targets"`
		}{}, nil

	case "exceptionInfo":
		return struct {
			ExceptionID string `json:"exceptionId"`
			Description string `json:"description"`
		}{ExceptionID: "die", Description: "Uncaught Exception"}, nil

	default:
		return nil, fmt.Errorf("dap: unsupported method %q", req.Method)
	}
}

// pumpEvents forwards C7 driver events onto the DAP connection as
// stopped/continued/terminated events, for the lifetime of the driver.
func (f *Facade) pumpEvents(conn *jsonrpc2.Conn) {
	for ev := range f.session.Events() {
		switch ev.Kind {
		case perlproc.EventStopped:
			f.session.handles.reset()
			_ = conn.Notify(context.Background(), "stopped", struct {
				Reason string `json:"reason"`
				ThreadID int  `json:"threadId"`
			}{Reason: "breakpoint", ThreadID: MainThread.ID})
		case perlproc.EventContinued:
			_ = conn.Notify(context.Background(), "continued", struct {
				ThreadID int `json:"threadId"`
			}{ThreadID: MainThread.ID})
		case perlproc.EventPaused:
			_ = conn.Notify(context.Background(), "stopped", struct {
				Reason   string `json:"reason"`
				ThreadID int    `json:"threadId"`
			}{Reason: "pause", ThreadID: MainThread.ID})
		case perlproc.EventTerminated:
			_ = conn.Notify(context.Background(), "terminated", struct{}{})
			_ = conn.Notify(context.Background(), "exited", struct {
				ExitCode int `json:"exitCode"`
			}{ExitCode: ev.Code})
		}
	}
}

func unmarshalParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return fmt.Errorf("dap: %s: missing params", req.Method)
	}
	return json.Unmarshal(*req.Params, v)
}
