// Package mcp is the tool front door: a Model Context Protocol server that
// speaks JSON-RPC 2.0 over newline-delimited stdio and turns tool calls
// into dispatcher operations.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/warpdl/reminder/common"
	"github.com/warpdl/reminder/internal/dispatch"
	"github.com/warpdl/reminder/internal/timeparse"
	"github.com/warpdl/reminder/pkg/logger"
)

// Server answers MCP requests using a dispatch.Service.
type Server struct {
	svc     dispatch.Service
	version string
	log     logger.Logger
	// Now resolves relative time expressions. Defaults to time.Now.
	Now func() time.Time
}

// NewServer creates a front door for svc. version is reported to clients
// during initialize.
func NewServer(svc dispatch.Service, version string, l logger.Logger) *Server {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Server{svc: svc, version: version, log: l, Now: time.Now}
}

// Methods returns the JSON-RPC method table.
func (s *Server) Methods() handler.Map {
	return handler.Map{
		"initialize":                handler.New(s.initialize),
		"ping":                      s.ping,
		"tools/list":                s.listTools,
		"tools/call":                handler.New(s.callTool),
		"notifications/initialized": s.ignore,
		"notifications/cancelled":   s.ignore,
	}
}

// Start runs the server on ch and returns immediately.
func (s *Server) Start(ch channel.Channel) *jrpc2.Server {
	opts := &jrpc2.ServerOptions{
		Logger: jrpc2.StdLogger(logger.ToStdLogger(s.log)),
	}
	return jrpc2.NewServer(s.Methods(), opts).Start(ch)
}

// Serve reads requests from r and writes responses to w, one JSON object
// per line, until r is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.WriteCloser) error {
	srv := s.Start(channel.Line(r, w))
	s.log.Info("MCP server ready on stdio")

	stop := context.AfterFunc(ctx, func() {
		srv.Stop()
		// Unblock the pending read so the server can finish.
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
	})
	defer stop()

	err := srv.Wait()
	if ctx.Err() != nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) initialize(_ context.Context, p *InitializeParams) (*InitializeResult, error) {
	version := DefaultProtocolVersion
	if p != nil && p.ProtocolVersion != "" {
		version = p.ProtocolVersion
	}
	return &InitializeResult{
		ProtocolVersion: version,
		ServerInfo:      ServerInfo{Name: ServerName, Version: s.version},
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
	}, nil
}

func (s *Server) ping(context.Context, *jrpc2.Request) (any, error) {
	return struct{}{}, nil
}

func (s *Server) listTools(context.Context, *jrpc2.Request) (any, error) {
	return &ListToolsResult{Tools: Tools}, nil
}

func (s *Server) ignore(context.Context, *jrpc2.Request) (any, error) {
	return nil, nil
}

// callTool never returns a JSON-RPC error for tool failures; they are
// reported as text content with isError set.
func (s *Server) callTool(ctx context.Context, p *CallToolParams) (*CallToolResult, error) {
	if p == nil || p.Name == "" {
		return nil, &jrpc2.Error{Code: jrpc2.Code(-32602), Message: "missing required param: name"}
	}
	switch p.Name {
	case common.ToolCreateReminder:
		return s.createReminder(ctx, p.Arguments), nil
	case common.ToolListReminders:
		return s.listReminders(ctx), nil
	case common.ToolCancelReminder:
		return s.cancelReminder(ctx, p.Arguments), nil
	default:
		return textResult("Unknown tool: "+p.Name, true), nil
	}
}

func (s *Server) createReminder(ctx context.Context, args map[string]any) *CallToolResult {
	vals, res := requireStrings(args, "title", "message", "time")
	if res != nil {
		return res
	}
	trigger, err := timeparse.Resolve(vals[2], s.Now())
	if err != nil {
		return textResult(dispatch.ErrorReport(err), true)
	}
	receipt, err := s.svc.Create(ctx, dispatch.CreateRequest{
		Title:   vals[0],
		Message: vals[1],
		Trigger: trigger,
	})
	if err != nil {
		s.log.Error("create_reminder: %v", err)
		return textResult(dispatch.ErrorReport(err), true)
	}
	return textResult(dispatch.CreateReport(receipt), false)
}

func (s *Server) listReminders(ctx context.Context) *CallToolResult {
	listing, err := s.svc.List(ctx)
	if err != nil {
		s.log.Error("list_reminders: %v", err)
		return textResult(dispatch.ErrorReport(err), true)
	}
	return textResult(dispatch.ListReport(listing), false)
}

func (s *Server) cancelReminder(ctx context.Context, args map[string]any) *CallToolResult {
	vals, res := requireStrings(args, "id")
	if res != nil {
		return res
	}
	outcome, err := s.svc.Cancel(ctx, vals[0])
	if err != nil {
		s.log.Error("cancel_reminder: %v", err)
		return textResult(dispatch.ErrorReport(err), true)
	}
	return textResult(dispatch.CancelReport(outcome), false)
}

// requireStrings extracts the named string arguments in order. The first
// missing or non-string one produces an error result.
func requireStrings(args map[string]any, names ...string) ([]string, *CallToolResult) {
	out := make([]string, len(names))
	for i, name := range names {
		v, ok := args[name].(string)
		if !ok {
			return nil, textResult(fmt.Sprintf("Error: missing required argument \"%s\"", name), true)
		}
		out[i] = v
	}
	return out, nil
}
