package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"devforge/internal/adapter/tool"
	"devforge/internal/domain"
	"devforge/internal/infra/tracer"
)

// maxLineSize bounds a single request line.
const maxLineSize = 10 * 1024 * 1024

type serverState int

const (
	statePreInit serverState = iota
	stateReady
	stateClosed
)

// Server is an MCP server speaking newline-delimited JSON-RPC over an
// injected reader and writer, stdin and stdout in production. One Server
// serves one connection; Run may be called once.
type Server struct {
	name     string
	version  string
	registry *tool.Registry
	logger   *slog.Logger

	in  io.Reader
	out io.Writer

	// writeMu serializes whole response lines; tool calls complete on
	// their own goroutines.
	writeMu sync.Mutex

	stateMu sync.Mutex
	state   serverState

	calls sync.WaitGroup
}

// NewServer creates a server for one transport connection.
func NewServer(name, version string, registry *tool.Registry, in io.Reader, out io.Writer, logger *slog.Logger) *Server {
	return &Server{
		name:     name,
		version:  version,
		registry: registry,
		logger:   logger,
		in:       in,
		out:      out,
		state:    statePreInit,
	}
}

// Run reads request lines until EOF or ctx cancellation. On EOF,
// in-flight tool calls finish and their responses are written before Run
// returns. A clean EOF returns nil.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			s.close()
			s.calls.Wait()
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		// The scanner reuses its buffer; keep our own copy for the
		// goroutines that outlive this iteration.
		s.dispatch(ctx, append([]byte(nil), line...))
	}

	s.close()
	s.calls.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read transport: %w", err)
	}
	s.logger.Debug("mcp transport closed")
	return nil
}

func (s *Server) dispatch(ctx context.Context, line []byte) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.write(errorResponse(nullID, CodeParseError, "parse error: "+err.Error()))
		return
	}

	if req.IsNotification() {
		s.handleNotification(req)
		return
	}

	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		s.write(errorResponse(req.ID, CodeInvalidRequest, "invalid request"))
		return
	}

	switch req.Method {
	case "initialize":
		s.write(s.handleInitialize(req))
	case "ping":
		s.write(resultResponse(req.ID, struct{}{}))
	case "tools/list":
		s.write(s.handleListTools(req))
	case "tools/call":
		s.handleCallTool(ctx, req)
	default:
		if resp, rejected := s.requireReady(req); rejected {
			s.write(resp)
			return
		}
		s.write(errorResponse(req.ID, CodeMethodNotFound, "method not found: "+req.Method))
	}
}

func (s *Server) handleNotification(req Request) {
	switch req.Method {
	case "notifications/initialized":
		s.logger.Debug("client initialized")
	default:
		s.logger.Debug("notification ignored", "method", req.Method)
	}
}

func (s *Server) handleInitialize(req Request) Response {
	s.stateMu.Lock()
	if s.state == statePreInit {
		s.state = stateReady
	}
	s.stateMu.Unlock()

	s.logger.Info("mcp session initialized", "server", s.name, "version", s.version)

	return resultResponse(req.ID, initializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      serverInfo{Name: s.name, Version: s.version},
	})
}

// requireReady rejects requests that arrive before initialize.
func (s *Server) requireReady(req Request) (Response, bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state != stateReady {
		return errorResponse(req.ID, CodeServerNotInitialized, "server not initialized"), true
	}
	return Response{}, false
}

func (s *Server) handleListTools(req Request) Response {
	if resp, rejected := s.requireReady(req); rejected {
		return resp
	}

	defs := s.registry.List()
	if defs == nil {
		defs = []domain.ToolDefinition{}
	}
	return resultResponse(req.ID, listToolsResult{Tools: defs})
}

func (s *Server) handleCallTool(ctx context.Context, req Request) {
	if resp, rejected := s.requireReady(req); rejected {
		s.write(resp)
		return
	}

	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.write(errorResponse(req.ID, CodeInvalidParams, "invalid params: "+err.Error()))
		return
	}
	if strings.TrimSpace(params.Name) == "" {
		s.write(errorResponse(req.ID, CodeInvalidParams, "invalid params: missing tool name"))
		return
	}

	t, err := s.registry.Get(params.Name)
	if err != nil {
		s.write(errorResponse(req.ID, CodeMethodNotFound, "tool not found: "+params.Name))
		return
	}

	s.calls.Add(1)
	go func() {
		defer s.calls.Done()
		s.write(s.executeTool(ctx, req.ID, t, params))
	}()
}

func (s *Server) executeTool(ctx context.Context, id json.RawMessage, t domain.Tool, params callToolParams) Response {
	name := t.Definition().Name

	ctx, span := tracer.StartSpan(ctx, "mcp.tools/call",
		trace.WithAttributes(tracer.StringAttr("tool.name", name)),
	)
	defer span.End()

	out, err := t.Execute(ctx, params.Arguments)
	if err != nil {
		tracer.RecordError(span, err)
		s.logger.Warn("tool call failed", "tool", name, "error", err)
		// Tool failures are results, not protocol errors.
		return resultResponse(id, textResult(err.Error(), true))
	}

	tracer.SetOK(span)
	s.logger.Debug("tool call finished", "tool", name)
	return resultResponse(id, textResult(renderToolOutput(out), false))
}

func (s *Server) close() {
	s.stateMu.Lock()
	s.state = stateClosed
	s.stateMu.Unlock()
}

// write marshals resp compactly and emits it as one line. Marshal
// failures of our own payloads degrade to an internal error response.
func (s *Server) write(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshal response", "error", err)
		data, _ = json.Marshal(errorResponse(resp.ID, CodeInternalError, "internal error"))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(append(data, '\n')); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		s.logger.Error("write response", "error", err)
	}
}
