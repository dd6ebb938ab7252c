package api

import (
	"context"

	json "github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/firefly-engineering/deskbox/internal/errors"
	"github.com/firefly-engineering/deskbox/internal/logging"
)

const defaultHost = "localhost"

// ExecRequest is the body of POST /sandbox/exec
type ExecRequest struct {
	Command string `json:"command"`
}

// ExecResponse echoes the command with its output
type ExecResponse struct {
	Command string `json:"command"`
	Output  string `json:"output"`
}

// URLResponse carries the browser URL of the sandbox desktop
type URLResponse struct {
	URL string `json:"url"`
}

// StatusResponse is a bare status acknowledgement
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// requestContext returns the context for runtime calls. fasthttp does not
// provide a standard request context, so downstream calls start from
// Background.
func requestContext(_ *fasthttp.RequestCtx) context.Context {
	return context.Background()
}

func hostParam(ctx *fasthttp.RequestCtx) string {
	if raw := ctx.QueryArgs().Peek("host"); len(raw) > 0 {
		return string(raw)
	}
	return defaultHost
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Error("unable to encode response", "error", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, err error) {
	status := errors.HTTPStatus(err)
	if status >= fasthttp.StatusInternalServerError {
		logging.Error("request failed", "path", string(ctx.Path()), "error", err)
	}
	writeJSON(ctx, status, ErrorResponse{Error: errorMessage(err)})
}

// errorMessage returns the message of a SandboxError, or the plain text
// of any other error.
func errorMessage(err error) string {
	var serr *errors.SandboxError
	if errors.As(err, &serr) && serr.Message != "" {
		return serr.Message
	}
	return err.Error()
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, StatusResponse{Status: "ok"})
}

// handleStart serves both POST /sandbox/start and GET /sandbox/url.
func (s *Server) handleStart(ctx *fasthttp.RequestCtx) {
	if _, err := s.rt.EnsureStarted(requestContext(ctx)); err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, URLResponse{URL: s.rt.AccessURL(hostParam(ctx), "")})
}

func (s *Server) handleExec(ctx *fasthttp.RequestCtx) {
	var req ExecRequest
	body := ctx.PostBody()
	if len(body) == 0 {
		writeError(ctx, errors.InvalidArgument("request body is empty"))
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(ctx, errors.InvalidArgument("invalid request body"))
		return
	}

	output, err := s.rt.Exec(requestContext(ctx), req.Command)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, ExecResponse{Command: req.Command, Output: output})
}

func (s *Server) handleStop(ctx *fasthttp.RequestCtx) {
	if err := s.rt.Destroy(requestContext(ctx)); err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, StatusResponse{Status: "stopped"})
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	info, err := s.rt.Status(requestContext(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, info)
}
