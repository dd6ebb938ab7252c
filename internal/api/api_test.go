package api

import (
	"context"
	"strings"
	"testing"

	json "github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/firefly-engineering/deskbox/internal/errors"
	"github.com/firefly-engineering/deskbox/internal/runtime"
)

func do(t *testing.T, h fasthttp.RequestHandler, method, uri, body string) *fasthttp.RequestCtx {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBodyString(body)
	}
	h(&ctx)
	return &ctx
}

func decode[T any](t *testing.T, ctx *fasthttp.RequestCtx) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(ctx.Response.Body(), &v); err != nil {
		t.Fatalf("decode %q: %v", ctx.Response.Body(), err)
	}
	return v
}

func newTestServer() (*Server, *runtime.MockRuntime) {
	mock := runtime.NewMockRuntime()
	return New(mock, "127.0.0.1:0"), mock
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer()
	ctx := do(t, s.Handler(), "GET", "/health", "")

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	if got := decode[StatusResponse](t, ctx); got.Status != "ok" {
		t.Errorf("body = %+v", got)
	}
	if string(ctx.Response.Header.ContentType()) != "application/json" {
		t.Errorf("content type = %q", ctx.Response.Header.ContentType())
	}
}

func TestStartAndURL(t *testing.T) {
	tests := []struct {
		method string
		uri    string
		want   string
	}{
		{"POST", "/sandbox/start", "http://localhost:6080/vnc.html?password=secret"},
		{"POST", "/sandbox/start?host=example.com", "http://example.com:6080/vnc.html?password=secret"},
		{"GET", "/sandbox/url?host=10.0.0.1", "http://10.0.0.1:6080/vnc.html?password=secret"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.uri, func(t *testing.T) {
			s, mock := newTestServer()
			ctx := do(t, s.Handler(), tt.method, tt.uri, "")

			if ctx.Response.StatusCode() != fasthttp.StatusOK {
				t.Fatalf("status = %d, body %s", ctx.Response.StatusCode(), ctx.Response.Body())
			}
			if got := decode[URLResponse](t, ctx); got.URL != tt.want {
				t.Errorf("url = %q, want %q", got.URL, tt.want)
			}
			if mock.CallCount("EnsureStarted") != 1 {
				t.Error("route should ensure the sandbox is started")
			}
		})
	}
}

func TestStart_RuntimeUnavailable(t *testing.T) {
	s, mock := newTestServer()
	mock.SetError("EnsureStarted", errors.RuntimeUnavailable(`required command "docker" is not available on PATH`, nil))

	ctx := do(t, s.Handler(), "POST", "/sandbox/start", "")
	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", ctx.Response.StatusCode())
	}
	if got := decode[ErrorResponse](t, ctx); !strings.Contains(got.Error, "docker") {
		t.Errorf("error = %q", got.Error)
	}
}

func TestExec(t *testing.T) {
	s, mock := newTestServer()
	mock.SetExecOutput("echo hi", "hi")

	ctx := do(t, s.Handler(), "POST", "/sandbox/exec", `{"command":"echo hi"}`)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d, body %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	got := decode[ExecResponse](t, ctx)
	if got.Command != "echo hi" || got.Output != "hi" {
		t.Errorf("body = %+v", got)
	}
}

func TestExec_FailedCommandIsNotAnError(t *testing.T) {
	s, mock := newTestServer()
	mock.SetExecOutput("false", "[error] command failed")

	ctx := do(t, s.Handler(), "POST", "/sandbox/exec", `{"command":"false"}`)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	if got := decode[ExecResponse](t, ctx); !runtime.IsErrorOutput(got.Output) {
		t.Errorf("output = %q, want error marker", got.Output)
	}
}

func TestExec_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"invalid json", "{"},
		{"missing command", `{}`},
		{"blank command", `{"command":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestServer()
			ctx := do(t, s.Handler(), "POST", "/sandbox/exec", tt.body)

			if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
				t.Errorf("status = %d, want 400", ctx.Response.StatusCode())
			}
			if got := decode[ErrorResponse](t, ctx); got.Error == "" {
				t.Error("error message should be set")
			}
			if mock.CallCount("EnsureStarted") != 0 || mock.Running {
				t.Error("a bad request should not touch the sandbox")
			}
		})
	}
}

func TestExec_ExecutionFailure(t *testing.T) {
	s, mock := newTestServer()
	mock.SetError("Exec", errors.ExecutionFailure("Unable to find image", nil))

	ctx := do(t, s.Handler(), "POST", "/sandbox/exec", `{"command":"ls"}`)
	if ctx.Response.StatusCode() != fasthttp.StatusInternalServerError {
		t.Errorf("status = %d, want 500", ctx.Response.StatusCode())
	}
	if got := decode[ErrorResponse](t, ctx); got.Error != "Unable to find image" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestStopAndStatus(t *testing.T) {
	s, mock := newTestServer()
	h := s.Handler()

	do(t, h, "POST", "/sandbox/start", "")

	ctx := do(t, h, "GET", "/sandbox/status", "")
	info := decode[runtime.SandboxInfo](t, ctx)
	if !info.Running || info.ID != mock.ID {
		t.Errorf("status = %+v", info)
	}

	ctx = do(t, h, "POST", "/sandbox/stop", "")
	if got := decode[StatusResponse](t, ctx); got.Status != "stopped" {
		t.Errorf("stop body = %+v", got)
	}
	if mock.CallCount("Destroy") != 1 {
		t.Error("stop should destroy the sandbox")
	}

	ctx = do(t, h, "GET", "/sandbox/status", "")
	if info := decode[runtime.SandboxInfo](t, ctx); info.Running {
		t.Errorf("status after stop = %+v", info)
	}
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer()

	ctx := do(t, s.Handler(), "OPTIONS", "/sandbox/exec", "")
	if ctx.Response.StatusCode() != fasthttp.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", ctx.Response.StatusCode())
	}
	if got := string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}

	ctx = do(t, s.Handler(), "GET", "/health", "")
	if got := string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")); got != "*" {
		t.Errorf("Allow-Origin on GET = %q, want *", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer()
	ctx := do(t, s.Handler(), "GET", "/nope", "")
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Errorf("status = %d, want 404", ctx.Response.StatusCode())
	}
}

func TestShutdownRunsTeardown(t *testing.T) {
	t.Run("destroys the sandbox by default", func(t *testing.T) {
		s, mock := newTestServer()
		s.shutdown()
		if mock.CallCount("Destroy") != 1 {
			t.Errorf("Destroy calls = %d, want 1", mock.CallCount("Destroy"))
		}
	})

	t.Run("custom teardown replaces destroy", func(t *testing.T) {
		mock := runtime.NewMockRuntime()
		called := 0
		s := New(mock, "127.0.0.1:0", WithTeardown(func(ctx context.Context) error {
			called++
			return nil
		}))
		s.shutdown()
		if called != 1 {
			t.Errorf("teardown calls = %d, want 1", called)
		}
		if mock.CallCount("Destroy") != 0 {
			t.Error("custom teardown should own sandbox destruction")
		}
	})
}
