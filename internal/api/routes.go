package api

import (
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/firefly-engineering/deskbox/internal/logging"
)

// Handler returns the routed request handler wrapped in middleware
func (s *Server) Handler() fasthttp.RequestHandler {
	r := router.New()

	r.GET("/health", s.handleHealth)

	sandbox := r.Group("/sandbox")
	sandbox.POST("/start", s.handleStart)
	sandbox.GET("/url", s.handleStart)
	sandbox.POST("/exec", s.handleExec)
	sandbox.POST("/stop", s.handleStop)
	sandbox.GET("/status", s.handleStatus)

	return withMiddlewares(r.Handler)
}

func withMiddlewares(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		applyCORS(ctx)
		if string(ctx.Method()) == fasthttp.MethodOptions {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		start := time.Now()
		next(ctx)

		logging.Debug("handled request",
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"status", ctx.Response.StatusCode(),
			"duration", time.Since(start))
	}
}

func applyCORS(ctx *fasthttp.RequestCtx) {
	headers := &ctx.Response.Header
	headers.Set("Access-Control-Allow-Origin", "*")
	headers.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	headers.Set("Access-Control-Allow-Headers", "*")
}
