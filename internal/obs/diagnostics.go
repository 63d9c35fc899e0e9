package obs

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RunSummary is the last-run payload served on /debug/run. It is purely
// observability: nothing in descriptor/graph/dataflow/typehierarchy/branch/
// query/endpoint reads it back.
type RunSummary struct {
	RunID          string    `json:"runId"`
	Command        string    `json:"command"`
	InputPath      string    `json:"inputPath"`
	ClassesLoaded  int       `json:"classesLoaded"`
	ClassesSkipped int       `json:"classesSkipped"`
	ResultCount    int       `json:"resultCount"`
	Duration       string    `json:"duration"`
	CompletedAt    time.Time `json:"completedAt"`
	Err            string    `json:"error,omitempty"`
}

// RunRegistry tracks the most recent run so the diagnostics server can
// answer /debug/run without the CLI invocation itself staying alive.
type RunRegistry struct {
	mu   sync.RWMutex
	last *RunSummary
}

// NewRunRegistry constructs an empty registry.
func NewRunRegistry() *RunRegistry { return &RunRegistry{} }

// Record stores s as the most recently completed run.
func (r *RunRegistry) Record(s RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &s
}

// Last returns the most recently completed run, or nil if none has run yet.
func (r *RunRegistry) Last() *RunSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// DiagnosticsServer is the optional gin-based HTTP surface: /healthz,
// /metrics, /debug/run. It is additive instrumentation, never a replacement
// for the CLI's own stdout/stderr contract.
type DiagnosticsServer struct {
	engine   *gin.Engine
	registry *RunRegistry
	srv      *http.Server
}

// NewDiagnosticsServer wires the three routes behind otelgin tracing
// middleware, serving addr once Start is called. The active TracerProvider
// must already be installed via otel.SetTracerProvider before this is
// called; otelgin.Middleware reads it from the global otel package.
func NewDiagnosticsServer(addr string, registry *RunRegistry) *DiagnosticsServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(tracerName))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/debug/run", func(c *gin.Context) {
		last := registry.Last()
		if last == nil {
			c.JSON(http.StatusOK, gin.H{"status": "no run yet"})
			return
		}
		c.JSON(http.StatusOK, last)
	})

	return &DiagnosticsServer{
		engine:   engine,
		registry: registry,
		srv:      &http.Server{Addr: addr, Handler: engine},
	}
}

// Start runs the server until ctx is cancelled, then shuts it down
// gracefully. A nil error on return means it was asked to stop, not that it
// never failed to bind.
func (s *DiagnosticsServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
