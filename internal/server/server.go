package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/mlbridge/internal/config"
	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/observability"
	"github.com/danmuck/mlbridge/internal/scenario"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	serviceName = "mlbridge-diag"
	version     = "0.1.0"

	lockTimeout     = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server exposes runtime diagnostics over HTTP. Handlers run on their own
// goroutines and reach the heap only through Runtime.Locked, so the owner
// goroutine must sit in a blocking section while the server runs.
type Server struct {
	Addr     string
	Appeared time.Time

	cr     *interop.Runtime
	router *gin.Engine
}

func New(cr *interop.Runtime, cfg config.ServerConfig) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger, serviceName))
	r.Use(observability.RequestMetricsMiddleware(serviceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		Addr:     cfg.Addr,
		Appeared: time.Now(),
		cr:       cr,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": serviceName,
			"backend": s.cr.Name(),
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/runtime/stats", func(c *gin.Context) {
		var out gin.H
		err := s.locked(c, func(cr *interop.Runtime) error {
			out = gin.H{"stats": cr.Stats(), "epoch": cr.Epoch()}
			return nil
		})
		if err != nil {
			lockFailed(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	s.router.POST("/runtime/collect", func(c *gin.Context) {
		var out gin.H
		err := s.locked(c, func(cr *interop.Runtime) error {
			before := cr.Stats()
			cr.Collect()
			after := cr.Stats()
			out = gin.H{
				"status":      "ok",
				"collections": after.Collections,
				"used_before": before.UsedWords,
				"used_after":  after.UsedWords,
			}
			return nil
		})
		if err != nil {
			lockFailed(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	s.router.GET("/scenarios/twice/:n", func(c *gin.Context) {
		n, err := strconv.ParseInt(c.Param("n"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be an integer"})
			return
		}
		var out int64
		err = s.locked(c, func(cr *interop.Runtime) (err error) {
			out, err = scenario.Twice(cr, n)
			return err
		})
		if err != nil {
			scenarioFailed(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"input": n, "result": out})
	})

	s.router.POST("/scenarios/increment-bytes", func(c *gin.Context) {
		var req struct {
			Bytes string `json:"bytes" binding:"required"`
			Count int    `json:"count"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var out string
		err := s.locked(c, func(cr *interop.Runtime) (err error) {
			out, err = scenario.IncrementBytes(cr, req.Bytes, req.Count)
			return err
		})
		if err != nil {
			scenarioFailed(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"input": req.Bytes, "result": out})
	})
}

func (s *Server) locked(c *gin.Context, fn func(cr *interop.Runtime) error) error {
	ctx, cancel := context.WithTimeout(c.Request.Context(), lockTimeout)
	defer cancel()
	return s.cr.Locked(ctx, fn)
}

func lockFailed(c *gin.Context, err error) {
	log.Warn().Err(err).Str("path", c.FullPath()).Msg("diag: runtime lock unavailable")
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
}

func scenarioFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, interop.ErrAcquire):
		lockFailed(c, err)
	case errors.Is(err, interop.ErrClosureNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, scenario.ErrRaised):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info().Str("addr", ln.Addr().String()).Str("backend", s.cr.Name()).Msg("diag: serving")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("diag: stopped")
	return nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
