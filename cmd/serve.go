package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/value-bot/internal/bot"
	"github.com/sells-group/value-bot/internal/lookup"
	"github.com/sells-group/value-bot/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp("serve")
		if err != nil {
			return err
		}

		// Warm the cache without holding up the listener; readiness reports
		// 503 until the first load succeeds.
		go env.Service.Warm(ctx)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		handler := buildRouter(env, serverOptions{
			CORSOrigins:         cfg.Server.CORSOrigins,
			HighDemandThreshold: cfg.HighDemand.Threshold,
			HighDemandLimit:     cfg.HighDemand.Limit,
		})
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type serverOptions struct {
	CORSOrigins         []string
	HighDemandThreshold float64
	HighDemandLimit     int
}

type apiServer struct {
	env  *appEnv
	opts serverOptions
}

// buildRouter mounts the health and API routes.
func buildRouter(env *appEnv, opts serverOptions) http.Handler {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.HighDemandLimit <= 0 {
		opts.HighDemandLimit = lookup.DefaultDemandLimit
	}
	s := &apiServer{env: env, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/health/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/messages", s.handleMessage)
		r.Get("/items/{name}", s.handleItem)
		r.Post("/trades", s.handleTrade)
		r.Get("/high-demand", s.handleHighDemand)
		r.Get("/help", s.handleHelp)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleReady(w http.ResponseWriter, _ *http.Request) {
	ds, ok := s.env.Loader.Cached()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "dataset not loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "items": ds.Len()})
}

func (s *apiServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg bot.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reply, ok := s.env.Router.Handle(r.Context(), msg)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *apiServer) handleItem(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	res, err := s.env.Service.Value(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *apiServer) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Spec string `json:"spec"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := s.env.Service.Trade(r.Context(), req.Spec)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *apiServer) handleHighDemand(w http.ResponseWriter, r *http.Request) {
	threshold := s.opts.HighDemandThreshold
	limit := s.opts.HighDemandLimit

	q := r.URL.Query()
	if v := q.Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "threshold must be a number")
			return
		}
		threshold = f
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.env.Service.HighDemand(r.Context(), threshold, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []lookup.HighDemandEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *apiServer) handleHelp(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, lookup.Help(s.env.Router.Prefix()))
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(kind model.Kind) int {
	switch kind {
	case model.KindItemNotFound:
		return http.StatusNotFound
	case model.KindFormat:
		return http.StatusBadRequest
	case model.KindValueConversion, model.KindZeroTargetValue:
		return http.StatusUnprocessableEntity
	case model.KindDataUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		zap.L().Error("api request failed", zap.Error(err))
	}
	body := map[string]any{
		"error": err.Error(),
		"kind":  kind.String(),
	}
	if e, ok := model.AsError(err); ok {
		if e.Item != "" {
			body["item"] = e.Item
		}
		if kind == model.KindItemNotFound {
			body["score"] = e.Score
		}
	}
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
