package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/resolve-cli/internal/corpus"
	"github.com/sells-group/resolve-cli/internal/match"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve match and search over HTTP",
	Long:  "Thin transport shim over the resolution engine: POST /api/match, POST /api/search, GET /health.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		matcher, cleanup, err := loadMatcher(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RatePerSec), cfg.Server.RateBurst)
		r := newRouter(matcher, cfg.Match.SearchLimit, limiter)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		if servePort > 0 {
			srv.Addr = fmt.Sprintf(":%d", servePort)
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("server listening", zap.String("addr", srv.Addr))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return eris.Wrap(err, "serve: shutdown")
			}
			zap.L().Info("server stopped")
			return nil
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "serve: listen")
			}
			return nil
		}
	},
}

// newRouter builds the HTTP surface: a thin transport shim over the matcher
// with no resolution logic of its own.
func newRouter(matcher *match.Matcher, searchLimit int, limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/match", func(w http.ResponseWriter, req *http.Request) {
		q, ok := decodeQuery(w, req)
		if !ok {
			return
		}
		out, err := matcher.Match(q)
		if err != nil {
			writeMatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Post("/api/search", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			match.Query
			Limit int `json:"limit,omitempty"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		limit := body.Limit
		if limit <= 0 {
			limit = searchLimit
		}
		results, err := matcher.Search(body.Query, limit)
		if err != nil {
			writeMatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	})

	return r
}

func decodeQuery(w http.ResponseWriter, req *http.Request) (match.Query, bool) {
	var q match.Query
	if err := json.NewDecoder(req.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return q, false
	}
	return q, true
}

// writeMatchError maps engine errors onto HTTP statuses: an empty query is
// the caller's fault, an unpublished corpus is a service-side condition.
func writeMatchError(w http.ResponseWriter, err error) {
	switch {
	case eris.Is(err, match.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	case eris.Is(err, corpus.ErrCorpusUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		zap.L().Error("match failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
