package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadscope/prospect-cli/internal/model"
	"github.com/leadscope/prospect-cli/internal/pipeline"
	"github.com/leadscope/prospect-cli/internal/store"
)

var servePort int

// fuseRequest is the POST /v1/fuse body: both collections plus run
// parameters. Threshold fields left zero fall back to the configured
// defaults.
type fuseRequest struct {
	Directory []model.DirectoryRecord `json:"directory"`
	POIs      []model.POIRecord       `json:"pois"`
	Params    model.RunParams         `json:"params"`
}

type fuseResponse struct {
	Run      model.Run           `json:"run"`
	Accepted []model.FusedRecord `json:"accepted"`
	Rejected []model.Rejection   `json:"rejected"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fusion HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/v1/fuse", handleFuse(st))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func handleFuse(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fuseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		params := req.Params
		if params.ProximityM == 0 {
			params.ProximityM = cfg.Fusion.ProximityM
		}
		if params.NameSimilarity == 0 {
			params.NameSimilarity = cfg.Fusion.NameSimilarity
		}
		if params.ZoneTolerance == 0 {
			params.ZoneTolerance = cfg.Fusion.ZoneTolerance
		}
		if params.MinQualityScore == 0 {
			params.MinQualityScore = cfg.Fusion.MinQualityScore
		}

		p, err := pipeline.New(params, pipeline.WithSink(pipeline.LogSink{}), pipeline.WithStore(st))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		out, err := p.Run(r.Context(), req.Directory, req.POIs)
		if err != nil {
			zap.L().Error("fuse request failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "fusion run failed"})
			return
		}

		writeJSON(w, http.StatusOK, fuseResponse{
			Run:      out.Run,
			Accepted: out.Accepted,
			Rejected: out.Rejected,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
