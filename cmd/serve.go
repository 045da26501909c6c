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

	"github.com/leadforge/leadscore-cli/internal/config"
	"github.com/leadforge/leadscore-cli/internal/model"
	"github.com/leadforge/leadscore-cli/internal/scoring"
	"github.com/leadforge/leadscore-cli/internal/similarity"
	"github.com/leadforge/leadscore-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoring HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := scoring.ValidateConfig(cfg.Scorer); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		api := &apiServer{
			st:        st,
			engine:    newSimilarityEngine(),
			scorerCfg: cfg.Scorer,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type apiServer struct {
	st        store.Store
	engine    *similarity.Engine
	scorerCfg config.ScorerConfig
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/v1/score", s.handleScore)
	r.Get("/v1/runs", s.handleListRuns)
	r.Get("/v1/runs/{id}", s.handleGetRun)

	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scoreRequest struct {
	Requirement model.Requirement     `json:"requirement"`
	Companies   []model.CompanyRecord `json:"companies"`
	TopN        int                   `json:"top_n"`
	Save        bool                  `json:"save"`
}

type scoreResponse struct {
	RunID   string              `json:"run_id,omitempty"`
	Results []model.ScoreResult `json:"results"`
}

func (s *apiServer) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Companies) == 0 {
		writeError(w, http.StatusBadRequest, "companies are required")
		return
	}

	topN := req.TopN
	if topN == 0 {
		topN = s.scorerCfg.TopN
	}

	scorer := scoring.New(req.Requirement, s.engine, s.scorerCfg, zap.L())
	scorer.Prime(r.Context())

	results, err := scorer.Rank(r.Context(), req.Companies, topN)
	if err != nil {
		zap.L().Error("scoring failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scoring failed")
		return
	}

	resp := scoreResponse{Results: results}
	if req.Save {
		run := store.NewRun(req.Requirement, store.ConfigHash(s.scorerCfg), len(results))
		if err := s.st.SaveRun(r.Context(), run, results); err != nil {
			zap.L().Error("save run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "save run failed")
			return
		}
		resp.RunID = run.ID
	}

	writeResponse(w, http.StatusOK, resp)
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.st.ListRuns(r.Context(), store.RunFilter{Limit: 100})
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []model.ScoreRun{}
	}
	writeResponse(w, http.StatusOK, runs)
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, results, err := s.st.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeResponse(w, http.StatusOK, struct {
		Run     *model.ScoreRun     `json:"run"`
		Results []model.ScoreResult `json:"results"`
	}{run, results})
}

func writeResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeResponse(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
