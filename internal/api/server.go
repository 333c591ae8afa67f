package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quantbench/backtester/internal/backtester"
	"github.com/quantbench/backtester/internal/data"
	"github.com/quantbench/backtester/internal/store"
	"github.com/quantbench/backtester/internal/strategy"
	"github.com/quantbench/backtester/pkg/types"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP/WebSocket API server. It owns request validation and
// everything non-deterministic about a run: fetching data, assigning the
// result ID and completion time, persistence, and notifications.
type Server struct {
	logger     *zap.Logger
	config     ServerConfig
	router     *mux.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
	engine     *backtester.Engine
	registry   *strategy.Registry
	provider   data.Provider
	results    store.ResultStore
	hub        *Hub
}

// NewServer creates a new API server and wires its routes.
func NewServer(
	logger *zap.Logger,
	config ServerConfig,
	engine *backtester.Engine,
	registry *strategy.Registry,
	provider data.Provider,
	results store.ResultStore,
	hub *Hub,
) *Server {
	s := &Server{
		logger:   logger,
		config:   config,
		router:   mux.NewRouter(),
		engine:   engine,
		registry: registry,
		provider: provider,
		results:  results,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.setupRoutes()
	return s
}

// Router exposes the route table, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/v1/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/v1/strategies", s.handleListStrategies).Methods("GET")
	s.router.HandleFunc("/api/v1/backtest/run", s.handleRunBacktest).Methods("POST")
	s.router.HandleFunc("/api/v1/backtest/{id}", s.handleGetBacktest).Methods("GET")
	s.router.HandleFunc("/api/v1/backtests", s.handleListBacktests).Methods("GET")
	s.router.HandleFunc("/api/v1/validate-ticker/{ticker}", s.handleValidateTicker).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Start starts the HTTP server. It blocks until the listener stops.
func (s *Server) Start() error {
	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("starting API server", zap.String("addr", s.config.Addr))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"strategies": s.registry.List(),
	})
}

func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req types.BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := req.Validate(time.Now().UTC()); err != nil {
		backtestsTotal.WithLabelValues(string(req.Strategy), "rejected").Inc()
		s.respondBacktestError(w, err)
		return
	}

	start, end := req.Range()
	bars, err := s.provider.DailyCloses(r.Context(), req.Ticker, start, end)
	if err != nil {
		backtestsTotal.WithLabelValues(string(req.Strategy), "fetch_error").Inc()
		s.logger.Error("price data fetch failed",
			zap.String("ticker", req.Ticker),
			zap.Error(err),
		)
		s.respondError(w, http.StatusBadGateway, "failed to fetch price data for "+req.Ticker)
		return
	}

	result, err := s.engine.Run(&req, bars)
	if err != nil {
		backtestsTotal.WithLabelValues(string(req.Strategy), "rejected").Inc()
		s.respondBacktestError(w, err)
		return
	}

	result.ID = uuid.New().String()
	result.CompletedAt = time.Now().UTC()

	if err := s.results.Save(r.Context(), req.UserID, result); err != nil {
		backtestsTotal.WithLabelValues(string(req.Strategy), "store_error").Inc()
		s.logger.Error("failed to persist result", zap.String("id", result.ID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store backtest result")
		return
	}

	s.hub.BroadcastBacktestComplete(result)

	backtestsTotal.WithLabelValues(string(req.Strategy), "ok").Inc()
	backtestDuration.Observe(time.Since(started).Seconds())

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetBacktest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := s.results.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "backtest "+id+" not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load result", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load backtest result")
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListBacktests(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	summaries, err := s.results.List(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to list results", zap.String("userId", userID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to list backtests")
		return
	}
	if summaries == nil {
		summaries = []store.ResultSummary{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"backtests": summaries,
		"count":     len(summaries),
	})
}

// handleValidateTicker probes the provider for any recent bar to confirm the
// symbol is known and tradable.
func (s *Server) handleValidateTicker(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)
	bars, err := s.provider.DailyCloses(r.Context(), ticker, start, end)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "failed to look up ticker "+ticker)
		return
	}

	valid := len(bars) > 0
	resp := map[string]any{
		"ticker": ticker,
		"valid":  valid,
	}
	if valid {
		resp["lastClose"] = bars[len(bars)-1].Close
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(s.upgrader, w, r)
}

// respondBacktestError maps domain errors onto HTTP status codes.
func (s *Server) respondBacktestError(w http.ResponseWriter, err error) {
	var invalid *types.InvalidParameterError
	var insufficient *types.InsufficientDataError

	switch {
	case errors.As(err, &invalid):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &insufficient):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, types.ErrEmptySeries):
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("backtest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "backtest failed")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
