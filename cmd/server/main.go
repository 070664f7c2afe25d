package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/corporate-warfare/config"
	"github.com/user/corporate-warfare/internal/ai"
	"github.com/user/corporate-warfare/internal/game"
	"github.com/user/corporate-warfare/internal/interfaces"
	"github.com/user/corporate-warfare/internal/notify"
	"github.com/user/corporate-warfare/internal/persistence"
	"github.com/user/corporate-warfare/internal/prob"
	"github.com/user/corporate-warfare/internal/room"
	"github.com/user/corporate-warfare/internal/stream"
	"github.com/user/corporate-warfare/internal/types"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "./config/config.json", "Path to configuration file")
	flag.Parse()

	// Set up logger
	logger := setupLogger()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Build the starting world
	gameRoom := room.NewRoom(cfg)
	snapshot, err := buildWorld(gameRoom, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build world", zap.Error(err))
	}

	// Decision engine: remote inference when configured, deterministic
	// fallback otherwise
	inferenceTimeout := time.Duration(cfg.Inference.TimeoutSeconds) * time.Second
	var client interfaces.InferenceClient
	if cfg.Inference.URL != "" {
		client = ai.NewHTTPClient(cfg.Inference.URL, cfg.Inference.Model, inferenceTimeout)
		logger.Info("Using inference backend", zap.String("url", cfg.Inference.URL))
	} else {
		logger.Info("No inference backend configured, using fallback policy")
	}
	decider := ai.NewEngine(client, inferenceTimeout, cfg.Game.AIAggressiveness, logger)

	// Initialize the simulation clock
	sim := game.NewSimulation(cfg, gameRoom.ID, snapshot, decider, logger)

	// Wire persistence
	store, err := setupStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to set up persistence", zap.Error(err))
	}
	sim.SetStore(store)

	// Wire notifications: structured log plus the websocket hub
	hub := stream.NewHub(logger)
	sim.SetNotifier(notify.Multi{notify.NewZapNotifier(logger), hub})

	// Set up HTTP server
	server := setupHTTPServer(cfg, sim, hub, logger)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	// Start the simulation after everything else is initialized
	sim.Start()
	defer sim.Stop()

	logger.Info("Simulation started",
		zap.String("room_id", gameRoom.ID),
		zap.Int("tick_interval_ms", cfg.Game.TickIntervalMS),
		zap.Int("ai_companies", cfg.Game.AICompanyCount))

	// Wait for shutdown signal
	waitForShutdown(logger)
	hub.Close()
}

func setupLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

func buildWorld(gameRoom *room.Room, cfg config.Config, logger *zap.Logger) (*types.WorldSnapshot, error) {
	dataLoader := room.NewDataLoader("./assets/data")

	buildings, err := dataLoader.LoadBuildings()
	if err != nil {
		return nil, fmt.Errorf("failed to load buildings: %w", err)
	}
	logger.Info("Loaded buildings", zap.Int("count", len(buildings)))

	stocks, err := dataLoader.LoadStocks()
	if err != nil {
		return nil, fmt.Errorf("failed to load stocks: %w", err)
	}
	logger.Info("Loaded stocks", zap.Int("count", len(stocks)))

	roller := prob.NewRoller(cfg.Game.Seed)
	return gameRoom.BuildWorld(roller, buildings, stocks), nil
}

func setupStore(cfg config.Config, logger *zap.Logger) (interfaces.SnapshotStore, error) {
	if cfg.Database.URL == "" {
		logger.Info("Using file persistence")
		return persistence.NewFileStore("./data"), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := persistence.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store, err := persistence.NewPostgresStore(ctx, pool, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up database store: %w", err)
	}
	logger.Info("Using database persistence")
	return store, nil
}

func setupHTTPServer(cfg config.Config, sim *game.Simulation, hub *stream.Hub, logger *zap.Logger) *http.Server {
	// Create router
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Set up routes
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	router.Get("/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sim.Snapshot())
	})

	router.Get("/analytics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sim.Snapshot().Analytics)
	})

	router.Get("/competition/events", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sim.Events())
	})

	router.Get("/decisions/{companyID}", func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "companyID")
		writeJSON(w, sim.DecisionHistory(companyID))
	})

	// Live notification stream
	router.Get("/events", hub.ServeWS)

	// Player agent commands
	router.Post("/command", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AgentID    string `json:"agent_id"`
			Task       string `json:"task"`
			BuildingID string `json:"building_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		if err := sim.CommandAgent(req.AgentID, types.AgentTask(req.Task), req.BuildingID); err != nil {
			logger.Warn("Agent command rejected",
				zap.String("agent_id", req.AgentID),
				zap.String("task", req.Task),
				zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	// Player-initiated hostile takeover
	router.Post("/takeover", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AttackerID string `json:"attacker_id"`
			TargetID   string `json:"target_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		writeJSON(w, sim.ExecuteTakeover(req.AttackerID, req.TargetID))
	})

	// Create HTTP server
	return &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func waitForShutdown(logger *zap.Logger) {
	// Set up channel for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Perform cleanup
	logger.Info("Shutting down")
}
