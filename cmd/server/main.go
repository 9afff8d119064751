package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RyseLabs/perpetu.ai/config"
	"github.com/RyseLabs/perpetu.ai/internal/game"
	"github.com/RyseLabs/perpetu.ai/internal/storage"
	"github.com/RyseLabs/perpetu.ai/internal/types"
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

	// Initialize game manager
	manager := game.NewManager(cfg)
	manager.SetLogger(logger)

	// Open persistence store
	store, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()
	manager.SetStore(store)

	// Load world data from files, then overlay persisted state
	if err := loadWorldData(manager, cfg, logger); err != nil {
		logger.Fatal("Failed to load world data", zap.Error(err))
	}
	if err := manager.RestoreState(); err != nil {
		logger.Error("Failed to restore persisted state", zap.Error(err))
	}

	// Set up HTTP server
	server := setupHTTPServer(cfg, manager, logger)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	// Start automatic turn advancement after everything else is initialized
	manager.StartTicker()
	defer manager.StopTicker()

	// Wait for shutdown signal
	waitForShutdown(logger)
}

func setupLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

func loadWorldData(manager *game.Manager, cfg config.Config, logger *zap.Logger) error {
	dataLoader := storage.NewDataLoader(cfg.Game.DataDir)

	// Missing data files are fine, the world starts empty
	world, err := dataLoader.LoadWorld()
	if err != nil {
		logger.Warn("No world data file", zap.Error(err))
	} else {
		manager.LoadWorld(world)
		logger.Info("Loaded world", zap.String("name", world.Name))
	}

	characters, err := dataLoader.LoadCharacters()
	if err != nil {
		logger.Warn("No character data file", zap.Error(err))
		return nil
	}
	manager.LoadCharacters(characters)
	logger.Info("Loaded characters", zap.Int("count", len(characters)))
	return nil
}

func setupHTTPServer(cfg config.Config, manager *game.Manager, logger *zap.Logger) *http.Server {
	// Create router
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	router.Get("/world", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, manager.World())
	})

	router.Post("/characters", func(w http.ResponseWriter, r *http.Request) {
		var character types.Character
		if err := json.NewDecoder(r.Body).Decode(&character); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		created, err := manager.RegisterCharacter(&character)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, created)
	})

	router.Get("/characters", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, manager.ListCharacters())
	})

	router.Get("/characters/{id}", func(w http.ResponseWriter, r *http.Request) {
		character, err := manager.GetCharacter(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, character)
	})

	router.Post("/characters/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		var event types.TimelineEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		scheduled, err := manager.ScheduleEvent(chi.URLParam(r, "id"), event)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, scheduled)
	})

	router.Post("/characters/{id}/cycle", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ItemID string `json:"item_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		result, err := manager.CycleScale(chi.URLParam(r, "id"), req.ItemID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, result)
	})

	router.Post("/combat/action", func(w http.ResponseWriter, r *http.Request) {
		var action types.CombatAction
		if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		result, err := manager.ResolveCombatAction(action)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, result)
	})

	router.Post("/combat/initiative", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CharacterIDs []string `json:"character_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		order, err := manager.Initiative(req.CharacterIDs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string][]string{"order": order})
	})

	router.Post("/turn", func(w http.ResponseWriter, r *http.Request) {
		result, err := manager.AdvanceTurn()
		if err != nil {
			logger.Error("Failed to advance turn", zap.Error(err))
			http.Error(w, "Failed to advance turn", http.StatusInternalServerError)
			return
		}
		writeJSON(w, result)
	})

	router.Get("/events", func(w http.ResponseWriter, r *http.Request) {
		since := 0
		if raw := r.URL.Query().Get("since"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "Invalid since parameter", http.StatusBadRequest)
				return
			}
			since = parsed
		}
		writeJSON(w, manager.WorldEvents(since))
	})

	// Create HTTP server
	return &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func waitForShutdown(logger *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	logger.Info("Shutting down")
}
