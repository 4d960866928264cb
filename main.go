package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"facility-maintenance/microservices/statistics-service/cache"
	"facility-maintenance/microservices/statistics-service/config"
	"facility-maintenance/microservices/statistics-service/handlers"
	"facility-maintenance/microservices/statistics-service/live"
	"facility-maintenance/microservices/statistics-service/logging"
	"facility-maintenance/microservices/statistics-service/middleware"
	"facility-maintenance/microservices/statistics-service/repositories"
	"facility-maintenance/microservices/statistics-service/services"
)

type backingStore interface {
	services.Store
	repositories.ChangeWatcher
}

func openStore(ctx context.Context, cfg *config.Config) (backingStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		store, err := repositories.NewPostgresStore(ctx, cfg.Store.PostgresDSN, cfg.Store.QueryTimeout)
		if err != nil {
			return nil, nil, err
		}
		logging.Logger.Info("Event ID: DB_CONNECTED, Description: Successfully connected to PostgreSQL.")
		return store, store.Close, nil

	case config.DriverMemory:
		logging.Logger.Warn("Event ID: MEMORY_STORE, Description: Using the in-memory store; statistics start empty.")
		return repositories.NewMemoryStore(), func() {}, nil

	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Store.MongoURI))
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, err
		}
		logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB database %s.", cfg.Store.MongoDBName)

		store := repositories.NewMongoStore(client.Database(cfg.Store.MongoDBName),
			cfg.Store.TasksCollection, cfg.Store.UsersCollection, cfg.Store.DepartmentsCollection, cfg.Store.QueryTimeout)
		return store, func() { client.Disconnect(context.Background()) }, nil
	}
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if cfg.Cache.Backend == config.CacheBackendMemory {
		return cache.NewMemoryCache(), nil
	}
	return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %v", err)
	}
	logging.InitLogger(cfg.Logging)
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Statistics Service...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Store %s unavailable: %v", cfg.Store.Driver, err)
	}
	defer closeStore()

	breaker := repositories.NewStoreBreaker("StatisticsStoreCB", cfg.Breaker.MaxFailures, cfg.Breaker.OpenTimeout)
	var statistics services.Statistics = services.NewStatisticsService(repositories.NewBreakerStore(store, breaker))

	var invalidator live.Invalidator
	if cfg.Cache.Enabled {
		c, err := openCache(ctx, cfg)
		if err != nil {
			logging.Logger.Fatalf("Event ID: CACHE_CONNECTION_FAILED, Description: %v", err)
		}
		cached := cache.NewCachedStatistics(statistics, c, cfg.Cache.TTL)
		statistics, invalidator = cached, cached
		logging.Logger.Infof("Event ID: CACHE_ENABLED, Description: Caching statistics in %s for %s", cfg.Cache.Backend, cfg.Cache.TTL)
	}

	var hub *live.Hub
	if cfg.LiveUpdatesEnabled {
		hub = live.NewHub(cfg.Server.CORSOrigin)
		defer hub.Close()
	}
	if invalidator != nil || hub != nil {
		go live.Follow(ctx, store, invalidator, hub)
	}

	statisticsHandler := handlers.NewStatisticsHandler(statistics)

	r := mux.NewRouter()
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	if cfg.Auth.Enabled {
		api.Use(middleware.JWTAuth([]byte(cfg.Auth.AccessSecret)))
	} else {
		logging.Logger.Warn("Event ID: AUTH_DISABLED, Description: Statistics routes are not authenticated.")
	}
	statisticsHandler.RegisterRoutes(api)
	if hub != nil {
		api.Handle("/ws/statistics", hub).Methods(http.MethodGet)
	}

	handler := middleware.CORS(cfg.Server.CORSOrigin)(middleware.RequestLogger(r))

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Logger.Info("Event ID: SERVICE_STOP, Description: Shutting down Statistics Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_FAILED, Description: %v", err)
	}
}
