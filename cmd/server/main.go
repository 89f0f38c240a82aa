package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/avelin/todoweb/internal/config"
	"github.com/avelin/todoweb/internal/db"
	"github.com/avelin/todoweb/internal/handlers"
	"github.com/avelin/todoweb/internal/httplog"
	"github.com/avelin/todoweb/web"
)

func main() {
	cfgPath := flag.String("config", "", "path to a TOML config file")
	memStore := flag.Bool("mem", false, "use the in-memory store instead of MongoDB")
	flag.Parse()

	if *memStore {
		os.Setenv("TODOWEB_MEMORY_STORE", "1")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	logger := initLogger(cfg)
	gateway := db.NewGateway(cfg.MongoURI, cfg.Database)
	server := initServer(cfg, gateway, logger)

	startServer(server, gateway, cfg, logger)
}

func initLogger(cfg *config.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

func initServer(cfg *config.Config, gateway *db.Gateway, logger *log.Logger) *http.Server {
	var todos db.TodoRepository
	if cfg.MemoryStore {
		logger.Warn("using in-memory store; data is lost on exit")
		todos = db.NewMemoryRepository()
	} else {
		todos = db.NewMongoRepository(gateway, cfg.Collection)
	}

	handler := handlers.New(todos, gateway, logger)
	mux := http.NewServeMux()
	handler.Register(mux)
	mux.Handle("/", web.Handler())

	return &http.Server{
		Addr:    cfg.Addr,
		Handler: httplog.Middleware(logger)(mux),
	}
}

func startServer(server *http.Server, gateway *db.Gateway, cfg *config.Config, logger *log.Logger) {
	logger.Info("starting server", "addr", server.Addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := gateway.Close(ctx); err != nil {
		logger.Error("database disconnect failed", "error", err)
	}
	logger.Info("server stopped")
}
