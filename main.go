package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"paper_binder/api"
	"paper_binder/config"
	"paper_binder/paper"
	"paper_binder/render"
)

const (
	// ServerReadTimeout is the HTTP server read timeout; uploads can be large
	ServerReadTimeout = 2 * time.Minute

	// ServerIdleTimeout is the HTTP server idle timeout
	ServerIdleTimeout = 60 * time.Second

	// GracefulShutdownTimeout is the timeout for graceful shutdown
	GracefulShutdownTimeout = 10 * time.Second
)

func main() {
	configPath := flag.String("config", os.Getenv("PAPER_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		logrus.Fatalf("Invalid log configuration: %v", err)
	}

	fonts := render.LoadFonts(cfg.Fonts.Paths, cfg.Fonts.Embedded)
	if fonts.Scalable() {
		log.WithField("font", fonts.Source()).Info("Font loaded")
	} else {
		log.Warn("No scalable font available, falling back to bitmap text")
	}

	gen, err := paper.New(cfg, fonts, log)
	if err != nil {
		log.Fatalf("Invalid layout configuration: %v", err)
	}

	r := gin.Default()
	r.MaxMultipartMemory = api.MultipartMemory

	api.SetupRoutes(r, &api.Config{
		Server:    cfg.Server,
		Generator: gen,
		Logger:    log,
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "paper_binder",
		})
	})

	// Generation can run for a while, so the write timeout follows the
	// request timeout.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  ServerReadTimeout,
		WriteTimeout: cfg.Server.RequestTimeout + ServerReadTimeout,
		IdleTimeout:  ServerIdleTimeout,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":            srv.Addr,
			"max_upload_size": cfg.Server.MaxUploadSize,
			"max_images":      cfg.Server.MaxImages,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited gracefully")
}

func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return log, nil
}
