package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zapinvoice/zapinvoice/internal/config"
	"github.com/zapinvoice/zapinvoice/internal/db"
	"github.com/zapinvoice/zapinvoice/internal/server"
	"github.com/zapinvoice/zapinvoice/internal/services"
	"github.com/zapinvoice/zapinvoice/internal/store"
)

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	return log
}

// sessionStore picks the session scope: Redis with TTL when configured,
// otherwise an in-process map that lives as long as the server does.
func sessionStore(cfg config.Config, log *logrus.Logger) store.KV {
	if cfg.RedisAddr == "" {
		return store.NewMemory()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, falling back to in-memory session store")
		return store.NewMemory()
	}
	log.WithField("addr", cfg.RedisAddr).Info("session store on redis")
	return store.NewRedis(client, cfg.SessionTTL)
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := newLogger(cfg)

	conn, err := db.Connect(cfg.DatabaseDSN, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}

	st := store.NewService(store.NewGorm(conn), sessionStore(cfg, log), log)
	ctl := services.NewInvoiceController(context.Background(), st, log)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(ctl, st, log)}
	go func() {
		log.WithFields(logrus.Fields{"env": cfg.Env, "addr": srv.Addr}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
	log.Info("server stopped")
}
