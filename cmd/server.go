package main

import (
	"context"
	"log"
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/config"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/server"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/db/mongodb"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/db/redis"
	"github.com/Mantequilla-Soft/monitor-3speak-tv/pkg/logger"
)

func main() {
	log.Println("Starting monitor server")
	configFile := "config.yml"
	cfgFile, err := config.LoadConfig(configFile)

	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	mongoConn, err := mongodb.NewMongoConn(cfg)
	if err != nil {
		if mongoConn == nil {
			appLogger.Fatalf("invalid job store configuration: %s", err)
		}
		// Degraded mode: dashboards render empty, writes report failure,
		// and the sweeper keeps probing until the store comes back.
		appLogger.Warnf("could not reach job store, starting degraded: %s", err)
	} else {
		appLogger.Infof("job store connected")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoConn.Close(ctx); err != nil {
			appLogger.Warnf("error closing job store connection: %s", err)
		}
	}()

	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	appLogger.Infof("redis connected")
	defer redisClient.Close()

	s := server.NewServer(cfg, mongoConn, redisClient, appLogger)
	if err = s.Run(); err != nil {
		appLogger.Infof("could not start server: %s", err)
	}
}
