package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fourline-game/fourline-backend/config"
	"github.com/fourline-game/fourline-backend/handlers"
	"github.com/fourline-game/fourline-backend/logging"
	"github.com/fourline-game/fourline-backend/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded:", err)
	}

	cfg := config.LoadConfig()

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Error building logger:", err)
	}
	defer logger.Sync()

	db, err := repository.ConnectToPostgreSQL(cfg)
	if err != nil {
		logger.Fatal("connecting to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	mongoClient, err := repository.ConnectMongoDB(cfg)
	if err != nil {
		logger.Fatal("connecting to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())
	logger.Info("connected to MongoDB")

	store := repository.NewPostgresStore(db)
	archive := repository.NewMongoArchiver(mongoClient, cfg.MongoDB)
	hub := handlers.NewHub(logger)
	h := handlers.NewHandler(store, archive, hub, logger)

	r := handlers.NewRouter(h)

	logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
