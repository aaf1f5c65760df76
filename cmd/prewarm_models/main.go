package main

import (
	"context"
	"log"
	"time"

	"speakcheck/internal/adapter/scoring"
	"speakcheck/internal/config"
	"speakcheck/internal/database"
	"speakcheck/internal/logger"
	"speakcheck/internal/repository"
	"speakcheck/internal/service"

	"go.uber.org/zap"
)

// Builds the reference model for every sentence that does not have one yet,
// so first submissions never pay the build latency. Safe to run repeatedly.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sentenceRepository := repository.NewSQLXSentenceRepository(db)
	scoringProvider := scoring.NewClient(cfg.Scoring)
	refModelService := service.NewReferenceModelService(sentenceRepository, scoringProvider)

	ctx := context.Background()
	sentences, err := sentenceRepository.GetAllSentences(ctx)
	if err != nil {
		appLogger.Fatal("Failed to list sentences", zap.Error(err))
	}

	var built, skipped, failed int
	start := time.Now()
	for _, sentence := range sentences {
		if sentence.Model.IsComplete() {
			skipped++
			continue
		}
		if _, err := refModelService.EnsureModel(ctx, sentence.ID); err != nil {
			failed++
			appLogger.Error("Model build failed",
				zap.String("sentenceID", sentence.ID),
				zap.String("text", sentence.Text),
				zap.Error(err))
			continue
		}
		built++
	}

	appLogger.Info("Model pre-warm finished",
		zap.Int("built", built),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)))
}
