package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"wiki-quiz/internal/adapter/quizgen"
	"wiki-quiz/internal/config"
	"wiki-quiz/internal/database"
	"wiki-quiz/internal/extractor"
	"wiki-quiz/internal/handler"
	"wiki-quiz/internal/logger"
	"wiki-quiz/internal/middleware"
	"wiki-quiz/internal/repository"
	"wiki-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// textModel matches the slice of a langchaingo LLM the synthesizer consumes.
type textModel interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

// newTextModel builds the configured LLM client, failing fast with a clear
// diagnostic when the capability is missing rather than deferring to first use.
func newTextModel(cfg config.LLMConfig) (textModel, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.OllamaServerURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
		)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("llm provider is openai but no API key is set: set OPENAI_API_KEY or llm.openai_api_key")
		}
		return openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.Model),
			openai.WithHTTPClient(httpClient),
		)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q (want ollama or openai)", cfg.Provider)
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger.Env, cfg.Logger.Level); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	llm, err := newTextModel(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	appLogger.Info("LLM client initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
	)

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.URL); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
		appLogger.Info("Database migrations applied")
	}

	db, err := database.NewSQLXPostgresDB(cfg.Database.URL)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	quizRepository := repository.NewQuizDatabaseAdapter(db)
	articleExtractor := extractor.NewWikipediaExtractor(cfg.Extractor)
	synthesizer := quizgen.NewLangchainSynthesizer(llm, cfg.Quiz, cfg.LLM.Temperature)
	quizService := service.NewQuizService(articleExtractor, synthesizer, quizRepository)
	quizHandler := handler.NewQuizHandler(quizService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	app.Get("/", quizHandler.Health)
	app.Post("/generate_quiz", quizHandler.GenerateQuiz)
	app.Get("/history", quizHandler.GetHistory)
	app.Get("/quiz/:id", quizHandler.GetQuiz)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
