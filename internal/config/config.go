package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Extractor ExtractorConfig
	Quiz      QuizConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL         string
	AutoMigrate bool
}

// LLMConfig selects and configures the text-generation provider.
// Provider is "ollama" or "openai".
type LLMConfig struct {
	Provider        string
	Model           string
	OpenAIAPIKey    string
	OllamaServerURL string
	Temperature     float64
	Timeout         time.Duration
}

type ExtractorConfig struct {
	Timeout           time.Duration
	UserAgent         string
	AllowAnyHost      bool
	MaxParagraphs     int
	MinParagraphChars int
	MinContentChars   int
}

type QuizConfig struct {
	MinQuestions    int
	MaxQuestions    int
	MaxAttempts     int
	MaxContentChars int
}

type LoggerConfig struct {
	Env   string
	Level string
}

func setDefaults() {
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 60)
	viper.SetDefault("database.auto_migrate", true)
	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.model", "qwen3:0.6b")
	viper.SetDefault("llm.ollama_server_url", "http://localhost:11434")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.timeout", 60)
	viper.SetDefault("extractor.timeout", 10)
	viper.SetDefault("extractor.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	viper.SetDefault("extractor.allow_any_host", false)
	viper.SetDefault("extractor.max_paragraphs", 15)
	viper.SetDefault("extractor.min_paragraph_chars", 50)
	viper.SetDefault("extractor.min_content_chars", 200)
	viper.SetDefault("quiz.min_questions", 5)
	viper.SetDefault("quiz.max_questions", 8)
	viper.SetDefault("quiz.max_attempts", 2)
	viper.SetDefault("quiz.max_content_chars", 4000)
	viper.SetDefault("logger.level", "info")
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional; defaults plus env vars are enough.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Database: DatabaseConfig{
			URL:         viper.GetString("database.url"),
			AutoMigrate: viper.GetBool("database.auto_migrate"),
		},
		LLM: LLMConfig{
			Provider:        viper.GetString("llm.provider"),
			Model:           viper.GetString("llm.model"),
			OpenAIAPIKey:    viper.GetString("llm.openai_api_key"),
			OllamaServerURL: viper.GetString("llm.ollama_server_url"),
			Temperature:     viper.GetFloat64("llm.temperature"),
			Timeout:         viper.GetDuration("llm.timeout") * time.Second,
		},
		Extractor: ExtractorConfig{
			Timeout:           viper.GetDuration("extractor.timeout") * time.Second,
			UserAgent:         viper.GetString("extractor.user_agent"),
			AllowAnyHost:      viper.GetBool("extractor.allow_any_host"),
			MaxParagraphs:     viper.GetInt("extractor.max_paragraphs"),
			MinParagraphChars: viper.GetInt("extractor.min_paragraph_chars"),
			MinContentChars:   viper.GetInt("extractor.min_content_chars"),
		},
		Quiz: QuizConfig{
			MinQuestions:    viper.GetInt("quiz.min_questions"),
			MaxQuestions:    viper.GetInt("quiz.max_questions"),
			MaxAttempts:     viper.GetInt("quiz.max_attempts"),
			MaxContentChars: viper.GetInt("quiz.max_content_chars"),
		},
		Logger: LoggerConfig{
			Env:   os.Getenv("ENV"),
			Level: viper.GetString("logger.level"),
		},
	}

	// Environment variables override file values.
	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Database.URL = url
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT %q: %w", port, err)
		}
		config.Server.Port = p
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.OpenAIAPIKey = key
	}
	if serverURL := os.Getenv("OLLAMA_SERVER_URL"); serverURL != "" {
		config.LLM.OllamaServerURL = serverURL
	}

	if config.Database.URL == "" {
		return nil, fmt.Errorf("database.url is not set (or DATABASE_URL environment variable)")
	}
	if config.Quiz.MinQuestions < 1 || config.Quiz.MaxQuestions > 10 || config.Quiz.MinQuestions > config.Quiz.MaxQuestions {
		return nil, fmt.Errorf("invalid quiz question range: min=%d max=%d", config.Quiz.MinQuestions, config.Quiz.MaxQuestions)
	}

	return config, nil
}
