package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerConfig contains all of the server settings
type ServerConfig struct {
	ListenAddrIP    string
	ListenAddrPort  string
	RendererBackend string
	MaxPDFBytes     int64
	MaxDPI          int
	MaxBatchPages   int
	DownloadTimeout time.Duration
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	serverConfigLive := ServerConfig{}

	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	// Load configuration from environment variables with defaults

	// Server configuration
	serverConfigLive.ListenAddrPort = getEnv("SERVER_PORT", "5000")
	serverConfigLive.ListenAddrIP = getEnv("SERVER_ADDR", "")

	// Renderer configuration
	serverConfigLive.RendererBackend = getEnv("RENDERER_BACKEND", "pdfium")

	// Conversion ceilings. These keep rendering latency and memory bounded on
	// small hosting tiers, so raise them with care.
	serverConfigLive.MaxPDFBytes = int64(getEnvInt("MAX_PDF_MB", 10)) << 20
	serverConfigLive.MaxDPI = getEnvInt("MAX_DPI", 400)
	serverConfigLive.MaxBatchPages = getEnvInt("MAX_BATCH_PAGES", 5)
	serverConfigLive.DownloadTimeout = time.Duration(getEnvInt("DOWNLOAD_TIMEOUT_SECONDS", 20)) * time.Second

	fmt.Println("\n========================================")
	fmt.Println("   PDF to Image API")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	fmt.Println("Initializing...")

	logger.Info("Configuration loaded",
		"rendererBackend", serverConfigLive.RendererBackend,
		"maxPDFBytes", serverConfigLive.MaxPDFBytes,
		"maxDPI", serverConfigLive.MaxDPI,
		"maxBatchPages", serverConfigLive.MaxBatchPages,
		"downloadTimeout", serverConfigLive.DownloadTimeout)

	return serverConfigLive, logger
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	logLevel := getEnv("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	logOutput := getEnv("LOG_OUTPUT", "stdout")
	var logWriter io.Writer

	if logOutput == "stdout" {
		logWriter = os.Stdout
	} else {
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "pdf-to-image.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stdout
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stdout
			} else {
				logWriter = logFile
				fmt.Println("Logging to file: ", logPath)
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}
