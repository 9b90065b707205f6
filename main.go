package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dhauru/pdf-to-image-api/config"
	"github.com/dhauru/pdf-to-image-api/engine"
	"github.com/dhauru/pdf-to-image-api/engine/pdfrenderer"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	config.Logger = Logger
	engine.Logger = Logger
}

func main() {
	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	renderer, err := pdfrenderer.NewRenderer(serverConfig.RendererBackend)
	if err != nil {
		Logger.Error("Failed to create PDF renderer", "backend", serverConfig.RendererBackend, "error", err)
		os.Exit(1)
	}
	defer renderer.Close()
	Logger.Info("PDF renderer ready", "backend", serverConfig.RendererBackend)

	e := echo.New()
	e.HideBanner = true

	// Every uncaught error becomes a JSON error body; nothing crashes the process
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		message := err.Error()
		if httpErr, ok := err.(*echo.HTTPError); ok {
			code = httpErr.Code
			message = fmt.Sprintf("%v", httpErr.Message)
		}
		if jsonErr := c.JSON(code, map[string]string{"error": message}); jsonErr != nil {
			Logger.Error("Failed to write error response", "error", jsonErr)
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))

	serverHandler := &engine.ServerHandler{
		Echo:         e,
		Renderer:     renderer,
		Downloader:   engine.NewDownloader(serverConfig.DownloadTimeout, serverConfig.MaxPDFBytes),
		ServerConfig: serverConfig,
	}
	serverHandler.RegisterRoutes()

	if serverConfig.ListenAddrIP == "" {
		Logger.Info("No Ip Addr set, binding on ALL addresses")
	}

	Logger.Info("Starting HTTP server")

	// Try to start server with automatic port increment if port is in use
	maxRetries := 5
	startPort := serverConfig.ListenAddrPort
	var startErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		addr := fmt.Sprintf("%s:%s", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
		Logger.Info("Attempting to start server", "address", addr, "attempt", attempt+1)

		startErr = e.Start(addr)

		// Check if error is "address already in use"
		if startErr != nil && isAddressInUse(startErr) {
			Logger.Warn("Port already in use, trying next port",
				"port", serverConfig.ListenAddrPort,
				"attempt", attempt+1,
				"max_attempts", maxRetries)

			// Increment port for next attempt
			portNum := 0
			fmt.Sscanf(serverConfig.ListenAddrPort, "%d", &portNum)
			portNum++
			serverConfig.ListenAddrPort = fmt.Sprintf("%d", portNum)

			if attempt == maxRetries-1 {
				Logger.Error("Failed to find available port after maximum retries",
					"start_port", startPort,
					"end_port", serverConfig.ListenAddrPort,
					"max_retries", maxRetries)
				os.Exit(1)
			}
		} else if startErr != nil {
			// Some other error occurred
			Logger.Error("Failed to start server", "error", startErr)
			os.Exit(1)
		} else {
			// Server started successfully
			break
		}
	}
}

// isAddressInUse checks if the error is due to address already in use
func isAddressInUse(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "address already in use")
}
