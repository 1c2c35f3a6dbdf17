package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Abraxas-365/gapflow/internal/config"
	"github.com/Abraxas-365/gapflow/interview/answerflow/answerflowapi"
	"github.com/Abraxas-365/gapflow/interview/question/questionapi"
	"github.com/Abraxas-365/gapflow/interview/resource/resourceapi"
	"github.com/Abraxas-365/gapflow/pkg/errx"
	"github.com/Abraxas-365/gapflow/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Environment and settings
	if err := godotenv.Load(); err != nil {
		logx.Info("No .env file found, reading settings from the environment")
	}
	settings, err := config.Load()
	if err != nil {
		logx.Fatalf("Failed to load settings: %v", err)
	}
	logx.SetLevel(logLevelFor(settings.LogLevel))
	logx.Info("Starting GapFlow API Server...")

	// 2. Dependency container
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	container := NewContainer(ctx, settings)
	defer container.Close()

	// 3. Background snapshot expiry
	go container.Janitor.Run(ctx)

	// 4. Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "GapFlow API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
	})

	// 5. Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: settings.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// 6. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		health := fiber.Map{"status": "ok"}
		if container.DB != nil {
			health["db"] = container.DB.Ping() == nil
		}
		if container.Redis != nil {
			health["redis"] = container.Redis.Ping(c.Context()).Err() == nil
		}
		return c.JSON(health)
	})

	// 7. Routes

	// Questions: /api/questions
	questionapi.RegisterRoutes(app, container.QuestionHandlers)

	// Answer workflow: /api/answerflow
	answerflowapi.RegisterRoutes(app, container.AnswerFlowHandlers)

	// Learning resources: /api/resources
	resourceapi.RegisterRoutes(app, container.ResourceHandlers)

	// 8. Start server with graceful shutdown
	port := settings.Port
	if port == "" {
		port = "8080"
	}

	go func() {
		logx.Infof("Server listening on port %s", port)
		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logx.Info("Shutting down server...")
	stop()

	if err := app.Shutdown(); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("Server exited")
}

// globalErrorHandler converts internal errors to standard HTTP responses
func globalErrorHandler(c *fiber.Ctx, err error) error {
	// Fiber's own errors (e.g. route not found)
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
			"code":  e.Code,
		})
	}

	// Registered domain errors
	if e, ok := err.(*errx.Error); ok {
		return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
	}

	// Default unknown error
	logx.Errorf("Internal Server Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"type":    "INTERNAL",
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	})
}
