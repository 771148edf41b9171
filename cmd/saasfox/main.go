package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/SaaSFox/app/repository"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/cache"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/database"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/env"
	applogger "github.com/ManuelReschke/SaaSFox/internal/pkg/logger"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	applogger.Setup()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())
	cache.SetupCache()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/saasfox to project root
		"../../../", // Fallback
	}

	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); err == nil {
			basePath = path
			break
		}
	}
	if basePath == "" {
		log.Warn("[App] public/docs not found, serving API docs from ./")
		basePath = "./"
	}

	app := fiber.New(fiber.Config{
		AppName:   env.GetEnv("APP_NAME", "SaaSFox"),
		BodyLimit: env.GetEnvInt("BODY_LIMIT_BYTES", 16<<20),
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics, only when credentials are configured
	metricsUser := strings.TrimSpace(env.GetEnv("METRICS_USER", ""))
	metricsPassword := env.GetEnv("METRICS_PASSWORD", "")
	if metricsUser != "" && metricsPassword != "" {
		app.Get("/metrics", basicauth.New(basicauth.Config{
			Users: map[string]string{
				metricsUser: metricsPassword,
			},
		}), monitor.New())
	} else {
		log.Info("[App] METRICS_USER/METRICS_PASSWORD not set, /metrics disabled")
	}

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}
