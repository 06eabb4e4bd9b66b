package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/PauseFlow/app/controllers"
	"github.com/ManuelReschke/PauseFlow/app/repository"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/cache"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/database"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/env"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/router"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/stripeapi"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	controllers.SetDependencies(repository.GetGlobalRepositories(), stripeapi.NewClientFromEnv())

	app := fiber.New(fiber.Config{
		AppName: "PauseFlow",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: env.GetEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// fiber metrics
	app.Get("/metrics", monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
