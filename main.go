package main

import (
	"bondroom/config"
	"bondroom/database"
	mentorRoutes "bondroom/routers/mentorRoutes"
	trainingRoutes "bondroom/routers/trainingRoutes"
	"bondroom/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(recover.New())
	app.Use(requestid.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	trainingRoutes.SetupTrainingRoutes(app)
	trainingRoutes.SetupAdminTrainingRoutes(app)
	mentorRoutes.SetupMentorRoutes(app)

	// Hourly sweep that fails pending quiz attempts past their deadline
	utils.StartQuizAttemptScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
