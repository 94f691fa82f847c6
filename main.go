package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/pageturn-labs/bookrent-backend/database"
	"github.com/pageturn-labs/bookrent-backend/internal/jobs"
	"github.com/pageturn-labs/bookrent-backend/internal/models"
	"github.com/pageturn-labs/bookrent-backend/internal/otp"
	"github.com/pageturn-labs/bookrent-backend/internal/routes"
	"github.com/pageturn-labs/bookrent-backend/internal/services"
	"github.com/pageturn-labs/bookrent-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	twilioAccountSID := os.Getenv("TWILIO_ACCOUNT_SID")

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.Category{},
			&models.Book{},
			&models.Rental{},
			&models.RentalItem{},
			&models.WishlistItem{},
			&models.Contact{},
			&models.PaymentOrder{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		// Use database store
		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// OTP delivery: Twilio Verify in production, logged codes in development
	var otpProvider otp.Provider
	if twilioAccountSID != "" {
		provider, err := otp.NewTwilioProvider()
		if err != nil {
			log.Fatal("Failed to initialize Twilio Verify:", err)
		}
		otpProvider = provider
		log.Println("✅ Twilio Verify initialized")
	} else {
		otpProvider = otp.NewDevProvider()
		log.Println("⚠️  Twilio not configured - OTP codes will be logged")
	}
	otpService := otp.NewService(otp.NewMemoryStore(), otpProvider)

	// SMS notifications follow the same split
	var smsSender services.SMSSender
	if twilioAccountSID != "" {
		sender, err := services.NewTwilioSMS()
		if err != nil {
			log.Fatal("Failed to initialize Twilio SMS:", err)
		}
		smsSender = sender
	} else {
		smsSender = services.LogSMS{}
	}
	services.SetSMSSender(smsSender)

	// Payment gateway is optional; without it checkout falls back to COD
	var gateway services.PaymentGateway
	var paymentService *services.PaymentService
	if cashfree, err := services.NewCashfreeGateway(); err == nil {
		gateway = cashfree
		paymentService = services.NewPaymentService(store, gateway)
		log.Println("✅ Cashfree payment gateway initialized")
	} else {
		log.Println("⚠️  Cashfree not configured - online payments disabled")
	}

	// Start rental reminder jobs
	reminderJob := jobs.NewReminderJob(store, smsSender)
	reminderJob.Start()

	log.Println("✅ All services initialized and scheduled jobs started")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "BookRent Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Status endpoint with database counts
	app.Get("/status", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service":     "BookRent Backend API",
			"version":     "1.0.0",
			"status":      "healthy",
			"environment": getEnvironment(),
			"storage":     getStorageType(),
			"sms": fiber.Map{
				"configured": twilioAccountSID != "",
			},
			"payments": fiber.Map{
				"configured": gateway != nil,
			},
		}

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			var bookCount, userCount, rentalCount, contactCount int64
			database.DB.Model(&models.Book{}).Count(&bookCount)
			database.DB.Model(&models.User{}).Count(&userCount)
			database.DB.Model(&models.Rental{}).Count(&rentalCount)
			database.DB.Model(&models.Contact{}).Count(&contactCount)

			response["database"] = fiber.Map{
				"status":   dbStatus,
				"books":    bookCount,
				"users":    userCount,
				"rentals":  rentalCount,
				"contacts": contactCount,
			}
		}

		return c.JSON(response)
	})

	routes.SetupRoutes(app, store, otpService, paymentService, gateway)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping reminder jobs...")
		reminderJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 BookRent Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🌍 Environment: %s", getEnvironment())
	log.Printf("📱 SMS: %s", getSMSStatus(twilioAccountSID))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getEnvironment() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return "Production (Cloud Run)"
	}
	return "Development (Local)"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getSMSStatus(twilioSID string) string {
	if twilioSID == "" {
		return "Not configured"
	}
	return "Configured"
}
