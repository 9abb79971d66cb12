package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"drivenmind/auth"
	"drivenmind/billing"
	"drivenmind/config"
	"drivenmind/middleware"
	"drivenmind/models"
	"drivenmind/routes"
	"drivenmind/store"
	"drivenmind/utils"
	"drivenmind/worker"
)

func main() {
	logger := log.New(os.Stdout, "DRIVENMIND: ", log.Ldate|log.Ltime|log.Lshortfile)

	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if config.AppConfig.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Fatalf("Failed to initialize Sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Pick the repository backend
	var repos store.Repositories
	if config.AppConfig.Database.Enabled() {
		var err error
		repos, _, err = store.OpenGorm(store.GormConfig{
			Host:     config.AppConfig.Database.Host,
			Port:     config.AppConfig.Database.Port,
			User:     config.AppConfig.Database.User,
			Password: config.AppConfig.Database.Password,
			Name:     config.AppConfig.Database.Name,
			SSLMode:  config.AppConfig.Database.SSLMode,
		})
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Println("Using Postgres repositories")
	} else {
		repos = store.NewMemoryRepositories()
		logger.Println("Using seeded in-memory repositories")
	}

	sessionFile := store.NewSessionFile(config.AppConfig.SessionFilePath, log.New(os.Stdout, "SESSION: ", log.LstdFlags))
	session := auth.NewSession()
	clock := utils.RealClock()
	latency := time.Duration(config.AppConfig.SimulatedLatencyMS) * time.Millisecond

	identity := auth.NewIdentityStore(repos.Identities, sessionFile, session, clock, latency,
		log.New(os.Stdout, "IDENTITY: ", log.LstdFlags))
	subscriptions := billing.NewSubscriptionStore(repos.Subscriptions, repos.PaymentMethods, session, clock, latency,
		config.AppConfig.EntitlementStrictTruthiness,
		log.New(os.Stdout, "BILLING: ", log.LstdFlags))

	// Subscription state follows the current identity
	identity.SetOnChange(func(_ *models.User) {
		subscriptions.Reset()
	})
	identity.Restore()

	// Start the billing sweep
	billingWorker := worker.NewBillingWorker(subscriptions,
		time.Duration(config.AppConfig.BillingSweepSeconds)*time.Second,
		log.New(os.Stdout, "BILLING-WORKER: ", log.LstdFlags))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go billingWorker.Start(ctx)

	app := fiber.New()
	app.Use(middleware.CORS())

	routes.SetupRoutes(app, routes.Deps{
		Identity:      identity,
		Subscriptions: subscriptions,
		SessionFile:   sessionFile,
	})

	logger.Printf("Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
