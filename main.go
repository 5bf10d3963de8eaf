package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"productapi/internal/config"
	"productapi/internal/database"
	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
	"gorm.io/gorm"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	var tokens *services.TokenService
	if cfg.Auth.Enabled() {
		tokens = services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	}
	if cfg.IssueTokenFor != "" {
		issueToken(tokens, cfg.IssueTokenFor)
		return
	}

	// --- Store ---
	var repo repositories.ProductRepository
	var db *gorm.DB
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn().Msg("Using in-memory product store; data is lost on exit")
		repo = repositories.NewMockProductRepository()
	} else {
		db, err = database.Open(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error while trying to connect to DB")
		}
		log.Info().Str("driver", cfg.Database.Driver).Msg("Successfully connected to DB")

		if cfg.ClearDatabase {
			os.Exit(clearDatabase(db))
		}
		repo = repositories.NewGORMProductRepository(db)
	}

	// --- Product events ---
	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQ.Enabled() {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize RabbitMQ client")
		}
		publisher = mqClient

		if cfg.RabbitMQ.Audit {
			if err := mqClient.Subscribe(cfg.RabbitMQ.AuditQueue(), auditProductEvent); err != nil {
				log.Error().Err(err).Msg("Failed to start product event consumer")
			}
		}
	}

	app := newApp(cfg, dependencies{repo: repo, publisher: publisher, tokens: tokens})

	// --- Start HTTP Server ---
	go func() {
		log.Info().Str("port", cfg.AppPort).Msg("Starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Error during Fiber shutdown")
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing RabbitMQ client")
		}
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}
	log.Info().Msg("Server gracefully stopped")
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func issueToken(tokens *services.TokenService, subject string) {
	token, err := tokens.IssueToken(subject)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to issue token")
	}
	fmt.Println(token)
}

// clearDatabase empties the products table and returns the process exit code.
func clearDatabase(db *gorm.DB) int {
	defer database.Close(db)
	if err := repositories.ResetSchema(db); err != nil {
		log.Error().Err(err).Msg("Failed to clear database")
		return 1
	}
	log.Info().Msg("Products table cleared")
	return 0
}

// auditProductEvent logs product events. Undecodable messages are dropped
// so they are not redelivered forever.
func auditProductEvent(msg amqp.Delivery) error {
	var event models.ProductEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Warn().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("Dropping undecodable product event")
		return nil
	}
	log.Info().
		Str("event_id", event.ID).
		Str("type", event.Type).
		Int64("product_id", event.Product.ID).
		Time("occurred_at", event.OccurredAt).
		Msg("Product event")
	return nil
}
