package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/lifeflow-api/internal/application/ledger"
	"github.com/jhoicas/lifeflow-api/internal/application/notification"
	"github.com/jhoicas/lifeflow-api/internal/infrastructure/email"
	"github.com/jhoicas/lifeflow-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/lifeflow-api/internal/interfaces/http"
	"github.com/jhoicas/lifeflow-api/pkg/config"
	"github.com/jhoicas/lifeflow-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.DB.RunMigrations {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Notificaciones: SMTP si está configurado, si no solo log.
	var sender notification.Sender
	if cfg.SMTP.Enabled() {
		sender = email.NewSender(cfg.SMTP, log.Component("smtp"))
	} else {
		sender = email.NewLogSender(log.Component("smtp"))
		log.Warn().Msg("SMTP_HOST vacío: las notificaciones solo se registran en el log")
	}
	dispatcher := notification.NewDispatcher(sender, postgres.NewNotificationRepository(pool), notification.Config{
		QueueSize:   cfg.Notifications.QueueSize,
		Workers:     cfg.Notifications.Workers,
		SendTimeout: cfg.Notifications.SendTimeout,
		MaxRetries:  cfg.Notifications.MaxRetries,
	}, log.Component("notifications"))
	dispatcher.Start()

	txRunner := postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout)
	ledgerUC := ledger.NewLedgerUseCase(txRunner, dispatcher,
		ledger.WithRetry(ledger.RetryConfig{
			MaxRetries:       cfg.Ledger.MaxRetries,
			BaseDelay:        cfg.Ledger.RetryBaseDelay,
			MaxDelay:         cfg.Ledger.RetryMaxDelay,
			OperationTimeout: cfg.Ledger.OperationTimeout,
		}),
		ledger.WithLogger(log.Component("ledger")),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	app.Use(recover.New())
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "LifeFlow API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:  ledgerUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log.Component("http"),
	})

	go func() {
		addr := cfg.HTTP.Addr()
		log.Info().Str("addr", addr).Msg("servidor HTTP escuchando")
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("servidor HTTP")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown HTTP")
	}
	// Vacía la cola pendiente antes de cerrar el pool (los registros usan la DB).
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("notificaciones pendientes descartadas")
	}
	log.Info().Msg("servidor detenido")
}
