package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/Vouchers-api/internal/application/vouchers"
	infrapdf "github.com/jhoicas/Vouchers-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Vouchers-api/internal/infrastructure/store"
	httpRouter "github.com/jhoicas/Vouchers-api/internal/interfaces/http"
	"github.com/jhoicas/Vouchers-api/pkg/config"
	"github.com/jhoicas/Vouchers-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	repo, closeStore, err := store.OpenVouchers(ctx, cfg, log.Named("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de comprobantes")
	}
	defer closeStore()

	idem, closeIdem, err := store.OpenIdempotency(ctx, cfg.Redis, log.Named("idempotency"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de idempotencia")
	}
	defer closeIdem()

	lifecycleUC := vouchers.NewLifecycleUseCase(repo, idem, vouchers.LifecycleConfig{
		MaxAttempts:          cfg.Voucher.MaxAttempts,
		StoreTimeout:         cfg.Store.Timeout,
		DefaultTaxPercentage: cfg.Voucher.DefaultTaxPercentage,
		DefaultCurrency:      cfg.Voucher.DefaultCurrency,
		IdempotencyTTL:       cfg.Redis.IdempotencyTTL,
	}, log.Named("lifecycle"))
	statsUC := vouchers.NewStatsUseCase(repo, cfg.Store.Timeout)
	pdfUC := vouchers.NewPDFUseCase(repo, infrapdf.NewMarotoPDFGenerator(cfg.App.Name), cfg.Store.Timeout)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	httpLog := log.Named("http")
	app.Use(requestid.New())
	app.Use(httpRouter.Recover(httpLog))
	app.Use(httpRouter.RequestLogger(httpLog))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.App.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Vouchers API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Lifecycle: lifecycleUC,
		Stats:     statsUC,
		PDF:       pdfUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
