package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"leaf-doctor/config"
	"leaf-doctor/internal/api/telegram"
	"leaf-doctor/internal/api/web"
	"leaf-doctor/internal/container"
	"leaf-doctor/internal/infrastructure/metrics"
	"leaf-doctor/internal/infrastructure/onnx"
	"leaf-doctor/internal/infrastructure/storage"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI, JSON API and Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Starting leaf-doctor", "version", Version, "addr", cfg.HTTP.Addr)

	diseases, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	stopWatch, err := watchCatalog(ctx, cfg, diseases, logger)
	if err != nil {
		return err
	}
	defer stopWatch()

	m := metrics.New()
	users := storage.NewMemoryUserRepository()

	deps := container.Deps{
		Users:     users,
		Catalog:   diseases,
		Observer:  m,
		Threshold: float32(cfg.Diagnosis.Threshold),
		Logger:    logger,
	}

	// Без модели сервис работает: справочник доступен, диагностика отвечает 503.
	loaded, err := loadModel(cfg, logger)
	if err != nil {
		logger.Warn("Model is not loaded, diagnosis disabled", "error", err)
	} else {
		defer onnx.Shutdown()
		deps.Preprocessor = loaded.preprocessor
		deps.Classifier = loaded.classifier
	}

	c := container.New(deps)

	if err := registerGauges(m, c, loaded); err != nil {
		return err
	}

	srv, err := web.NewServer(web.Options{
		Diagnosis:      c.DiagnosisService,
		Diseases:       c.DiseaseService,
		Metrics:        m,
		ImagesDir:      cfg.HTTP.ImagesDir,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		Logger:         logger,
		HealthDetails:  healthDetails(loaded),
	})
	if err != nil {
		return fmt.Errorf("web server: %w", err)
	}

	var background []func(context.Context) error
	if cfg.Telegram.Token != "" {
		bot, err := telegram.NewBot(cfg.Telegram.Token, c, cfg.HTTP.ImagesDir, logger)
		if err != nil {
			return err
		}
		background = append(background, bot.Run)
	} else {
		logger.Info("TELEGRAM_TOKEN is not set, Telegram bot disabled")
	}

	// Бот должен остановиться до onnx.Shutdown: он может быть внутри инференса.
	return runServices(ctx, logger, func(ctx context.Context) error {
		return srv.Run(ctx, cfg.HTTP.Addr, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
	}, background...)
}

// runServices запускает фоновые задачи и primary. Когда primary завершается, задачи
// отменяются, и функция ждёт их завершения.
func runServices(ctx context.Context, logger *slog.Logger, primary func(context.Context) error, background ...func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, run := range background {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				logger.Error("Background service stopped", "error", err)
			}
		}()
	}

	err := primary(ctx)
	cancel()
	wg.Wait()
	return err
}

func registerGauges(m *metrics.Metrics, c *container.Container, loaded *model) error {
	if err := m.RegisterGauge("bot_users", "Telegram users known to the process.", func() float64 {
		n, err := c.UserService.ActiveUsers(context.Background())
		if err != nil {
			return 0
		}
		return float64(n)
	}); err != nil {
		return fmt.Errorf("register gauge: %w", err)
	}

	if loaded == nil {
		return nil
	}
	if err := m.RegisterGauge("sessions_in_use", "Inference sessions currently in use.", func() float64 {
		return float64(loaded.classifier.Stats().InUse)
	}); err != nil {
		return fmt.Errorf("register gauge: %w", err)
	}
	return nil
}

func healthDetails(loaded *model) func() map[string]any {
	return func() map[string]any {
		if loaded == nil {
			return nil
		}
		stats := loaded.classifier.Stats()
		return map[string]any{
			"sessions":         stats.Size,
			"sessions_in_use":  stats.InUse,
			"acquire_failures": stats.AcquireFailures,
			"replaced":         stats.Replaced,
		}
	}
}
