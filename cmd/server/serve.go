package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smart-irrigation/internal/dashboard"
	"smart-irrigation/internal/logging"
	"smart-irrigation/internal/metrics"
	"smart-irrigation/internal/ml"
	"smart-irrigation/internal/mqtt"
	"smart-irrigation/internal/services"
	"smart-irrigation/internal/session"
	"smart-irrigation/pkg/config"
)

var (
	serveAddr            string
	serveModel           string
	serveExitOnLoadError bool
)

// serveCmd starts the dashboard
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	Long: `Start the dashboard HTTP server.

Configuration comes from the environment (and a .env file when present);
flags override the matching variables. When the model cannot be loaded the
server answers every request with a blocking error page, or exits when
--exit-on-load-error is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Model artifact path (overrides MODEL_PATH)")
	serveCmd.Flags().BoolVar(&serveExitOnLoadError, "exit-on-load-error", false, "Exit instead of serving the load failure page")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}
	if serveModel != "" {
		cfg.ModelPath = serveModel
	}
	if cmd.Flags().Changed("exit-on-load-error") {
		cfg.ExitOnLoadError = serveExitOnLoadError
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting Smart Irrigation dashboard...")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := ml.ParseLabelPolicy(cfg.LabelPolicy, cfg.LabelThreshold)
	if err != nil {
		return err
	}

	// === Load model ===
	predictor, err := ml.Load(cfg.ModelPath, policy, logger)
	if err != nil {
		logger.Error("Failed to load model", zap.String("path", cfg.ModelPath), zap.Error(err))
		if cfg.ExitOnLoadError {
			return err
		}
		return serveHTTP(ctx, cfg, logger, dashboard.LoadFailure(err, logger))
	}

	// === Sessions and metrics ===
	sessions := session.NewManager(session.ManagerConfig{
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
	}, logger)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(sessions.Len)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sessions.Start(gctx, cfg.SessionSweepInterval)
		return nil
	})

	// === Optional MQTT publisher ===
	var sink services.EventSink
	if cfg.MQTTBroker != "" {
		client, err := mqtt.NewClient(mqtt.ClientConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		}, logger)
		if err != nil {
			// Publishing is best effort; the dashboard works without it
			logger.Warn("MQTT disabled", zap.Error(err))
		} else {
			defer client.Close()
			publisher := mqtt.NewPublisher(client.GetNativeClient(), mqtt.PublisherConfig{
				PredictionTopic: cfg.MQTTTopicPrediction,
				SprinklerTopic:  cfg.MQTTTopicSprinkler,
				QueueSize:       cfg.MQTTQueueSize,
			}, logger)
			publisher.OnFailure = m.ObservePublishFailure
			sink = publisher

			g.Go(func() error {
				publisher.Start(gctx)
				return nil
			})
			logger.Info("MQTT publishing enabled",
				zap.String("prediction_topic", cfg.MQTTTopicPrediction),
				zap.String("sprinkler_topic", cfg.MQTTTopicSprinkler))
		}
	}

	// === Dashboard ===
	predictions := services.NewPredictionService(predictor, sink, m, logger)
	srv := dashboard.New(dashboard.Config{
		Sessions:    sessions,
		Predictions: predictions,
		Metrics:     m,
		Logger:      logger,
		ModelKind:   predictor.Kind(),
	})

	g.Go(func() error {
		return serveHTTP(gctx, cfg, logger, srv.Handler())
	})

	return g.Wait()
}

// serveHTTP runs the server until ctx is done, then shuts it down gracefully
func serveHTTP(ctx context.Context, cfg *config.Config, logger *zap.Logger, h http.Handler) error {
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dashboard listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, stopping dashboard...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("Shutdown complete. Goodbye!")
	return nil
}
