package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dimiro1/banner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	_ "github.com/nadzzz/kisanvani/docs"
	"github.com/nadzzz/kisanvani/internal/audiostore"
	"github.com/nadzzz/kisanvani/internal/config"
	"github.com/nadzzz/kisanvani/internal/health"
	"github.com/nadzzz/kisanvani/internal/transport"
	grpctransport "github.com/nadzzz/kisanvani/internal/transport/grpc"
	httptransport "github.com/nadzzz/kisanvani/internal/transport/http"
)

func newServeCmd() *cobra.Command {
	var noBanner bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC advisory API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !noBanner {
				printBanner()
			}
			logger := config.SetupLogging(cfg.Logging)
			return serve(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "skip the startup banner")
	return cmd
}

func printBanner() {
	tpl := "{{ .Title \"KISANVANI\" \"\" 0 }}\nVersion: " + version + "\n"
	banner.Init(os.Stdout, true, true, bytes.NewBufferString(tpl))
}

func serve(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("kisanvani starting", "version", version)

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	if cfg.Storage.Retention <= 0 {
		logger.Warn("audio retention disabled, synthesized audio and uploads accumulate without bound",
			"audio_dir", cfg.Storage.AudioDir, "upload_dir", cfg.Storage.UploadDir)
	}

	healthServer := health.New(cfg.Server.HealthPort, logger)

	transports := []transport.Transport{
		httptransport.New(httptransport.Options{
			Port:             cfg.Server.HTTPPort,
			PublicBaseURL:    cfg.Server.PublicBaseURL,
			AllowedExtension: cfg.Upload.AllowedExtension,
			MaxBodyBytes:     cfg.Audio.MaxBytes,
			PrimaryLanguage:  cfg.Language.Primary,
			Translator:       p.translator,
			Uploads:          p.uploads,
			Artifacts:        p.artifacts,
			Health:           healthServer,
			Logger:           logger,
		}),
	}
	if cfg.Server.GRPC.Enabled {
		transports = append(transports, grpctransport.New(grpctransport.Options{
			Port:   cfg.Server.GRPCPort,
			Logger: logger,
		}))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return healthServer.ListenAndServe(gctx) })

	for _, t := range transports {
		g.Go(func() error {
			logger.Info("starting transport", "name", t.Name())
			return t.Listen(gctx, p.advisor)
		})
	}

	for _, store := range []*audiostore.Store{p.artifacts, p.uploads} {
		g.Go(func() error {
			return store.RunJanitor(gctx, cfg.Storage.Retention, cfg.Storage.SweepInterval, logger)
		})
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	logger.Info("kisanvani ready",
		"transports", len(transports),
		"http_port", cfg.Server.HTTPPort,
		"health_port", cfg.Server.HealthPort,
		"speech", p.advisor.SpeechEnabled())

	<-gctx.Done()
	healthServer.SetReady(false)
	logger.Info("shutdown signal received, draining...")

	err = g.Wait()
	logger.Info("kisanvani stopped")
	return err
}
