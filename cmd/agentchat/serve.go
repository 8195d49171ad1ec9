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

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/hupe1980/agentchat"
	"github.com/hupe1980/agentchat/config"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/model"
	"github.com/hupe1980/agentchat/model/anthropic"
	"github.com/hupe1980/agentchat/model/openai"
	"github.com/hupe1980/agentchat/server"
	"github.com/hupe1980/agentchat/session"
	sessionredis "github.com/hupe1980/agentchat/session/redis"
	"github.com/hupe1980/agentchat/tool"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assistant HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	m, err := buildModel(cfg.Model)
	if err != nil {
		return err
	}

	registry := tool.NewRegistry(
		tool.NewCalculator(func(o *tool.CalculatorOptions) {
			o.Logger = logger
		}),
		tool.NewFXConvert(func(o *tool.FXConvertOptions) {
			o.Logger = logger
			o.Timeout = cfg.Tools.Timeout.Std()
			if cfg.Tools.FXBaseURL != "" {
				o.BaseURL = cfg.Tools.FXBaseURL
			}
		}),
		tool.NewCryptoConvert(func(o *tool.CryptoConvertOptions) {
			o.Logger = logger
			o.Timeout = cfg.Tools.Timeout.Std()
			if cfg.Tools.CryptoBaseURL != "" {
				o.BaseURL = cfg.Tools.CryptoBaseURL
			}
		}),
	)

	assistant := agentchat.New(m, registry, func(o *agentchat.Options) {
		o.SessionStore = buildSessionStore(cfg.Session)
		o.MaxIterations = cfg.Agent.MaxIterations
		o.Instructions = cfg.Agent.Instructions
		o.Logger = logger
	})

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.NewHandler(assistant, func(o *server.Options) {
			o.Logger = logger
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.listening", "addr", cfg.Addr, "model", m.Info().Name, "provider", m.Info().Provider)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("server.shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func buildModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = cfg.Temperature
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
			o.Temperature = cfg.Temperature
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func buildSessionStore(cfg config.SessionConfig) session.Store {
	if cfg.Backend == "redis" {
		return sessionredis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			sessionredis.WithTTL(cfg.Redis.TTL.Std()))
	}
	return session.NewInMemoryStore()
}
