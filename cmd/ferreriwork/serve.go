package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ahinestrog/ferreriwork/internal/auth"
	"github.com/ahinestrog/ferreriwork/internal/catalog"
	"github.com/ahinestrog/ferreriwork/internal/complaint"
	"github.com/ahinestrog/ferreriwork/internal/config"
	"github.com/ahinestrog/ferreriwork/internal/events"
	"github.com/ahinestrog/ferreriwork/internal/health"
	"github.com/ahinestrog/ferreriwork/internal/web"
)

func newServeCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP (y gRPC de salud si GRPC_ADDR está definido)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg())
		},
	}
}

func storeOptions(cfg *config.Config, backend string) catalog.StoreOptions {
	return catalog.StoreOptions{
		Backend:   backend,
		JSONPath:  cfg.CatalogJSONPath,
		DBPath:    cfg.CatalogDBPath,
		SQLDriver: cfg.CatalogSQLDriver,
		BadgerDir: cfg.CatalogBadgerDir,
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := catalog.OpenStore(storeOptions(cfg, cfg.CatalogBackend))
	if err != nil {
		return err
	}
	defer func() {
		if err := catalog.Close(store); err != nil {
			log.Error().Err(err).Msg("catalog close")
		}
	}()
	products, err := store.Load(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("backend", cfg.CatalogBackend).Int("productos", len(products)).Msg("catalog loaded")

	rb, err := events.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		log.Warn().Err(err).Msg("rabbit: sin broker, eventos desactivados")
	}
	defer rb.Close()

	mailer, err := complaint.NewEmailClient(complaint.MailOptions{
		Transport:      cfg.MailTransport,
		SMTPHost:       cfg.SMTPHost,
		SMTPPort:       cfg.SMTPPort,
		SMTPUser:       cfg.SMTPUser,
		SMTPPass:       cfg.SMTPPass,
		SendGridAPIKey: cfg.SendGridAPIKey,
	})
	if err != nil {
		return err
	}

	srv, err := web.New(web.Deps{
		Catalog: catalog.NewService(store, rb),
		Guard: auth.NewGuard(auth.Options{
			SessionSecret:  cfg.SessionSecret,
			AdminPassword:  cfg.AdminPassword,
			TTL:            cfg.AdminTTL,
			LoginPerMinute: cfg.LoginPerMinute,
			MaxRevoked:     cfg.MaxRevoked,
		}),
		Notifier:    complaint.NewNotifier(mailer, cfg.MailFrom, cfg.ComplaintRecipient),
		Pricing:     cfg.QuotePricing,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return err
	}

	var hs *health.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		hs = health.New()
		hs.SetServing(health.CatalogService)
		go func() {
			if err := hs.Serve(lis); err != nil {
				log.Error().Err(err).Msg("grpc serve")
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("pricing", cfg.QuotePricing).Msg("[ferreriwork] listening")
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownGrace)
	defer cancel()
	if hs != nil {
		hs.Stop()
	}
	return httpSrv.Shutdown(shutdownCtx)
}
