package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ameyamatmk/voice-diary/internal/api/rest"
	"github.com/ameyamatmk/voice-diary/internal/authenticator"
	"github.com/ameyamatmk/voice-diary/internal/config"
	"github.com/ameyamatmk/voice-diary/internal/logger"
	"github.com/ameyamatmk/voice-diary/internal/model"
	"github.com/ameyamatmk/voice-diary/internal/repository/sqlite"
	"github.com/ameyamatmk/voice-diary/internal/security"
	"github.com/ameyamatmk/voice-diary/internal/service"
	"github.com/ameyamatmk/voice-diary/internal/telemetry"
	"github.com/ameyamatmk/voice-diary/internal/ui"
)

const serviceName = "voice-diary-client"

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := logger.New(cfg.LogLevel, logOut)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, serviceName, buildVersion)
	if err != nil {
		logger.Fatal("failed to set up telemetry", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	db, err := sqlite.NewConnection(ctx, cfg.Authenticator.StorePath, logger)
	if err != nil {
		logger.Fatal("failed to open credential vault", "error", err)
	}
	defer db.Close()

	console := ui.NewConsole(os.Stdin, os.Stdout)
	defer console.Close()

	var prompter authenticator.Prompter = console
	if cfg.Authenticator.AutoApprove {
		prompter = authenticator.AutoApprove{}
	}
	platform := authenticator.NewSoft(
		sqlite.NewCredentialRepository(db),
		prompter,
		authenticator.Config{
			Origin:         cfg.Authenticator.Origin,
			RelyingPartyID: cfg.Authenticator.RPID,
		},
		logger,
	)

	var trust model.TransportSecurity
	if cfg.RelyingParty.CAFile != "" || cfg.RelyingParty.ClientCertFile != "" {
		trust = security.NewTLSTrust(cfg.RelyingParty.CAFile, cfg.RelyingParty.ClientCertFile, cfg.RelyingParty.ClientKeyFile)
	} else {
		trust = security.NewSystemTrust()
	}
	tlsConfig, err := trust.TLSConfig()
	if err != nil {
		logger.Fatal("failed to configure TLS", "error", err)
	}

	client, err := rest.NewClient(cfg.RelyingParty.URL, cfg.RelyingParty.HTTPTimeout, logger, rest.WithTLSConfig(tlsConfig))
	if err != nil {
		logger.Fatal("failed to create relying party client", "error", err)
	}

	ceremony := service.NewCeremony(client, platform, cfg.Ceremony.Timeout, logger)
	session := service.NewSession(ceremony, client, logger)
	devices := service.NewDeviceRegistry(client, logger)

	logAppVersion()
	logger.Info("Starting client", "relying_party", cfg.RelyingParty.URL)

	session.Init(ctx)

	shell := ui.NewShell(console, session, devices, logger)
	if err := shell.Run(ctx); err != nil {
		logger.Error("shell stopped", "error", err)
	}

	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
