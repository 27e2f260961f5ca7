package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/guided-traffic/s3-bucket-manager/internal/config"
	"github.com/guided-traffic/s3-bucket-manager/internal/monitoring"
	"github.com/guided-traffic/s3-bucket-manager/internal/s3manager"
	"github.com/guided-traffic/s3-bucket-manager/internal/server"
	"github.com/guided-traffic/s3-bucket-manager/internal/vault"
)

var (
	// Build information injected at build time
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"

	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "s3-bucket-manager",
		Short: "S3 Bucket Manager serves bucket lifecycle operations with Vault-managed credentials",
		Long: `S3 Bucket Manager is an HTTP service for S3 bucket lifecycle operations:
create, list, and delete-with-empty.

At startup the service authenticates to HashiCorp Vault with a service token,
reads an AWS credential bundle from a KV v2 secret, and builds a single S3
session from it. Credentials are fetched once per process lifetime; there is
no caching and no rotation. A missing or invalid token aborts startup.

Configuration is read from a YAML file (--config), from standard locations,
or from S3BM_* environment variables. The conventional VAULT_ADDR,
VAULT_SERVICE_TOKEN and AWS_REGION variables are also honored.`,
		Run: runServer,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file (YAML format)")
}

func initConfig() {
	config.InitConfig(cfgFile)
}

func runServer(cmd *cobra.Command, args []string) {
	// Display build information at startup
	logrus.WithFields(logrus.Fields{
		"version":   version,
		"commit":    commit,
		"buildTime": buildTime,
	}).Info("S3 Bucket Manager build information")

	// Load configuration; a missing Vault token fails here, before any
	// network call
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// Set log level and format
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid log level")
	}
	logrus.SetLevel(level)
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Authenticate to Vault and fetch the AWS credential bundle. Startup
	// failures here are unrecoverable: the service must not serve traffic
	// without credentials.
	vaultClient, err := vault.NewClient(&vault.Config{
		Address: cfg.Vault.Address,
		Token:   cfg.Vault.Token,
		Mount:   cfg.Vault.Mount,
		Path:    cfg.Vault.Path,
	})
	if err != nil {
		logrus.WithError(err).Fatal("FATAL: failed to initialize Vault client")
	}

	creds, err := vaultClient.GetAWSCredentials(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("FATAL: failed to retrieve AWS credentials from Vault")
	}

	// Build the S3 manager from the retrieved credentials. All subsequent
	// bucket operations use this session.
	manager, err := s3manager.NewManager(ctx, &s3manager.Config{
		Region:       cfg.S3.Region,
		AccessKeyID:  creds.AccessKey,
		SecretKey:    creds.SecretKey,
		SessionToken: creds.SessionToken,
	})
	if err != nil {
		logrus.WithError(err).Fatal("FATAL: failed to initialize S3 manager")
	}

	logrus.Info("Vault client and S3 manager initialized successfully")

	// Start monitoring server if enabled
	if cfg.Monitoring.Enabled {
		monitoringServer := monitoring.NewServer(&monitoring.Config{
			BindAddress: cfg.Monitoring.BindAddress,
			MetricsPath: cfg.Monitoring.MetricsPath,
		})
		go func() {
			if err := monitoringServer.Start(ctx); err != nil {
				logrus.WithError(err).Error("Monitoring server failed")
			}
		}()
	}

	httpServer := server.NewServer(cfg, manager, server.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	})

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		if err := httpServer.Start(ctx); err != nil {
			logrus.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	logrus.Info("Received shutdown signal, gracefully shutting down...")

	// Cancel context to trigger graceful shutdown
	cancel()

	logrus.Info("Server stopped")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
