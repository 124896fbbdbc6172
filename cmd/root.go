package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yakoovad/productsite/internal/auth"
	"github.com/yakoovad/productsite/internal/config"
	"github.com/yakoovad/productsite/pkg/logger"
	"go.uber.org/zap"
)

const version = "v0.1.0"

var (
	cfgFile   string
	appConfig *config.Config
	appLogger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "productsite",
	Short:         "Product pages composed from structured content",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initialize()
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if appLogger != nil {
			_ = appLogger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.AddCommand(serveCmd, renderCmd, importCmd, tokenCmd)
}

func initialize() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	l, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}

	appConfig = cfg
	appLogger = l
	auth.TokenSecretKey = cfg.Auth.TokenSecret
	return nil
}
