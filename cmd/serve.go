package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", server.DefaultAddr, "listen address")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, registry, logger := setup()

	logger.Info("starting the resume-matcher server",
		zap.String("version", version),
		zap.Strings("profiles", registry.Names()),
		zap.String("default_profile", registry.Default()),
	)

	srv, err := server.New(*config.Server, registry, logger)
	if err != nil {
		logger.Fatal("creating server", zap.Error(err))
	}

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
