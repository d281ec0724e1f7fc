package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/report"
	"github.com/spigell/hh-screener/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve screening sessions and the admin candidate browser over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address (default is :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-screener server", zap.String("version", version))

	s, err := newScreener(ctx, config, logger)
	if err != nil {
		logger.Fatal("the screening assistant is not available", zap.Error(err))
	}
	defer s.Close()

	srv, err := server.New(server.Deps{
		Machine:    s.machine,
		Candidates: s.store,
		Authorize:  s.gate.Authenticate,
		Reports:    report.NewRegistry(),
		Metrics:    s.recorder.Handler(),
		Breaker:    s.generator,
	}, server.Config{
		ReadTimeout:   config.Server.ReadTimeout,
		WriteTimeout:  config.Server.WriteTimeout,
		SessionTTL:    config.Server.SessionTTL,
		SweepInterval: config.Server.SweepInterval,
		TurnTimeout:   config.Server.TurnTimeout,
		AccessLog:     config.Server.AccessLog,
	}, logger)
	if err != nil {
		logger.Fatal("creating a server", zap.Error(err))
	}

	if err := srv.Run(ctx, config.Server.Addr); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
