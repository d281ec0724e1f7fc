package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spigell/hh-screener/internal/admin"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/report"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render stored candidates as a report",
	Run: func(cmd *cobra.Command, _ []string) {
		runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("username", "u", "", "admin username")
	reportCmd.Flags().StringP("password", "p", "", "admin password")
	reportCmd.Flags().StringP("format", "f", report.FormatText, "report format: text, markdown or json")
	reportCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
}

func runReport(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	gate := admin.New(config.Admin.Username, config.Admin.Password)
	if !gate.Authenticate(username, password) {
		logger.Fatal("invalid admin credentials")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	candidates, closers, err := openStore(ctx, config.Storage, logger)
	if err != nil {
		logger.Fatal("opening candidate store", zap.Error(err))
	}
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()

	out, err := report.NewRegistry().Format(report.Build(candidates.All(), time.Now()), format)
	if err != nil {
		logger.Fatal("rendering report", zap.Error(err))
	}

	if strings.TrimSpace(output) == "" {
		fmt.Print(out)
		return
	}

	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		logger.Fatal("writing report", zap.Error(err), zap.String("filename", output))
	}

	logger.Info("report written",
		zap.String("filename", output),
		zap.String("format", format),
		zap.Int("candidates", candidates.Len()),
	)
}
