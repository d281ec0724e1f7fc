package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/interview"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/report"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptNewInterview = "Start new interview"
	PromptShowReport   = "Show report"
	PromptQuit         = "Quit"
)

var errQuit = errors.New("quit requested")

var nextPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptNewInterview, PromptShowReport, PromptQuit},
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run a screening interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		runInterview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)
}

func runInterview(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The conversation owns stdout.
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), "stderr")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-screener interview", zap.String("version", version))

	s, err := newScreener(ctx, config, logger)
	if err != nil {
		logger.Fatal("the screening assistant is not available", zap.Error(err))
	}
	defer s.Close()

	for {
		if err := converse(ctx, s.machine, logger); err != nil {
			if errors.Is(err, errQuit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := afterInterview(s); err != nil {
			if errors.Is(err, errQuit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// converse runs one session until it reaches the farewell phase.
func converse(ctx context.Context, machine *interview.Machine, log *zap.Logger) error {
	session := interview.NewSession()
	fmt.Println(machine.Start(session))

	input := promptui.Prompt{Label: "You"}

	for session.Phase != interview.PhaseFarewell {
		utterance, err := input.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return errQuit
			}
			return fmt.Errorf("reading input: %w", err)
		}

		reply, err := machine.Process(ctx, session, utterance)
		if err != nil && !errors.Is(err, ai.ErrOracleUnavailable) {
			return err
		}
		if err != nil {
			log.Warn("turn not applied", zap.String(logger.FieldSessionID, session.ID), zap.Error(err))
		}

		fmt.Println(reply)
	}

	return nil
}

func afterInterview(s *screener) error {
	for {
		_, action, err := nextPrompt.Run()
		if err != nil {
			return errQuit
		}

		switch action {
		case PromptNewInterview:
			return nil
		case PromptShowReport:
			if !adminLogin(s) {
				fmt.Println("Invalid admin credentials.")
				continue
			}
			out, err := report.NewRegistry().Format(report.Build(s.store.All(), time.Now()), report.FormatText)
			if err != nil {
				return err
			}
			fmt.Print(out)
		case PromptQuit:
			return errQuit
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func adminLogin(s *screener) bool {
	username, err := (&promptui.Prompt{Label: "Admin username"}).Run()
	if err != nil {
		return false
	}
	password, err := (&promptui.Prompt{Label: "Admin password", Mask: '*'}).Run()
	if err != nil {
		return false
	}
	return s.gate.Authenticate(username, password)
}
