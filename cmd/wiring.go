package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/hh-screener/internal/admin"
	"github.com/spigell/hh-screener/internal/ai/gemini"
	"github.com/spigell/hh-screener/internal/candidate"
	"github.com/spigell/hh-screener/internal/interview"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/metrics"
	"github.com/spigell/hh-screener/internal/secrets"
	"github.com/spigell/hh-screener/internal/sentiment"
	"github.com/spigell/hh-screener/internal/store"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// screener is everything the interview and serve commands share.
type screener struct {
	generator *gemini.Generator
	recorder  *metrics.Recorder
	store     *store.Store
	machine   *interview.Machine
	gate      *admin.Gate
	closers   []func() error
}

func (s *screener) Close() {
	for _, c := range s.closers {
		_ = c()
	}
}

func newScreener(ctx context.Context, config *Config, log *zap.Logger) (*screener, error) {
	generator, err := newGenerator(ctx, config.AI, log)
	if err != nil {
		return nil, err
	}

	recorder := metrics.New()

	candidates, closers, err := openStore(ctx, config.Storage, log)
	if err != nil {
		return nil, err
	}

	strategy, err := interview.ParseStrategy(config.Interview.Strategy)
	if err != nil {
		return nil, err
	}

	maxLog := config.AI.Gemini.MaxLogLength

	questionOp := gemini.OperationQuestionBatch
	if strategy == interview.StrategyIncremental {
		questionOp = gemini.OperationQuestionSingle
	}

	questioner := gemini.NewQuestioner(recorder.Instrument(generator, questionOp), log, maxLog)
	questioner.OnFallback(recorder.QuestionFallback)

	analyzer := gemini.NewAnalyzer(recorder.Instrument(generator, gemini.OperationAnalyze), log, maxLog)
	grader := gemini.NewGrader(recorder.Instrument(generator, gemini.OperationGrade), log, maxLog)

	machine, err := interview.NewMachine(questioner, grader, candidates, log, interview.Options{
		Strategy:            strategy,
		MaxQuestionsPerTech: config.Interview.MaxQuestionsPerTech,
		HistoryTurns:        config.Interview.HistoryTurns,
		Analyzer:            analyzer,
		Generator:           recorder.Instrument(generator, interview.OperationFreeForm),
		Scorer:              sentiment.New(config.Sentiment.Positive, config.Sentiment.Negative),
		Observer:            recorder,
	})
	if err != nil {
		return nil, fmt.Errorf("creating interview machine: %w", err)
	}

	log.Info("screener ready",
		zap.String("strategy", string(strategy)),
		zap.Int("stored_candidates", candidates.Len()),
	)

	return &screener{
		generator: generator,
		recorder:  recorder,
		store:     candidates,
		machine:   machine,
		gate:      admin.New(config.Admin.Username, config.Admin.Password),
		closers:   closers,
	}, nil
}

func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*gemini.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithProvider(log, gemini.Provider, cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	breaker := cfg.CircuitBreaker
	return gemini.NewGenerator(ctx, gemini.Config{
		APIKey:            apiKey,
		Model:             cfg.Gemini.Model,
		MaxRetries:        cfg.Gemini.MaxRetries,
		Timeout:           cfg.Gemini.Timeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Burst:             cfg.Burst,
		Breaker: gemini.BreakerSettings{
			Enabled:          breaker.Enabled,
			MaxRequests:      breaker.MaxRequests,
			Interval:         breaker.Interval,
			Timeout:          breaker.Timeout,
			MinRequests:      breaker.MinRequests,
			FailureThreshold: breaker.FailureThreshold,
		},
	}, genLogger)
}

// openStore seeds the in-memory store from the configured backends and
// attaches them as sinks. Postgres wins as the seed source when both are set.
func openStore(ctx context.Context, cfg *StorageConfig, log *zap.Logger) (*store.Store, []func() error, error) {
	var (
		sinks   []store.Sink
		closers []func() error
		seed    []*candidate.Candidate
	)

	if path := strings.TrimSpace(cfg.File); path != "" {
		file, err := store.OpenFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening candidates file: %w", err)
		}
		sinks = append(sinks, file)
		seed = file.Records()
	}

	if dsn := strings.TrimSpace(cfg.Postgres.DSN); dsn != "" {
		pg, err := store.OpenPostgres(dsn, debugEnabled())
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, pg.Close)

		records, err := pg.Load(ctx)
		if err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		sinks = append(sinks, pg)
		seed = records
	}

	candidates := store.New(log, sinks...)
	accepted := candidates.Seed(seed)

	log.Debug("candidate store seeded",
		zap.Int("records", len(seed)),
		zap.Int("accepted", accepted),
		zap.Int("sinks", len(sinks)),
	)

	return candidates, closers, nil
}

func debugEnabled() bool {
	return viper.GetBool("debug")
}
