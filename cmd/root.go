package cmd

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hh-screener"
)

type Config struct {
	AI        *AIConfig        `mapstructure:"ai"`
	Interview *InterviewConfig `mapstructure:"interview"`
	Sentiment *SentimentConfig `mapstructure:"sentiment"`
	Storage   *StorageConfig   `mapstructure:"storage"`
	Admin     *AdminConfig     `mapstructure:"admin"`
	Server    *ServerConfig    `mapstructure:"server"`
}

type AIConfig struct {
	Provider          string                `mapstructure:"provider"`
	RequestsPerMinute int                   `mapstructure:"requests-per-minute"`
	Burst             int                   `mapstructure:"burst"`
	CircuitBreaker    *CircuitBreakerConfig `mapstructure:"circuit-breaker"`
	Gemini            *GeminiConfig         `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	MaxRetries   int           `mapstructure:"max-retries"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max-requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MinRequests      uint32        `mapstructure:"min-requests"`
	FailureThreshold float64       `mapstructure:"failure-threshold"`
}

type InterviewConfig struct {
	Strategy            string `mapstructure:"strategy"`
	MaxQuestionsPerTech int    `mapstructure:"max-questions-per-tech"`
	HistoryTurns        int    `mapstructure:"history-turns"`
}

type SentimentConfig struct {
	Positive []string `mapstructure:"positive"`
	Negative []string `mapstructure:"negative"`
}

type StorageConfig struct {
	File     string          `mapstructure:"file"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	ReadTimeout   time.Duration `mapstructure:"read-timeout"`
	WriteTimeout  time.Duration `mapstructure:"write-timeout"`
	SessionTTL    time.Duration `mapstructure:"session-ttl"`
	SweepInterval time.Duration `mapstructure:"sweep-interval"`
	TurnTimeout   time.Duration `mapstructure:"turn-timeout"`
	AccessLog     bool          `mapstructure:"access-log"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-screener runs a conversational screening interview with job candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional.
	_ = godotenv.Load()

	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash-lite")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.timeout", 30*time.Second)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("ai.circuit-breaker.enabled", true)
	viper.SetDefault("ai.circuit-breaker.min-requests", 3)
	viper.SetDefault("ai.circuit-breaker.failure-threshold", 0.6)
	viper.SetDefault("ai.circuit-breaker.interval", time.Minute)
	viper.SetDefault("ai.circuit-breaker.timeout", 30*time.Second)
	viper.SetDefault("interview.strategy", "batch")
	viper.SetDefault("interview.max-questions-per-tech", 2)
	viper.SetDefault("interview.history-turns", 5)
	viper.SetDefault("storage.file", "candidates.json")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.session-ttl", 30*time.Minute)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every setting has a default, so a missing config file is fine.
	// A config file that exists but does not parse is not.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.AI.CircuitBreaker == nil {
		config.AI.CircuitBreaker = &CircuitBreakerConfig{}
	}
	if config.Interview == nil {
		config.Interview = &InterviewConfig{}
	}
	if config.Sentiment == nil {
		config.Sentiment = &SentimentConfig{}
	}
	if config.Storage == nil {
		config.Storage = &StorageConfig{}
	}
	if config.Storage.Postgres == nil {
		config.Storage.Postgres = &PostgresConfig{}
	}
	if config.Admin == nil {
		config.Admin = &AdminConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}
