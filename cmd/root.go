package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/company-matcher/internal/matching"
)

const (
	app = "company-matcher"
)

type Config struct {
	Questions   string            `mapstructure:"questions"`
	Companies   string            `mapstructure:"companies"`
	ExcludeFile string            `mapstructure:"exclude-file"`
	MetricsFile string            `mapstructure:"metrics-file"`
	Assessment  *AssessmentConfig `mapstructure:"assessment"`
	Matching    *matching.Config  `mapstructure:"matching"`
	Results     *ResultsConfig    `mapstructure:"results"`
	AI          *AIConfig         `mapstructure:"ai"`
}

type AssessmentConfig struct {
	FrequencyBonus float64 `mapstructure:"frequency-bonus"`
}

type ResultsConfig struct {
	Top          int      `mapstructure:"top"`
	MinimumScore float64  `mapstructure:"minimum-score"`
	Industries   []string `mapstructure:"industries"`
	Exclude      *struct {
		Companies []string `mapstructure:"companies"`
	} `mapstructure:"exclude"`
}

type AIConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Provider      string        `mapstructure:"provider"`
	Language      string        `mapstructure:"language"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Concurrency   int           `mapstructure:"concurrency"`
	RatePerSecond float64       `mapstructure:"rate-per-second"`
	Burst         int           `mapstructure:"burst"`
	CacheTTL      time.Duration `mapstructure:"cache-ttl"`
	Gemini        *GeminiConfig `mapstructure:"gemini"`
	OpenAI        *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type OpenAIConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	BaseURL      string `mapstructure:"base-url"`
	MaxTokens    int    `mapstructure:"max-tokens"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "company-matcher is a cli that turns a self-assessment questionnaire into a ranked list of matching companies",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.openai.api-key-file", "OPENAI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding OPENAI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("questions", "data/questions.yaml")
	viper.SetDefault("companies", "data/companies.yaml")
	viper.SetDefault("results.top", 10)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.timeout", 30*time.Second)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is company-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("questions", "q", "", "questionnaire file (yaml or json)")
	rootCmd.PersistentFlags().StringP("companies", "c", "", "company catalog file (yaml, json or csv)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("questions", rootCmd.PersistentFlags().Lookup("questions"))
	viper.BindPFlag("companies", rootCmd.PersistentFlags().Lookup("companies"))
}

func initConfig() {
	// A .env file is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// Without an explicit --config the file is optional; a broken file is still fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
