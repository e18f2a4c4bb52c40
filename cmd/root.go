package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobsieve/jobsieve/internal/rules"
	"github.com/jobsieve/jobsieve/internal/source"
)

const (
	app = "jobsieve"
)

type Config struct {
	Candidate *CandidateConfig `mapstructure:"candidate"`
	Rules     *rules.RuleSet   `mapstructure:"rules"`
	Sources   *SourcesConfig   `mapstructure:"sources"`
	Database  *DatabaseConfig  `mapstructure:"database"`
	Redis     *RedisConfig     `mapstructure:"redis"`
	Sheets    *SheetsConfig    `mapstructure:"sheets"`
	AI        *AIConfig        `mapstructure:"ai"`
	Schedule  string           `mapstructure:"schedule"`
}

type CandidateConfig struct {
	ID         string `mapstructure:"id"`
	ResumeFile string `mapstructure:"resume-file"`
}

type SourcesConfig struct {
	Enabled []string      `mapstructure:"enabled"`
	Search  source.Params `mapstructure:"search"`
	Pause   time.Duration `mapstructure:"pause"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	URL     string        `mapstructure:"url"`
	SeenTTL time.Duration `mapstructure:"seen-ttl"`
}

type SheetsConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	SpreadsheetID   string `mapstructure:"spreadsheet-id"`
	CredentialsFile string `mapstructure:"credentials-file"`
}

type AIConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	FilterEnabled bool          `mapstructure:"filter-enabled"`
	Provider      string        `mapstructure:"provider"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Gemini        *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobsieve scrapes job postings, filters them for one candidate profile and decides what to apply to",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("database.url", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("redis.url", "REDIS_URL"); err != nil {
		log.Fatalf("binding REDIS_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.filter-enabled", "USE_AI_FILTER"); err != nil {
		log.Fatalf("binding USE_AI_FILTER environment variable: %v", err)
	}
	if err := viper.BindEnv("schedule", "CRON_SCHEDULE"); err != nil {
		log.Fatalf("binding CRON_SCHEDULE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobsieve.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for commands that build the pipeline.
	if runCmd.CalledAs() == "" && serveCmd.CalledAs() == "" && reviewCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
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
