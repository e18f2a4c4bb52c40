package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsieve/jobsieve/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full cycle: scrape, filter, score and decide",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("no-ai", false, "force the AI relevance filter and scorer off for this cycle")
	runCmd.Flags().IntP("limit", "l", 0, "max postings to fetch per platform (overrides sources.search.limit)")
}

// run executes a single pipeline cycle and prints the funnel summary.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobsieve", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	applyRunFlags(cmd, config)

	orchestrator, cleanup, err := buildOrchestrator(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer cleanup()

	stats, err := orchestrator.Run(ctx)
	if err != nil {
		logger.Fatal("cycle failed", zap.Error(err))
	}

	if viper.GetBool("debug") && orchestrator.Postings().Len() > 0 {
		filename, err := orchestrator.Postings().DumpToTmpFile()
		if err != nil {
			logger.Warn("dumping postings to file", zap.Error(err))
		} else {
			logger.Info("dumping postings to file", zap.String("filename", filename))
		}
	}

	logger.Info("cycle finished", zap.String("funnel", stats.Summary()))
}

func applyRunFlags(cmd *cobra.Command, config *Config) {
	if config == nil {
		return
	}

	if cmd.Flag("no-ai").Value.String() == "true" && config.AI != nil {
		config.AI.Enabled = false
	}

	if limit, err := cmd.Flags().GetInt("limit"); err == nil && limit > 0 && config.Sources != nil {
		config.Sources.Search.Limit = limit
	}
}
