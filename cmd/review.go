package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsieve/jobsieve/internal/logger"
	"github.com/jobsieve/jobsieve/internal/store"
)

const (
	PromptApplied = "Mark as applied"
	PromptSkipped = "Mark as skipped"
	PromptBack    = "back"

	reviewQueueLimit = 50

	statusApplied = "applied"
	statusSkipped = "skipped"
)

var errExit = errors.New("exit requested")

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Walk through the human-review queue interactively",
	Run: func(_ *cobra.Command, _ []string) {
		review()
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func review() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Database == nil || config.Database.URL == "" {
		logger.Fatal("database url is required (set database.url or DATABASE_URL)")
	}

	candidateID := "default"
	if config.Candidate != nil && config.Candidate.ID != "" {
		candidateID = config.Candidate.ID
	}

	pool, err := store.NewPool(ctx, config.Database.URL)
	if err != nil {
		logger.Fatal("connecting to postgres", zap.Error(err))
	}
	defer pool.Close()

	apps := store.NewApplicationsRepo(pool)

	for {
		items, err := apps.PendingReview(ctx, candidateID, reviewQueueLimit)
		if err != nil {
			logger.Fatal("loading the review queue", zap.Error(err))
		}

		if len(items) == 0 {
			logger.Info("exiting", zap.String("reason", "review queue is empty"))
			return
		}

		if err := reviewOne(ctx, apps, items); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// reviewOne shows the queue, lets the user pick one item and resolve it.
// Returns errExit when the user backs out of the queue prompt.
func reviewOne(ctx context.Context, apps *store.ApplicationsRepo, items []*store.ReviewItem) error {
	labels := make([]string, 0, len(items)+1)
	for _, item := range items {
		labels = append(labels, fmt.Sprintf("[%.0f] %s at %s", item.SkillMatch, item.JobTitle, item.Company))
	}
	labels = append(labels, PromptBack)

	queuePrompt := promptui.Select{
		Label: fmt.Sprintf("Review queue (%d pending)", len(items)),
		Items: labels,
		Size:  10,
	}

	idx, choice, err := queuePrompt.Run()
	if err != nil {
		return err
	}

	if choice == PromptBack {
		return errExit
	}

	item := items[idx]

	fmt.Printf("\n%s at %s\nskill match: %.0f\nreason: %s\nlink: %s\n\n",
		item.JobTitle, item.Company, item.SkillMatch, item.Reason, item.Link)

	actionPrompt := promptui.Select{
		Label: "Resolve?",
		Items: []string{PromptApplied, PromptSkipped, PromptBack},
	}

	_, action, err := actionPrompt.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptApplied:
		return apps.SetStatus(ctx, item.ApplicationID, statusApplied)
	case PromptSkipped:
		return apps.SetStatus(ctx, item.ApplicationID, statusSkipped)
	case PromptBack:
		return nil
	default:
		return fmt.Errorf("unknown action: %s", action)
	}
}
