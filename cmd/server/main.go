package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hotelperf/server/config"
	"hotelperf/server/internal/database"
	"hotelperf/server/internal/sentiment"
)

func main() {
	var cfg *config.Config
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "Hotel performance dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
			}
			logger.SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg, logger)
		},
	}

	rootCmd.AddCommand(
		setupServeCommand(&cfg, logger),
		setupClassifyCommand(&cfg),
		setupMigrateCommand(&cfg, logger),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func setupServeCommand(cfg **config.Config, logger *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server, review pipeline and scraping scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(*cfg, logger)
		},
	}
}

func setupClassifyCommand(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify a comment with the configured lexicon",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lexicon, err := config.LoadLexicon((*cfg).Lexicon.Path)
			if err != nil {
				return err
			}

			result := sentiment.NewClassifier(lexicon).Classify(strings.Join(args, " "))
			fmt.Fprintf(cmd.OutOrStdout(), "sentiment: %s\npositive_score: %d\nnegative_score: %d\n",
				result.Label, result.PositiveScore, result.NegativeScore)
			return nil
		},
	}
}

func setupMigrateCommand(cfg **config.Config, logger *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewDatabase((*cfg).Database.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			logger.WithField("path", (*cfg).Database.Path).Info("Running database migrations...")
			if err := db.RunMigrations(); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}
			logger.Info("Database migrations completed")
			return nil
		},
	}
}
