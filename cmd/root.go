package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/phishdrill/internal/arcade"
	"github.com/abhisek/phishdrill/internal/config"
	"github.com/abhisek/phishdrill/internal/logging"
	"github.com/abhisek/phishdrill/internal/store"
)

var (
	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "phishdrill",
	Short: "Adaptive phishing-recognition trainer",
	Long: `phishdrill serves simulated emails, asks whether each one is phishing,
and adjusts the difficulty of the next email to how well you are doing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			loaded.Logging.Level = lvl
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		l, err := logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PHISHDRILL_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(trialCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path (PHISHDRILL_DB or the config file), then the
// default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore opens the resolved database.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// newEngine wires an engine over s using the loaded configuration.
func newEngine(s *store.Store) *arcade.Engine {
	return arcade.New(arcade.Deps{
		Items:    s.Items(),
		States:   s.States(),
		Attempts: s.Attempts(),
		Ledger:   s,
	}, arcade.Options{
		Difficulty:   cfg.Difficulty,
		RecentWindow: cfg.RecentWindow,
		Seed:         cfg.Seed,
		Logger:       logger,
	})
}

func requireUser(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		return "", fmt.Errorf("--user is required")
	}
	return user, nil
}
