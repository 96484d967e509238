package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examiz/internal/config"
	"github.com/abhisek/examiz/internal/store"
)

var (
	appConfig config.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "examiz",
	Short: "Practice exam generator for German language certificates",
	Long: "Examiz generates original practice content for the sections of a German language exam\n" +
		"and repairs model output until it matches each part's blueprint.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
			cfg.Store.DSN = dsn
		}
		appConfig = cfg

		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
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
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides EXAMIZ_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Event store DSN: SQLite path or postgres:// URL (overrides EXAMIZ_DB env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging, including each repair")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(blueprintsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(repairsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDSN returns the store DSN from --db or config (highest priority),
// then EXAMIZ_DB, then the default XDG path.
func resolveDSN() (string, error) {
	if dsn := appConfig.Store.DSN; dsn != "" {
		if store.DialectFor(dsn) == store.DialectPostgres {
			return dsn, nil
		}
		return dsn, store.EnsureDir(dsn)
	}
	return store.DefaultDBPath()
}

func openStore() (*store.Store, error) {
	dsn, err := resolveDSN()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
