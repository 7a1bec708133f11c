package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TheMichaelB/pwexport/internal/config"
	"github.com/TheMichaelB/pwexport/internal/crypto"
	"github.com/TheMichaelB/pwexport/internal/events"
	"github.com/TheMichaelB/pwexport/internal/models"
	"github.com/TheMichaelB/pwexport/internal/services/convert"
	"github.com/TheMichaelB/pwexport/internal/storage"
)

// Set by the linker.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configFile string
	logLevel   string
	jsonOutput bool
	noColor    bool

	cfg     *config.Config
	logger  *events.Logger
	service *convert.Service
)

// skipSetup marks commands that run without loading configuration.
const skipSetup = "skip-setup"

var rootCmd = &cobra.Command{
	Use:   "pwexport",
	Short: "Convert encrypted password manager exports to CSV",
	Long: `pwexport decrypts a password manager export container and writes
its entries as CSV with the columns name, url, username, password and note.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Config file (default: ./pwexport.yaml, ~/.config/pwexport/pwexport.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Print machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
}

func setup(cmd *cobra.Command, args []string) error {
	if noColor {
		color.NoColor = true
	}

	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	loader := config.NewLoader(configFile)
	if err := loader.BindFlag("log.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return err
	}

	var err error
	cfg, err = loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if noColor {
		cfg.Log.Color = false
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err = events.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	events.SetDefault(logger)

	if path := loader.ConfigFile(); path != "" {
		logger.WithField("path", path).Debug("Loaded config file")
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	service = convert.NewService(cfg, crypto.NewProvider(), store, logger)
	return nil
}

func newStore(cfg *config.Config) (*storage.LocalStore, error) {
	strategy, err := storage.ParseConflictStrategy(cfg.Output.Conflict)
	if err != nil {
		return nil, fmt.Errorf("output.conflict: %w", err)
	}

	store, err := storage.NewLocalStore(cfg.Output.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("open output directory: %w", err)
	}
	store.SetConflictStrategy(strategy)
	store.SetMaxFileSize(cfg.Output.MaxFileSize)

	return store, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !jsonOutput {
			printError("%v", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch models.ErrorCode(err) {
	case models.ErrCodeFormat:
		return 2
	case models.ErrCodeDecryption:
		return 3
	case models.ErrCodeCapability:
		return 4
	case models.ErrCodeStorage:
		return 5
	case models.ErrCodeConfig:
		return 6
	default:
		return 1
	}
}

func printError(format string, args ...interface{}) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...interface{}) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...interface{}) {
	blue := color.New(color.FgBlue).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %s\n", blue("ℹ"), fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...interface{}) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}

func printJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		printError("encode JSON: %v", err)
	}
}
