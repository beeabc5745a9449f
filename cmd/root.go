package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/wowdata/config"
	"github.com/s0up4200/wowdata/filter"
	"github.com/s0up4200/wowdata/wowapi"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *wowapi.Client
	filters *filter.Manager

	// Global flag overrides
	regionFlag string
	localeFlag string

	// Build information
	buildVersion = "dev"
	buildTime    = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wowdata",
	Short: "Query the World of Warcraft game data API",
	Long: `wowdata reads realms, auction houses, professions, items and the WoW token
price from the regional World of Warcraft game data API.

Credentials are read from the config file, from WOWDATA_CREDENTIALS_CLIENT_ID /
WOWDATA_CREDENTIALS_CLIENT_SECRET, or from wow_api_id / wow_api_secret, which
may also live in a .env file.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	SilenceUsage:       true,
}

// SetVersion records build information shown by the version command
func SetVersion(version, built string) {
	buildVersion = version
	buildTime = built
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&regionFlag, "region", "r", "", "API region (us, eu, kr, tw, cn)")
	rootCmd.PersistentFlags().StringVar(&localeFlag, "locale", "", "response locale, e.g. en_US")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(realmsCmd)
	rootCmd.AddCommand(auctionsCmd)
	rootCmd.AddCommand(commoditiesCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(iconCmd)
	rootCmd.AddCommand(professionsCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp loads the configuration and opens the API session
func initializeApp(cmd *cobra.Command, args []string) error {
	// A missing .env is fine, a malformed one is not
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("region") {
		region, err := wowapi.ParseRegion(regionFlag)
		if err != nil {
			return err
		}
		cfg.Region = string(region)
	}
	if cmd.Flags().Changed("locale") {
		cfg.Locale = localeFlag
	}

	logger = setupLogger(cfg.Logging)

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	client, err = wowapi.New(cmd.Context(), wowapi.Region(cfg.Region), cfg.ClientCredentials(), logger, cfg.ClientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	logger.Debug().Str("region", cfg.Region).Str("locale", cfg.Locale).Msg("Connected to game data API")
	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// versionCmd prints build information and needs no API session
var versionCmd = &cobra.Command{
	Use:                "version",
	Short:              "Print version information",
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wowdata %s (built %s)\n", buildVersion, buildTime)
	},
}
