package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/postup/config"
	"github.com/s0up4200/postup/filter"
	"github.com/s0up4200/postup/postup"
)

// skipInit marks commands that run without configuration or a client
const skipInit = "skipInit"

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	client   *postup.Client
	filters  *filter.Manager
	registry *prometheus.Registry

	// Command flags
	filterExpr   string
	preset       string
	outputFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "postup",
	Short: "A command line client for the PostUp email marketing API",
	Long: `postup talks to the PostUp REST API: brands, campaigns, lists, recipients,
mailings, imports, send templates and the content library.

Results can be narrowed with expression filters, either ad hoc with --filter
or from presets saved in the config file.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: teardown,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format: json or table")
	rootCmd.PersistentFlags().StringVarP(&filterExpr, "filter", "f", "", "filter expression applied to the results")
	rootCmd.PersistentFlags().StringVarP(&preset, "preset", "p", "", "use a filter preset from the config file")

	// Add subcommands
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(statusCmd)
}

// initializeApp initializes the configuration and the client
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipInit] == "true" {
		logger = setupLogger(config.LoggingConfig{Level: "info", Format: "console", Color: true})
		return nil
	}

	if outputFormat != "json" && outputFormat != "table" {
		return fmt.Errorf("invalid output format: %s (must be 'json' or 'table')", outputFormat)
	}

	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	client, err = newClient(cfg.API)
	if err != nil {
		return fmt.Errorf("failed to create PostUp client: %w", err)
	}

	filters = filter.NewManager()
	presets := make([]filter.Preset, 0, len(cfg.Filter.Presets))
	for name, p := range cfg.Filter.Presets {
		presets = append(presets, filter.Preset{Name: name, Expression: p.Expression, Description: p.Description})
	}
	if err := filters.RegisterPresets(presets); err != nil {
		_ = filters.Close(cmd.Context())
		filters = nil
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	return nil
}

// newClient builds a PostUp client from the api config section
func newClient(apiCfg config.APIConfig) (*postup.Client, error) {
	opts := []postup.Option{
		postup.WithBaseURL(apiCfg.URL),
		postup.WithTimeout(apiCfg.Timeout),
		postup.WithUserAgent(apiCfg.UserAgent),
	}
	if apiCfg.StatusPassthrough {
		opts = append(opts, postup.WithStatusPassthrough())
	}

	registry = nil
	if apiCfg.Metrics {
		registry = prometheus.NewRegistry()
		opts = append(opts, postup.WithMetrics(postup.NewMetrics(registry)))
	}

	return postup.NewClient(apiCfg.Username, apiCfg.Password, logger, opts...)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colour only on a terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// teardown stops the filter workers and reports request metrics
func teardown(cmd *cobra.Command, args []string) error {
	if filters != nil {
		if err := filters.Close(cmd.Context()); err != nil {
			logger.Warn().Err(err).Msg("Failed to stop filter workers")
		}
		filters = nil
	}
	return reportMetrics()
}

// reportMetrics logs the request counters collected during the command
func reportMetrics() error {
	if registry == nil {
		return nil
	}

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			event := logger.Info().Str("metric", family.GetName())
			for _, label := range metric.GetLabel() {
				event = event.Str(label.GetName(), label.GetValue())
			}
			switch {
			case metric.GetCounter() != nil:
				event.Float64("value", metric.GetCounter().GetValue()).Msg("Request metrics")
			case metric.GetHistogram() != nil:
				h := metric.GetHistogram()
				event.Uint64("count", h.GetSampleCount()).Float64("sum_seconds", h.GetSampleSum()).Msg("Request metrics")
			}
		}
	}
	return nil
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to PostUp",
	Long:  `Test the connection and credentials against your PostUp account.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing connection to PostUp at %s...\n", client.BaseURL())

	if err := client.TestConnection(cmd.Context()); err != nil {
		if postup.IsUnauthorized(err) {
			return fmt.Errorf("credentials rejected: %w", err)
		}
		return fmt.Errorf("connection failed: %w", err)
	}

	fmt.Fprintln(out, "✓ Connection successful!")
	return nil
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show an overview of the account",
	Long:  `Fetch brands, lists, campaigns and custom fields in parallel and print their counts.`,
	RunE:  runStatus,
}

// accountStatus is the summary printed by the status command
type accountStatus struct {
	Brands       int `json:"brands"`
	Lists        int `json:"lists"`
	Campaigns    int `json:"campaigns"`
	CustomFields int `json:"customFields"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, err := fetchStatus(cmd.Context(), client)
	if err != nil {
		return err
	}
	return render(cmd, status)
}

func fetchStatus(ctx context.Context, c *postup.Client) (accountStatus, error) {
	var status accountStatus
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		brands, err := c.Brands.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list brands: %w", err)
		}
		status.Brands = len(brands)
		return nil
	})
	g.Go(func() error {
		lists, err := c.Lists.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list lists: %w", err)
		}
		status.Lists = len(lists)
		return nil
	})
	g.Go(func() error {
		campaigns, err := c.Campaigns.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list campaigns: %w", err)
		}
		status.Campaigns = len(campaigns)
		return nil
	})
	g.Go(func() error {
		fields, err := c.CustomFields.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list custom fields: %w", err)
		}
		status.CustomFields = len(fields)
		return nil
	})

	if err := g.Wait(); err != nil {
		return accountStatus{}, err
	}
	return status, nil
}
