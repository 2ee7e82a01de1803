package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/s0up4200/postup/config"
)

const defaultRepository = "s0up4200/postup"

var (
	version   = "dev"
	buildTime = "unknown"

	checkOnly  bool
	repository string
)

// SetVersion records the build information injected at link time
func SetVersion(v, built string) {
	version = v
	buildTime = built
}

// currentVersion parses the running version, accepting a leading "v"
func currentVersion() (semver.Version, error) {
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return semver.Version{}, fmt.Errorf("development build %q has no release version", version)
	}
	return v, nil
}

func versionString() string {
	display := version
	if v, err := currentVersion(); err == nil {
		display = "v" + v.String()
	}
	return fmt.Sprintf("postup %s (built %s, %s/%s)", display, buildTime, runtime.GOOS, runtime.GOARCH)
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipInit: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update postup to the latest release",
	Long: `Check GitHub for the latest postup release and replace the running
binary with it. Use --check to only report whether an update exists.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipInit: "true"},
	RunE:        runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	current, err := currentVersion()
	if err != nil {
		return err
	}

	slug := updateRepository(cmd)
	logger.Debug().Str("repository", slug).Str("current", current.String()).Msg("Checking for updates")

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(slug))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release of %s found for %s/%s", slug, runtime.GOOS, runtime.GOARCH)
	}

	if latest.LessOrEqual(current.String()) {
		fmt.Fprintf(out, "postup v%s is up to date\n", current)
		return nil
	}

	if checkOnly {
		fmt.Fprintf(out, "postup v%s is available (running v%s)\n", latest.Version(), current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	fmt.Fprintf(out, "Updating postup v%s to v%s...\n", current, latest.Version())
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	logger.Info().Str("version", latest.Version()).Str("path", exe).Msg("Updated postup")
	fmt.Fprintf(out, "✓ Updated to v%s\n", latest.Version())
	return nil
}

// updateRepository picks the release repository.
// Priority: --repository > update.repository from config > default
func updateRepository(cmd *cobra.Command) string {
	if cmd.Flags().Changed("repository") {
		return repository
	}
	if loaded, err := config.Load(cfgFile); err == nil && loaded.Update.Repository != "" {
		return loaded.Update.Repository
	}
	return defaultRepository
}

func init() {
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only check for a newer release")
	updateCmd.Flags().StringVar(&repository, "repository", defaultRepository, "GitHub repository as owner/repo")

	rootCmd.AddCommand(versionCmd, updateCmd)
}
