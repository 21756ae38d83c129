package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theakshaypant/oooasis/internal/adapter/google"
	"github.com/theakshaypant/oooasis/internal/adapter/outlook"
	"github.com/theakshaypant/oooasis/internal/core"
	"github.com/theakshaypant/oooasis/internal/ooo"
)

// CalendarBackend extends core.Backend with login. Both the Google and
// Outlook adapters implement this interface.
type CalendarBackend interface {
	core.Backend
	Login(ctx context.Context) error
}

var (
	cfgFile string
	profile string
	backend CalendarBackend
	rec     *ooo.Reconciler
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "oooasis",
	Short: "Manage out of office events on a shared team calendar",
	Long: `oooasis — your calendar's little island of peace.

Marks you out of office on the team calendar, takes it back when plans
change, and tells you who's away before you schedule that meeting.
All without opening a browser.`,
	RunE: runRoot,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the rootCmd literal: initBackend refers
	// back to rootCmd, which would otherwise be an initialization cycle.
	rootCmd.PersistentPreRunE = initBackend

	cobra.OnInitialize(initConfig)

	// Global flags (inherited by all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/oooasis/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "config profile to use (e.g., work, personal)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	// Action flags (mutually exclusive; exactly one per invocation)
	rootCmd.Flags().Bool("check-outofoffice", false, "List upcoming out of office events")
	rootCmd.Flags().Bool("is-ooo-today", false, "Check whether someone is out of office today")
	rootCmd.Flags().String("team-member", "", "Team member to check (defaults to yourself)")
	rootCmd.Flags().Bool("enable-outofoffice", false, "Create an out of office event")
	rootCmd.Flags().String("start-date", "", "First day out of office (YYYY-MM-DD, inclusive)")
	rootCmd.Flags().String("end-date", "", "Last day out of office (YYYY-MM-DD, inclusive)")
	rootCmd.Flags().Bool("disable-outofoffice", false, "Delete your upcoming out of office event")
	rootCmd.Flags().Int("max-results", 10, "Maximum events to show with --check-outofoffice")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "oooasis")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("OOOASIS")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("provider", "google")
	viper.SetDefault("credentials_file", "credentials.json")
	viper.SetDefault("token_file", "token.json")
	viper.SetDefault("ooo_pattern", "- OOO")

	// Read config file if it exists
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Apply profile settings if specified
	applyProfile()
}

// applyProfile merges profile-specific settings over defaults
func applyProfile() {
	// Check for profile from flag or env var
	activeProfile := profile
	if activeProfile == "" {
		activeProfile = viper.GetString("default_profile")
	}
	if activeProfile == "" {
		return
	}

	profileKey := "profiles." + activeProfile
	if !viper.IsSet(profileKey) {
		fmt.Fprintf(os.Stderr, "Warning: profile '%s' not found in config\n", activeProfile)
		return
	}

	fmt.Fprintf(os.Stderr, "Using profile: %s\n", activeProfile)

	// List of settings that can be overridden by profile
	settings := []string{
		"provider",
		"credentials_file",
		"token_file",
		"client_id",
		"tenant_id",
		"default_team_calendar",
		"timezone",
		"default_personal_calendar",
		"ooo_pattern",
	}

	// Override each setting if present in profile,
	// but only if the user hasn't explicitly set it via CLI flag.
	for _, key := range settings {
		profileSettingKey := profileKey + "." + key
		if viper.IsSet(profileSettingKey) && !isFlagExplicitlySet(key) {
			viper.Set(key, viper.Get(profileSettingKey))
		}
	}
}

func isFlagExplicitlySet(viperKey string) bool {
	flagName := strings.ReplaceAll(viperKey, "_", "-")
	f := rootCmd.PersistentFlags().Lookup(flagName)

	return f != nil && f.Changed
}

// buildConfig assembles the reconciliation settings from viper.
func buildConfig() (core.Config, error) {
	cfg := core.Config{
		TeamCalendar:     viper.GetString("default_team_calendar"),
		TimeZone:         viper.GetString("timezone"),
		PersonalCalendar: viper.GetString("default_personal_calendar"),
		OOOPattern:       viper.GetString("ooo_pattern"),
	}
	if err := cfg.Validate(); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func initBackend(cmd *cobra.Command, args []string) error {
	// Skip backend init for commands that don't need it
	if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "auth" ||
		cmd.Name() == "profile" ||
		cmd.Parent() != nil && cmd.Parent().Name() == "profile" {
		return nil
	}

	logger = newLogger()

	var err error
	provider := viper.GetString("provider")
	switch provider {
	case "google":
		err = initGoogleBackend(cmd)
	case "outlook":
		err = initOutlookBackend(cmd)
	default:
		return fmt.Errorf("unknown provider: %s (supported: google, outlook)", provider)
	}
	if err != nil {
		return err
	}

	// Commands like `calendars` only need the backend; the reconciliation
	// settings are validated only where they are used.
	if cmd.Name() == rootCmd.Name() || cmd.Name() == "ui" {
		cfg, err := buildConfig()
		if err != nil {
			return err
		}
		rec = ooo.NewReconciler(backend, cfg, logger)
	}
	return nil
}

func initGoogleBackend(cmd *cobra.Command) error {
	credsFile := expandPath(viper.GetString("credentials_file"))
	tokenFile := expandPath(viper.GetString("token_file"))

	if _, err := os.Stat(credsFile); os.IsNotExist(err) {
		return fmt.Errorf("credentials file not found: %s", credsFile)
	}
	if _, err := os.Stat(tokenFile); os.IsNotExist(err) {
		return fmt.Errorf("token file not found: %s\n\nRun 'oooasis auth google' to authenticate", tokenFile)
	}

	backend = google.NewGoogleAdapter(credsFile, tokenFile)

	if err := backend.Login(cmd.Context()); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return nil
}

func initOutlookBackend(cmd *cobra.Command) error {
	clientID := viper.GetString("client_id")
	if clientID == "" {
		return fmt.Errorf("client_id not configured for Outlook provider\n\nAdd it to your config:\n  client_id: \"your-azure-app-client-id\"")
	}

	tenantID := viper.GetString("tenant_id")
	tokenFile := expandPath(viper.GetString("token_file"))

	if _, err := os.Stat(tokenFile); os.IsNotExist(err) {
		return fmt.Errorf("token file not found: %s\n\nRun 'oooasis auth outlook' to authenticate with Microsoft", tokenFile)
	}

	backend = outlook.NewOutlookAdapter(clientID, tenantID, tokenFile)

	if err := backend.Login(cmd.Context()); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return nil
}

// runRoot dispatches the action flags. Exactly one action runs per
// invocation; with no action the usage text is printed and the process
// exits non-zero.
func runRoot(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	enable, _ := flags.GetBool("enable-outofoffice")
	disable, _ := flags.GetBool("disable-outofoffice")
	isToday, _ := flags.GetBool("is-ooo-today")
	check, _ := flags.GetBool("check-outofoffice")

	switch {
	case enable:
		startStr, _ := flags.GetString("start-date")
		endStr, _ := flags.GetString("end-date")
		return runEnable(cmd.Context(), startStr, endStr)

	case disable:
		return runDisable(cmd.Context())

	case isToday:
		member, _ := flags.GetString("team-member")
		return runIsOOOToday(cmd.Context(), member)

	case check:
		maxResults, _ := flags.GetInt("max-results")
		return runCheck(cmd.Context(), maxResults)
	}

	cmd.Help()
	os.Exit(1)
	return nil
}

func runEnable(ctx context.Context, startStr, endStr string) error {
	if startStr == "" || endStr == "" {
		return fmt.Errorf("--enable-outofoffice requires both --start-date and --end-date (YYYY-MM-DD)")
	}

	start, err := core.ParseDate(startStr)
	if err != nil {
		return fmt.Errorf("invalid --start-date: %w", err)
	}
	end, err := core.ParseDate(endStr)
	if err != nil {
		return fmt.Errorf("invalid --end-date: %w", err)
	}

	res, err := rec.Enable(ctx, core.DateRange{Start: start, End: end})
	if err != nil {
		return err
	}

	switch res.Outcome {
	case ooo.EnableAlreadyExists:
		fmt.Printf("⚠️  Out of office already set on %q for %s\n", res.Calendar.Name, res.Range)
	default:
		fmt.Printf("🌴 Out of office enabled on %q for %s\n", res.Calendar.Name, res.Range)
	}
	return nil
}

func runDisable(ctx context.Context) error {
	res, err := rec.Disable(ctx)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case ooo.DisableDeleted:
		fmt.Printf("☀️  Out of office disabled on %q\n", res.Calendar.Name)
	default:
		if res.Scanned == 0 {
			fmt.Printf("No upcoming out of office events on %q\n", res.Calendar.Name)
		} else {
			fmt.Printf("No event matching %q found on %q\n", res.Fingerprint, res.Calendar.Name)
		}
	}
	return nil
}

func runIsOOOToday(ctx context.Context, member string) error {
	res, err := rec.IsOOOToday(ctx, member)
	if err != nil {
		return err
	}

	switch res.Reason {
	case ooo.TodayWeekend:
		fmt.Printf("🏖️  %s is out of office today (weekend)\n", res.Person)
	case ooo.TodayEvent:
		fmt.Printf("🏖️  %s is out of office today (%s)\n", res.Person, res.Event.Summary)
	default:
		fmt.Printf("💼 %s is in the office today\n", res.Person)
	}
	return nil
}

func runCheck(ctx context.Context, maxResults int) error {
	res, err := rec.Check(ctx, maxResults)
	if err != nil {
		return err
	}

	if len(res.Entries) == 0 {
		fmt.Printf("No upcoming out of office events on %q\n", res.Calendar.Name)
		return nil
	}

	fmt.Printf("🗓  Upcoming out of office on %q:\n", res.Calendar.Name)
	for _, entry := range res.Entries {
		if entry.Start.Equal(entry.End) {
			fmt.Printf("  🌴 %s: %s\n", entry.Summary, core.FormatDate(entry.Start))
		} else {
			fmt.Printf("  🌴 %s: %s to %s\n", entry.Summary, core.FormatDate(entry.Start), core.FormatDate(entry.End))
		}
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
