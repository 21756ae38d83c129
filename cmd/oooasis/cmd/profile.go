package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage configuration profiles",
	Long: `Manage configuration profiles for different accounts and teams.

Profiles allow you to quickly switch between different calendar accounts,
team calendars and OOO naming conventions.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileShow,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAdd,
}

var profileSetDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileSetDefault,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a profile's settings",
	Long: `Edit a profile's settings using flags.

Example:
  oooasis profile edit work --team-calendar="Platform Availability"
  oooasis profile edit personal --provider=outlook --ooo-pattern="(away)"`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileEdit,
}

// profileFlags maps CLI flag names to config keys for the settings a
// profile can carry.
var profileFlags = map[string]string{
	"provider":          "provider",
	"credentials-file":  "credentials_file",
	"token-file":        "token_file",
	"client-id":         "client_id",
	"tenant-id":         "tenant_id",
	"team-calendar":     "default_team_calendar",
	"timezone":          "timezone",
	"personal-calendar": "default_personal_calendar",
	"ooo-pattern":       "ooo_pattern",
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileSetDefaultCmd)
	profileCmd.AddCommand(profileEditCmd)

	for _, c := range []*cobra.Command{profileAddCmd, profileEditCmd} {
		c.Flags().String("provider", "", "Calendar provider (google or outlook)")
		c.Flags().String("credentials-file", "", "Path to credentials file")
		c.Flags().String("token-file", "", "Path to token file")
		c.Flags().String("client-id", "", "Azure app client ID (Outlook only)")
		c.Flags().String("tenant-id", "", "Azure tenant ID (Outlook only)")
		c.Flags().String("team-calendar", "", "Team availability calendar name")
		c.Flags().String("timezone", "", "IANA timezone for created events")
		c.Flags().String("personal-calendar", "", "Your personal calendar address")
		c.Flags().String("ooo-pattern", "", "Summary pattern for OOO events")
	}
}

func runProfileList(cmd *cobra.Command, args []string) error {
	profiles := viper.GetStringMap("profiles")
	defaultProfile := viper.GetString("default_profile")

	if len(profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("\nAdd one with: oooasis profile add <name> --team-calendar=<name>")
		return nil
	}

	fmt.Println("Available profiles:")
	fmt.Println("─────────────────────────────────────────────────")

	for name := range profiles {
		marker := "  "
		if name == defaultProfile {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, name)
	}

	fmt.Println("─────────────────────────────────────────────────")
	if defaultProfile != "" {
		fmt.Printf("Default: %s\n", defaultProfile)
	}
	fmt.Println("\nUse 'oooasis profile show <name>' for details")

	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	var profileName string
	if len(args) > 0 {
		profileName = args[0]
	} else {
		profileName = viper.GetString("default_profile")
		if profileName == "" {
			return fmt.Errorf("no profile specified and no default profile set")
		}
	}

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found", profileName)
	}

	settings := viper.GetStringMap(profileKey)

	fmt.Printf("Profile: %s\n", profileName)
	if profileName == viper.GetString("default_profile") {
		fmt.Println("(default)")
	}
	fmt.Println("─────────────────────────────────────────────────")

	fmt.Println("\n📁 Authentication:")
	printSetting(settings, "provider", "provider")
	printSetting(settings, "credentials_file", "credentials-file")
	printSetting(settings, "token_file", "token-file")
	printSetting(settings, "client_id", "client-id")
	printSetting(settings, "tenant_id", "tenant-id")

	fmt.Println("\n🌴 Out of office:")
	printSetting(settings, "default_team_calendar", "team-calendar")
	printSetting(settings, "timezone", "timezone")
	printSetting(settings, "default_personal_calendar", "personal-calendar")
	printSetting(settings, "ooo_pattern", "ooo-pattern")

	fmt.Println()
	return nil
}

func printSetting(settings map[string]interface{}, key, displayKey string) {
	if val, ok := settings[key]; ok {
		fmt.Printf("  %s: %v\n", displayKey, val)
	}
}

// profileFromFlags collects the changed profile flags into cfg, returning
// whether anything was set.
func profileFromFlags(cmd *cobra.Command, cfg map[string]interface{}) bool {
	changed := false
	for flag, key := range profileFlags {
		if cmd.Flags().Changed(flag) {
			val, _ := cmd.Flags().GetString(flag)
			cfg[key] = val
			changed = true
		}
	}
	return changed
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	profileKey := "profiles." + profileName
	if viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' already exists. Use 'oooasis profile edit %s' to modify it", profileName, profileName)
	}

	profile := make(map[string]interface{})
	profileFromFlags(cmd, profile)

	if err := saveProfileToConfig(profileName, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	fmt.Printf("✓ Profile '%s' created\n", profileName)
	fmt.Printf("\nUse it with: oooasis -p %s\n", profileName)
	fmt.Printf("Set as default: oooasis profile default %s\n", profileName)

	return nil
}

func runProfileSetDefault(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found", profileName)
	}

	if err := setDefaultProfileInConfig(profileName); err != nil {
		return fmt.Errorf("failed to set default profile: %w", err)
	}

	fmt.Printf("✓ Default profile set to '%s'\n", profileName)
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found. Use 'oooasis profile add %s' to create it", profileName, profileName)
	}

	// Start from the existing profile and overlay the changed flags
	existingProfile := viper.GetStringMap(profileKey)
	profile := make(map[string]interface{})
	for k, v := range existingProfile {
		profile[k] = v
	}

	if !profileFromFlags(cmd, profile) {
		fmt.Println("No changes specified. Use flags to update settings:")
		fmt.Println("  oooasis profile edit", profileName, `--team-calendar="Platform Availability"`)
		return nil
	}

	if err := saveProfileToConfig(profileName, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	fmt.Printf("✓ Profile '%s' updated\n", profileName)
	return nil
}

// Config file manipulation functions

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "oooasis", "config.yaml")
}

func readConfigFile() (map[string]interface{}, error) {
	configPath := getConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]interface{}), nil
		}
		return nil, err
	}

	var config map[string]interface{}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if config == nil {
		config = make(map[string]interface{})
	}

	return config, nil
}

func writeConfigFile(config map[string]interface{}) error {
	configPath := getConfigPath()

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

func saveProfileToConfig(name string, profile map[string]interface{}) error {
	config, err := readConfigFile()
	if err != nil {
		return err
	}

	profiles, ok := config["profiles"].(map[string]interface{})
	if !ok {
		profiles = make(map[string]interface{})
	}

	profiles[name] = profile
	config["profiles"] = profiles

	return writeConfigFile(config)
}

func setDefaultProfileInConfig(name string) error {
	config, err := readConfigFile()
	if err != nil {
		return err
	}

	config["default_profile"] = name

	return writeConfigFile(config)
}
