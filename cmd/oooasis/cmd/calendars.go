package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var calendarsCmd = &cobra.Command{
	Use:     "calendars",
	Aliases: []string{"cal", "cals"},
	Short:   "List available calendars",
	Long:    `List all calendars you have access to, including primary, shared, and subscribed calendars.`,
	RunE:    runCalendars,
}

func init() {
	rootCmd.AddCommand(calendarsCmd)
}

func runCalendars(cmd *cobra.Command, args []string) error {
	calendars, err := backend.ListCalendars(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println("📅 Available calendars:")
	fmt.Println("─────────────────────────────────────────────────")

	for _, cal := range calendars {
		fmt.Printf("\n  • %s\n", cal.Name)
		fmt.Printf("    ID: %s\n", cal.ID)
		if cal.TimeZone != "" {
			fmt.Printf("    Timezone: %s\n", cal.TimeZone)
		}
	}

	fmt.Println()
	fmt.Printf("Total: %d calendars\n", len(calendars))
	fmt.Println("\nTip: set 'default_team_calendar' in your config to one of these names")

	return nil
}
