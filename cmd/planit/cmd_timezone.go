package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var timezoneCmd = &cobra.Command{
	Use:   "timezone [IANA name]",
	Short: "Show or set the timezone used to resolve times like \"tomorrow at 5PM\"",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			tz, err := planit.DB.GetUserTimezone(userID)
			if err != nil {
				return err
			}
			if tz == "" {
				fmt.Fprintln(out, "No timezone set; using the server default.")
				return nil
			}
			fmt.Fprintln(out, tz)
			return nil
		}

		if _, err := time.LoadLocation(args[0]); err != nil {
			return fmt.Errorf("unknown timezone %q", args[0])
		}
		if err := planit.DB.UpdateUserTimezone(userID, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Timezone set to %s\n", args[0])
		return nil
	},
}
