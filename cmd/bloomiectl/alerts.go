package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var nurtureID string
	alertsCmd := &cobra.Command{
		Use:   "alerts",
		Short: "Show current care alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			path := fmt.Sprintf("/api/users/%s/alerts", userFlag)
			if nurtureID != "" {
				path = fmt.Sprintf("/api/users/%s/nurtures/%s/alerts", userFlag, nurtureID)
			}
			data, err := doGet(path)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	alertsCmd.Flags().StringVarP(&nurtureID, "nurture", "i", "", "Limit to one nurture")
	rootCmd.AddCommand(alertsCmd)

	var action string
	ackCmd := &cobra.Command{
		Use:   "ack ALERT_ID",
		Short: "Acknowledge an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			payload := map[string]interface{}{"action": action}
			if _, err := doPostJSON(fmt.Sprintf("/api/users/%s/alerts/%s/ack", userFlag, args[0]), payload); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "acknowledged")
			return nil
		},
	}
	ackCmd.Flags().StringVar(&action, "action", "dismissed", "Ack action: dismissed, resolved or action_taken")
	rootCmd.AddCommand(ackCmd)
}
