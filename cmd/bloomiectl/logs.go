package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	logsCmd := &cobra.Command{Use: "logs", Short: "Activity log operations"}

	// add
	var nurtureID, text, action, notes, mood string
	var score float64
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record an activity log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			if nurtureID == "" || text == "" {
				return fmt.Errorf("--nurture and --text required")
			}
			payload := map[string]interface{}{"rawText": text}
			if action != "" {
				payload["action"] = action
			}
			if notes != "" {
				payload["notes"] = notes
			}
			if mood != "" {
				payload["mood"] = mood
			}
			if cmd.Flags().Changed("score") {
				payload["healthScore"] = score
			}
			data, err := doPostJSON(fmt.Sprintf("/api/users/%s/nurtures/%s/logs", userFlag, nurtureID), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addCmd.Flags().StringVarP(&nurtureID, "nurture", "i", "", "Nurture ID (required)")
	addCmd.Flags().StringVarP(&text, "text", "x", "", "Free-form log text (required)")
	addCmd.Flags().StringVar(&action, "action", "", "Action override (watering, feeding, walk, ...)")
	addCmd.Flags().StringVar(&notes, "notes", "", "Observation notes")
	addCmd.Flags().StringVar(&mood, "mood", "", "Mood (happy, content, fussy, sick, ...)")
	addCmd.Flags().Float64Var(&score, "score", 0, "Health score 1-5")
	_ = addCmd.MarkFlagRequired("nurture")
	_ = addCmd.MarkFlagRequired("text")
	logsCmd.AddCommand(addCmd)

	// list
	var listNurtureID, since string
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List activity logs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			if listNurtureID == "" {
				return fmt.Errorf("--nurture required")
			}
			path := fmt.Sprintf("/api/users/%s/nurtures/%s/logs?limit=%d", userFlag, listNurtureID, limit)
			if since != "" {
				path += "&since=" + since
			}
			data, err := doGet(path)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().StringVarP(&listNurtureID, "nurture", "i", "", "Nurture ID (required)")
	listCmd.Flags().StringVar(&since, "since", "", "Only logs at or after this RFC3339 timestamp")
	listCmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum number of logs")
	_ = listCmd.MarkFlagRequired("nurture")
	logsCmd.AddCommand(listCmd)

	rootCmd.AddCommand(logsCmd)
}
