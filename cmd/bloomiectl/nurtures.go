package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	nurturesCmd := &cobra.Command{Use: "nurtures", Short: "Nurture operations"}

	// create
	var name, ntype, species, breed, birthDate string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a nurture (baby, pet or plant)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			if name == "" || ntype == "" {
				return fmt.Errorf("--name and --type required")
			}
			payload := map[string]interface{}{"name": name, "type": ntype}
			if species != "" {
				payload["species"] = species
			}
			if breed != "" {
				payload["breed"] = breed
			}
			if birthDate != "" {
				payload["birthDate"] = birthDate
			}
			data, err := doPostJSON(fmt.Sprintf("/api/users/%s/nurtures", userFlag), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Display name (required)")
	createCmd.Flags().StringVarP(&ntype, "type", "t", "", "Type: baby, pet or plant (required)")
	createCmd.Flags().StringVarP(&species, "species", "s", "", "Species (e.g. dog, pothos)")
	createCmd.Flags().StringVarP(&breed, "breed", "b", "", "Breed or variety")
	createCmd.Flags().StringVar(&birthDate, "birthdate", "", "Birth date (babies only, YYYY-MM-DD)")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("type")
	nurturesCmd.AddCommand(createCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List nurtures for the owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			data, err := doGet(fmt.Sprintf("/api/users/%s/nurtures", userFlag))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	nurturesCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get NURTURE_ID",
		Short: "Get a nurture by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			data, err := doGet(fmt.Sprintf("/api/users/%s/nurtures/%s", userFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	nurturesCmd.AddCommand(getCmd)

	// update
	var newName string
	updateCmd := &cobra.Command{
		Use:   "update NURTURE_ID",
		Short: "Update a nurture's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			payload := map[string]interface{}{}
			if newName != "" {
				payload["name"] = newName
			}
			data, err := doPatchJSON(fmt.Sprintf("/api/users/%s/nurtures/%s", userFlag, args[0]), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	updateCmd.Flags().StringVarP(&newName, "name", "n", "", "New display name")
	nurturesCmd.AddCommand(updateCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete NURTURE_ID",
		Short: "Delete a nurture and its logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			if err := doDelete(fmt.Sprintf("/api/users/%s/nurtures/%s", userFlag, args[0])); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "deleted")
			return nil
		},
	}
	nurturesCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(nurturesCmd)
}
