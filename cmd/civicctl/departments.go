// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/civiclink/models"
)

var departmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "List city departments",
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		list, err := c.ListDepartments(cmd.Context())
		if err != nil {
			return err
		}
		for _, d := range list {
			fmt.Printf("%s  %s", d.ID, d.Name)
			if d.Description != "" {
				fmt.Printf(" — %s", d.Description)
			}
			fmt.Println()
		}
		return nil
	}),
}

var leadersCmd = &cobra.Command{
	Use:   "leaders",
	Short: "Manage leader accounts (admin; use --admin)",
}

var leadersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leader accounts",
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		list, err := c.ListLeaders(cmd.Context())
		if err != nil {
			return err
		}
		for _, l := range list {
			flag := ""
			if l.Admin {
				flag = "  (admin)"
			}
			fmt.Printf("%s  %s <%s>  dept=%s%s\n", l.ID, l.Name, l.Email, l.DepartmentID, flag)
		}
		return nil
	}),
}

var leadersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Provision a leader account",
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		title, _ := cmd.Flags().GetString("title")
		dept, _ := cmd.Flags().GetString("department")
		admin, _ := cmd.Flags().GetBool("make-admin")

		leader, err := c.CreateLeader(cmd.Context(), models.CreateLeaderRequest{
			Name:         name,
			Email:        email,
			Password:     password,
			Title:        title,
			DepartmentID: dept,
			Admin:        admin,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created leader %s\n", leader.ID)
		return nil
	}),
}

var leadersRemoveCmd = &cobra.Command{
	Use:   "remove <leader-id>",
	Short: "Delete a leader account and revoke its sessions",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		if err := c.DeleteLeader(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Removed.")
		return nil
	}),
}

func init() {
	leadersAddCmd.Flags().String("name", "", "Display name")
	leadersAddCmd.Flags().String("email", "", "Login email")
	leadersAddCmd.Flags().String("password", "", "Initial password")
	leadersAddCmd.Flags().String("title", "", "Job title")
	leadersAddCmd.Flags().String("department", "", "Department ID")
	leadersAddCmd.Flags().Bool("make-admin", false, "Grant the admin role")

	leadersCmd.AddCommand(leadersListCmd, leadersAddCmd, leadersRemoveCmd)
	rootCmd.AddCommand(departmentsCmd, leadersCmd)
}
