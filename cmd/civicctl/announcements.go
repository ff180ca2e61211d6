// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var announcementsCmd = &cobra.Command{
	Use:   "announcements",
	Short: "Read and publish official announcements",
}

var announcementsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List announcements (no login required)",
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		list, err := c.ListAnnouncements(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No announcements.")
			return nil
		}
		for _, a := range list {
			fmt.Printf("%s  %s  %s\n", a.ID, a.CreatedAt.Format("2006-01-02"), a.Title)
			if a.Body != "" {
				fmt.Printf("    %s\n", a.Body)
			}
		}
		return nil
	}),
}

var announcementsPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish an announcement (leaders; use --admin)",
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		title, _ := cmd.Flags().GetString("title")
		body, _ := cmd.Flags().GetString("body")
		ann, err := c.CreateAnnouncement(cmd.Context(), title, body)
		if err != nil {
			return err
		}
		fmt.Printf("Published announcement %s\n", ann.ID)
		return nil
	}),
}

var announcementsDeleteCmd = &cobra.Command{
	Use:   "delete <announcement-id>",
	Short: "Delete an announcement (own, or any as admin)",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		if err := c.DeleteAnnouncement(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	}),
}

func init() {
	announcementsPostCmd.Flags().String("title", "", "Announcement title")
	announcementsPostCmd.Flags().String("body", "", "Announcement body")

	announcementsCmd.AddCommand(announcementsListCmd, announcementsPostCmd, announcementsDeleteCmd)
	rootCmd.AddCommand(announcementsCmd)
}
