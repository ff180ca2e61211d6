// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/civiclink/client"
	"github.com/danielhkuo/civiclink/models"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Report and track civic issues",
}

var issuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues visible to your account",
	Long: `List issues. Citizens see their own reports; leaders see their
department's queue; admins see everything.`,
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		status, _ := cmd.Flags().GetString("status")
		dept, _ := cmd.Flags().GetString("department")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := c.ListIssues(cmd.Context(), client.ListIssuesOptions{
			Status:       status,
			DepartmentID: dept,
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(resp)
		}

		if len(resp.Issues) == 0 {
			fmt.Println("No issues.")
			return nil
		}
		for _, issue := range resp.Issues {
			fmt.Printf("%s  [%s]  %s\n", issue.ID, issue.Status, issue.Title)
		}
		fmt.Printf("(%d of %d)\n", len(resp.Issues), resp.Total)
		return nil
	}),
}

var issuesReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report a new issue",
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		category, _ := cmd.Flags().GetString("category")
		dept, _ := cmd.Flags().GetString("department")
		location, _ := cmd.Flags().GetString("location")
		attach, _ := cmd.Flags().GetString("attach")

		var attachmentURL string
		if attach != "" {
			host, _ := cmd.Flags().GetString("media-host")
			cloud, _ := cmd.Flags().GetString("media-cloud")
			preset, _ := cmd.Flags().GetString("media-preset")
			if host == "" || cloud == "" || preset == "" {
				return fmt.Errorf("--attach requires --media-host, --media-cloud and --media-preset")
			}

			f, err := os.Open(attach)
			if err != nil {
				return err
			}
			defer f.Close()

			uploader := client.NewMediaUploader(host, cloud, preset)
			attachmentURL, err = uploader.Upload(cmd.Context(), attach, f)
			if err != nil {
				return fmt.Errorf("upload attachment: %w", err)
			}
		}

		issueID, err := c.CreateIssue(cmd.Context(), models.CreateIssueRequest{
			Title:         title,
			Description:   description,
			Category:      category,
			DepartmentID:  dept,
			Location:      location,
			AttachmentURL: attachmentURL,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Reported issue %s\n", issueID)
		return nil
	}),
}

var issuesShowCmd = &cobra.Command{
	Use:   "show <issue-id>",
	Short: "Show an issue with its response thread",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		issue, err := c.GetIssue(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(issue)
		}

		fmt.Printf("%s  [%s]\n%s\n", issue.Title, issue.Status, issue.Description)
		if issue.Location != "" {
			fmt.Printf("Location: %s\n", issue.Location)
		}
		if issue.AttachmentURL != nil {
			fmt.Printf("Attachment: %s\n", *issue.AttachmentURL)
		}
		for _, resp := range issue.Responses {
			fmt.Printf("  %s  %s\n", resp.CreatedAt.Format("2006-01-02 15:04"), resp.Message)
		}
		return nil
	}),
}

var issuesEscalateCmd = &cobra.Command{
	Use:   "escalate <issue-id>",
	Short: "Escalate one of your issues",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		issue, err := c.EscalateIssue(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Issue %s escalated at %s\n", issue.ID, issue.EscalatedAt.Format("2006-01-02 15:04"))
		return nil
	}),
}

var issuesRespondCmd = &cobra.Command{
	Use:   "respond <issue-id>",
	Short: "Post an official response (leaders)",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		message, _ := cmd.Flags().GetString("message")
		resp, err := c.RespondToIssue(cmd.Context(), args[0], message)
		if err != nil {
			return err
		}
		fmt.Printf("Response %s posted\n", resp.ID)
		return nil
	}),
}

var issuesStatusCmd = &cobra.Command{
	Use:   "set-status <issue-id> <status>",
	Short: "Set an issue's status (leaders)",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		issue, err := c.UpdateIssueStatus(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Issue %s is now %s\n", issue.ID, issue.Status)
		return nil
	}),
}

func init() {
	issuesListCmd.Flags().String("status", "", "Filter by status (submitted, in_progress, resolved, escalated)")
	issuesListCmd.Flags().String("department", "", "Filter by department ID (admins)")
	issuesListCmd.Flags().Int("limit", 0, "Page size")
	issuesListCmd.Flags().Int("offset", 0, "Page offset")
	issuesListCmd.Flags().Bool("json", false, "Print raw JSON")

	issuesReportCmd.Flags().String("title", "", "Issue title")
	issuesReportCmd.Flags().String("description", "", "Issue description")
	issuesReportCmd.Flags().String("category", "", "Issue category")
	issuesReportCmd.Flags().String("department", "", "Department ID")
	issuesReportCmd.Flags().String("location", "", "Where the problem is")
	issuesReportCmd.Flags().String("attach", "", "Path of a photo to upload and attach")
	issuesReportCmd.Flags().String("media-host", os.Getenv("CIVICLINK_MEDIA_HOST"), "Media host base URL")
	issuesReportCmd.Flags().String("media-cloud", os.Getenv("CIVICLINK_MEDIA_CLOUD"), "Media host cloud name")
	issuesReportCmd.Flags().String("media-preset", os.Getenv("CIVICLINK_MEDIA_PRESET"), "Media host upload preset")

	issuesShowCmd.Flags().Bool("json", false, "Print raw JSON")
	issuesRespondCmd.Flags().String("message", "", "Response text")

	issuesCmd.AddCommand(issuesListCmd, issuesReportCmd, issuesShowCmd,
		issuesEscalateCmd, issuesRespondCmd, issuesStatusCmd)
	rootCmd.AddCommand(issuesCmd)
}
