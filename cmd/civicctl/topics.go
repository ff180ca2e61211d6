// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/civiclink/models"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Browse and join community discussions",
}

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discussion topics",
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		resp, err := c.ListTopics(cmd.Context(), limit, offset)
		if err != nil {
			return err
		}

		if len(resp.Topics) == 0 {
			fmt.Println("No topics.")
			return nil
		}
		for _, topic := range resp.Topics {
			fmt.Printf("%s  %s — %s (%d comments)\n", topic.ID, topic.Title, topic.AuthorName, topic.CommentCount)
		}
		fmt.Printf("(%d of %d)\n", len(resp.Topics), resp.Total)
		return nil
	}),
}

var topicsShowCmd = &cobra.Command{
	Use:   "show <topic-id>",
	Short: "Show a topic with its comment thread",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		topic, err := c.GetTopic(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s — %s\n%s\n", topic.Title, topic.AuthorName, topic.Body)
		printComments(topic.Comments, 1)
		return nil
	}),
}

func printComments(comments []*models.Comment, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, c := range comments {
		fmt.Printf("%s%s [%s]: %s\n", indent, c.AuthorName, c.ID, c.Body)
		printComments(c.Replies, depth+1)
	}
}

var topicsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a new discussion topic",
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		title, _ := cmd.Flags().GetString("title")
		body, _ := cmd.Flags().GetString("body")
		topic, err := c.CreateTopic(cmd.Context(), title, body)
		if err != nil {
			return err
		}
		fmt.Printf("Created topic %s\n", topic.ID)
		return nil
	}),
}

var topicsCommentCmd = &cobra.Command{
	Use:   "comment <topic-id>",
	Short: "Comment on a topic, optionally replying to another comment",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		body, _ := cmd.Flags().GetString("body")
		replyTo, _ := cmd.Flags().GetString("reply-to")
		commentID, err := c.AddComment(cmd.Context(), args[0], replyTo, body)
		if err != nil {
			return err
		}
		fmt.Printf("Posted comment %s\n", commentID)
		return nil
	}),
}

func init() {
	topicsListCmd.Flags().Int("limit", 0, "Page size")
	topicsListCmd.Flags().Int("offset", 0, "Page offset")
	topicsCreateCmd.Flags().String("title", "", "Topic title")
	topicsCreateCmd.Flags().String("body", "", "Topic body")
	topicsCommentCmd.Flags().String("body", "", "Comment text")
	topicsCommentCmd.Flags().String("reply-to", "", "Comment ID being replied to")

	topicsCmd.AddCommand(topicsListCmd, topicsShowCmd, topicsCreateCmd, topicsCommentCmd)
	rootCmd.AddCommand(topicsCmd)
}
