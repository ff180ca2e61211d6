// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/civiclink/models"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in to the civiclink server. Citizen by default; pass --admin to
sign in as a community leader. The password is read from --password or
prompted on stdin.`,
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		email := loginEmail
		if email == "" {
			email, err = prompt("Email: ")
			if err != nil {
				return err
			}
		}
		password := loginPassword
		if password == "" {
			password, err = prompt("Password: ")
			if err != nil {
				return err
			}
		}

		resp, err := c.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		if resp.Leader != nil {
			role := "leader"
			if resp.Leader.Admin {
				role = "admin"
			}
			fmt.Printf("Logged in as %s (%s)\n", resp.Leader.Name, role)
		} else {
			fmt.Printf("Logged in as %s\n", resp.User.Name)
		}
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke and discard the stored session",
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		if err := c.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account behind the stored session",
	RunE: run(func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		resp, err := c.RestoreSession(cmd.Context())
		if err != nil {
			return err
		}

		if resp.Leader != nil {
			fmt.Printf("%s <%s> — %s", resp.Leader.Name, resp.Leader.Email, resp.Leader.Title)
			if resp.Leader.Admin {
				fmt.Print(" (admin)")
			}
			fmt.Println()
			return nil
		}

		fmt.Printf("%s <%s>", resp.User.Name, resp.User.Email)
		if resp.User.Ward != "" {
			fmt.Printf(", %s", resp.User.Ward)
		}
		fmt.Println()
		return nil
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a citizen account and sign in",
	RunE: run(func(cmd *cobra.Command, args []string) error {
		if adminSession {
			return fmt.Errorf("leader accounts are provisioned by an administrator")
		}

		c, closeStore, err := newClient()
		if err != nil {
			return err
		}
		defer closeStore()

		name, _ := cmd.Flags().GetString("name")
		ward, _ := cmd.Flags().GetString("ward")
		email := loginEmail
		if email == "" {
			email, err = prompt("Email: ")
			if err != nil {
				return err
			}
		}
		password := loginPassword
		if password == "" {
			password, err = prompt("Password: ")
			if err != nil {
				return err
			}
		}

		user, err := c.Register(cmd.Context(), models.RegisterCitizenRequest{
			Name:     name,
			Email:    email,
			Password: password,
			Ward:     ward,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s. You are now logged in.\n", user.Name)
		return nil
	}),
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// printJSON renders any API payload for scripting use.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	registerCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("ward", "", "Ward or district")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd)
}
