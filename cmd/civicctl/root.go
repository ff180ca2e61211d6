// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Civicctl is the command-line companion to a civiclink server: log in as a
citizen (or, with --admin, as a community leader), report and track civic
issues, browse discussion topics, and read announcements.

The session persists across invocations in a small database under the
user config directory, so a login survives until it expires or is
revoked. When the server rejects the session, civicctl prints a re-login
notice and exits non-zero; it never retries with dead credentials.
*/
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/civiclink/client"
)

var (
	serverURL    string
	adminSession bool
)

var rootCmd = &cobra.Command{
	Use:   "civicctl",
	Short: "Command-line client for a civiclink server",
	Long: `Civicctl talks to a civiclink citizen engagement server.
Citizens report issues, discuss topics, and read announcements; with
--admin, community leaders triage issues and publish announcements.`,
	SilenceUsage: true,
}

func init() {
	defaultServer := os.Getenv("CIVICLINK_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:4270"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "Base URL of the civiclink server")
	rootCmd.PersistentFlags().BoolVar(&adminSession, "admin", false, "Operate on the leader/admin session")
}

// sessionPath locates the persistent session database.
func sessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	appDir := filepath.Join(dir, "civicctl")
	if err := os.MkdirAll(appDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(appDir, "session.db"), nil
}

// newClient opens the session store and builds a client in the namespace
// selected by --admin. The returned func must be called to close the
// store.
func newClient() (*client.Client, func(), error) {
	path, err := sessionPath()
	if err != nil {
		return nil, nil, fmt.Errorf("locate session store: %w", err)
	}

	store, err := client.OpenBoltStore(path)
	if err != nil {
		return nil, nil, err
	}

	ns := client.CitizenNamespace
	if adminSession {
		ns = client.AdminNamespace
	}

	c := client.New(serverURL, store, client.WithNamespace(ns))
	return c, func() { store.Close() }, nil
}

// sessionError translates SDK session failures into user guidance. It
// returns true when err was a session problem (already reported).
func sessionError(err error) bool {
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		fmt.Fprintln(os.Stderr, "Your session has expired. Run 'civicctl login' to sign in again.")
		return true
	case errors.Is(err, client.ErrNotAuthenticated):
		fmt.Fprintln(os.Stderr, "You are not logged in. Run 'civicctl login' first.")
		return true
	}
	return false
}

// run wraps a command body so session failures exit with a notice instead
// of a usage dump.
func run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil && sessionError(err) {
			cmd.SilenceErrors = true
		}
		return err
	}
}
