// Package main provides the FixPoint command line client.
//
// FixPoint is a civic issue-reporting platform: citizens submit
// location-tagged reports, organizations triage and resolve them, and a
// chat/notification layer keeps participants informed. This client talks
// to the backend's REST API and its STOMP-over-websocket push channel.
//
// # Basic Usage
//
// Log in and browse reports:
//
//	fixpoint login --username amina
//	fixpoint reports list
//
// Open a live chat thread:
//
//	fixpoint chat bob
//
// Watch notifications as they arrive:
//
//	fixpoint notifications watch
//
// # Environment Variables
//
//   - FIXPOINT_CONFIG: path to the YAML configuration file
//   - FIXPOINT_API_URL: backend origin, overrides the config file
//   - FIXPOINT_STATE_DIR: where the session file is kept
//   - FIXPOINT_LOG_LEVEL: debug, info, warn, or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fixpoint",
		Short:         "Command line client for the FixPoint civic reporting platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	}

	var (
		configPath string
		debug      bool
	)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(),
		"Path to YAML configuration file")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false,
		"Enable debug logging")

	getApp := func() (*app, error) { return newApp(configPath, debug) }

	root.AddCommand(
		buildLoginCmd(getApp),
		buildLogoutCmd(getApp),
		buildWhoamiCmd(getApp),
		buildRegisterCmd(getApp),
		buildVerifyEmailCmd(getApp),
		buildReportsCmd(getApp),
		buildStaffCmd(getApp),
		buildVolunteersCmd(getApp),
		buildChatCmd(getApp),
		buildNotificationsCmd(getApp),
		buildStatusCmd(getApp),
	)
	return root
}

func defaultConfigPath() string {
	if p := os.Getenv("FIXPOINT_CONFIG"); p != "" {
		return p
	}
	return "fixpoint.yaml"
}
