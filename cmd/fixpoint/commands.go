// commands.go contains the cobra command definitions and their flag
// configurations. Each builder wires a command to its handler.
package main

import (
	"github.com/spf13/cobra"

	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// appFactory defers app construction until the command actually runs, so
// flag parsing happens before config loading.
type appFactory func() (*app, error)

func buildLoginCmd(getApp appFactory) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the FixPoint backend",
		Example: `  fixpoint login --username amina
  fixpoint login --username amina --password - < password.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runLogin(cmd.Context(), a, username, password)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (use - to read from stdin, omit to be prompted)")
	return cmd
}

func buildLogoutCmd(getApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runLogout(a)
		},
	}
}

func buildWhoamiCmd(getApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runWhoami(cmd.Context(), a)
		},
	}
}

func buildRegisterCmd(getApp appFactory) *cobra.Command {
	var req models.SignUpRequest
	var orgName, orgType string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Long: `Register a citizen account, or an organization together with its
admin account when --organization is given. The backend mails an OTP
code; confirm it with "fixpoint verify-email".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runRegister(cmd.Context(), a, req, orgName, orgType)
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (required)")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "Full name")
	cmd.Flags().BoolVar(&req.IsVolunteer, "volunteer", false, "Register as a volunteer")
	cmd.Flags().StringVar(&orgName, "organization", "", "Organization name (registers an organization account)")
	cmd.Flags().StringVar(&orgType, "organization-type", "", "Organization type")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func buildVerifyEmailCmd(getApp appFactory) *cobra.Command {
	var resend bool
	cmd := &cobra.Command{
		Use:   "verify-email <email> [otp-code]",
		Short: "Confirm an account with the mailed OTP code",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			code := ""
			if len(args) == 2 {
				code = args[1]
			}
			return runVerifyEmail(cmd.Context(), a, args[0], code, resend)
		},
	}
	cmd.Flags().BoolVar(&resend, "resend", false, "Request a fresh OTP code instead of verifying")
	return cmd
}

func buildReportsCmd(getApp appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse and manage issue reports",
	}

	var filter reportFilterFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runReportsList(cmd.Context(), a, filter, false)
		},
	}
	filter.register(list)

	var mineFilter reportFilterFlags
	mine := &cobra.Command{
		Use:   "mine",
		Short: "List reports you submitted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runReportsList(cmd.Context(), a, mineFilter, true)
		},
	}
	mineFilter.register(mine)

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one report with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runReportShow(cmd.Context(), a, args[0])
		},
	}

	var create createReportFlags
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new report",
		Example: `  fixpoint reports create --title "Broken street light" \
      --category STREET_LIGHTING --description "Dark corner at night" \
      --lat 23.7808 --lng 90.2792`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runReportCreate(cmd.Context(), a, create)
		},
	}
	create.register(createCmd)

	vote := &cobra.Command{
		Use:   "vote <id>",
		Short: "Vote for a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runReportVote(cmd.Context(), a, args[0])
		},
	}

	var notes string
	status := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Transition a report's status (staff)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runReportStatus(cmd.Context(), a, args[0], args[1], notes)
		},
	}
	status.Flags().StringVar(&notes, "notes", "", "Resolution notes")

	assign := &cobra.Command{
		Use:   "assign <id> <assignee-id>",
		Short: "Assign a report to a staff member or volunteer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runReportAssign(cmd.Context(), a, args[0], args[1])
		},
	}

	var replyTo int64
	comment := &cobra.Command{
		Use:   "comment <id> <text>",
		Short: "Comment on a report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runReportComment(cmd.Context(), a, args[0], args[1], replyTo)
		},
	}
	comment.Flags().Int64Var(&replyTo, "reply-to", 0, "Reply to an existing comment id")

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List the report categories the backend accepts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runReportCategories(cmd.Context(), a)
		},
	}

	cmd.AddCommand(list, mine, show, createCmd, vote, status, assign, comment, categories)
	return cmd
}

func buildStaffCmd(getApp appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Organization staff directory",
	}
	var orgID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List staff of your organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runStaffList(cmd.Context(), a, orgID)
		},
	}
	list.Flags().Int64Var(&orgID, "organization", 0, "List another organization's staff by id")

	activate := &cobra.Command{
		Use:   "activate <staff-id>",
		Short: "Reactivate a staff account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runStaffSetActive(cmd.Context(), a, args[0], true)
		},
	}
	deactivate := &cobra.Command{
		Use:   "deactivate <staff-id>",
		Short: "Deactivate a staff account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runStaffSetActive(cmd.Context(), a, args[0], false)
		},
	}

	cmd.AddCommand(list, activate, deactivate)
	return cmd
}

func buildVolunteersCmd(getApp appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volunteers",
		Short: "Volunteer directory and leaderboard",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List registered volunteers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runVolunteersList(cmd.Context(), a)
		},
	}
	leaderboard := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank volunteers by resolved reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runVolunteerLeaderboard(cmd.Context(), a)
		},
	}
	stats := &cobra.Command{
		Use:   "stats <volunteer-id>",
		Short: "Show one volunteer's contribution record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runVolunteerStats(cmd.Context(), a, args[0])
		},
	}
	cmd.AddCommand(list, leaderboard, stats)
	return cmd
}

func buildChatCmd(getApp appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [username]",
		Short: "Open a live chat thread",
		Long: `Open an interactive one-to-one chat thread over the realtime
channel. Without an argument, lists the users you can chat with.
Type messages and press enter to send; /quit leaves the thread.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return runChatUsers(cmd.Context(), a)
			}
			return runChat(cmd.Context(), a, args[0])
		},
	}
	return cmd
}

func buildNotificationsCmd(getApp appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notify"},
		Short:   "Notification inbox",
	}
	var unreadOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runNotificationsList(cmd.Context(), a, unreadOnly)
		},
	}
	list.Flags().BoolVar(&unreadOnly, "unread", false, "Only unread notifications")

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Stream notifications as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runNotificationsWatch(cmd.Context(), a)
		},
	}

	markRead := &cobra.Command{
		Use:   "mark-read [id]",
		Short: "Mark one notification read, or all with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runNotificationsMarkRead(cmd.Context(), a, id)
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Delete all notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runNotificationsClear(cmd.Context(), a)
		},
	}

	cmd.AddCommand(list, watch, markRead, clear)
	return cmd
}

func buildStatusCmd(getApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and backend status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return runStatus(cmd.Context(), a)
		},
	}
}
