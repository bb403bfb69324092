package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/itsamisha/fixpoint-client/internal/api"
	"github.com/itsamisha/fixpoint-client/pkg/models"
)

func runLogin(ctx context.Context, a *app, username, password string) error {
	reader := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Username or email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	switch password {
	case "":
		password = promptPassword(reader, "Password")
	case "-":
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read password from stdin: %w", err)
		}
		password = strings.TrimSpace(line)
	}
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	resp, err := a.client.SignIn(ctx, models.SignInRequest{
		UsernameOrEmail: username,
		Password:        password,
	})
	if err != nil {
		if api.IsAuthFailure(err) {
			return fmt.Errorf("invalid credentials")
		}
		return err
	}
	a.sessions.Login(resp.User, resp.AccessToken)
	fmt.Printf("Logged in as %s (%s)\n", resp.User.Username, resp.User.Role)
	return nil
}

func runLogout(a *app) error {
	if a.sessions.Current() == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	a.sessions.Logout()
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(ctx context.Context, a *app) error {
	sess, err := a.requireSession(ctx)
	if err != nil {
		return err
	}
	// Prefer the live profile; fall back to the persisted one offline.
	user := sess.User
	if fresh, err := a.client.CurrentUser(ctx); err == nil {
		user = *fresh
	}
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Email:    %s\n", user.Email)
	if user.FullName != "" {
		fmt.Printf("Name:     %s\n", user.FullName)
	}
	fmt.Printf("Role:     %s\n", user.Role)
	if user.Organization != nil {
		fmt.Printf("Org:      %s (#%d)\n", user.Organization.Name, user.Organization.ID)
	}
	if user.IsVolunteer {
		fmt.Println("Volunteer: yes")
	}
	return nil
}

func runRegister(ctx context.Context, a *app, req models.SignUpRequest, orgName, orgType string) error {
	// Preflight the unique fields so a typo fails before the full submit.
	if available, err := a.client.CheckUsername(ctx, req.Username); err == nil && !available {
		return fmt.Errorf("username %q is already taken", req.Username)
	}
	if available, err := a.client.CheckEmail(ctx, req.Email); err == nil && !available {
		return fmt.Errorf("an account with email %q already exists", req.Email)
	}

	var (
		ack *models.APIMessage
		err error
	)
	if orgName != "" {
		ack, err = a.client.SignUpOrganization(ctx, models.OrgSignUpRequest{
			SignUpRequest:    req,
			OrganizationName: orgName,
			OrganizationType: orgType,
		})
	} else {
		ack, err = a.client.SignUp(ctx, req)
	}
	if err != nil {
		return err
	}
	if ack.Message != "" {
		fmt.Println(ack.Message)
	} else {
		fmt.Println("Registered. Check your email for the verification code.")
	}
	fmt.Printf("Next: fixpoint verify-email %s <otp-code>\n", req.Email)
	return nil
}

func runVerifyEmail(ctx context.Context, a *app, email, code string, resend bool) error {
	if resend {
		ack, err := a.client.ResendOTP(ctx, email)
		if err != nil {
			return err
		}
		fmt.Println(orDefault(ack.Message, "A fresh code is on its way."))
		return nil
	}
	if code == "" {
		return fmt.Errorf("otp code required (or use --resend)")
	}
	ack, err := a.client.VerifyEmail(ctx, email, code)
	if err != nil {
		return err
	}
	fmt.Println(orDefault(ack.Message, "Email verified. You can log in now."))
	return nil
}

func runStatus(ctx context.Context, a *app) error {
	fmt.Printf("Backend:  %s\n", a.cfg.Server.BaseURL)
	fmt.Printf("Realtime: %s\n", a.cfg.WebSocketURL())

	sess := a.sessions.Current()
	if sess == nil {
		fmt.Println("Session:  none (run: fixpoint login)")
		return nil
	}
	fmt.Printf("Session:  %s (%s)\n", sess.User.Username, sess.User.Role)

	if _, err := a.client.CurrentUser(ctx); err != nil {
		if api.IsAuthFailure(err) {
			fmt.Println("Token:    rejected by backend (session cleared)")
		} else {
			fmt.Printf("Backend check failed: %v\n", err)
		}
		return nil
	}
	fmt.Println("Token:    valid")
	if n, err := a.client.UnreadCount(ctx); err == nil {
		fmt.Printf("Unread notifications: %d\n", n)
	}
	return nil
}

func runStaffList(ctx context.Context, a *app, orgID int64) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	var (
		staff []models.StaffMember
		err   error
	)
	if orgID > 0 {
		staff, err = a.client.StaffByOrganization(ctx, orgID)
	} else {
		staff, err = a.client.OrganizationStaff(ctx)
	}
	if err != nil {
		return err
	}
	if len(staff) == 0 {
		fmt.Println("No staff members found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tPOSITION\tACTIVE")
	for _, s := range staff {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\n",
			s.ID, s.User.Username, s.User.FullName, s.Position, s.Active)
	}
	return w.Flush()
}

func runStaffSetActive(ctx context.Context, a *app, idArg string, active bool) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	member, err := a.client.SetStaffActive(ctx, id, active)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("staff member %d not found", id)
		}
		return err
	}
	state := "deactivated"
	if member.Active {
		state = "active"
	}
	fmt.Printf("Staff member %s is now %s.\n", member.User.Username, state)
	return nil
}

func runVolunteersList(ctx context.Context, a *app) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	volunteers, err := a.client.Volunteers(ctx)
	if err != nil {
		return err
	}
	if len(volunteers) == 0 {
		fmt.Println("No volunteers registered.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tNAME")
	for _, v := range volunteers {
		fmt.Fprintf(w, "%d\t%s\t%s\n", v.ID, v.Username, v.FullName)
	}
	return w.Flush()
}

func runVolunteerLeaderboard(ctx context.Context, a *app) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	board, err := a.client.VolunteerLeaderboard(ctx)
	if err != nil {
		return err
	}
	if len(board) == 0 {
		fmt.Println("No volunteer activity yet.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tVOLUNTEER\tRESOLVED\tIN PROGRESS\tASSIGNED")
	for i, v := range board {
		fmt.Fprintf(w, "%d\t#%d\t%d\t%d\t%d\n",
			i+1, v.VolunteerID, v.ResolvedCount, v.InProgressCount, v.AssignedCount)
	}
	return w.Flush()
}

func runVolunteerStats(ctx context.Context, a *app, idArg string) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	stats, err := a.client.VolunteerStats(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("volunteer %d not found", id)
		}
		return err
	}
	fmt.Printf("Volunteer #%d\n", stats.VolunteerID)
	fmt.Printf("  Assigned:    %d\n", stats.AssignedCount)
	fmt.Printf("  In progress: %d\n", stats.InProgressCount)
	fmt.Printf("  Resolved:    %d\n", stats.ResolvedCount)
	return nil
}

// promptPassword prompts for a password without echoing input.
func promptPassword(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		text, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(text))
		}
	}
	text, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
