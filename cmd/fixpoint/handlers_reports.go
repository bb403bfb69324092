package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/itsamisha/fixpoint-client/internal/api"
	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// reportFilterFlags binds the shared listing filters to a command.
type reportFilterFlags struct {
	category string
	status   string
	page     int
	size     int
}

func (f *reportFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "", "Filter by category (see: fixpoint reports categories)")
	cmd.Flags().StringVar(&f.status, "status", "", "Filter by status (SUBMITTED, IN_PROGRESS, RESOLVED, REJECTED, DUPLICATE)")
	cmd.Flags().IntVar(&f.page, "page", 0, "Page number, starting at 0")
	cmd.Flags().IntVar(&f.size, "size", 20, "Page size")
}

func (f *reportFilterFlags) filter() api.ReportFilter {
	return api.ReportFilter{
		Category: models.ReportCategory(strings.ToUpper(f.category)),
		Status:   models.ReportStatus(strings.ToUpper(f.status)),
		Page:     f.page,
		Size:     f.size,
	}
}

// createReportFlags binds the report-submission fields to a command.
type createReportFlags struct {
	title       string
	description string
	category    string
	lat         float64
	lng         float64
	address     string
	orgIDs      []int64
}

func (f *createReportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Short summary of the issue (required)")
	cmd.Flags().StringVar(&f.description, "description", "", "What is wrong and where (required)")
	cmd.Flags().StringVar(&f.category, "category", "", "Issue category (required)")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "Latitude of the issue location")
	cmd.Flags().Float64Var(&f.lng, "lng", 0, "Longitude of the issue location")
	cmd.Flags().StringVar(&f.address, "address", "", "Street address of the issue location")
	cmd.Flags().Int64SliceVar(&f.orgIDs, "org", nil, "Organization id to notify (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("category")
}

func runReportsList(ctx context.Context, a *app, flags reportFilterFlags, mine bool) error {
	filter := flags.filter()
	var (
		page *models.Page[models.Report]
		err  error
	)
	switch {
	case mine:
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}
		page, err = a.client.MyReports(ctx, filter)
	case a.sessions.Current() != nil:
		page, err = a.client.Reports(ctx, filter)
	default:
		// Anonymous browsing uses the public listing.
		page, err = a.client.PublicReports(ctx, filter)
	}
	if err != nil {
		return err
	}
	if len(page.Content) == 0 {
		fmt.Println("No reports found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tVOTES\tCATEGORY\tTITLE")
	for _, r := range page.Content {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			r.ID, r.Status, r.VoteCount, r.Category, truncate(r.Title, 60))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nPage %d of %d (%d reports)\n", page.Page+1, page.TotalPages, page.TotalElements)
	return nil
}

func runReportShow(ctx context.Context, a *app, idArg string) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	report, err := a.client.Report(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("report %d not found", id)
		}
		return err
	}

	fmt.Printf("#%d  %s\n", report.ID, report.Title)
	fmt.Printf("Status:   %s", report.Status)
	if report.Priority != "" {
		fmt.Printf("  (priority %s)", report.Priority)
	}
	fmt.Println()
	fmt.Printf("Category: %s\n", report.Category)
	fmt.Printf("Votes:    %d\n", report.VoteCount)
	if report.Reporter != nil {
		fmt.Printf("Reporter: %s\n", report.Reporter.Username)
	}
	if report.AssignedTo != nil {
		fmt.Printf("Assigned: %s\n", report.AssignedTo.Username)
	}
	if report.LocationAddress != "" {
		fmt.Printf("Location: %s\n", report.LocationAddress)
	} else if report.Latitude != 0 || report.Longitude != 0 {
		fmt.Printf("Location: %.5f, %.5f\n", report.Latitude, report.Longitude)
	}
	if !report.CreatedAt.IsZero() {
		fmt.Printf("Created:  %s\n", report.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\n%s\n", report.Description)
	if report.ResolutionNotes != "" {
		fmt.Printf("\nResolution: %s\n", report.ResolutionNotes)
	}

	comments, err := a.client.Comments(ctx, id)
	if err != nil {
		a.logger.Debug("load comments", "report", id, "error", err)
		return nil
	}
	if len(comments) > 0 {
		fmt.Printf("\nComments (%d):\n", len(comments))
		for _, c := range comments {
			printComment(c, "  ")
			if c.ReplyCount > 0 {
				replies, err := a.client.Replies(ctx, id, c.ID)
				if err != nil {
					continue
				}
				for _, r := range replies {
					printComment(r, "      ")
				}
			}
		}
	}
	return nil
}

func printComment(c models.Comment, indent string) {
	author := "unknown"
	if c.Author != nil {
		author = c.Author.Username
	}
	when := ""
	if !c.CreatedAt.IsZero() {
		when = "  " + c.CreatedAt.Format("2006-01-02 15:04")
	}
	fmt.Printf("%s[%d] %s%s\n%s    %s\n", indent, c.ID, author, when, indent, c.Content)
}

func runReportCreate(ctx context.Context, a *app, flags createReportFlags) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	report, err := a.client.CreateReport(ctx, api.CreateReportRequest{
		Title:           flags.title,
		Description:     flags.description,
		Category:        models.ReportCategory(strings.ToUpper(flags.category)),
		Latitude:        flags.lat,
		Longitude:       flags.lng,
		LocationAddress: flags.address,
		OrganizationIDs: flags.orgIDs,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Report #%d submitted (%s).\n", report.ID, report.Status)
	return nil
}

func runReportVote(ctx context.Context, a *app, idArg string) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	report, err := a.client.Vote(ctx, id)
	if err != nil {
		return err
	}
	if report.HasVoted {
		fmt.Printf("Voted. Report #%d now has %d votes.\n", report.ID, report.VoteCount)
	} else {
		fmt.Printf("Vote withdrawn. Report #%d now has %d votes.\n", report.ID, report.VoteCount)
	}
	return nil
}

func runReportStatus(ctx context.Context, a *app, idArg, statusArg, notes string) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	report, err := a.client.UpdateStatus(ctx, id, models.ReportStatus(strings.ToUpper(statusArg)), notes)
	if err != nil {
		return err
	}
	fmt.Printf("Report #%d is now %s.\n", report.ID, report.Status)
	return nil
}

func runReportAssign(ctx context.Context, a *app, idArg, assigneeArg string) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	assignee, err := parseID(assigneeArg)
	if err != nil {
		return err
	}
	report, err := a.client.Assign(ctx, id, assignee)
	if err != nil {
		return err
	}
	who := fmt.Sprintf("#%d", assignee)
	if report.AssignedTo != nil && report.AssignedTo.Username != "" {
		who = report.AssignedTo.Username
	}
	fmt.Printf("Report #%d assigned to %s.\n", report.ID, who)
	return nil
}

func runReportComment(ctx context.Context, a *app, idArg, text string, replyTo int64) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	var comment *models.Comment
	if replyTo > 0 {
		comment, err = a.client.AddReply(ctx, id, replyTo, text)
	} else {
		comment, err = a.client.AddComment(ctx, id, text)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Comment %d added to report #%d.\n", comment.ID, id)
	return nil
}

func runReportCategories(ctx context.Context, a *app) error {
	categories, err := a.client.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Println(c)
	}
	// Statuses and priorities are small fixed sets; show them alongside
	// so one command documents every filter value.
	if statuses, err := a.client.Statuses(ctx); err == nil && len(statuses) > 0 {
		fmt.Println("\nStatuses:")
		for _, s := range statuses {
			fmt.Printf("  %s\n", s)
		}
	}
	if priorities, err := a.client.Priorities(ctx); err == nil && len(priorities) > 0 {
		fmt.Println("\nPriorities:")
		for _, p := range priorities {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
