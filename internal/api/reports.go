package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// ReportFilter narrows report listings.
type ReportFilter struct {
	Category models.ReportCategory
	Status   models.ReportStatus
	Page     int
	Size     int
}

func (f ReportFilter) values() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", string(f.Category))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Size > 0 {
		q.Set("size", strconv.Itoa(f.Size))
	}
	return q
}

// Reports lists reports visible to the current user.
func (c *Client) Reports(ctx context.Context, filter ReportFilter) (*models.Page[models.Report], error) {
	var out models.Page[models.Report]
	if err := c.get(ctx, "/api/reports", filter.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PublicReports lists reports without authentication.
func (c *Client) PublicReports(ctx context.Context, filter ReportFilter) (*models.Page[models.Report], error) {
	var out models.Page[models.Report]
	if err := c.get(ctx, "/api/public/reports", filter.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyReports lists reports submitted by the current user.
func (c *Client) MyReports(ctx context.Context, filter ReportFilter) (*models.Page[models.Report], error) {
	var out models.Page[models.Report]
	if err := c.get(ctx, "/api/reports/my-reports", filter.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Report fetches a single report by id.
func (c *Client) Report(ctx context.Context, id int64) (*models.Report, error) {
	var out models.Report
	if err := c.get(ctx, fmt.Sprintf("/api/reports/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReportRequest is the submission payload for a new report.
type CreateReportRequest struct {
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Category        models.ReportCategory `json:"category"`
	Latitude        float64               `json:"latitude,omitempty"`
	Longitude       float64               `json:"longitude,omitempty"`
	LocationAddress string                `json:"locationAddress,omitempty"`
	OrganizationIDs []int64               `json:"organizationIds,omitempty"`
}

// CreateReport submits a new report.
func (c *Client) CreateReport(ctx context.Context, req CreateReportRequest) (*models.Report, error) {
	var out models.Report
	if err := c.post(ctx, "/api/reports", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Vote records the current user's vote for a report.
func (c *Client) Vote(ctx context.Context, reportID int64) (*models.Report, error) {
	var out models.Report
	if err := c.post(ctx, fmt.Sprintf("/api/reports/%d/vote", reportID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus transitions a report's triage state. Staff only; the
// backend enforces authorization.
func (c *Client) UpdateStatus(ctx context.Context, reportID int64, status models.ReportStatus, resolutionNotes string) (*models.Report, error) {
	q := url.Values{"status": {string(status)}}
	if resolutionNotes != "" {
		q.Set("resolutionNotes", resolutionNotes)
	}
	var out models.Report
	if err := c.put(ctx, fmt.Sprintf("/api/reports/%d/status", reportID), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Assign routes a report to a staff member or volunteer.
func (c *Client) Assign(ctx context.Context, reportID, assigneeID int64) (*models.Report, error) {
	q := url.Values{"assigneeId": {strconv.FormatInt(assigneeID, 10)}}
	var out models.Report
	if err := c.put(ctx, fmt.Sprintf("/api/reports/%d/assign", reportID), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Comments lists the discussion thread on a report.
func (c *Client) Comments(ctx context.Context, reportID int64) ([]models.Comment, error) {
	var out []models.Comment
	if err := c.get(ctx, fmt.Sprintf("/api/reports/%d/comments", reportID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddComment posts a top-level comment on a report.
func (c *Client) AddComment(ctx context.Context, reportID int64, content string) (*models.Comment, error) {
	var out models.Comment
	payload := map[string]string{"content": content}
	if err := c.post(ctx, fmt.Sprintf("/api/reports/%d/comments", reportID), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddReply posts a reply under an existing comment.
func (c *Client) AddReply(ctx context.Context, reportID, commentID int64, content string) (*models.Comment, error) {
	var out models.Comment
	payload := map[string]string{"content": content}
	path := fmt.Sprintf("/api/reports/%d/comments/%d/replies", reportID, commentID)
	if err := c.post(ctx, path, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Replies lists the replies under a comment.
func (c *Client) Replies(ctx context.Context, reportID, commentID int64) ([]models.Comment, error) {
	var out []models.Comment
	path := fmt.Sprintf("/api/reports/%d/comments/%d/replies", reportID, commentID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories lists the report categories the backend accepts.
func (c *Client) Categories(ctx context.Context) ([]models.ReportCategory, error) {
	var out []models.ReportCategory
	if err := c.get(ctx, "/api/public/reports/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Statuses lists the report statuses the backend reports.
func (c *Client) Statuses(ctx context.Context) ([]models.ReportStatus, error) {
	var out []models.ReportStatus
	if err := c.get(ctx, "/api/public/reports/statuses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Priorities lists the triage priorities the backend assigns.
func (c *Client) Priorities(ctx context.Context) ([]models.ReportPriority, error) {
	var out []models.ReportPriority
	if err := c.get(ctx, "/api/public/reports/priorities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
