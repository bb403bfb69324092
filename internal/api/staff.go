package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// OrganizationStaff lists the staff of the current user's organization.
func (c *Client) OrganizationStaff(ctx context.Context) ([]models.StaffMember, error) {
	var out []models.StaffMember
	if err := c.get(ctx, "/api/staff/organization", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StaffByOrganization lists the staff of a specific organization.
func (c *Client) StaffByOrganization(ctx context.Context, organizationID int64) ([]models.StaffMember, error) {
	path := fmt.Sprintf("/api/staff/organization/%d", organizationID)
	var out []models.StaffMember
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StaffMember fetches one staff record.
func (c *Client) StaffMember(ctx context.Context, id int64) (*models.StaffMember, error) {
	var out models.StaffMember
	if err := c.get(ctx, fmt.Sprintf("/api/staff/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetStaffActive enables or disables a staff account.
func (c *Client) SetStaffActive(ctx context.Context, id int64, active bool) (*models.StaffMember, error) {
	q := url.Values{"active": {strconv.FormatBool(active)}}
	var out models.StaffMember
	if err := c.put(ctx, fmt.Sprintf("/api/staff/%d/status", id), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Volunteers lists registered volunteers.
func (c *Client) Volunteers(ctx context.Context) ([]models.UserRef, error) {
	var out []models.UserRef
	if err := c.get(ctx, "/api/volunteers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VolunteerLeaderboard ranks volunteers by resolved reports.
func (c *Client) VolunteerLeaderboard(ctx context.Context) ([]models.VolunteerStats, error) {
	var out []models.VolunteerStats
	if err := c.get(ctx, "/api/volunteers/leaderboard", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VolunteerStats fetches one volunteer's contribution record.
func (c *Client) VolunteerStats(ctx context.Context, volunteerID int64) (*models.VolunteerStats, error) {
	var out models.VolunteerStats
	if err := c.get(ctx, fmt.Sprintf("/api/volunteers/%d/stats", volunteerID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
