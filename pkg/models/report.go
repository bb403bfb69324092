package models

import "time"

// ReportCategory classifies the civic issue being reported.
type ReportCategory string

const (
	CategoryRoadsInfrastructure ReportCategory = "ROADS_INFRASTRUCTURE"
	CategorySanitationWaste     ReportCategory = "SANITATION_WASTE"
	CategoryStreetLighting      ReportCategory = "STREET_LIGHTING"
	CategoryWaterDrainage       ReportCategory = "WATER_DRAINAGE"
	CategoryTrafficParking      ReportCategory = "TRAFFIC_PARKING"
	CategoryStrayAnimals        ReportCategory = "STRAY_ANIMALS"
	CategoryNoisePollution      ReportCategory = "NOISE_POLLUTION"
	CategoryIllegalConstruction ReportCategory = "ILLEGAL_CONSTRUCTION"
	CategoryPublicSafety        ReportCategory = "PUBLIC_SAFETY"
	CategoryEnvironmental       ReportCategory = "ENVIRONMENTAL"
	CategoryOther               ReportCategory = "OTHER"
)

// ReportStatus is the triage state of a report.
type ReportStatus string

const (
	StatusSubmitted  ReportStatus = "SUBMITTED"
	StatusInProgress ReportStatus = "IN_PROGRESS"
	StatusResolved   ReportStatus = "RESOLVED"
	StatusRejected   ReportStatus = "REJECTED"
	StatusDuplicate  ReportStatus = "DUPLICATE"
)

// ReportPriority is assigned by staff during triage.
type ReportPriority string

const (
	PriorityLow    ReportPriority = "LOW"
	PriorityMedium ReportPriority = "MEDIUM"
	PriorityHigh   ReportPriority = "HIGH"
	PriorityUrgent ReportPriority = "URGENT"
)

// Report is a location-tagged civic issue.
type Report struct {
	ID              int64          `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Category        ReportCategory `json:"category"`
	Status          ReportStatus   `json:"status"`
	Priority        ReportPriority `json:"priority,omitempty"`
	Latitude        float64        `json:"latitude,omitempty"`
	Longitude       float64        `json:"longitude,omitempty"`
	LocationAddress string         `json:"locationAddress,omitempty"`
	ImagePath       string         `json:"imagePath,omitempty"`
	VoteCount       int            `json:"voteCount,omitempty"`
	HasVoted        bool           `json:"hasVoted,omitempty"`
	Reporter        *UserRef       `json:"reporter,omitempty"`
	AssignedTo      *UserRef       `json:"assignedTo,omitempty"`
	ResolutionNotes string         `json:"resolutionNotes,omitempty"`
	CreatedAt       time.Time      `json:"createdAt,omitempty"`
	UpdatedAt       time.Time      `json:"updatedAt,omitempty"`
	ResolvedAt      *time.Time     `json:"resolvedAt,omitempty"`
}

// Comment is a threaded discussion entry on a report.
type Comment struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	Author     *UserRef  `json:"author,omitempty"`
	ParentID   int64     `json:"parentId,omitempty"`
	ReplyCount int       `json:"replyCount,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// Page is the paginated list envelope the backend wraps collections in.
type Page[T any] struct {
	Content       []T  `json:"content"`
	Page          int  `json:"page"`
	Size          int  `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Last          bool `json:"last"`
}

// VolunteerStats summarizes a volunteer's contribution record.
type VolunteerStats struct {
	VolunteerID     int64 `json:"volunteerId"`
	AssignedCount   int   `json:"assignedCount"`
	ResolvedCount   int   `json:"resolvedCount"`
	InProgressCount int   `json:"inProgressCount"`
}

// StaffMember is an organization staff row from the staff directory.
type StaffMember struct {
	ID           int64   `json:"id"`
	User         UserRef `json:"user"`
	Organization OrgRef  `json:"organization"`
	Position     string  `json:"position,omitempty"`
	Active       bool    `json:"active"`
}
