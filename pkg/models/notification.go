package models

import "time"

// NotificationType identifies the kind of notification event.
type NotificationType string

const (
	NotificationProgressUpdate     NotificationType = "PROGRESS_UPDATE"
	NotificationNewComment         NotificationType = "NEW_COMMENT"
	NotificationCommentReply       NotificationType = "COMMENT_REPLY"
	NotificationNewChatMessage     NotificationType = "NEW_CHAT_MESSAGE"
	NotificationReportStatusChange NotificationType = "REPORT_STATUS_CHANGE"
	NotificationReportAssigned     NotificationType = "REPORT_ASSIGNED"
	NotificationReportResolved     NotificationType = "REPORT_RESOLVED"
	NotificationSystemAnnouncement NotificationType = "SYSTEM_ANNOUNCEMENT"
)

// Notification is a user-facing event delivered over the push channel
// or returned by the reconciliation fetch.
type Notification struct {
	ID                 int64            `json:"id"`
	Type               NotificationType `json:"type"`
	Title              string           `json:"title"`
	Message            string           `json:"message"`
	IsRead             bool             `json:"isRead"`
	ProgressPercentage *int             `json:"progressPercentage,omitempty"`
	ActionURL          string           `json:"actionUrl,omitempty"`
	ReportID           int64            `json:"reportId,omitempty"`
	CreatedAt          time.Time        `json:"createdAt,omitempty"`
	ReadAt             *time.Time       `json:"readAt,omitempty"`
}

// UnreadCount is the payload of the unread-count reconciliation endpoint.
type UnreadCount struct {
	Count int `json:"count"`
}
